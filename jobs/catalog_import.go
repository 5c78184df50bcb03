package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/mohamedwhb/postenwerk/internal/catalog"
)

// CatalogImportJob upserts product batches submitted through the import
// endpoint.
type CatalogImportJob struct {
	Catalog *catalog.Service
	Logger  *slog.Logger
	Metrics *Metrics
}

// NewCatalogImportJob wires dependencies for the import handler.
func NewCatalogImportJob(catalogSvc *catalog.Service, logger *slog.Logger) *CatalogImportJob {
	return &CatalogImportJob{Catalog: catalogSvc, Logger: logger, Metrics: NewMetrics(nil)}
}

// Handle processes catalog import tasks. Malformed payloads are not
// retried; upsert failures are, up to the task's retry budget.
func (j *CatalogImportJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Catalog == nil {
		return errors.New("catalog import: handler not configured")
	}
	var payload CatalogImportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if len(payload.Products) == 0 {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskCatalogImport)
	logger := j.Logger.With(slog.String("job_id", payload.JobID))
	count, err := j.Catalog.Import(ctx, payload.Products)
	if err != nil {
		logger.Error("catalog import", slog.Any("error", err))
		return tracker.End(err)
	}
	logger.Info("catalog import done", slog.Int("products", count))
	return tracker.End(nil)
}
