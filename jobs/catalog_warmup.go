package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/mohamedwhb/postenwerk/internal/catalog"
)

// CatalogWarmupJob keeps the Redis catalog snapshot warm so the first
// matcher request after an invalidation does not pay the database
// round-trip. Runs on a cron schedule.
type CatalogWarmupJob struct {
	Catalog *catalog.Service
	Logger  *slog.Logger
	Metrics *Metrics
}

// NewCatalogWarmupJob wires dependencies for the warmup handler.
func NewCatalogWarmupJob(catalogSvc *catalog.Service, logger *slog.Logger) *CatalogWarmupJob {
	return &CatalogWarmupJob{Catalog: catalogSvc, Logger: logger, Metrics: NewMetrics(nil)}
}

// Handle refreshes the snapshot cache.
func (j *CatalogWarmupJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Catalog == nil {
		return errors.New("catalog warmup: handler not configured")
	}
	tracker := j.Metrics.Track(TaskCatalogWarmup)
	products, err := j.Catalog.Snapshot(ctx)
	if err != nil {
		j.Logger.Error("catalog warmup", slog.Any("error", err))
		return tracker.End(err)
	}
	j.Logger.Info("catalog warmup done", slog.Int("products", len(products)))
	return tracker.End(nil)
}
