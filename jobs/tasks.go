package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/mohamedwhb/postenwerk/internal/catalog"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCatalogImport bulk-upserts products into the catalog.
	TaskCatalogImport = "catalog:import"
	// TaskCatalogWarmup refreshes the Redis catalog snapshot.
	TaskCatalogWarmup = "catalog:warmup"
)

// CatalogImportPayload carries the rows of one import run. JobID is
// generated at enqueue time so callers can correlate log lines.
type CatalogImportPayload struct {
	JobID    string                `json:"job_id"`
	Products []catalog.ProductForm `json:"products"`
}

// NewCatalogImportTask constructs an Asynq task.
func NewCatalogImportTask(payload CatalogImportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogImport, data, asynq.MaxRetry(3)), nil
}

// NewCatalogWarmupTask constructs the cron warmup task. It carries no
// payload.
func NewCatalogWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskCatalogWarmup, nil)
}
