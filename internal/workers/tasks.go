// internal/workers/tasks.go
package workers

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeInventoryExport = "inventory:export"
	TypeCleanupExports  = "inventory:cleanup_exports"
)

const (
	// ExportPrefix is the storage prefix every export is written under
	ExportPrefix = "exports/"

	exportNamePrefix = ExportPrefix + "inventory-"
	exportExt        = ".xlsx"
	exportTimeLayout = "20060102T150405Z"

	FormatXLSX = "xlsx"
)

// ExportPayload represents the payload for inventory export jobs
type ExportPayload struct {
	RequestedBy string `json:"requested_by"`
	Format      string `json:"format"`
}

// NewExportTask builds an export task ready to be enqueued
func NewExportTask(requestedBy string) (*asynq.Task, error) {
	payload, err := json.Marshal(ExportPayload{RequestedBy: requestedBy, Format: FormatXLSX})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export payload: %w", err)
	}
	return asynq.NewTask(TypeInventoryExport, payload, asynq.MaxRetry(3), asynq.Timeout(5*time.Minute)), nil
}

// NewCleanupExportsTask builds an export retention task
func NewCleanupExportsTask() *asynq.Task {
	return asynq.NewTask(TypeCleanupExports, nil, asynq.MaxRetry(1))
}

// ExportKey returns the storage key for an export taken at t
func ExportKey(t time.Time) string {
	return exportNamePrefix + t.UTC().Format(exportTimeLayout) + exportExt
}

// ParseExportKey returns the time an export was taken. Keys that were not
// produced by ExportKey report false.
func ParseExportKey(key string) (time.Time, bool) {
	if !strings.HasPrefix(key, exportNamePrefix) || !strings.HasSuffix(key, exportExt) {
		return time.Time{}, false
	}

	stamp := strings.TrimSuffix(strings.TrimPrefix(key, exportNamePrefix), exportExt)
	t, err := time.Parse(exportTimeLayout, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
