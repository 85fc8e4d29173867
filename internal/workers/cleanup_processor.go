// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/inventory-tracker/internal/core/ports"
)

// CleanupProcessor enforces export retention
type CleanupProcessor struct {
	storage   ports.FileStorage
	retention time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// CleanupOption configures a CleanupProcessor
type CleanupOption func(*CleanupProcessor)

// WithCleanupClock overrides the clock the retention cutoff is computed from
func WithCleanupClock(now func() time.Time) CleanupOption {
	return func(p *CleanupProcessor) { p.now = now }
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(storage ports.FileStorage, retention time.Duration, logger *slog.Logger, opts ...CleanupOption) *CleanupProcessor {
	p := &CleanupProcessor{
		storage:   storage,
		retention: retention,
		now:       time.Now,
		logger:    logger.With(slog.String("processor", "cleanup")),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CleanupExports removes exports older than the retention period
func (p *CleanupProcessor) CleanupExports(ctx context.Context, _ *asynq.Task) error {
	p.logger.InfoContext(ctx, "cleaning up old exports",
		slog.Duration("retention", p.retention))

	keys, err := p.storage.List(ctx, ExportPrefix)
	if err != nil {
		return fmt.Errorf("failed to list exports: %w", err)
	}

	cutoff := p.now().Add(-p.retention)

	var deletedCount, failedCount int
	for _, key := range keys {
		takenAt, ok := ParseExportKey(key)
		if !ok || !takenAt.Before(cutoff) {
			continue
		}

		if err := p.storage.Delete(ctx, key); err != nil {
			p.logger.WarnContext(ctx, "failed to delete export",
				slog.String("key", key),
				slog.String("error", err.Error()))
			failedCount++
			continue
		}
		deletedCount++
	}

	p.logger.InfoContext(ctx, "exports cleaned up",
		slog.Int("files_deleted", deletedCount),
		slog.Int("files_failed", failedCount))

	if failedCount > 0 {
		return fmt.Errorf("failed to delete %d of %d expired exports", failedCount, failedCount+deletedCount)
	}
	return nil
}
