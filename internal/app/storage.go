// internal/app/storage.go
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ammerola/inventory-tracker/internal/adapters/storage"
	"github.com/ammerola/inventory-tracker/internal/core/ports"
	"github.com/ammerola/inventory-tracker/internal/pkg/config"
)

// NewFileStorage returns the export storage selected by STORAGE_DRIVER
func NewFileStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.FileStorage, error) {
	switch cfg.Export.StorageDriver {
	case "local":
		local, err := storage.NewLocalStorage(cfg.Export.LocalDir, logger)
		if err != nil {
			return nil, err
		}
		return local, nil
	case "s3":
		s3, err := storage.NewS3Storage(ctx, &storage.S3Config{
			Region:          cfg.AWS.Region,
			Bucket:          cfg.AWS.S3Bucket,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			Endpoint:        cfg.AWS.S3Endpoint,
			UsePathStyle:    cfg.AWS.UsePathStyle,
		}, logger)
		if err != nil {
			return nil, err
		}
		return s3, nil
	default:
		return nil, fmt.Errorf("unknown export storage driver %q", cfg.Export.StorageDriver)
	}
}
