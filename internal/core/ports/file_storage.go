// internal/core/ports/file_storage.go
package ports

import (
	"context"
	"io"
)

// FileStorage defines the port for storing exported files
type FileStorage interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}
