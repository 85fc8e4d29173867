// internal/core/ports/item_store.go
package ports

import (
	"context"

	"github.com/ammerola/inventory-tracker/internal/core/domain"
)

// ItemStore is the observable item store. Query channels deliver the current
// value first and then a fresh value after every relevant mutation; they are
// closed when ctx ends.
type ItemStore interface {
	Insert(ctx context.Context, item *domain.Item) error
	Update(ctx context.Context, item domain.Item) error
	Delete(ctx context.Context, item domain.Item) error

	// GetItem emits once the record exists and closes after it is deleted.
	GetItem(ctx context.Context, id int64) (<-chan domain.Item, error)
	// GetItems emits the full list ordered by name on every change.
	GetItems(ctx context.Context) (<-chan []domain.Item, error)
}
