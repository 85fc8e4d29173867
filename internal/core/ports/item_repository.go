// internal/core/ports/item_repository.go
package ports

import (
	"context"

	"github.com/ammerola/inventory-tracker/internal/core/domain"
)

// ItemRepository defines the one-shot persistence port for items.
// Mutations report whether a row was changed; failures wrap domain.ErrStorage.
type ItemRepository interface {
	// Insert assigns a generated id when item.ID <= 0. An explicit id that
	// already exists is ignored and reported as (false, nil).
	Insert(ctx context.Context, item *domain.Item) (bool, error)
	Update(ctx context.Context, item domain.Item) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	// FindByID returns (nil, nil) when no record exists.
	FindByID(ctx context.Context, id int64) (*domain.Item, error)
	// FindAll returns every item ordered by name (byte-wise), then id.
	FindAll(ctx context.Context) ([]domain.Item, error)
}
