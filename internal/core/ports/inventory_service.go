// internal/core/ports/inventory_service.go
package ports

import (
	"context"

	"github.com/ammerola/inventory-tracker/internal/core/domain"
)

// PendingWrite is the handle returned for an asynchronous store mutation
type PendingWrite interface {
	Done() <-chan struct{}
	Wait(ctx context.Context) error
	Skipped() bool
	Item() domain.Item
}

// InventoryService defines the application service port for inventory.
// This interface is implemented by the application service.
type InventoryService interface {
	IsEntryValid(name, price, quantity string) bool
	IsStockAvailable(item domain.Item) bool

	AddNewItem(ctx context.Context, name, price, quantity string) (PendingWrite, error)
	UpdateItem(ctx context.Context, id int64, name, price, quantity string) (PendingWrite, error)
	SellItem(ctx context.Context, item domain.Item) PendingWrite
	DeleteItem(ctx context.Context, item domain.Item) PendingWrite

	RetrieveItem(ctx context.Context, id int64) (<-chan domain.Item, error)
	AllItems(ctx context.Context) (<-chan []domain.Item, error)
	Snapshot(ctx context.Context) ([]domain.Item, error)
}
