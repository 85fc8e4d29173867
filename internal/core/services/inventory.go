// internal/core/services/inventory.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ammerola/inventory-tracker/internal/core/domain"
	"github.com/ammerola/inventory-tracker/internal/core/ports"
	"github.com/ammerola/inventory-tracker/internal/pkg/logger"
)

// InventoryService handles inventory business logic
type InventoryService struct {
	store  ports.ItemStore
	writes *writeQueue
	logger *slog.Logger
}

// Statically assert that *InventoryService implements the InventoryService interface.
var _ ports.InventoryService = (*InventoryService)(nil)

// NewInventoryService creates a new inventory service
func NewInventoryService(store ports.ItemStore, logger *slog.Logger) *InventoryService {
	l := logger.With(slog.String("service", "inventory"))
	return &InventoryService{
		store:  store,
		writes: newWriteQueue(l),
		logger: l,
	}
}

// IsEntryValid returns true when name, price and quantity are all non-blank
func (s *InventoryService) IsEntryValid(name, price, quantity string) bool {
	return domain.IsEntryValid(name, price, quantity)
}

// IsStockAvailable returns true when the item has at least one unit in stock
func (s *InventoryService) IsStockAvailable(item domain.Item) bool {
	return item.IsStockAvailable()
}

// AddNewItem parses raw entry text and inserts a new item with a
// store-assigned id. An entry that is not valid is skipped without error;
// malformed numbers are returned as domain.ErrParse.
func (s *InventoryService) AddNewItem(ctx context.Context, name, price, quantity string) (ports.PendingWrite, error) {
	if !s.IsEntryValid(name, price, quantity) {
		s.logger.DebugContext(ctx, "add skipped, entry not valid")
		return skippedWrite(domain.Item{}), nil
	}

	item, err := s.itemFromEntry(name, price, quantity)
	if err != nil {
		return nil, err
	}

	return s.submit(ctx, newItemLane, "add", item, func(ctx context.Context, w *Write) error {
		return s.store.Insert(ctx, &w.item)
	}), nil
}

// UpdateItem parses raw entry text and replaces every field of the item
// with the given id
func (s *InventoryService) UpdateItem(ctx context.Context, id int64, name, price, quantity string) (ports.PendingWrite, error) {
	if !s.IsEntryValid(name, price, quantity) {
		s.logger.DebugContext(ctx, "update skipped, entry not valid",
			slog.Int64("item_id", id))
		return skippedWrite(domain.Item{ID: id}), nil
	}

	item, err := s.itemFromEntry(name, price, quantity)
	if err != nil {
		return nil, err
	}
	item.ID = id

	return s.submit(ctx, id, "update", item, func(ctx context.Context, w *Write) error {
		return s.store.Update(ctx, w.item)
	}), nil
}

// SellItem removes one unit from stock. Items without stock are left
// untouched and the returned write is marked as skipped.
func (s *InventoryService) SellItem(ctx context.Context, item domain.Item) ports.PendingWrite {
	if !s.IsStockAvailable(item) {
		s.logger.DebugContext(ctx, "sell skipped, out of stock",
			slog.Int64("item_id", item.ID))
		return skippedWrite(item)
	}

	return s.submit(ctx, item.ID, "sell", item.Sold(), func(ctx context.Context, w *Write) error {
		return s.store.Update(ctx, w.item)
	})
}

// DeleteItem removes the item from the store
func (s *InventoryService) DeleteItem(ctx context.Context, item domain.Item) ports.PendingWrite {
	return s.submit(ctx, item.ID, "delete", item, func(ctx context.Context, w *Write) error {
		return s.store.Delete(ctx, w.item)
	})
}

// RetrieveItem watches one item for changes
func (s *InventoryService) RetrieveItem(ctx context.Context, id int64) (<-chan domain.Item, error) {
	return s.store.GetItem(ctx, id)
}

// AllItems watches the ordered item list
func (s *InventoryService) AllItems(ctx context.Context) (<-chan []domain.Item, error) {
	return s.store.GetItems(ctx)
}

// Snapshot returns the current ordered item list once
func (s *InventoryService) Snapshot(ctx context.Context) ([]domain.Item, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	items, err := s.store.GetItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	select {
	case list, ok := <-items:
		if !ok {
			return nil, fmt.Errorf("item list closed before first value")
		}
		return list, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting writes and waits for queued writes to finish
func (s *InventoryService) Close(ctx context.Context) error {
	return s.writes.close(ctx)
}

func (s *InventoryService) itemFromEntry(name, price, quantity string) (domain.Item, error) {
	item, err := domain.ParseEntry(name, price, quantity)
	if err != nil {
		return domain.Item{}, err
	}
	if err := item.Validate(); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

// submit queues a store mutation on the lane for key
func (s *InventoryService) submit(ctx context.Context, key int64, op string, item domain.Item,
	apply func(ctx context.Context, w *Write) error) *Write {
	ctx, _ = logger.WithOperation(ctx)
	w := newWrite(item)

	err := s.writes.submit(key, job{
		ctx:   ctx,
		write: w,
		run: func(ctx context.Context) error {
			if err := apply(ctx, w); err != nil {
				s.logger.ErrorContext(ctx, "inventory write failed",
					slog.String("op", op),
					slog.Int64("item_id", w.item.ID),
					slog.String("error", err.Error()))
				return fmt.Errorf("failed to %s item: %w", op, err)
			}

			s.logger.InfoContext(ctx, "inventory write applied",
				slog.String("op", op),
				slog.Int64("item_id", w.item.ID),
				slog.String("item_name", w.item.Name),
				slog.Int("quantity_in_stock", w.item.QuantityInStock))
			return nil
		},
	})
	if err != nil {
		w.finish(err)
	}

	return w
}
