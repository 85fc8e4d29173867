// internal/adapters/memory/item_repository.go
package memory

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/ammerola/inventory-tracker/internal/core/domain"
	"github.com/ammerola/inventory-tracker/internal/core/ports"
)

// ItemRepository keeps items in process memory. Ids come from a counter that
// only moves forward, so a deleted id is never handed out again.
type ItemRepository struct {
	mu     sync.RWMutex
	items  map[int64]domain.Item
	lastID int64
	logger *slog.Logger
}

// Statically assert that *ItemRepository implements the ItemRepository interface.
var _ ports.ItemRepository = (*ItemRepository)(nil)

// NewItemRepository creates an empty in-memory repository
func NewItemRepository(logger *slog.Logger) *ItemRepository {
	return &ItemRepository{
		items:  make(map[int64]domain.Item),
		logger: logger.With(slog.String("repository", "memory")),
	}
}

// Insert stores a copy of item
func (r *ItemRepository) Insert(ctx context.Context, item *domain.Item) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if item.HasGeneratedID() {
		if _, exists := r.items[item.ID]; exists {
			return false, nil
		}
		if item.ID > r.lastID {
			r.lastID = item.ID
		}
	} else {
		r.lastID++
		item.ID = r.lastID
	}

	r.items[item.ID] = *item

	r.logger.DebugContext(ctx, "item inserted", slog.Int64("item_id", item.ID))
	return true, nil
}

// Update replaces an existing record
func (r *ItemRepository) Update(ctx context.Context, item domain.Item) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; !exists {
		return false, nil
	}
	r.items[item.ID] = item
	return true, nil
}

// Delete removes a record
func (r *ItemRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

// FindByID retrieves a record by id
func (r *ItemRepository) FindByID(ctx context.Context, id int64) (*domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

// FindAll returns every record ordered by name, then id
func (r *ItemRepository) FindAll(ctx context.Context) ([]domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	items := make([]domain.Item, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item)
	}
	r.mu.RUnlock()

	slices.SortFunc(items, func(a, b domain.Item) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return items, nil
}

// Reset drops every record and restarts the id counter, mirroring a
// destructive recreation of persistent storage.
func (r *ItemRepository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make(map[int64]domain.Item)
	r.lastID = 0
}
