// internal/adapters/redis_adapter/item_repository.go
package redis_a

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/ammerola/inventory-tracker/internal/core/domain"
	"github.com/ammerola/inventory-tracker/internal/core/ports"
)

// CachedItemRepository is a read-through cache in front of another
// ItemRepository. Single item lookups are cached; lists always hit the
// underlying repository. Cache failures never fail the call.
type CachedItemRepository struct {
	next   ports.ItemRepository
	cache  ports.CacheRepository
	logger *slog.Logger

	// bumped before every invalidation; a read that overlaps one does not
	// leave its value in the cache
	invalidations atomic.Uint64
}

// Statically assert that *CachedItemRepository implements the ItemRepository interface.
var _ ports.ItemRepository = (*CachedItemRepository)(nil)

// NewCachedItemRepository wraps next with cache
func NewCachedItemRepository(next ports.ItemRepository, cache ports.CacheRepository, logger *slog.Logger) *CachedItemRepository {
	return &CachedItemRepository{
		next:   next,
		cache:  cache,
		logger: logger.With(slog.String("repository", "item_cache")),
	}
}

// ItemKey returns the cache key of one item
func ItemKey(id int64) string {
	return BuildKey(PrefixItem, strconv.FormatInt(id, 10))
}

func (r *CachedItemRepository) Insert(ctx context.Context, item *domain.Item) (bool, error) {
	inserted, err := r.next.Insert(ctx, item)
	if err == nil && inserted {
		r.Invalidate(ctx, item.ID)
	}
	return inserted, err
}

func (r *CachedItemRepository) Update(ctx context.Context, item domain.Item) (bool, error) {
	updated, err := r.next.Update(ctx, item)
	if err == nil && updated {
		r.Invalidate(ctx, item.ID)
	}
	return updated, err
}

func (r *CachedItemRepository) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := r.next.Delete(ctx, id)
	if err == nil && deleted {
		r.Invalidate(ctx, id)
	}
	return deleted, err
}

// FindByID serves from cache when possible. Missing records are not cached,
// nor are values read while an invalidation was in flight.
func (r *CachedItemRepository) FindByID(ctx context.Context, id int64) (*domain.Item, error) {
	key := ItemKey(id)
	generation := r.invalidations.Load()

	var cached domain.Item
	err := r.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		r.logger.WarnContext(ctx, "cache read failed, using repository",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}

	item, err := r.next.FindByID(ctx, id)
	if err != nil || item == nil {
		return item, err
	}

	if r.invalidations.Load() != generation {
		r.logger.DebugContext(ctx, "cache fill skipped, invalidated during read",
			slog.String("key", key))
		return item, nil
	}

	if err := r.cache.Set(ctx, key, item); err != nil {
		r.logger.WarnContext(ctx, "cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return item, nil
	}

	if r.invalidations.Load() != generation {
		if err := r.cache.Delete(ctx, key); err != nil {
			r.logger.WarnContext(ctx, "cache invalidation failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}
	return item, nil
}

func (r *CachedItemRepository) FindAll(ctx context.Context) ([]domain.Item, error) {
	return r.next.FindAll(ctx)
}

// Invalidate drops the cached copy of one item. Id 0 drops every item.
func (r *CachedItemRepository) Invalidate(ctx context.Context, id int64) {
	r.invalidations.Add(1)

	var err error
	if id == 0 {
		err = r.cache.DeletePattern(ctx, BuildKey(PrefixItem, "*"))
	} else {
		err = r.cache.Delete(ctx, ItemKey(id))
	}

	if err != nil {
		r.logger.WarnContext(ctx, "cache invalidation failed",
			slog.Int64("item_id", id),
			slog.String("error", err.Error()))
	}
}
