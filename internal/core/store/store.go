// internal/core/store/store.go
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	"github.com/ammerola/inventory-tracker/internal/core/domain"
	"github.com/ammerola/inventory-tracker/internal/core/ports"
)

const lockStripes = 64

// ItemStore implements ports.ItemStore on top of any ItemRepository.
// Writes to the same id are serialized; queries are live and re-run after
// every relevant change.
type ItemStore struct {
	repo        ports.ItemRepository
	feed        *feed
	locks       [lockStripes]sync.Mutex
	refreshRate rate.Limit
	logger      *slog.Logger
}

// Statically assert that *ItemStore implements the ItemStore interface.
var _ ports.ItemStore = (*ItemStore)(nil)

// Option configures an ItemStore
type Option func(*ItemStore)

// WithRefreshRate limits how often a single subscription re-queries the
// repository. Zero or negative means unlimited.
func WithRefreshRate(perSecond float64) Option {
	return func(s *ItemStore) {
		if perSecond > 0 {
			s.refreshRate = rate.Limit(perSecond)
		}
	}
}

// New creates a new observable item store
func New(repo ports.ItemRepository, logger *slog.Logger, opts ...Option) *ItemStore {
	s := &ItemStore{
		repo:        repo,
		feed:        newFeed(),
		refreshRate: rate.Inf,
		logger:      logger.With(slog.String("component", "item_store")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ItemStore) lockFor(id int64) *sync.Mutex {
	return &s.locks[uint64(id)%lockStripes]
}

// Insert stores a new item. A generated id is written back into item.
// Inserting an id that already exists is ignored before the item is
// validated, so a colliding insert never fails.
func (s *ItemStore) Insert(ctx context.Context, item *domain.Item) error {
	if item.HasGeneratedID() {
		mu := s.lockFor(item.ID)
		mu.Lock()
		defer mu.Unlock()

		existing, err := s.repo.FindByID(ctx, item.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			s.logger.DebugContext(ctx, "insert ignored, id already exists",
				slog.Int64("item_id", item.ID))
			return nil
		}
	}

	if err := item.Validate(); err != nil {
		return err
	}

	inserted, err := s.repo.Insert(ctx, item)
	if err != nil {
		return err
	}

	if !inserted {
		s.logger.DebugContext(ctx, "insert ignored, id already exists",
			slog.Int64("item_id", item.ID))
		return nil
	}

	s.feed.publish(Change{ID: item.ID})
	return nil
}

// Update replaces the stored record with the same id. Missing records are
// left missing.
func (s *ItemStore) Update(ctx context.Context, item domain.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	mu := s.lockFor(item.ID)
	mu.Lock()
	defer mu.Unlock()

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return err
	}

	if !updated {
		s.logger.DebugContext(ctx, "update matched no rows",
			slog.Int64("item_id", item.ID))
		return nil
	}

	s.feed.publish(Change{ID: item.ID})
	return nil
}

// Delete removes the record with the item's id
func (s *ItemStore) Delete(ctx context.Context, item domain.Item) error {
	mu := s.lockFor(item.ID)
	mu.Lock()
	defer mu.Unlock()

	deleted, err := s.repo.Delete(ctx, item.ID)
	if err != nil {
		return err
	}

	if deleted {
		s.feed.publish(Change{ID: item.ID})
	}
	return nil
}

// GetItem watches a single record
func (s *ItemStore) GetItem(ctx context.Context, id int64) (<-chan domain.Item, error) {
	sub, unsubscribe := s.feed.subscribe(func(c Change) bool { return c.affects(id) })

	current, err := s.findItem(ctx, id)
	if err != nil {
		unsubscribe()
		return nil, fmt.Errorf("failed to load item %d: %w", id, err)
	}

	out := make(chan domain.Item, 1)
	if current != nil {
		out <- *current
	}

	go s.watchItem(ctx, id, current, sub, unsubscribe, out)
	return out, nil
}

func (s *ItemStore) watchItem(ctx context.Context, id int64, last *domain.Item,
	sub *subscription, unsubscribe func(), out chan domain.Item) {
	defer close(out)
	defer unsubscribe()

	limiter := rate.NewLimiter(s.refreshRate, 1)
	seen := last != nil

	for s.next(ctx, sub, limiter) {
		item, err := s.findItem(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to refresh item",
				slog.Int64("item_id", id),
				slog.String("error", err.Error()))
			continue
		}

		if item == nil {
			if seen {
				return
			}
			continue
		}

		if last != nil && last.Equal(*item) {
			continue
		}

		seen = true
		last = item
		offerLatest(out, *item)
	}
}

// findItem reads one record under its write lock so a read-through cache
// below never stores a value older than the last completed write
func (s *ItemStore) findItem(ctx context.Context, id int64) (*domain.Item, error) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()
	return s.repo.FindByID(ctx, id)
}

// GetItems watches the whole table ordered by name
func (s *ItemStore) GetItems(ctx context.Context) (<-chan []domain.Item, error) {
	sub, unsubscribe := s.feed.subscribe(func(Change) bool { return true })

	items, err := s.repo.FindAll(ctx)
	if err != nil {
		unsubscribe()
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	out := make(chan []domain.Item, 1)
	out <- items

	go s.watchItems(ctx, sub, unsubscribe, out)
	return out, nil
}

func (s *ItemStore) watchItems(ctx context.Context, sub *subscription, unsubscribe func(), out chan []domain.Item) {
	defer close(out)
	defer unsubscribe()

	limiter := rate.NewLimiter(s.refreshRate, 1)

	for s.next(ctx, sub, limiter) {
		items, err := s.repo.FindAll(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to refresh item list",
				slog.String("error", err.Error()))
			continue
		}
		offerLatest(out, items)
	}
}

// next blocks until the subscription is dirty and the limiter allows a
// refresh. It returns false once the subscription should end.
func (s *ItemStore) next(ctx context.Context, sub *subscription, limiter *rate.Limiter) bool {
	select {
	case <-ctx.Done():
		return false
	case <-s.feed.closed:
		return false
	case <-sub.dirty:
	}

	return limiter.Wait(ctx) == nil
}

// Publish signals that the record with the given id changed outside this
// store, for example in another process. ID 0 refreshes every subscription.
func (s *ItemStore) Publish(id int64) {
	s.feed.publish(Change{ID: id})
}

// Reset refreshes every live query, used after the storage was recreated
func (s *ItemStore) Reset() {
	s.feed.publish(Change{})
}

// Subscribers returns the number of live queries
func (s *ItemStore) Subscribers() int {
	return s.feed.size()
}

// Close ends every live query
func (s *ItemStore) Close() {
	s.feed.close()
}

// offerLatest replaces any unread value so readers always get the newest one
func offerLatest[T any](out chan T, v T) {
	for {
		select {
		case out <- v:
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}
