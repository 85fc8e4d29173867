// internal/app/inventory.go
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/ammerola/inventory-tracker/internal/adapters/db"
	"github.com/ammerola/inventory-tracker/internal/adapters/memory"
	redis_a "github.com/ammerola/inventory-tracker/internal/adapters/redis_adapter"
	"github.com/ammerola/inventory-tracker/internal/core/ports"
	"github.com/ammerola/inventory-tracker/internal/core/services"
	"github.com/ammerola/inventory-tracker/internal/core/store"
	"github.com/ammerola/inventory-tracker/internal/pkg/config"
)

// ErrClosed is returned once the inventory handle has been closed
var ErrClosed = errors.New("inventory is closed")

// Inventory lazily builds the process-wide item store and inventory
// service. The first caller pays for connecting and migrating; a failed
// build is not kept, so the next caller tries again.
type Inventory struct {
	cfg    *config.Config
	logger *slog.Logger

	mu     sync.Mutex
	parts  *components
	closed bool
}

type components struct {
	database *db.Database
	sqlRepo  *db.ItemRepository
	memRepo  *memory.ItemRepository
	redis    *redis.Client
	cache    *redis_a.Cache
	cached   *redis_a.CachedItemRepository
	store    *store.ItemStore
	service  *services.InventoryService

	stopListener context.CancelFunc
	listenerDone chan struct{}
}

// NewInventory creates an unbuilt inventory handle
func NewInventory(cfg *config.Config, logger *slog.Logger) *Inventory {
	return &Inventory{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "inventory")),
	}
}

// Store returns the observable item store, building it on first use
func (i *Inventory) Store(ctx context.Context) (*store.ItemStore, error) {
	parts, err := i.get(ctx)
	if err != nil {
		return nil, err
	}
	return parts.store, nil
}

// Service returns the inventory service, building it on first use
func (i *Inventory) Service(ctx context.Context) (*services.InventoryService, error) {
	parts, err := i.get(ctx)
	if err != nil {
		return nil, err
	}
	return parts.service, nil
}

// Reset deletes every item, clears the cache and refreshes live queries
func (i *Inventory) Reset(ctx context.Context) error {
	parts, err := i.get(ctx)
	if err != nil {
		return err
	}

	switch {
	case parts.sqlRepo != nil:
		if err := parts.sqlRepo.Truncate(ctx); err != nil {
			return err
		}
	case parts.memRepo != nil:
		parts.memRepo.Reset()
	}

	if parts.cached != nil {
		parts.cached.Invalidate(ctx, 0)
	}
	parts.store.Reset()

	i.logger.InfoContext(ctx, "inventory reset")
	return nil
}

// Health checks the database and cache behind a built handle. A handle
// that has not been built yet, or has been closed, reports no error.
func (i *Inventory) Health(ctx context.Context) error {
	i.mu.Lock()
	parts := i.parts
	i.mu.Unlock()

	if parts == nil {
		return nil
	}

	var errs []error
	if parts.database != nil {
		stats, err := parts.database.Health(ctx)
		if err != nil {
			errs = append(errs, err)
		}
		i.logger.DebugContext(ctx, "database pool",
			slog.Int("total_connections", int(stats.Total)),
			slog.Int("idle_connections", int(stats.Idle)),
			slog.Int("acquired_connections", int(stats.Acquired)),
			slog.Int("max_connections", int(stats.Max)))
	}
	if parts.cache != nil {
		if err := parts.cache.Ping(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Close waits for pending writes and releases every resource in reverse
// order of construction
func (i *Inventory) Close(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil
	}
	i.closed = true

	if i.parts == nil {
		return nil
	}
	err := i.parts.close(ctx)
	i.parts = nil

	i.logger.Info("inventory closed")
	return err
}

func (i *Inventory) get(ctx context.Context) (*components, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil, ErrClosed
	}
	if i.parts != nil {
		return i.parts, nil
	}

	parts, err := i.build(ctx)
	if err != nil {
		i.logger.ErrorContext(ctx, "failed to build inventory",
			slog.String("store_driver", i.cfg.Store.Driver),
			slog.String("error", err.Error()))
		return nil, err
	}

	i.parts = parts
	return parts, nil
}

func (i *Inventory) build(ctx context.Context) (_ *components, err error) {
	parts := &components{}
	defer func() {
		if err != nil {
			_ = parts.close(ctx)
		}
	}()

	var (
		repo  ports.ItemRepository
		reset bool
	)

	switch i.cfg.Store.Driver {
	case "memory":
		parts.memRepo = memory.NewItemRepository(i.logger)
		repo = parts.memRepo
	case "postgres":
		dbConfig := databaseConfig(i.cfg)

		parts.database, err = db.NewDatabase(ctx, dbConfig, i.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		reset, err = db.EnsureSchemaWithRetry(ctx, &db.MigrationConfig{
			DatabaseURL: dbConfig.URL(),
			Destructive: i.cfg.Database.DestructiveMigrate,
		}, i.logger, i.cfg.Database.MigrationMaxRetries)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare schema: %w", err)
		}

		parts.sqlRepo = db.NewItemRepository(parts.database, i.logger)
		repo = parts.sqlRepo
	default:
		return nil, fmt.Errorf("unknown store driver %q", i.cfg.Store.Driver)
	}

	if i.cfg.Redis.Enabled {
		parts.redis = newRedisClient(i.cfg)
		if pingErr := parts.redis.Ping(ctx).Err(); pingErr != nil {
			i.logger.WarnContext(ctx, "redis unavailable, item cache disabled",
				slog.String("addr", i.cfg.RedisAddr()),
				slog.String("error", pingErr.Error()))
			_ = parts.redis.Close()
			parts.redis = nil
		} else {
			parts.cache = redis_a.NewCache(parts.redis, i.cfg.Redis.TTL, i.logger)
			parts.cached = redis_a.NewCachedItemRepository(repo, parts.cache, i.logger)
			if reset {
				parts.cached.Invalidate(ctx, 0)
			}
			repo = parts.cached
		}
	}

	var opts []store.Option
	if i.cfg.Store.RefreshRate > 0 {
		opts = append(opts, store.WithRefreshRate(i.cfg.Store.RefreshRate))
	}
	parts.store = store.New(repo, i.logger, opts...)
	if reset {
		parts.store.Reset()
	}

	if i.cfg.Store.WatchExternal && parts.database != nil {
		parts.startListener(i.logger)
	}

	parts.service = services.NewInventoryService(parts.store, i.logger)

	i.logger.InfoContext(ctx, "inventory ready",
		slog.String("store_driver", i.cfg.Store.Driver),
		slog.Bool("cache", parts.cached != nil),
		slog.Bool("watch_external", parts.stopListener != nil),
		slog.Bool("schema_reset", reset))

	return parts, nil
}

func (c *components) startListener(logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	c.stopListener = cancel
	c.listenerDone = make(chan struct{})

	listener := db.NewChangeListener(c.database, &changeFanout{cache: c.cached, store: c.store}, logger)
	go func() {
		defer close(c.listenerDone)
		_ = listener.Run(ctx)
	}()
}

func (c *components) close(ctx context.Context) error {
	var errs []error

	if c.service != nil {
		if err := c.service.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to drain writes: %w", err))
		}
	}
	if c.stopListener != nil {
		c.stopListener()
		<-c.listenerDone
	}
	if c.store != nil {
		c.store.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if c.database != nil {
		c.database.Close()
	}

	return errors.Join(errs...)
}

// changeFanout drops cached copies of externally changed items before
// live queries re-read them
type changeFanout struct {
	cache *redis_a.CachedItemRepository
	store *store.ItemStore
}

func (f *changeFanout) Publish(id int64) {
	if f.cache != nil {
		f.cache.Invalidate(context.Background(), id)
	}
	f.store.Publish(id)
}

func databaseConfig(cfg *config.Config) *db.Config {
	return &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}
}

func newRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
}
