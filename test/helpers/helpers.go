// test/helpers/helpers.go
package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/inventory-tracker/internal/adapters/db"
	"github.com/ammerola/inventory-tracker/internal/core/domain"
	"github.com/ammerola/inventory-tracker/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// MigrationConfig returns a migration config pointing at the test database
func (t *TestDB) MigrationConfig(destructive bool) *db.MigrationConfig {
	return &db.MigrationConfig{
		DatabaseURL: t.Config.URL(),
		Destructive: destructive,
	}
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	level := slog.LevelError
	if testing.Verbose() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// SetupTestDB creates a PostgreSQL container with the schema applied
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_inventory",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_inventory",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		EnableQueryLogging: testing.Verbose(),
	}

	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		_, err = database.Health(ctx)
		return err
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")
	t.Cleanup(database.Close)

	testDB := &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}

	_, err = db.EnsureSchemaWithRetry(context.Background(), testDB.MigrationConfig(true), TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return testDB
}

// SetupTestRedis creates an in-process Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		client.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// SetupMockDB creates a mock database for unit testing
func SetupMockDB(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock DB")

	t.Cleanup(func() {
		db.Close()
	})

	return mock, db
}

// LoadTestConfig returns a configuration using only in-process backends
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "inventory-test",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:                "localhost",
			Port:                "5432",
			User:                "test",
			Password:            "test",
			Name:                "test_inventory",
			SSLMode:             "disable",
			MaxConnections:      5,
			MinConnections:      1,
			DestructiveMigrate:  true,
			MigrationMaxRetries: 1,
		},
		Store: config.StoreConfig{
			Driver: "memory",
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			TTL:      time.Minute,
			PoolSize: 2,
		},
		Asynq: config.AsynqConfig{
			RedisAddr:   "localhost:6379",
			Concurrency: 1,
			Queues:      map[string]int{"default": 1},
		},
		Export: config.ExportConfig{
			StorageDriver: "local",
			LocalDir:      os.TempDir(),
			Schedule:      "@daily",
			Retention:     time.Hour,
		},
	}
}

var testItemSeq atomic.Int64

// CreateTestItem creates a valid item without an id. Each call gets a
// distinct name.
func CreateTestItem(overrides ...func(*domain.Item)) *domain.Item {
	n := testItemSeq.Add(1)
	item := &domain.Item{
		Name:            fmt.Sprintf("Test Item %03d", n),
		Price:           decimal.RequireFromString("9.99"),
		QuantityInStock: 5,
	}

	for _, override := range overrides {
		override(item)
	}

	return item
}

// ItemNames returns the names of items in order
func ItemNames(items []domain.Item) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}

// Receive waits for the next value on ch
func Receive[T any](t *testing.T, ch <-chan T, timeout time.Duration) T {
	t.Helper()

	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed before a value arrived")
		return v
	case <-time.After(timeout):
		require.FailNow(t, fmt.Sprintf("no value within %v", timeout))
	}

	var zero T
	return zero
}

// ExpectClosed drains ch until it is closed
func ExpectClosed[T any](t *testing.T, ch <-chan T, timeout time.Duration) {
	t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			require.FailNow(t, fmt.Sprintf("channel not closed within %v", timeout))
			return
		}
	}
}

// ExpectNoValue asserts that nothing arrives on ch for d
func ExpectNoValue[T any](t *testing.T, ch <-chan T, d time.Duration) {
	t.Helper()

	select {
	case v, ok := <-ch:
		if ok {
			require.FailNow(t, fmt.Sprintf("unexpected value: %v", v))
		}
		require.FailNow(t, "channel closed unexpectedly")
	case <-time.After(d):
	}
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}

// TruncateItems empties the item table and restarts id generation
func TruncateItems(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), "TRUNCATE TABLE item RESTART IDENTITY")
	require.NoError(t, err, "Failed to truncate items")
}
