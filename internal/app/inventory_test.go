// internal/app/inventory_test.go
package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/ammerola/inventory-tracker/internal/adapters/redis_adapter"
	"github.com/ammerola/inventory-tracker/internal/adapters/storage"
	"github.com/ammerola/inventory-tracker/internal/app"
	"github.com/ammerola/inventory-tracker/internal/core/services"
	"github.com/ammerola/inventory-tracker/test/helpers"
)

const waitTimeout = 2 * time.Second

func newInventory(t *testing.T) *app.Inventory {
	t.Helper()

	inv := app.NewInventory(helpers.LoadTestConfig(), helpers.TestLogger())
	t.Cleanup(func() { _ = inv.Close(context.Background()) })
	return inv
}

func TestInventory_ConcurrentFirstAccessSharesInstance(t *testing.T) {
	ctx := context.Background()
	inv := newInventory(t)

	const callers = 16
	got := make([]*services.InventoryService, callers)

	var wg sync.WaitGroup
	for n := 0; n < callers; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			svc, err := inv.Service(ctx)
			assert.NoError(t, err)
			got[n] = svc
		}(n)
	}
	wg.Wait()

	for _, svc := range got {
		assert.Same(t, got[0], svc)
	}

	s1, err := inv.Store(ctx)
	require.NoError(t, err)
	s2, err := inv.Store(ctx)
	require.NoError(t, err)
	assert.Same(t, s1, s2)
}

func TestInventory_ServiceWritesReachStore(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	inv := newInventory(t)

	svc, err := inv.Service(ctx)
	require.NoError(t, err)

	w, err := svc.AddNewItem(ctx, "Lamp", "12.50", "3")
	require.NoError(t, err)
	require.NoError(t, w.Wait(ctx))

	s, err := inv.Store(ctx)
	require.NoError(t, err)
	items, err := s.GetItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lamp"}, helpers.ItemNames(helpers.Receive(t, items, waitTimeout)))
}

func TestInventory_ResetEmptiesStoreAndRefreshesQueries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	inv := newInventory(t)

	svc, err := inv.Service(ctx)
	require.NoError(t, err)
	for _, name := range []string{"A", "B"} {
		w, err := svc.AddNewItem(ctx, name, "1", "1")
		require.NoError(t, err)
		require.NoError(t, w.Wait(ctx))
	}

	items, err := svc.AllItems(ctx)
	require.NoError(t, err)
	assert.Len(t, helpers.Receive(t, items, waitTimeout), 2)

	require.NoError(t, inv.Reset(ctx))
	assert.Empty(t, helpers.Receive(t, items, waitTimeout))
}

func TestInventory_FailedBuildIsRetried(t *testing.T) {
	ctx := context.Background()
	cfg := helpers.LoadTestConfig()
	cfg.Store.Driver = "sqlite"

	inv := app.NewInventory(cfg, helpers.TestLogger())
	defer inv.Close(ctx)

	_, err := inv.Service(ctx)
	require.Error(t, err)

	cfg.Store.Driver = "memory"
	svc, err := inv.Service(ctx)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestInventory_CloseDrainsAndRejectsFurtherUse(t *testing.T) {
	ctx := context.Background()
	inv := app.NewInventory(helpers.LoadTestConfig(), helpers.TestLogger())

	svc, err := inv.Service(ctx)
	require.NoError(t, err)

	w, err := svc.AddNewItem(ctx, "Last", "1", "1")
	require.NoError(t, err)

	require.NoError(t, inv.Close(ctx))
	select {
	case <-w.Done():
	default:
		t.Fatal("pending write should finish before Close returns")
	}
	assert.NoError(t, w.Wait(ctx))

	_, err = inv.Store(ctx)
	assert.ErrorIs(t, err, app.ErrClosed)
	assert.NoError(t, inv.Close(ctx))
}

func TestInventory_CloseBeforeUse(t *testing.T) {
	inv := app.NewInventory(helpers.LoadTestConfig(), helpers.TestLogger())
	assert.NoError(t, inv.Close(context.Background()))
}

func TestInventory_ReadThroughCache(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := helpers.SetupTestRedis(t)
	cfg := helpers.LoadTestConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Host = r.Server.Host()
	cfg.Redis.Port = r.Server.Port()

	inv := app.NewInventory(cfg, helpers.TestLogger())
	defer inv.Close(ctx)

	svc, err := inv.Service(ctx)
	require.NoError(t, err)

	w, err := svc.AddNewItem(ctx, "Cached", "2", "2")
	require.NoError(t, err)
	require.NoError(t, w.Wait(ctx))

	updates, err := svc.RetrieveItem(ctx, w.Item().ID)
	require.NoError(t, err)
	helpers.Receive(t, updates, waitTimeout)
	assert.True(t, r.Server.Exists(redis_a.ItemKey(w.Item().ID)))

	require.NoError(t, inv.Reset(ctx))
	assert.False(t, r.Server.Exists(redis_a.ItemKey(w.Item().ID)))
}

func TestInventory_HealthReportsCacheOutage(t *testing.T) {
	ctx := context.Background()

	r := helpers.SetupTestRedis(t)
	cfg := helpers.LoadTestConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Host = r.Server.Host()
	cfg.Redis.Port = r.Server.Port()
	cfg.Redis.MaxRetries = -1

	inv := app.NewInventory(cfg, helpers.TestLogger())
	defer inv.Close(ctx)

	assert.NoError(t, inv.Health(ctx), "unbuilt handle has nothing to check")

	_, err := inv.Service(ctx)
	require.NoError(t, err)
	assert.NoError(t, inv.Health(ctx))

	r.Server.SetError("server down")
	assert.Error(t, inv.Health(ctx))

	r.Server.SetError("")
	assert.NoError(t, inv.Health(ctx))
}

func TestInventory_UnreachableRedisDisablesCache(t *testing.T) {
	cfg := helpers.LoadTestConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Host = "127.0.0.1"
	cfg.Redis.Port = "1"
	cfg.Redis.DialTimeout = 100 * time.Millisecond
	cfg.Redis.MaxRetries = -1

	inv := app.NewInventory(cfg, helpers.TestLogger())
	defer inv.Close(context.Background())

	_, err := inv.Service(context.Background())
	assert.NoError(t, err)
}

func TestNewFileStorage(t *testing.T) {
	cfg := helpers.LoadTestConfig()
	cfg.Export.LocalDir = t.TempDir()

	fs, err := app.NewFileStorage(context.Background(), cfg, helpers.TestLogger())
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStorage{}, fs)

	cfg.Export.StorageDriver = "ftp"
	_, err = app.NewFileStorage(context.Background(), cfg, helpers.TestLogger())
	assert.Error(t, err)
}
