package redis_a_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/inventory-tracker/internal/adapters/memory"
	redis_a "github.com/ammerola/inventory-tracker/internal/adapters/redis_adapter"
	"github.com/ammerola/inventory-tracker/internal/core/domain"
	"github.com/ammerola/inventory-tracker/test/helpers"
	"github.com/ammerola/inventory-tracker/test/mocks"
)

func newCachedRepo(t *testing.T) (*redis_a.CachedItemRepository, *memory.ItemRepository, *helpers.TestRedis) {
	t.Helper()

	r := helpers.SetupTestRedis(t)
	backing := memory.NewItemRepository(helpers.TestLogger())
	cache := redis_a.NewCache(r.Client, time.Minute, helpers.TestLogger())
	return redis_a.NewCachedItemRepository(backing, cache, helpers.TestLogger()), backing, r
}

func TestCachedItemRepository_FindByIDPopulatesCache(t *testing.T) {
	ctx := context.Background()
	repo, _, r := newCachedRepo(t)

	item := helpers.CreateTestItem()
	_, err := repo.Insert(ctx, item)
	require.NoError(t, err)
	assert.False(t, r.Server.Exists(redis_a.ItemKey(item.ID)))

	found, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, r.Server.Exists(redis_a.ItemKey(item.ID)))

	cached, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, found.Equal(*cached))
}

func TestCachedItemRepository_MutationsInvalidate(t *testing.T) {
	ctx := context.Background()
	repo, _, r := newCachedRepo(t)

	item := helpers.CreateTestItem()
	_, err := repo.Insert(ctx, item)
	require.NoError(t, err)
	_, err = repo.FindByID(ctx, item.ID)
	require.NoError(t, err)

	renamed := *item
	renamed.Name = "Renamed"
	updated, err := repo.Update(ctx, renamed)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.False(t, r.Server.Exists(redis_a.ItemKey(item.ID)))

	found, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Name)

	deleted, err := repo.Delete(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	missing, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.False(t, r.Server.Exists(redis_a.ItemKey(item.ID)))
}

func TestCachedItemRepository_InvalidateAll(t *testing.T) {
	ctx := context.Background()
	repo, _, r := newCachedRepo(t)

	for n := 0; n < 3; n++ {
		item := helpers.CreateTestItem()
		_, err := repo.Insert(ctx, item)
		require.NoError(t, err)
		_, err = repo.FindByID(ctx, item.ID)
		require.NoError(t, err)
	}
	assert.Len(t, r.Server.Keys(), 3)

	repo.Invalidate(ctx, 0)
	assert.Empty(t, r.Server.Keys())
}

func TestCachedItemRepository_CacheOutageFallsThrough(t *testing.T) {
	ctx := context.Background()
	repo, backing, r := newCachedRepo(t)

	item := helpers.CreateTestItem()
	_, err := backing.Insert(ctx, item)
	require.NoError(t, err)

	r.Server.SetError("LOADING")

	found, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, item.Name, found.Name)

	_, err = repo.Delete(ctx, item.ID)
	assert.NoError(t, err)
}

func TestCachedItemRepository_RepositoryErrorsAreReturned(t *testing.T) {
	ctrl := gomock.NewController(t)
	backing := mocks.NewMockItemRepository(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)
	repo := redis_a.NewCachedItemRepository(backing, cache, helpers.TestLogger())
	ctx := context.Background()

	storageErr := errors.Join(domain.ErrStorage, errors.New("connection refused"))

	cache.EXPECT().Get(gomock.Any(), redis_a.ItemKey(3), gomock.Any()).Return(redis_a.ErrCacheMiss)
	backing.EXPECT().FindByID(gomock.Any(), int64(3)).Return(nil, storageErr)

	_, err := repo.FindByID(ctx, 3)
	assert.ErrorIs(t, err, domain.ErrStorage)

	backing.EXPECT().Update(gomock.Any(), gomock.Any()).Return(false, storageErr)
	_, err = repo.Update(ctx, domain.Item{ID: 3, Name: "x"})
	assert.ErrorIs(t, err, domain.ErrStorage)

	backing.EXPECT().FindAll(gomock.Any()).Return([]domain.Item{{ID: 1, Name: "a"}}, nil)
	items, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCachedItemRepository_ReadOverlappingInvalidationIsNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	backing := mocks.NewMockItemRepository(ctrl)
	r := helpers.SetupTestRedis(t)
	cache := redis_a.NewCache(r.Client, time.Minute, helpers.TestLogger())
	repo := redis_a.NewCachedItemRepository(backing, cache, helpers.TestLogger())
	ctx := context.Background()

	stale := helpers.CreateTestItem(func(i *domain.Item) { i.ID = 9 })

	// another process commits while the row is being read
	backing.EXPECT().FindByID(gomock.Any(), int64(9)).
		DoAndReturn(func(ctx context.Context, id int64) (*domain.Item, error) {
			repo.Invalidate(ctx, id)
			return stale, nil
		})

	found, err := repo.FindByID(ctx, 9)
	require.NoError(t, err)
	assert.True(t, stale.Equal(*found))
	assert.False(t, r.Server.Exists(redis_a.ItemKey(9)))

	fresh := *stale
	fresh.Name = "Fresh"
	backing.EXPECT().FindByID(gomock.Any(), int64(9)).Return(&fresh, nil)

	found, err = repo.FindByID(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "Fresh", found.Name)
	assert.True(t, r.Server.Exists(redis_a.ItemKey(9)))
}
