package memory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/inventory-tracker/internal/adapters/memory"
	"github.com/ammerola/inventory-tracker/internal/core/domain"
	"github.com/ammerola/inventory-tracker/test/helpers"
)

func TestItemRepository_InsertAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewItemRepository(helpers.TestLogger())

	first := helpers.CreateTestItem()
	second := helpers.CreateTestItem()

	ok, err := repo.Insert(ctx, first)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Insert(ctx, second)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
}

func TestItemRepository_IDsAreNotReusedAfterDelete(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewItemRepository(helpers.TestLogger())

	item := helpers.CreateTestItem()
	_, err := repo.Insert(ctx, item)
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	next := helpers.CreateTestItem()
	_, err = repo.Insert(ctx, next)
	require.NoError(t, err)
	assert.Greater(t, next.ID, item.ID)
}

func TestItemRepository_InsertCollisionIsIgnored(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewItemRepository(helpers.TestLogger())

	original := helpers.CreateTestItem(func(i *domain.Item) { i.Name = "Original" })
	_, err := repo.Insert(ctx, original)
	require.NoError(t, err)

	clash := helpers.CreateTestItem(func(i *domain.Item) {
		i.ID = original.ID
		i.Name = "Clash"
		i.QuantityInStock = 99
	})
	ok, err := repo.Insert(ctx, clash)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindByID(ctx, original.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Original", stored.Name)
	assert.Equal(t, original.QuantityInStock, stored.QuantityInStock)
}

func TestItemRepository_ExplicitIDAdvancesCounter(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewItemRepository(helpers.TestLogger())

	explicit := helpers.CreateTestItem(func(i *domain.Item) { i.ID = 10 })
	_, err := repo.Insert(ctx, explicit)
	require.NoError(t, err)

	generated := helpers.CreateTestItem()
	_, err = repo.Insert(ctx, generated)
	require.NoError(t, err)
	assert.Equal(t, int64(11), generated.ID)
}

func TestItemRepository_UpdateAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewItemRepository(helpers.TestLogger())

	updated, err := repo.Update(ctx, domain.Item{ID: 42, Name: "Ghost", Price: decimal.Zero})
	require.NoError(t, err)
	assert.False(t, updated)

	found, err := repo.FindByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, found, "update must not fabricate a record")

	deleted, err := repo.Delete(ctx, 42)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestItemRepository_FindAllOrdersByName(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewItemRepository(helpers.TestLogger())

	for _, name := range []string{"Zed", "Alpha", "Mid", "alpha"} {
		_, err := repo.Insert(ctx, helpers.CreateTestItem(func(i *domain.Item) { i.Name = name }))
		require.NoError(t, err)
	}

	items, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Mid", "Zed", "alpha"}, helpers.ItemNames(items))
}

func TestItemRepository_Reset(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewItemRepository(helpers.TestLogger())

	_, err := repo.Insert(ctx, helpers.CreateTestItem())
	require.NoError(t, err)

	repo.Reset()

	items, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}
