//go:build integration
// +build integration

package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/inventory-tracker/internal/adapters/db"
	"github.com/ammerola/inventory-tracker/internal/core/domain"
	"github.com/ammerola/inventory-tracker/test/helpers"
)

func TestEnsureSchema_CurrentSchemaKeepsData(t *testing.T) {
	testDB := helpers.SetupTestDB(t)
	ctx := context.Background()
	repo := db.NewItemRepository(testDB.Database, helpers.TestLogger())

	_, err := repo.Insert(ctx, helpers.CreateTestItem())
	require.NoError(t, err)

	reset, err := db.EnsureSchema(ctx, testDB.MigrationConfig(true), helpers.TestLogger())
	require.NoError(t, err)
	assert.False(t, reset)

	items, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestEnsureSchema_IncompatibleSchemaIsRecreated(t *testing.T) {
	testDB := helpers.SetupTestDB(t)
	ctx := context.Background()
	repo := db.NewItemRepository(testDB.Database, helpers.TestLogger())

	_, err := repo.Insert(ctx, helpers.CreateTestItem())
	require.NoError(t, err)

	_, err = testDB.Database.Exec(ctx, "UPDATE schema_migrations SET version = 99")
	require.NoError(t, err)

	_, err = db.EnsureSchema(ctx, testDB.MigrationConfig(false), helpers.TestLogger())
	assert.ErrorIs(t, err, domain.ErrSchemaIncompatible)

	reset, err := db.EnsureSchema(ctx, testDB.MigrationConfig(true), helpers.TestLogger())
	require.NoError(t, err)
	assert.True(t, reset)

	items, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	migrator, err := db.NewMigrator(testDB.MigrationConfig(true), helpers.TestLogger())
	require.NoError(t, err)
	defer migrator.Close()

	status, err := migrator.Inspect(ctx)
	require.NoError(t, err)
	assert.Equal(t, db.SchemaCurrent, status.State)
}

func TestEnsureSchema_DirtySchemaIsRecreated(t *testing.T) {
	testDB := helpers.SetupTestDB(t)
	ctx := context.Background()

	_, err := testDB.Database.Exec(ctx, "UPDATE schema_migrations SET dirty = true")
	require.NoError(t, err)

	reset, err := db.EnsureSchema(ctx, testDB.MigrationConfig(true), helpers.TestLogger())
	require.NoError(t, err)
	assert.True(t, reset)
}
