// internal/adapters/db/schema.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/ammerola/inventory-tracker/internal/core/domain"
)

// SchemaState classifies the schema found in the database
type SchemaState int

const (
	SchemaEmpty SchemaState = iota
	SchemaCurrent
	SchemaBehind
	SchemaIncompatible
)

func (s SchemaState) String() string {
	switch s {
	case SchemaEmpty:
		return "empty"
	case SchemaCurrent:
		return "current"
	case SchemaBehind:
		return "behind"
	case SchemaIncompatible:
		return "incompatible"
	default:
		return fmt.Sprintf("SchemaState(%d)", int(s))
	}
}

// SchemaStatus is the result of a schema inspection
type SchemaStatus struct {
	State   SchemaState
	Version uint
	Latest  uint
	Dirty   bool
	Reason  string
}

// SchemaInspector reads migration history without modifying anything
type SchemaInspector struct {
	db     *sql.DB
	schema string
	table  string
	latest uint
}

// NewSchemaInspector creates an inspector comparing the database against
// the latest known migration version
func NewSchemaInspector(db *sql.DB, schema, table string, latest uint) *SchemaInspector {
	return &SchemaInspector{db: db, schema: schema, table: table, latest: latest}
}

// Inspect classifies the current schema
func (i *SchemaInspector) Inspect(ctx context.Context) (SchemaStatus, error) {
	status := SchemaStatus{Latest: i.latest}

	hasHistory, err := i.tableExists(ctx, i.table)
	if err != nil {
		return status, err
	}

	if hasHistory {
		query := fmt.Sprintf("SELECT version, dirty FROM %s LIMIT 1",
			pgx.Identifier{i.schema, i.table}.Sanitize())

		var version int64
		err := i.db.QueryRowContext(ctx, query).Scan(&version, &status.Dirty)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// history table without a version, same as a fresh database
		case err != nil:
			return status, fmt.Errorf("failed to read schema version: %w", err)
		default:
			status.Version = uint(version)
			return i.classify(status), nil
		}
	}

	hasItems, err := i.tableExists(ctx, "item")
	if err != nil {
		return status, err
	}
	if hasItems {
		status.State = SchemaIncompatible
		status.Reason = "item table exists without migration history"
		return status, nil
	}

	status.State = SchemaEmpty
	return status, nil
}

func (i *SchemaInspector) classify(status SchemaStatus) SchemaStatus {
	switch {
	case status.Dirty:
		status.State = SchemaIncompatible
		status.Reason = fmt.Sprintf("migration %d did not complete", status.Version)
	case status.Version > i.latest:
		status.State = SchemaIncompatible
		status.Reason = fmt.Sprintf("schema version %d is newer than %d", status.Version, i.latest)
	case status.Version == i.latest:
		status.State = SchemaCurrent
	default:
		status.State = SchemaBehind
	}
	return status
}

func (i *SchemaInspector) tableExists(ctx context.Context, table string) (bool, error) {
	var exists bool
	err := i.db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL",
		pgx.Identifier{i.schema, table}.Sanitize()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return exists, nil
}

// EnsureSchema migrates the database to the latest embedded schema. A schema
// that cannot be migrated in place is dropped and rebuilt when
// config.Destructive is set, and reported as domain.ErrSchemaIncompatible
// otherwise. The returned flag is true when stored data was destroyed.
func EnsureSchema(ctx context.Context, config *MigrationConfig, logger *slog.Logger) (bool, error) {
	migrator, err := NewMigrator(config, logger)
	if err != nil {
		return false, err
	}

	status, err := migrator.Inspect(ctx)
	if err != nil {
		migrator.Close()
		return false, err
	}

	logger.InfoContext(ctx, "schema inspected",
		slog.String("state", status.State.String()),
		slog.Uint64("version", uint64(status.Version)),
		slog.Uint64("latest", uint64(status.Latest)))

	reset := false
	if status.State == SchemaIncompatible {
		if !config.Destructive {
			migrator.Close()
			return false, fmt.Errorf("%w: %s", domain.ErrSchemaIncompatible, status.Reason)
		}

		logger.WarnContext(ctx, "schema incompatible, recreating database",
			slog.String("reason", status.Reason))

		if err := migrator.Drop(ctx); err != nil {
			migrator.Close()
			return false, err
		}
		migrator.Close()

		// the drop removed the history table the driver set up on open
		if migrator, err = NewMigrator(config, logger); err != nil {
			return false, err
		}
		reset = true
	}

	err = migrator.Up(ctx)
	if closeErr := migrator.Close(); closeErr != nil {
		logger.WarnContext(ctx, "failed to close migrator", slog.String("error", closeErr.Error()))
	}
	if err != nil {
		return reset, err
	}

	return reset, nil
}
