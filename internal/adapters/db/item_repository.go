// internal/adapters/db/item_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/inventory-tracker/internal/core/domain"
	"github.com/ammerola/inventory-tracker/internal/core/ports"
)

const itemTable = "item"

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// ItemRepository implements ports.ItemRepository on Postgres
type ItemRepository struct {
	db     *Database
	logger *slog.Logger
}

// Statically assert that *ItemRepository implements the ItemRepository interface.
var _ ports.ItemRepository = (*ItemRepository)(nil)

// NewItemRepository creates a new item repository
func NewItemRepository(db *Database, logger *slog.Logger) *ItemRepository {
	return &ItemRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "item")),
	}
}

// Insert stores a new item. Items without an id get one from the identity
// column; an explicit id that already exists is left untouched.
func (r *ItemRepository) Insert(ctx context.Context, item *domain.Item) (bool, error) {
	if !item.HasGeneratedID() {
		query, args, err := psql.Insert(itemTable).
			Columns("name", "price", "quantity").
			Values(item.Name, item.Price, item.QuantityInStock).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return false, fmt.Errorf("failed to build insert: %w", err)
		}

		if err := r.db.QueryRow(ctx, query, args...).Scan(&item.ID); err != nil {
			return false, storageError("insert item", err)
		}

		r.logger.DebugContext(ctx, "item inserted", slog.Int64("item_id", item.ID))
		return true, nil
	}

	inserted := false
	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		query, args, err := psql.Insert(itemTable).
			Columns("id", "name", "price", "quantity").
			Values(item.ID, item.Name, item.Price, item.QuantityInStock).
			Suffix("ON CONFLICT (id) DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert: %w", err)
		}

		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		inserted = true

		// keep generated ids ahead of explicitly chosen ones
		_, err = tx.Exec(ctx, `
			SELECT setval(
				pg_get_serial_sequence('item', 'id'),
				GREATEST($1::bigint, COALESCE(pg_sequence_last_value(pg_get_serial_sequence('item', 'id')::regclass), 0))
			)`, item.ID)
		return err
	})
	if err != nil {
		return false, storageError("insert item", err)
	}

	if !inserted {
		r.logger.DebugContext(ctx, "insert ignored, id exists", slog.Int64("item_id", item.ID))
	}
	return inserted, nil
}

// Update replaces name, price and quantity of the row with the item's id
func (r *ItemRepository) Update(ctx context.Context, item domain.Item) (bool, error) {
	query, args, err := psql.Update(itemTable).
		Set("name", item.Name).
		Set("price", item.Price).
		Set("quantity", item.QuantityInStock).
		Where(squirrel.Eq{"id": item.ID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build update: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, storageError("update item", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Delete removes the row with the given id
func (r *ItemRepository) Delete(ctx context.Context, id int64) (bool, error) {
	query, args, err := psql.Delete(itemTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build delete: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, storageError("delete item", err)
	}

	return tag.RowsAffected() > 0, nil
}

// FindByID returns the item with the given id, or nil when absent
func (r *ItemRepository) FindByID(ctx context.Context, id int64) (*domain.Item, error) {
	query, args, err := selectItems().
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	item, err := scanItem(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageError("find item", err)
	}

	return &item, nil
}

// FindAll returns every item ordered by name, byte-wise, then id
func (r *ItemRepository) FindAll(ctx context.Context) ([]domain.Item, error) {
	query, args, err := selectItems().
		OrderBy(`name COLLATE "C" ASC`, "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("list items", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Item, error) {
		return scanItem(row)
	})
	if err != nil {
		return nil, storageError("list items", err)
	}

	if items == nil {
		items = []domain.Item{}
	}
	return items, nil
}

// Truncate removes every item and restarts id generation
func (r *ItemRepository) Truncate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, "TRUNCATE TABLE item RESTART IDENTITY"); err != nil {
		return storageError("truncate items", err)
	}
	return nil
}

func selectItems() squirrel.SelectBuilder {
	return psql.Select("id", "name", "price", "quantity").From(itemTable)
}

func scanItem(row pgx.Row) (domain.Item, error) {
	var item domain.Item
	err := row.Scan(&item.ID, &item.Name, &item.Price, &item.QuantityInStock)
	return item, err
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", domain.ErrStorage, op, err)
}
