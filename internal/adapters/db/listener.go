// internal/adapters/db/listener.go
package db

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

// ItemChangesChannel is the NOTIFY channel written by the item trigger
const ItemChangesChannel = "item_changes"

// ChangePublisher receives the id of every item changed in the database.
// An id of 0 means any item may have changed.
type ChangePublisher interface {
	Publish(id int64)
}

// ChangeListener forwards item notifications from Postgres so that writes
// made by other processes reach live queries
type ChangeListener struct {
	db        *Database
	publisher ChangePublisher
	backoff   time.Duration
	logger    *slog.Logger
}

// NewChangeListener creates a listener on the item change channel
func NewChangeListener(db *Database, publisher ChangePublisher, logger *slog.Logger) *ChangeListener {
	return &ChangeListener{
		db:        db,
		publisher: publisher,
		backoff:   time.Second,
		logger:    logger.With(slog.String("component", "change_listener")),
	}
}

// Run listens until ctx ends, reconnecting after connection failures
func (l *ChangeListener) Run(ctx context.Context) error {
	wait := l.backoff

	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}

		l.logger.WarnContext(ctx, "change listener interrupted",
			slog.String("error", err.Error()),
			slog.Duration("retry_in", wait))

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil
		}

		if wait < 30*time.Second {
			wait *= 2
		}
	}
}

func (l *ChangeListener) listen(ctx context.Context) error {
	conn, err := l.db.Listen(ctx, ItemChangesChannel)
	if err != nil {
		return err
	}
	defer conn.Release()

	l.logger.InfoContext(ctx, "listening for item changes", slog.String("channel", ItemChangesChannel))

	// changes made while disconnected were missed
	l.publisher.Publish(0)

	for {
		n, err := l.db.WaitForNotification(ctx, conn)
		if err != nil {
			return err
		}

		id, err := strconv.ParseInt(n.Payload, 10, 64)
		if err != nil {
			l.logger.WarnContext(ctx, "ignoring malformed notification",
				slog.String("payload", n.Payload))
			continue
		}
		l.publisher.Publish(id)
	}
}
