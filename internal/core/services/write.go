// internal/core/services/write.go
package services

import (
	"context"

	"github.com/ammerola/inventory-tracker/internal/core/domain"
	"github.com/ammerola/inventory-tracker/internal/core/ports"
)

// Write is the future for one asynchronous store mutation
type Write struct {
	done    chan struct{}
	err     error
	skipped bool
	item    domain.Item
}

// Statically assert that *Write implements the PendingWrite interface.
var _ ports.PendingWrite = (*Write)(nil)

func newWrite(item domain.Item) *Write {
	return &Write{
		done: make(chan struct{}),
		item: item,
	}
}

// skippedWrite returns a finished write that never reached the store
func skippedWrite(item domain.Item) *Write {
	w := newWrite(item)
	w.skipped = true
	close(w.done)
	return w
}

func (w *Write) finish(err error) {
	w.err = err
	close(w.done)
}

// Done is closed once the write has been applied, failed, or was abandoned
func (w *Write) Done() <-chan struct{} {
	return w.done
}

// Wait blocks until the write finishes or ctx ends
func (w *Write) Wait(ctx context.Context) error {
	select {
	case <-w.done:
		return w.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the outcome of a finished write, nil while pending
func (w *Write) Err() error {
	select {
	case <-w.done:
		return w.err
	default:
		return nil
	}
}

// Skipped reports whether the write was refused before reaching the store
func (w *Write) Skipped() bool {
	return w.skipped
}

// Item blocks until the write finishes and returns the record as written,
// including a generated id for inserts.
func (w *Write) Item() domain.Item {
	<-w.done
	return w.item
}
