// internal/core/services/write_queue.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrServiceClosed is returned for writes submitted after Close
var ErrServiceClosed = errors.New("inventory service closed")

// newItemLane is the lane key shared by inserts of records without an id
const newItemLane int64 = 0

type job struct {
	ctx   context.Context
	run   func(ctx context.Context) error
	write *Write
}

// writeQueue runs store mutations off the caller's goroutine. Jobs with the
// same key run one at a time in submission order; different keys run
// independently. A lane goroutine exits as soon as its queue is empty.
type writeQueue struct {
	mu     sync.Mutex
	lanes  map[int64][]job
	closed bool
	wg     sync.WaitGroup
	logger *slog.Logger
}

func newWriteQueue(logger *slog.Logger) *writeQueue {
	return &writeQueue{
		lanes:  make(map[int64][]job),
		logger: logger,
	}
}

func (q *writeQueue) submit(key int64, j job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrServiceClosed
	}

	pending, running := q.lanes[key]
	q.lanes[key] = append(pending, j)

	if !running {
		q.wg.Add(1)
		go q.drain(key)
	}
	return nil
}

func (q *writeQueue) drain(key int64) {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		pending := q.lanes[key]
		if len(pending) == 0 {
			delete(q.lanes, key)
			q.mu.Unlock()
			return
		}
		j := pending[0]
		q.lanes[key] = pending[1:]
		q.mu.Unlock()

		q.run(j)
	}
}

func (q *writeQueue) run(j job) {
	if err := j.ctx.Err(); err != nil {
		q.logger.DebugContext(j.ctx, "write abandoned before start",
			slog.String("error", err.Error()))
		j.write.finish(fmt.Errorf("write abandoned: %w", err))
		return
	}
	j.write.finish(j.run(j.ctx))
}

// close stops accepting jobs and waits for queued ones to finish
func (q *writeQueue) close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pending writes not drained: %w", ctx.Err())
	}
}
