// internal/core/store/feed.go
package store

import "sync"

// Change describes a mutation of the item table. ID 0 means every record
// may have changed.
type Change struct {
	ID int64
}

// affects reports whether a change can alter the record with the given id
func (c Change) affects(id int64) bool {
	return c.ID == 0 || c.ID == id
}

// subscription receives coalesced change signals. The dirty channel holds at
// most one pending signal, so publishers never block on slow readers.
type subscription struct {
	match func(Change) bool
	dirty chan struct{}
}

// feed fans out change notifications to every live subscription
type feed struct {
	mu     sync.Mutex
	subs   map[*subscription]struct{}
	closed chan struct{}
	once   sync.Once
}

func newFeed() *feed {
	return &feed{
		subs:   make(map[*subscription]struct{}),
		closed: make(chan struct{}),
	}
}

// subscribe registers a subscription; the returned func removes it
func (f *feed) subscribe(match func(Change) bool) (*subscription, func()) {
	sub := &subscription{
		match: match,
		dirty: make(chan struct{}, 1),
	}

	f.mu.Lock()
	f.subs[sub] = struct{}{}
	f.mu.Unlock()

	return sub, func() {
		f.mu.Lock()
		delete(f.subs, sub)
		f.mu.Unlock()
	}
}

func (f *feed) publish(c Change) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for sub := range f.subs {
		if !sub.match(c) {
			continue
		}
		select {
		case sub.dirty <- struct{}{}:
		default:
		}
	}
}

func (f *feed) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// close wakes every subscription loop so it can exit
func (f *feed) close() {
	f.once.Do(func() { close(f.closed) })
}
