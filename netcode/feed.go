package netcode

import "sync"

// Feed queues snapshots pushed from transport goroutines until the update
// cycle drains them. Order of arrival is preserved.
type Feed struct {
	mu      sync.Mutex
	pending []Snapshot
	limit   int
	dropped int
}

// NewFeed returns a feed holding at most limit undrained snapshots; older
// snapshots are discarded first once the limit is reached. A limit <= 0
// means unbounded.
func NewFeed(limit int) *Feed {
	return &Feed{limit: limit}
}

// Push enqueues snap.
func (f *Feed) Push(snap Snapshot) {
	if f == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.limit > 0 && len(f.pending) >= f.limit {
		f.pending = f.pending[1:]
		f.dropped++
	}
	f.pending = append(f.pending, snap)
}

// Drain returns all queued snapshots, oldest first, and empties the feed.
func (f *Feed) Drain() []Snapshot {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		return nil
	}
	out := f.pending
	f.pending = nil
	return out
}

// Dropped returns how many snapshots were discarded to respect the limit.
func (f *Feed) Dropped() int {
	if f == nil {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}
