// Package collection holds the append-only sequence of loaded feed items.
package collection

import (
	"sync"

	"github.com/Sternrassler/feedscroll/pkg/feed"
)

// Store is an append-only ordered sequence of items.
// Insertion order equals page order; the store never shrinks or reorders.
type Store struct {
	mu    sync.RWMutex
	items []feed.Item
}

// NewStore creates an empty store with room for capacity items.
func NewStore(capacity int) *Store {
	if capacity < 0 {
		capacity = 0
	}
	return &Store{items: make([]feed.Item, 0, capacity)}
}

// Append adds items at the tail, preserving their order.
func (s *Store) Append(items ...feed.Item) {
	if len(items) == 0 {
		return
	}
	s.mu.Lock()
	s.items = append(s.items, items...)
	s.mu.Unlock()
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Snapshot returns a read-only view of the current contents.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]feed.Item, len(s.items))
	copy(items, s.items)
	return Snapshot{items: items}
}

// Snapshot is an immutable copy of the store at one point in time.
type Snapshot struct {
	items []feed.Item
}

// Len returns the number of items in the snapshot.
func (s Snapshot) Len() int {
	return len(s.items)
}

// At returns the item at index i.
func (s Snapshot) At(i int) feed.Item {
	return s.items[i]
}

// Window returns a copy of items in [from, to), clamped to the snapshot bounds.
func (s Snapshot) Window(from, to int) []feed.Item {
	if from < 0 {
		from = 0
	}
	if to > len(s.items) {
		to = len(s.items)
	}
	if from >= to {
		return nil
	}
	out := make([]feed.Item, to-from)
	copy(out, s.items[from:to])
	return out
}

// Items returns a copy of every item in the snapshot.
func (s Snapshot) Items() []feed.Item {
	return s.Window(0, len(s.items))
}

// TailID returns the ID of the last item, or "" for an empty snapshot.
func (s Snapshot) TailID() string {
	if len(s.items) == 0 {
		return ""
	}
	return s.items[len(s.items)-1].ID
}

// SameAs reports whether two snapshots of the same append-only store hold the
// same contents. Length and tail identity are sufficient for that.
func (s Snapshot) SameAs(other Snapshot) bool {
	return s.Len() == other.Len() && s.TailID() == other.TailID()
}
