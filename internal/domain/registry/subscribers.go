package registry

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Subscribers is the set of attached subscribers keyed by identity.
type Subscribers struct {
	mu    sync.RWMutex
	items map[uuid.UUID]Subscriber
}

func NewSubscribers() *Subscribers {
	return &Subscribers{items: make(map[uuid.UUID]Subscriber)}
}

// Add registers s. It reports false when the identity is already present.
func (r *Subscribers) Add(s Subscriber) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[s.GetID()]; ok {
		return false
	}
	r.items[s.GetID()] = s
	return true
}

// Remove unregisters s and reports whether it was present.
func (r *Subscribers) Remove(s Subscriber) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[s.GetID()]; !ok {
		return false
	}
	delete(r.items, s.GetID())
	return true
}

func (r *Subscribers) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Snapshot returns the current members in no particular order.
func (r *Subscribers) Snapshot() []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Subscriber, 0, len(r.items))
	for _, s := range r.items {
		out = append(out, s)
	}
	return out
}

// Clear unregisters everyone and returns the former members.
func (r *Subscribers) Clear() []Subscriber {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Subscriber, 0, len(r.items))
	for id, s := range r.items {
		out = append(out, s)
		delete(r.items, id)
	}
	return out
}

// ForEach calls fn for every member of a snapshot taken at call time, running at
// most limit calls concurrently (limit <= 0 means unbounded).
//
// Members for which fn returns false are removed once the whole pass has
// finished and are returned to the caller. Adds and removes made while the pass
// runs do not affect which members are visited.
func (r *Subscribers) ForEach(limit int, fn func(Subscriber) bool) []Subscriber {
	snapshot := r.Snapshot()
	if len(snapshot) == 0 {
		return nil
	}

	keep := make([]bool, len(snapshot))
	if limit == 1 || len(snapshot) == 1 {
		for i, s := range snapshot {
			keep[i] = fn(s)
		}
	} else {
		var g errgroup.Group
		if limit > 0 {
			g.SetLimit(limit)
		}
		for i, s := range snapshot {
			g.Go(func() error {
				keep[i] = fn(s)
				return nil
			})
		}
		_ = g.Wait()
	}

	var removed []Subscriber

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range snapshot {
		if keep[i] {
			continue
		}
		// Skip members that were detached and re-attached as a new value meanwhile.
		if cur, ok := r.items[s.GetID()]; ok && cur == s {
			delete(r.items, s.GetID())
			removed = append(removed, s)
		}
	}
	return removed
}
