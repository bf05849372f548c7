package registry

import (
	"sync"

	"github.com/webitel/live-relay-service/internal/domain/event"
)

// ReplayBuffer keeps the most recent events in insertion order.
// When full, appending overwrites the oldest entry (FIFO eviction).
type ReplayBuffer struct {
	mu   sync.RWMutex
	ring []event.Eventer
	head int // index of the oldest event
	size int
}

// NewReplayBuffer creates a buffer holding at most capacity events.
// A capacity below 1 is clamped to 1.
func NewReplayBuffer(capacity int) *ReplayBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &ReplayBuffer{ring: make([]event.Eventer, capacity)}
}

// Append adds ev at the tail, evicting the oldest event when at capacity.
func (b *ReplayBuffer) Append(ev event.Eventer) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tail := (b.head + b.size) % len(b.ring)
	b.ring[tail] = ev
	if b.size < len(b.ring) {
		b.size++
		return
	}
	// Overwrote the oldest slot.
	b.head = (b.head + 1) % len(b.ring)
}

// Snapshot returns the buffered events, oldest first.
// The returned slice is owned by the caller.
func (b *ReplayBuffer) Snapshot() []event.Eventer {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]event.Eventer, b.size)
	for i := range b.size {
		out[i] = b.ring[(b.head+i)%len(b.ring)]
	}
	return out
}

func (b *ReplayBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

func (b *ReplayBuffer) Cap() int { return len(b.ring) }
