package registry

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/webitel/live-relay-service/internal/domain/event"
	"github.com/webitel/live-relay-service/internal/domain/model"
)

// Interface guard
var _ Connector = (*connect)(nil)

// [SUBSCRIBER] THE CAPABILITY SET THE HUB NEEDS FROM AN ATTACHED CLIENT
type Subscriber interface {
	GetID() uuid.UUID
	Send(ev event.Eventer, timeout time.Duration) bool // Thread-safe send, false means the subscriber is unusable
	Close()                                            // Terminate delivery and release resources
}

// [CONNECTOR] MAILBOX-BACKED SUBSCRIBER FOR TRANSPORT HANDLERS (WS/gRPC)
// The transport drains Recv and performs the actual network write, so a slow
// socket only ever fills its own mailbox.
type Connector interface {
	Subscriber
	Recv() <-chan event.Eventer
	Metadata() model.ConnectMetadata
	CreatedAt() time.Time
	Dropped() uint64
}

// [CONNECT] CONCRETE IMPLEMENTATION (UNEXPORTED TO FORCE INTERFACE USAGE)
type connect struct {
	id        uuid.UUID
	metadata  model.ConnectMetadata
	createdAt time.Time

	// mu guards closed and serializes Close against in-flight sends,
	// so a send never races with close(sendCh).
	mu        sync.RWMutex
	closed    bool
	sendCh    chan event.Eventer
	closeOnce sync.Once

	droppedCount atomic.Uint64
}

// NewConnector creates a subscriber with a mailbox of bufferSize events.
func NewConnector(meta model.ConnectMetadata, bufferSize int) Connector {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &connect{
		id:        uuid.New(),
		metadata:  meta,
		createdAt: time.Now(),
		sendCh:    make(chan event.Eventer, bufferSize),
	}
}

func (c *connect) GetID() uuid.UUID                { return c.id }
func (c *connect) Metadata() model.ConnectMetadata { return c.metadata }
func (c *connect) CreatedAt() time.Time            { return c.createdAt }
func (c *connect) Dropped() uint64                 { return c.droppedCount.Load() }
func (c *connect) Recv() <-chan event.Eventer      { return c.sendCh }

// Send enqueues ev into the mailbox.
// With a full mailbox it waits up to timeout for room; timeout <= 0 never waits.
func (c *connect) Send(ev event.Eventer, timeout time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// 1. [LIFECYCLE_GATE] Closed connectors accept nothing.
	if c.closed {
		return false
	}

	// 2. [FAST_PATH] Room available right now.
	select {
	case c.sendCh <- ev:
		return true
	default:
	}

	if timeout <= 0 {
		c.droppedCount.Add(1)
		return false
	}

	// 3. [BACKPRESSURE_WINDOW] Smooth out transient jitter of the consumer.
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case c.sendCh <- ev:
		return true
	case <-timer.C:
		c.droppedCount.Add(1)
		return false
	}
}

// Close stops accepting events and closes the mailbox.
// Events already queued remain readable, then Recv reports closure.
func (c *connect) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		c.closed = true
		close(c.sendCh)
	})
}
