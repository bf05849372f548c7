/*
Package registry implements the event distribution hub.

Key Architectural Concepts:
  - Single Critical Section: Ingest, Attach and Detach serialize on one hub mutex,
    so a new subscriber receives every event exactly once: through replay when it
    was ingested before registration, through fan-out when ingested after.
  - Replay Buffer: a fixed-capacity FIFO of recent events used to backfill new
    subscribers.
  - Isolation: sends never wait for mailbox room. A full or closed mailbox only
    ever removes that subscriber, after the fan-out pass, so the producer never
    runs at a subscriber's pace.
  - Mailboxes: Connectors decouple the hub from network writes performed by the
    transport layer.
*/
package registry

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/webitel/live-relay-service/internal/domain/event"
	"github.com/webitel/live-relay-service/internal/domain/model"
)

const DefaultBufferSize = 50

// Hubber defines the gateway for subscriber management and event routing.
type Hubber interface {
	Ingest(ev event.Eventer)
	SetConnected(connected bool, roomID string)
	Attach(sub Subscriber) bool
	Detach(sub Subscriber)
	Status() model.HubStats
	RecentEvents() []event.Eventer
	Shutdown()
}

type hubConfig struct {
	bufferSize        int
	fanoutConcurrency int
}

// Hub owns the replay buffer and the subscriber registry.
type Hub struct {
	// mu serializes every mutation of buffer + subs.
	// Buffer and registry carry their own locks for lock-free status reads.
	mu     sync.Mutex
	closed bool

	buffer *ReplayBuffer
	subs   *Subscribers

	connected atomic.Bool
	ingested  atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
	startedAt time.Time

	config  hubConfig
	logger  *slog.Logger
	metrics *Metrics
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subs:      NewSubscribers(),
		startedAt: time.Now(),
		config: hubConfig{
			bufferSize: DefaultBufferSize,
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.buffer = NewReplayBuffer(h.config.bufferSize)
	return h
}

// Ingest appends ev to the replay buffer and fans it out to every subscriber.
// Subscribers whose send fails are detached and closed after the pass.
func (h *Hub) Ingest(ev event.Eventer) {
	if ev == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.ingest(ev)
}

// SetConnected records the upstream state and announces a change with a
// system event. Repeating the current state is a no-op.
func (h *Hub) SetConnected(connected bool, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || h.connected.Swap(connected) == connected {
		return
	}
	h.metrics.setUpstream(connected)

	if connected {
		h.logger.Info("UPSTREAM_CONNECTED", "room_id", roomID)
		h.ingest(event.NewConnectedEvent(roomID))
		return
	}
	h.logger.Warn("UPSTREAM_DISCONNECTED")
	h.ingest(event.NewDisconnectedEvent())
}

// ingest must be called with h.mu held.
func (h *Hub) ingest(ev event.Eventer) {
	h.buffer.Append(ev)
	h.ingested.Add(1)
	h.metrics.observeIngest(ev.GetKind(), h.buffer.Len())

	// [FAN_OUT] Deferred removal keeps the pass independent of failures.
	removed := h.subs.ForEach(h.config.fanoutConcurrency, func(s Subscriber) bool {
		return h.send(s, ev)
	})

	for _, s := range removed {
		s.Close()
		h.logger.Warn("SUBSCRIBER_DROPPED",
			"conn_id", s.GetID(),
			"event_id", ev.GetID(),
			"reason", "send_failed",
		)
	}
	h.dropped.Add(uint64(len(removed)))
	h.metrics.observeDropped(len(removed))
	if len(removed) > 0 {
		h.metrics.setSubscribers(h.subs.Len())
	}
}

// send offers ev to one subscriber without waiting.
// A panicking subscriber counts as failed.
func (h *Hub) send(s Subscriber, ev event.Eventer) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("SUBSCRIBER_PANIC_RECOVERED", "conn_id", s.GetID(), "err", r)
			ok = false
		}
	}()

	if !s.Send(ev, 0) {
		return false
	}
	h.delivered.Add(1)
	h.metrics.observeDelivered()
	return true
}

// Attach registers sub and replays the buffer to it, oldest first.
// It reports false when the hub is shut down or the replay failed; in the
// latter case sub is already detached and closed.
// Attaching an already registered identity is a no-op.
// Replay sends do not wait, so sub must accept the whole buffer at once
// (a Connector mailbox of at least the buffer size).
func (h *Hub) Attach(sub Subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	if !h.subs.Add(sub) {
		return true
	}

	for _, ev := range h.buffer.Snapshot() {
		if !h.send(sub, ev) {
			h.subs.Remove(sub)
			sub.Close()
			h.dropped.Add(1)
			h.metrics.observeDropped(1)
			h.logger.Warn("SUBSCRIBER_DROPPED", "conn_id", sub.GetID(), "reason", "replay_failed")
			return false
		}
	}

	h.metrics.setSubscribers(h.subs.Len())
	h.logger.Debug("SUBSCRIBER_ATTACHED", "conn_id", sub.GetID(), "replayed", h.buffer.Len())
	return true
}

// Detach unregisters sub. Unknown subscribers are ignored.
func (h *Hub) Detach(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs.Remove(sub) {
		h.metrics.setSubscribers(h.subs.Len())
		h.logger.Debug("SUBSCRIBER_DETACHED", "conn_id", sub.GetID())
	}
}

// Status is a point-in-time read that does not wait for a fan-out pass.
func (h *Hub) Status() model.HubStats {
	return model.HubStats{
		Connected:   h.connected.Load(),
		Subscribers: h.subs.Len(),
		Buffered:    h.buffer.Len(),
		Ingested:    h.ingested.Load(),
		Delivered:   h.delivered.Load(),
		Dropped:     h.dropped.Load(),
		Uptime:      time.Since(h.startedAt),
	}
}

// RecentEvents returns the replay buffer contents, oldest first.
func (h *Hub) RecentEvents() []event.Eventer {
	return h.buffer.Snapshot()
}

// Shutdown stops accepting events and closes every attached subscriber.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	subs := h.subs.Clear()
	for _, s := range subs {
		s.Close()
	}
	h.metrics.setSubscribers(0)
	h.logger.Info("HUB_SHUTDOWN", "closed_subscribers", len(subs))
}
