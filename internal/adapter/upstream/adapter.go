// Package upstream bridges a live-protocol session into the distribution hub.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sony/gobreaker"
	"github.com/webitel/live-relay-service/internal/adapter/upstream/webcast"
	"github.com/webitel/live-relay-service/internal/domain/event"
	"github.com/webitel/live-relay-service/internal/domain/registry"
	"github.com/webitel/live-relay-service/internal/service/dto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var ErrAlreadyStarted = errors.New("upstream: adapter already started")

// Interface guard
var _ webcast.Listener = (*Adapter)(nil)

// Adapter owns the upstream session loop and translates its notifications
// into hub calls. It is the only component aware of the webcast protocol.
type Adapter struct {
	client   webcast.Client
	hub      registry.Hubber
	username string

	logger  *slog.Logger
	tracer  trace.Tracer
	seen    *lru.Cache[string, struct{}]
	breaker *gobreaker.CircuitBreaker

	reconnect       bool
	minBackoff      time.Duration
	maxBackoff      time.Duration
	dedupeSize      int
	breakerFailures uint32
	breakerTimeout  time.Duration

	// reached is set once the current session signalled connect.
	reached atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(client webcast.Client, hub registry.Hubber, username string, opts ...Option) *Adapter {
	a := &Adapter{
		client:          client,
		hub:             hub,
		username:        username,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:          noop.NewTracerProvider().Tracer(""),
		reconnect:       true,
		minBackoff:      time.Second,
		maxBackoff:      time.Minute,
		dedupeSize:      4096,
		breakerFailures: 5,
		breakerTimeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}

	// [MEMORY_MANAGEMENT] Bounded memory of upstream ids already relayed.
	a.seen, _ = lru.New[string, struct{}](max(a.dedupeSize, 1))

	a.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "upstream:" + username,
		Timeout: a.breakerTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= a.breakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			a.logger.Warn("UPSTREAM_BREAKER_STATE", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return a
}

// Start launches the session loop. The loop outlives ctx; use Stop to end it.
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.done != nil {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.cancel = cancel
	a.done = make(chan struct{})

	go a.loop(runCtx, a.done)
	a.logger.Info("UPSTREAM_STARTING", "username", a.username)
	return nil
}

// Stop requests a clean disconnect and waits until the session is closed.
func (a *Adapter) Stop(ctx context.Context) error {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.mu.Unlock()

	if done == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		a.logger.Info("UPSTREAM_STOPPED", "username", a.username)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("upstream: stop: %w", ctx.Err())
	}
}

// Done is closed when the session loop has exited.
func (a *Adapter) Done() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done
}

func (a *Adapter) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = a.minBackoff
	bo.MaxInterval = a.maxBackoff
	bo.Reset()

	for {
		reached, err := a.session(ctx)
		if ctx.Err() != nil {
			return
		}
		if !a.reconnect {
			a.logger.Info("UPSTREAM_SESSION_FINISHED", "username", a.username, "err", err)
			return
		}

		// A session that made it to "connected" restarts the backoff schedule.
		if reached {
			bo.Reset()
		}
		wait := bo.NextBackOff()
		a.logger.Warn("UPSTREAM_RECONNECT_SCHEDULED",
			"username", a.username,
			"err", err,
			"wait_ms", wait.Milliseconds(),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// session runs one client session through the circuit breaker.
func (a *Adapter) session(ctx context.Context) (bool, error) {
	a.reached.Store(false)

	_, err := a.breaker.Execute(func() (any, error) {
		return nil, a.client.Run(ctx, a)
	})

	// The client may end without a disconnect notification.
	a.hub.SetConnected(false, "")
	return a.reached.Load(), err
}

// --- webcast.Listener ---

func (a *Adapter) OnConnect(roomID string) {
	a.reached.Store(true)
	a.hub.SetConnected(true, roomID)
}

func (a *Adapter) OnDisconnect() {
	a.hub.SetConnected(false, "")
}

func (a *Adapter) OnComment(d *dto.CommentDTO) {
	if a.duplicate(string(d.MsgID)) {
		return
	}
	p, err := d.ToDomain()
	if err != nil {
		a.logger.Warn("UPSTREAM_EVENT_DROPPED", "kind", "comment", "err", err)
		return
	}
	a.ingest(event.NewCommentEvent(p))
}

func (a *Adapter) OnGift(d *dto.GiftDTO) {
	// Streak updates repeat the message id with a growing counter.
	key := ""
	if d.MsgID != "" {
		key = string(d.MsgID) + ":" + strconv.Itoa(int(d.Gift.RepeatCount)) + ":" + strconv.FormatBool(d.RepeatEnd)
	}
	if a.duplicate(key) {
		return
	}
	p, err := d.ToDomain()
	if err != nil {
		a.logger.Warn("UPSTREAM_EVENT_DROPPED", "kind", "gift", "err", err)
		return
	}
	a.ingest(event.NewGiftEvent(p))
}

// duplicate reports whether key was relayed before. Empty keys never match.
func (a *Adapter) duplicate(key string) bool {
	if key == "" {
		return false
	}
	if found, _ := a.seen.ContainsOrAdd(key, struct{}{}); found {
		a.logger.Debug("UPSTREAM_DUPLICATE_SKIPPED", "key", key)
		return true
	}
	return false
}

func (a *Adapter) ingest(ev event.Eventer) {
	_, span := a.tracer.Start(context.Background(), "upstream.ingest",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("live.username", a.username),
			attribute.String("event.kind", ev.GetKind().String()),
			attribute.String("event.id", ev.GetID()),
		),
	)
	defer span.End()

	a.hub.Ingest(ev)
}
