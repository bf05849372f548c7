package upstream

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type Option func(*Adapter)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(a *Adapter) {
		if tracer != nil {
			a.tracer = tracer
		}
	}
}

// WithReconnect toggles reconnection after a session ends.
func WithReconnect(enabled bool) Option {
	return func(a *Adapter) {
		a.reconnect = enabled
	}
}

// WithBackoff sets the exponential reconnect delay bounds.
func WithBackoff(minDelay, maxDelay time.Duration) Option {
	return func(a *Adapter) {
		if minDelay > 0 {
			a.minBackoff = minDelay
		}
		if maxDelay >= a.minBackoff {
			a.maxBackoff = maxDelay
		}
	}
}

// WithDedupeSize sets how many upstream message ids are remembered.
func WithDedupeSize(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.dedupeSize = n
		}
	}
}

// WithBreaker opens the circuit after failures consecutive failed sessions
// and keeps it open for timeout.
func WithBreaker(failures uint32, timeout time.Duration) Option {
	return func(a *Adapter) {
		if failures > 0 {
			a.breakerFailures = failures
		}
		if timeout > 0 {
			a.breakerTimeout = timeout
		}
	}
}
