package registry

import "log/slog"

// Option defines a functional configuration type for the Hub.
type Option func(*Hub)

// WithBufferSize sets how many recent events are kept for replay.
func WithBufferSize(size int) Option {
	return func(h *Hub) {
		h.config.bufferSize = size
	}
}

// WithFanoutConcurrency limits concurrent sends during one fan-out pass.
// Zero or negative means one goroutine per subscriber.
func WithFanoutConcurrency(n int) Option {
	return func(h *Hub) {
		h.config.fanoutConcurrency = n
	}
}

// WithLogger configures structured logging. Nil is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(h *Hub) {
		h.metrics = m
	}
}
