package event

import "sync/atomic"

type EventKind int16

const (
	System  EventKind = iota + 1 // [SYSTEM] upstream lifecycle signals
	Comment                      // [BUSINESS]
	Gift                         // [BUSINESS]
)

// String returns the wire discriminator of the kind.
func (k EventKind) String() string {
	switch k {
	case System:
		return "system"
	case Comment:
		return "comment"
	case Gift:
		return "gift"
	default:
		return "unknown"
	}
}

// Eventer defines the contract for all data packets flowing through the Hub.
//
// Implementations are immutable once built: GetPayload returns a value copy so
// subscribers cannot alter what other subscribers observe.
type Eventer interface {
	GetID() string
	GetKind() EventKind
	GetOccurredAt() int64
	GetPayload() any
	GetCached() any
	SetCached(any)
}

// memo holds a transport serialization of an event.
// Concurrent writers store identical content.
type memo struct {
	v atomic.Value
}

func (m *memo) GetCached() any  { return m.v.Load() }
func (m *memo) SetCached(v any) { m.v.Store(v) }
