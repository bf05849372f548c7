package event

import (
	"github.com/google/uuid"
	"github.com/webitel/live-relay-service/internal/domain/model"
)

var _ Eventer = (*GiftEvent)(nil)

// GiftEvent carries one gift notification. Streakable gifts produce a series of
// events with a growing RepeatCount; the last one has RepeatEnd set.
type GiftEvent struct {
	id      string
	payload model.GiftPayload
	memo
}

func NewGiftEvent(p model.GiftPayload) *GiftEvent {
	return &GiftEvent{id: uuid.NewString(), payload: p}
}

func (e *GiftEvent) GetID() string        { return e.id }
func (e *GiftEvent) GetKind() EventKind   { return Gift }
func (e *GiftEvent) GetOccurredAt() int64 { return e.payload.Timestamp }
func (e *GiftEvent) GetPayload() any      { return e.payload }
