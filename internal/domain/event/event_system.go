package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/webitel/live-relay-service/internal/domain/model"
)

// [GUARD] Ensure compliance with the Eventer interface.
var _ Eventer = (*SystemEvent)(nil)

const (
	MessageConnected    = "connected"
	MessageDisconnected = "disconnected"
)

// SystemEvent is the envelope for service-generated signals about the upstream.
type SystemEvent struct {
	id         string
	occurredAt int64
	payload    model.SystemPayload
	memo
}

func (e *SystemEvent) GetID() string        { return e.id }
func (e *SystemEvent) GetKind() EventKind   { return System }
func (e *SystemEvent) GetOccurredAt() int64 { return e.occurredAt }
func (e *SystemEvent) GetPayload() any      { return e.payload }

// NewSystemEvent is a universal factory for creating any signal.
func NewSystemEvent(payload model.SystemPayload) *SystemEvent {
	return &SystemEvent{
		id:         uuid.NewString(),
		occurredAt: time.Now().UnixMilli(),
		payload:    payload,
	}
}

// NewConnectedEvent announces that the upstream session is live.
func NewConnectedEvent(roomID string) *SystemEvent {
	return NewSystemEvent(model.SystemPayload{
		Message: MessageConnected,
		Status:  true,
		RoomID:  roomID,
	})
}

// NewDisconnectedEvent announces that the upstream session ended.
func NewDisconnectedEvent() *SystemEvent {
	return NewSystemEvent(model.SystemPayload{
		Message: MessageDisconnected,
		Status:  false,
	})
}
