package event

import (
	"github.com/google/uuid"
	"github.com/webitel/live-relay-service/internal/domain/model"
)

var _ Eventer = (*CommentEvent)(nil)

// CommentEvent carries one chat comment posted in the live room.
type CommentEvent struct {
	id      string
	payload model.CommentPayload
	memo
}

func NewCommentEvent(p model.CommentPayload) *CommentEvent {
	return &CommentEvent{id: uuid.NewString(), payload: p}
}

func (e *CommentEvent) GetID() string        { return e.id }
func (e *CommentEvent) GetKind() EventKind   { return Comment }
func (e *CommentEvent) GetOccurredAt() int64 { return e.payload.Timestamp }
func (e *CommentEvent) GetPayload() any      { return e.payload }
