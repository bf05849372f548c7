package registry_test

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/webitel/live-relay-service/internal/domain/event"
	"github.com/webitel/live-relay-service/internal/domain/model"
)

// recorder is a Subscriber that stores everything it is sent.
type recorder struct {
	id uuid.UUID

	mu     sync.Mutex
	events []event.Eventer
	fail   bool
	closed bool
	onSend func(event.Eventer)
}

func newRecorder() *recorder {
	return &recorder{id: uuid.New()}
}

func (r *recorder) GetID() uuid.UUID { return r.id }

func (r *recorder) Send(ev event.Eventer, _ time.Duration) bool {
	if r.onSend != nil {
		r.onSend(ev)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail || r.closed {
		return false
	}
	r.events = append(r.events, ev)
	return true
}

func (r *recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

func (r *recorder) setFail(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = v
}

func (r *recorder) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *recorder) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return texts(r.events)
}

func comment(text string) event.Eventer {
	return event.NewCommentEvent(model.CommentPayload{
		Sender:    model.Sender{UniqueID: "u1", Nickname: "User"},
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	})
}

// texts reduces events to comment text or system message for assertions.
func texts(events []event.Eventer) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		switch p := ev.GetPayload().(type) {
		case model.CommentPayload:
			out = append(out, p.Text)
		case model.SystemPayload:
			out = append(out, p.Message)
		case model.GiftPayload:
			out = append(out, p.GiftName)
		}
	}
	return out
}
