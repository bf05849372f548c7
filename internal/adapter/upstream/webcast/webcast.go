// Package webcast defines the frame protocol spoken by live bridges and the
// session contract every upstream source driver implements.
package webcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/webitel/live-relay-service/internal/service/dto"
)

var (
	ErrMalformedFrame = errors.New("webcast: malformed frame")
	ErrUnsupported    = errors.New("webcast: unsupported event")
)

const (
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
	EventComment    = "comment"
	EventGift       = "gift"
)

// Frame is the envelope of every bridge message.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Listener receives the notifications of one live session, in order.
type Listener interface {
	OnConnect(roomID string)
	OnDisconnect()
	OnComment(c *dto.CommentDTO)
	OnGift(g *dto.GiftDTO)
}

// Client is a live-protocol session source.
type Client interface {
	// Run connects and blocks until the session ends or ctx is cancelled.
	// It returns only after the underlying connection is closed.
	Run(ctx context.Context, l Listener) error
}

// Dispatch decodes one raw frame and forwards it to l.
// Frames of other live event types (likes, joins, ...) yield ErrUnsupported.
func Dispatch(raw []byte, l Listener) error {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	switch f.Event {
	case EventConnect:
		var d dto.ConnectDTO
		if len(f.Data) > 0 {
			if err := json.Unmarshal(f.Data, &d); err != nil {
				return fmt.Errorf("%w: connect: %v", ErrMalformedFrame, err)
			}
		}
		l.OnConnect(string(d.RoomID))

	case EventDisconnect:
		l.OnDisconnect()

	case EventComment:
		d := new(dto.CommentDTO)
		if err := json.Unmarshal(f.Data, d); err != nil {
			return fmt.Errorf("%w: comment: %v", ErrMalformedFrame, err)
		}
		l.OnComment(d)

	case EventGift:
		d := new(dto.GiftDTO)
		if err := json.Unmarshal(f.Data, d); err != nil {
			return fmt.Errorf("%w: gift: %v", ErrMalformedFrame, err)
		}
		l.OnGift(d)

	case "":
		return fmt.Errorf("%w: missing event", ErrMalformedFrame)

	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, f.Event)
	}
	return nil
}
