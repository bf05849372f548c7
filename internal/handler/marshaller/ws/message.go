package wsmarshaller

import (
	"github.com/webitel/live-relay-service/internal/domain/event"
	"github.com/webitel/live-relay-service/internal/domain/model"
)

// Field names are a public contract: browser clients switch on "type".

type SystemMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Message   string `json:"message"`
	Status    bool   `json:"status"`
	RoomID    string `json:"room_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type CommentMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	UniqueID  string `json:"unique_id"`
	Nickname  string `json:"nickname"`
	Comment   string `json:"comment"`
	Timestamp int64  `json:"timestamp"`
}

type GiftMessage struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	UniqueID    string `json:"unique_id"`
	Nickname    string `json:"nickname"`
	GiftName    string `json:"gift_name"`
	GiftID      int64  `json:"gift_id"`
	RepeatCount int32  `json:"repeat_count"`
	Cost        int32  `json:"cost"`
	Streaking   bool   `json:"streaking"`
	RepeatEnd   bool   `json:"repeat_end"`
	Timestamp   int64  `json:"timestamp"`
}

func mapSystem(ev event.Eventer, p model.SystemPayload) *SystemMessage {
	return &SystemMessage{
		Type:      ev.GetKind().String(),
		ID:        ev.GetID(),
		Message:   p.Message,
		Status:    p.Status,
		RoomID:    p.RoomID,
		Timestamp: ev.GetOccurredAt(),
	}
}

func mapComment(ev event.Eventer, p model.CommentPayload) *CommentMessage {
	return &CommentMessage{
		Type:      ev.GetKind().String(),
		ID:        ev.GetID(),
		UniqueID:  p.UniqueID,
		Nickname:  p.Nickname,
		Comment:   p.Text,
		Timestamp: p.Timestamp,
	}
}

func mapGift(ev event.Eventer, p model.GiftPayload) *GiftMessage {
	return &GiftMessage{
		Type:        ev.GetKind().String(),
		ID:          ev.GetID(),
		UniqueID:    p.UniqueID,
		Nickname:    p.Nickname,
		GiftName:    p.GiftName,
		GiftID:      p.GiftID,
		RepeatCount: p.RepeatCount,
		Cost:        p.Cost,
		Streaking:   p.Streaking,
		RepeatEnd:   p.RepeatEnd,
		Timestamp:   p.Timestamp,
	}
}
