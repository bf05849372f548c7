// internal/service/dto/webcast.go
package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/webitel/live-relay-service/internal/domain/model"
)

var ErrMissingField = errors.New("webcast: required field missing")

// FlexString accepts both JSON strings and numbers; webcast ids (room, msg)
// are 64-bit integers that some bridges quote and some do not.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("webcast: id is neither string nor number: %w", err)
	}
	*s = FlexString(n.String())
	return nil
}

// [WEBCAST] PAYLOADS EMITTED BY THE LIVE BRIDGE

type UserDTO struct {
	UniqueID string `json:"unique_id"`
	Nickname string `json:"nickname"`
}

type ConnectDTO struct {
	RoomID FlexString `json:"room_id"`
}

type CommentDTO struct {
	MsgID     FlexString `json:"msg_id"`
	User      UserDTO    `json:"user"`
	Comment   string     `json:"comment"`
	Timestamp int64      `json:"timestamp"`
}

type GiftInfoDTO struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	RepeatCount  int32  `json:"repeat_count"`
	DiamondCount int32  `json:"diamond_count"`
}

type GiftDTO struct {
	MsgID     FlexString  `json:"msg_id"`
	User      UserDTO     `json:"user"`
	Gift      GiftInfoDTO `json:"gift"`
	Streaking bool        `json:"streaking"`
	RepeatEnd bool        `json:"repeat_end"`
	Timestamp int64       `json:"timestamp"`
}

func (d UserDTO) ToDomain() model.Sender {
	nick := strings.TrimSpace(d.Nickname)
	if nick == "" {
		nick = d.UniqueID
	}
	return model.Sender{
		UniqueID: strings.TrimSpace(d.UniqueID),
		Nickname: nick,
	}
}

// ToDomain validates the comment and fills defaults. Timestamps are unix ms.
func (d *CommentDTO) ToDomain() (model.CommentPayload, error) {
	if strings.TrimSpace(d.User.UniqueID) == "" {
		return model.CommentPayload{}, fmt.Errorf("%w: comment.user.unique_id", ErrMissingField)
	}
	if strings.TrimSpace(d.Comment) == "" {
		return model.CommentPayload{}, fmt.Errorf("%w: comment.comment", ErrMissingField)
	}
	return model.CommentPayload{
		Sender:    d.User.ToDomain(),
		Text:      d.Comment,
		Timestamp: timestampOrNow(d.Timestamp),
	}, nil
}

func (d *GiftDTO) ToDomain() (model.GiftPayload, error) {
	if strings.TrimSpace(d.User.UniqueID) == "" {
		return model.GiftPayload{}, fmt.Errorf("%w: gift.user.unique_id", ErrMissingField)
	}
	if d.Gift.ID == 0 && d.Gift.Name == "" {
		return model.GiftPayload{}, fmt.Errorf("%w: gift.gift", ErrMissingField)
	}

	repeat := d.Gift.RepeatCount
	if repeat < 1 {
		repeat = 1
	}
	return model.GiftPayload{
		Sender:      d.User.ToDomain(),
		GiftID:      d.Gift.ID,
		GiftName:    d.Gift.Name,
		RepeatCount: repeat,
		Cost:        d.Gift.DiamondCount,
		Streaking:   d.Streaking,
		RepeatEnd:   d.RepeatEnd,
		Timestamp:   timestampOrNow(d.Timestamp),
	}, nil
}

// timestampOrNow normalizes seconds to milliseconds and fills missing values.
func timestampOrNow(ts int64) int64 {
	switch {
	case ts <= 0:
		return time.Now().UnixMilli()
	case ts < 1e12: // seconds
		return ts * 1000
	default:
		return ts
	}
}
