package model

// SystemPayload describes a change of the upstream connection state.
type SystemPayload struct {
	Message string
	Status  bool   // true while the upstream session is connected
	RoomID  string // optional, known only after connect
}

// Sender identifies the viewer that produced a comment or a gift.
type Sender struct {
	UniqueID string
	Nickname string
}

// CommentPayload is a chat message posted in the live room.
type CommentPayload struct {
	Sender
	Text      string
	Timestamp int64
}

// GiftPayload is a gift sent to the broadcaster.
type GiftPayload struct {
	Sender
	GiftID      int64
	GiftName    string
	RepeatCount int32
	Cost        int32 // diamond count of a single gift
	Streaking   bool
	RepeatEnd   bool
	Timestamp   int64
}
