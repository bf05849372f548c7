package dto_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webitel/live-relay-service/internal/service/dto"
)

func TestFlexString(t *testing.T) {
	t.Parallel()

	var v struct {
		A dto.FlexString `json:"a"`
		B dto.FlexString `json:"b"`
		C dto.FlexString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"7312","b":7312401234567890123,"c":null}`), &v))

	assert.EqualValues(t, "7312", v.A)
	assert.EqualValues(t, "7312401234567890123", v.B)
	assert.EqualValues(t, "", v.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
}

func TestCommentToDomain(t *testing.T) {
	t.Parallel()

	d := &dto.CommentDTO{
		MsgID:     "1",
		User:      dto.UserDTO{UniqueID: "alice", Nickname: " "},
		Comment:   "hello",
		Timestamp: 1700000000,
	}

	p, err := d.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, "alice", p.UniqueID)
	assert.Equal(t, "alice", p.Nickname, "nickname falls back to unique id")
	assert.Equal(t, "hello", p.Text)
	assert.EqualValues(t, 1700000000000, p.Timestamp, "seconds become milliseconds")
}

func TestCommentToDomainValidation(t *testing.T) {
	t.Parallel()

	_, err := (&dto.CommentDTO{Comment: "x"}).ToDomain()
	assert.ErrorIs(t, err, dto.ErrMissingField)

	_, err = (&dto.CommentDTO{User: dto.UserDTO{UniqueID: "a"}, Comment: "  "}).ToDomain()
	assert.ErrorIs(t, err, dto.ErrMissingField)
}

func TestGiftToDomain(t *testing.T) {
	t.Parallel()

	before := time.Now().UnixMilli()
	d := &dto.GiftDTO{
		User:      dto.UserDTO{UniqueID: "bob", Nickname: "Bob"},
		Gift:      dto.GiftInfoDTO{ID: 5655, Name: "Rose", DiamondCount: 1},
		Streaking: true,
	}

	p, err := d.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, "Bob", p.Nickname)
	assert.EqualValues(t, 5655, p.GiftID)
	assert.Equal(t, "Rose", p.GiftName)
	assert.EqualValues(t, 1, p.RepeatCount, "repeat count defaults to one")
	assert.EqualValues(t, 1, p.Cost)
	assert.True(t, p.Streaking)
	assert.False(t, p.RepeatEnd)
	assert.GreaterOrEqual(t, p.Timestamp, before)
}

func TestGiftToDomainValidation(t *testing.T) {
	t.Parallel()

	_, err := (&dto.GiftDTO{User: dto.UserDTO{UniqueID: "bob"}}).ToDomain()
	assert.ErrorIs(t, err, dto.ErrMissingField)

	_, err = (&dto.GiftDTO{Gift: dto.GiftInfoDTO{ID: 1}}).ToDomain()
	assert.ErrorIs(t, err, dto.ErrMissingField)
}
