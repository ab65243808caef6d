package entity

import (
	"testing"

	"github.com/mbeoliero/parley/pkg/constant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewId(t *testing.T) {
	a, err := NewId[MessageId]()
	require.NoError(t, err)
	b, err := NewId[MessageId]()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Less(t, string(a), string(b))
}

func TestNewReplySummary(t *testing.T) {
	target := &Message{Id: "m1", Content: "secret", IsDeleted: true}
	summary := NewReplySummary(target, nil)
	assert.Equal(t, constant.DeletedMessagePlaceholder, summary.Content)
	assert.True(t, summary.IsDeleted)
	assert.Equal(t, constant.UnknownSenderName, summary.SenderName)

	target = &Message{Id: "m2", Content: "hello"}
	summary = NewReplySummary(target, &User{Name: "Bob"})
	assert.Equal(t, "hello", summary.Content)
	assert.Equal(t, "Bob", summary.SenderName)
}

func TestActivityAt(t *testing.T) {
	s := &ConversationSummary{CreatedAt: 10}
	assert.Equal(t, int64(10), s.ActivityAt())
	s.LastMessage = &Message{CreatedAt: 42}
	assert.Equal(t, int64(42), s.ActivityAt())
}

func TestIsAdmin(t *testing.T) {
	admin := UserId("u1")
	group := &Conversation{IsGroup: true, AdminId: &admin}
	assert.True(t, group.IsAdmin("u1"))
	assert.False(t, group.IsAdmin("u2"))
	assert.False(t, (&Conversation{}).IsAdmin("u1"))
}

func TestMessageTypeSendable(t *testing.T) {
	assert.True(t, MessageTypeText.IsUserSendable())
	assert.True(t, MessageTypeImage.IsUserSendable())
	assert.False(t, MessageTypeSystem.IsUserSendable())
	assert.False(t, MessageType("video").IsUserSendable())
}
