package service

import (
	"testing"

	"github.com/mbeoliero/parley/internal/entity"
	"github.com/mbeoliero/parley/pkg/constant"
	"github.com/mbeoliero/parley/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	conv := f.direct(t, alice, bob)

	send := func(req *SendMessageRequest) error {
		_, err := f.messages.Send(f.ctx, alice.ExternalAuthId, req)
		return err
	}

	assert.ErrorIs(t, send(&SendMessageRequest{ConversationId: conv, Content: "x", Type: entity.MessageTypeSystem}), errcode.ErrInvalidMsgType)
	assert.ErrorIs(t, send(&SendMessageRequest{ConversationId: conv, Content: "x", Type: "video"}), errcode.ErrInvalidMsgType)
	assert.ErrorIs(t, send(&SendMessageRequest{ConversationId: "missing", Content: "x"}), errcode.ErrConvNotFound)

	missing := entity.MessageId("missing")
	assert.ErrorIs(t, send(&SendMessageRequest{ConversationId: conv, Content: "x", ReplyToId: &missing}), errcode.ErrReplyNotFound)

	_, err := f.messages.Send(f.ctx, "", &SendMessageRequest{ConversationId: conv, Content: "x"})
	assert.ErrorIs(t, err, errcode.ErrUnauthenticated)

	id, err := f.messages.Send(f.ctx, alice.ExternalAuthId, &SendMessageRequest{ConversationId: conv, Content: "https://img", Type: entity.MessageTypeImage})
	require.NoError(t, err)
	msgs, err := f.messages.List(f.ctx, alice.ExternalAuthId, conv)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, id, msgs[0].Id)
	assert.Equal(t, entity.MessageTypeImage, msgs[0].Type)
}

func TestSendDefaultsToText(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	conv := f.direct(t, alice, bob)

	_, err := f.messages.Send(f.ctx, alice.ExternalAuthId, &SendMessageRequest{ConversationId: conv, Content: "hi"})
	require.NoError(t, err)

	msgs, err := f.messages.List(f.ctx, bob.ExternalAuthId, conv)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, entity.MessageTypeText, msgs[0].Type)
}

func TestBlankContentIsStored(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	conv := f.direct(t, alice, bob)

	id, err := f.messages.Send(f.ctx, alice.ExternalAuthId, &SendMessageRequest{ConversationId: conv, Content: "  \n"})
	require.NoError(t, err)

	require.NoError(t, f.messages.Edit(f.ctx, alice.ExternalAuthId, id, "   "))
	msg, err := f.repos.Message.GetById(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "", msg.Content)
	assert.NotNil(t, msg.EditedAt)
}

func TestReplyToAnotherConversationIsRejected(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")
	first := f.direct(t, alice, bob)
	second := f.direct(t, alice, carol)
	target := f.send(t, bob, first, "elsewhere")

	_, err := f.messages.Send(f.ctx, alice.ExternalAuthId, &SendMessageRequest{
		ConversationId: second,
		Content:        "reply",
		ReplyToId:      &target,
	})
	assert.ErrorIs(t, err, errcode.ErrReplyNotFound)
}

func TestListEnrichesMessages(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	conv := f.direct(t, alice, bob)

	first := f.send(t, alice, conv, "first")
	reply, err := f.messages.Send(f.ctx, bob.ExternalAuthId, &SendMessageRequest{
		ConversationId: conv,
		Content:        "answer",
		ReplyToId:      &first,
	})
	require.NoError(t, err)
	_, err = f.reactions.Toggle(f.ctx, bob.ExternalAuthId, first, "🎉")
	require.NoError(t, err)

	msgs, err := f.messages.List(f.ctx, alice.ExternalAuthId, conv)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, first, msgs[0].Id)
	require.NotNil(t, msgs[0].Sender)
	assert.Equal(t, "alice", msgs[0].Sender.Name)
	require.Len(t, msgs[0].Reactions, 1)
	assert.Equal(t, "🎉", msgs[0].Reactions[0].Emoji)
	assert.Nil(t, msgs[0].ReplyTo)

	assert.Equal(t, reply, msgs[1].Id)
	assert.NotNil(t, msgs[1].Reactions)
	assert.Empty(t, msgs[1].Reactions)
	require.NotNil(t, msgs[1].ReplyTo)
	assert.Equal(t, first, msgs[1].ReplyTo.Id)
	assert.Equal(t, "first", msgs[1].ReplyTo.Content)
	assert.Equal(t, "alice", msgs[1].ReplyTo.SenderName)

	// unsynced callers see nothing
	none, err := f.messages.List(f.ctx, "auth|nobody", conv)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReplySummaryOfVanishedSender(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	conv := f.direct(t, alice, bob)

	first := f.send(t, bob, conv, "from bob")
	_, err := f.messages.Send(f.ctx, alice.ExternalAuthId, &SendMessageRequest{
		ConversationId: conv,
		Content:        "re",
		ReplyToId:      &first,
	})
	require.NoError(t, err)
	require.NoError(t, f.repos.DB.Delete(&entity.User{}, "id = ?", bob.Id).Error)

	msgs, err := f.messages.List(f.ctx, alice.ExternalAuthId, conv)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Nil(t, msgs[0].Sender)
	require.NotNil(t, msgs[1].ReplyTo)
	assert.Equal(t, constant.UnknownSenderName, msgs[1].ReplyTo.SenderName)
}

func TestSoftDelete(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	conv := f.direct(t, alice, bob)

	secret := f.send(t, alice, conv, "secret")
	_, err := f.messages.Send(f.ctx, bob.ExternalAuthId, &SendMessageRequest{
		ConversationId: conv,
		Content:        "what?",
		ReplyToId:      &secret,
	})
	require.NoError(t, err)
	_, err = f.reactions.Toggle(f.ctx, bob.ExternalAuthId, secret, "👀")
	require.NoError(t, err)

	assert.ErrorIs(t, f.messages.Delete(f.ctx, bob.ExternalAuthId, secret), errcode.ErrNotSender)
	assert.ErrorIs(t, f.messages.Delete(f.ctx, alice.ExternalAuthId, "missing"), errcode.ErrMessageNotFound)
	require.NoError(t, f.messages.Delete(f.ctx, alice.ExternalAuthId, secret))

	msgs, err := f.messages.List(f.ctx, alice.ExternalAuthId, conv)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.True(t, msgs[0].IsDeleted)
	assert.Equal(t, constant.DeletedMessagePlaceholder, msgs[0].Content)
	assert.Len(t, msgs[0].Reactions, 1)
	require.NotNil(t, msgs[1].ReplyTo)
	assert.True(t, msgs[1].ReplyTo.IsDeleted)
	assert.Equal(t, constant.DeletedMessagePlaceholder, msgs[1].ReplyTo.Content)

	assert.ErrorIs(t, f.messages.Edit(f.ctx, alice.ExternalAuthId, secret, "undo"), errcode.ErrMessageDeleted)

	// deleting again is allowed and changes nothing
	require.NoError(t, f.messages.Delete(f.ctx, alice.ExternalAuthId, secret))
}

func TestEdit(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	conv := f.direct(t, alice, bob)
	id := f.send(t, alice, conv, "helo")

	assert.ErrorIs(t, f.messages.Edit(f.ctx, bob.ExternalAuthId, id, "hijack"), errcode.ErrNotSender)
	assert.ErrorIs(t, f.messages.Edit(f.ctx, alice.ExternalAuthId, "missing", "x"), errcode.ErrMessageNotFound)

	require.NoError(t, f.messages.Edit(f.ctx, alice.ExternalAuthId, id, " hello "))

	msg, err := f.repos.Message.GetById(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	require.NotNil(t, msg.EditedAt)
	assert.Greater(t, *msg.EditedAt, msg.CreatedAt)
}

func TestPin(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	conv := f.direct(t, alice, bob)

	first := f.send(t, alice, conv, "one")
	f.send(t, alice, conv, "two")
	third := f.send(t, bob, conv, "three")

	require.NoError(t, f.messages.Pin(f.ctx, bob.ExternalAuthId, third, true))
	require.NoError(t, f.messages.Pin(f.ctx, bob.ExternalAuthId, first, true))
	assert.ErrorIs(t, f.messages.Pin(f.ctx, bob.ExternalAuthId, "missing", true), errcode.ErrMessageNotFound)

	pinned, err := f.messages.ListPinned(f.ctx, alice.ExternalAuthId, conv)
	require.NoError(t, err)
	require.Len(t, pinned, 2)
	assert.Equal(t, first, pinned[0].Id)
	assert.Equal(t, third, pinned[1].Id)
	require.NotNil(t, pinned[1].Sender)
	assert.Equal(t, "bob", pinned[1].Sender.Name)
	assert.NotNil(t, pinned[0].Reactions)

	require.NoError(t, f.messages.Pin(f.ctx, alice.ExternalAuthId, first, false))
	pinned, err = f.messages.ListPinned(f.ctx, alice.ExternalAuthId, conv)
	require.NoError(t, err)
	require.Len(t, pinned, 1)
	assert.Equal(t, third, pinned[0].Id)
}
