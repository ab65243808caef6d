package sdk_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbeoliero/parley/internal/testutil/apitest"
	"github.com/mbeoliero/parley/sdk"
)

// engineDoer serves SDK requests from an in-process router
type engineDoer struct {
	engine *route.Engine
}

func (d engineDoer) Do(_ context.Context, req *protocol.Request, resp *protocol.Response) error {
	var body *ut.Body
	if b := req.Body(); len(b) > 0 {
		body = &ut.Body{Body: bytes.NewReader(b), Len: len(b)}
	}
	var headers []ut.Header
	req.Header.VisitAll(func(k, v []byte) {
		headers = append(headers, ut.Header{Key: string(k), Value: string(v)})
	})

	w := ut.PerformRequest(d.engine, string(req.Method()), string(req.URI().RequestURI()), body, headers...)
	w.Result().CopyTo(resp)
	return nil
}

func newClient(t *testing.T, s *apitest.Server, name string) (*sdk.Client, string) {
	t.Helper()
	c, err := sdk.NewClient("http://parley.test", sdk.WithDoer(engineDoer{engine: s.Engine}), sdk.WithToken(apitest.Token(t, name)))
	require.NoError(t, err)
	id, err := c.SyncUser(context.Background(), nil)
	require.NoError(t, err)
	return c, id
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := apitest.New(t)
	alice, aliceId := newClient(t, s, "alice")
	bob, bobId := newClient(t, s, "bob")
	carol, carolId := newClient(t, s, "carol")

	me, err := alice.GetMe(ctx)
	require.NoError(t, err)
	require.NotNil(t, me)
	assert.Equal(t, aliceId, me.Id)

	found, err := alice.SearchUsers(ctx, "car")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, carolId, found[0].Id)

	direct, err := alice.CreateOrGetDirect(ctx, bobId)
	require.NoError(t, err)
	same, err := bob.CreateConversation(ctx, []string{aliceId}, false, "")
	require.NoError(t, err)
	assert.Equal(t, direct, same)

	_, err = alice.CreateOrGetDirect(ctx, aliceId)
	assert.Equal(t, sdk.CodeSelfDirect, sdk.CodeOf(err))

	group, err := alice.CreateGroup(ctx, "crew", []string{bobId})
	require.NoError(t, err)
	err = bob.AddGroupMember(ctx, group, carolId)
	assert.True(t, errors.Is(err, sdk.ErrNotAdmin))
	require.NoError(t, alice.AddGroupMember(ctx, group, carolId))

	members, err := carol.ListMembers(ctx, group)
	require.NoError(t, err)
	assert.Len(t, members, 3)

	msgId, err := bob.SendMessage(ctx, &sdk.SendMessageRequest{ConversationId: direct, Content: "ping"})
	require.NoError(t, err)
	replyTo := msgId
	_, err = alice.SendMessage(ctx, &sdk.SendMessageRequest{ConversationId: direct, Content: "pong", ReplyToId: &replyTo})
	require.NoError(t, err)

	added, err := alice.ToggleReaction(ctx, msgId, "🏓")
	require.NoError(t, err)
	assert.True(t, added)
	require.NoError(t, alice.PinMessage(ctx, msgId, true))
	require.NoError(t, bob.EditMessage(ctx, msgId, "ping!"))

	msgs, err := alice.ListMessages(ctx, direct)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "ping!", msgs[0].Content)
	assert.NotNil(t, msgs[0].EditedAt)
	assert.Len(t, msgs[0].Reactions, 1)
	require.NotNil(t, msgs[1].ReplyTo)
	assert.Equal(t, "bob", msgs[1].ReplyTo.SenderName)

	pinned, err := bob.ListPinnedMessages(ctx, direct)
	require.NoError(t, err)
	assert.Len(t, pinned, 1)

	conv, err := bob.GetConversation(ctx, direct)
	require.NoError(t, err)
	assert.Equal(t, int64(1), conv.UnreadCount)
	require.NoError(t, bob.MarkAsRead(ctx, direct))
	conv, err = bob.GetConversation(ctx, direct)
	require.NoError(t, err)
	assert.Equal(t, int64(0), conv.UnreadCount)
	require.NotNil(t, conv.OtherUser)
	assert.Equal(t, aliceId, conv.OtherUser.Id)

	require.NoError(t, bob.SetTyping(ctx, direct, true))
	typists, err := alice.ListTypists(ctx, direct)
	require.NoError(t, err)
	require.Len(t, typists, 1)
	assert.Equal(t, bobId, typists[0].Id)

	require.NoError(t, bob.DeleteMessage(ctx, msgId))
	err = bob.EditMessage(ctx, msgId, "again")
	assert.True(t, errors.Is(err, sdk.ErrMessageDeleted))

	convs, err := alice.ListConversations(ctx)
	require.NoError(t, err)
	assert.Len(t, convs, 2)

	require.NoError(t, alice.DeleteConversation(ctx, direct))
	_, err = alice.GetConversation(ctx, direct)
	assert.Equal(t, sdk.CodeConvNotFound, sdk.CodeOf(err))
}

func TestClientLogout(t *testing.T) {
	ctx := context.Background()
	s := apitest.New(t)
	alice, _ := newClient(t, s, "alice")
	token := alice.GetToken()

	require.NoError(t, alice.SetOnline(ctx, true))
	require.NoError(t, alice.Logout(ctx))
	assert.Empty(t, alice.GetToken())

	me, err := alice.GetMe(ctx)
	require.NoError(t, err)
	assert.Nil(t, me)

	alice.SetToken(token)
	err = alice.SetOnline(ctx, true)
	assert.True(t, errors.Is(err, sdk.ErrTokenRevoked))
}
