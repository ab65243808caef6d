package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/mbeoliero/parley/internal/entity"
	"github.com/mbeoliero/parley/internal/repository"
	"github.com/mbeoliero/parley/internal/testutil"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx          context.Context
	repos        *repository.Repositories
	mr           *miniredis.Miniredis
	clock        *testutil.Clock
	identity     *IdentityResolver
	users        *UserService
	conversation *ConversationService
	messages     *MessageService
	reactions    *ReactionService
	typing       *TypingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos, mr := testutil.NewRepositories(t)
	clock := testutil.NewClock(1_700_000_000_000)
	identity := NewIdentityResolver(repos)
	opts := []Option{WithClock(clock.Now), WithLockWait(0)}

	return &fixture{
		ctx:          context.Background(),
		repos:        repos,
		mr:           mr,
		clock:        clock,
		identity:     identity,
		users:        NewUserService(repos, identity, opts...),
		conversation: NewConversationService(repos, identity, opts...),
		messages:     NewMessageService(repos, identity, opts...),
		reactions:    NewReactionService(repos, identity),
		typing:       NewTypingService(repos, identity, opts...),
	}
}

// user syncs a user through the directory and returns it
func (f *fixture) user(t *testing.T, name string) *entity.User {
	t.Helper()
	_, err := f.users.UpsertFromAuth(f.ctx, testutil.AuthId(name), &SyncUserRequest{
		Name:  name,
		Email: name + "@example.com",
	})
	require.NoError(t, err)
	u, err := f.identity.Resolve(f.ctx, testutil.AuthId(name))
	require.NoError(t, err)
	return u
}

func (f *fixture) direct(t *testing.T, a, b *entity.User) entity.ConversationId {
	t.Helper()
	id, err := f.conversation.CreateOrGetDirect(f.ctx, a.ExternalAuthId, b.Id)
	require.NoError(t, err)
	return id
}

func (f *fixture) send(t *testing.T, from *entity.User, convId entity.ConversationId, content string) entity.MessageId {
	t.Helper()
	id, err := f.messages.Send(f.ctx, from.ExternalAuthId, &SendMessageRequest{
		ConversationId: convId,
		Content:        content,
		Type:           entity.MessageTypeText,
	})
	require.NoError(t, err)
	return id
}
