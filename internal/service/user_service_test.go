package service

import (
	"testing"

	"github.com/mbeoliero/parley/internal/testutil"
	"github.com/mbeoliero/parley/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertFromAuth(t *testing.T) {
	f := newFixture(t)
	principal := testutil.AuthId("alice")

	id, err := f.users.UpsertFromAuth(f.ctx, principal, &SyncUserRequest{
		Name: "Alice", Email: "alice@example.com", AvatarImageUrl: "a.png",
	})
	require.NoError(t, err)

	me, err := f.users.GetMe(f.ctx, principal)
	require.NoError(t, err)
	assert.Equal(t, id, me.Id)
	assert.True(t, me.IsOnline)

	t.Run("Idempotent", func(t *testing.T) {
		again, err := f.users.UpsertFromAuth(f.ctx, principal, &SyncUserRequest{
			Name: "Alice", Email: "alice@example.com", AvatarImageUrl: "a.png",
		})
		require.NoError(t, err)
		assert.Equal(t, id, again)

		var count int64
		f.repos.DB.Table("users").Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("PatchesProfileButNotEmail", func(t *testing.T) {
		_, err := f.users.UpsertFromAuth(f.ctx, principal, &SyncUserRequest{
			Name: "Alice B", Email: "changed@example.com", AvatarImageUrl: "b.png",
		})
		require.NoError(t, err)

		me, err := f.users.GetMe(f.ctx, principal)
		require.NoError(t, err)
		assert.Equal(t, "Alice B", me.Name)
		assert.Equal(t, "b.png", me.AvatarImageUrl)
		assert.Equal(t, "alice@example.com", me.Email)
	})

	t.Run("Rejects", func(t *testing.T) {
		_, err := f.users.UpsertFromAuth(f.ctx, "", &SyncUserRequest{Name: "x"})
		assert.ErrorIs(t, err, errcode.ErrUnauthenticated)

		_, err = f.users.UpsertFromAuth(f.ctx, principal, &SyncUserRequest{ExternalAuthId: "auth|mallory"})
		assert.ErrorIs(t, err, errcode.ErrSubjectMismatch)
	})
}

func TestDirectoryQueries(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.user(t, "bob")
	f.user(t, "bobby")

	others, err := f.users.ListOthers(f.ctx, alice.ExternalAuthId)
	require.NoError(t, err)
	assert.Len(t, others, 2)

	found, err := f.users.Search(f.ctx, alice.ExternalAuthId, "  BOBBY ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "bobby", found[0].Name)

	found, err = f.users.Search(f.ctx, alice.ExternalAuthId, "alice")
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = f.users.Search(f.ctx, "", "bob")
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)

	me, err := f.users.GetMe(f.ctx, "")
	require.NoError(t, err)
	assert.Nil(t, me)
}

func TestSetOnlineStatus(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	require.NoError(t, f.users.SetOnlineStatus(f.ctx, alice.ExternalAuthId, false))
	me, err := f.users.GetMe(f.ctx, alice.ExternalAuthId)
	require.NoError(t, err)
	assert.False(t, me.IsOnline)

	require.NoError(t, f.users.SetOnlineStatus(f.ctx, alice.ExternalAuthId, true))
	me, err = f.users.GetMe(f.ctx, alice.ExternalAuthId)
	require.NoError(t, err)
	assert.True(t, me.IsOnline)

	assert.NoError(t, f.users.SetOnlineStatus(f.ctx, "auth|ghost", true))
	assert.ErrorIs(t, f.users.SetOnlineStatus(f.ctx, "", true), errcode.ErrUnauthenticated)
}
