package service

import (
	"testing"

	"github.com/mbeoliero/parley/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleIsItsOwnInverse(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	conv := f.direct(t, alice, bob)
	msg := f.send(t, alice, conv, "react to me")

	reactions := func() int {
		msgs, err := f.messages.List(f.ctx, alice.ExternalAuthId, conv)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		return len(msgs[0].Reactions)
	}

	added, err := f.reactions.Toggle(f.ctx, bob.ExternalAuthId, msg, "👍")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 1, reactions())

	// different emoji and different users are separate reactions
	_, err = f.reactions.Toggle(f.ctx, bob.ExternalAuthId, msg, "❤️")
	require.NoError(t, err)
	_, err = f.reactions.Toggle(f.ctx, alice.ExternalAuthId, msg, "👍")
	require.NoError(t, err)
	assert.Equal(t, 3, reactions())

	added, err = f.reactions.Toggle(f.ctx, bob.ExternalAuthId, msg, "👍")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 2, reactions())

	added, err = f.reactions.Toggle(f.ctx, bob.ExternalAuthId, msg, " 👍 ")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 3, reactions())
}

func TestToggleRejects(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	msg := f.send(t, alice, f.direct(t, alice, bob), "x")

	_, err := f.reactions.Toggle(f.ctx, alice.ExternalAuthId, msg, " ")
	assert.ErrorIs(t, err, errcode.ErrEmptyEmoji)

	_, err = f.reactions.Toggle(f.ctx, alice.ExternalAuthId, "missing", "👍")
	assert.ErrorIs(t, err, errcode.ErrMessageNotFound)

	_, err = f.reactions.Toggle(f.ctx, "auth|nobody", msg, "👍")
	assert.ErrorIs(t, err, errcode.ErrUserNotFound)
}
