package httpserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayers_CreateAndAuthenticate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.srv.players

	u, err := p.create(ctx, "Stella_9", "supernova")
	require.NoError(t, err)
	assert.Len(t, u.ID, 22)

	_, err = p.create(ctx, "stella_9", "anotherpass")
	assert.ErrorIs(t, err, errUsernameTaken, "uniqueness ignores case")

	got, ok := p.authenticate(ctx, "STELLA_9", "supernova")
	require.True(t, ok)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))

	_, ok = p.authenticate(ctx, "stella_9", "wrong-pass")
	assert.False(t, ok)
	_, ok = p.authenticate(ctx, "nobody", "supernova")
	assert.False(t, ok)
}

func TestPlayers_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		user, pass string
		want       error
	}{
		{"ab", "longenough", errInvalidUsername},
		{"has space", "longenough", errInvalidUsername},
		{"this_name_is_far_too_long_x", "longenough", errInvalidUsername},
		{"fine_name", "short", errInvalidPassword},
	}
	for _, tt := range tests {
		_, err := h.srv.players.create(ctx, tt.user, tt.pass)
		assert.ErrorIs(t, err, tt.want, tt.user)
	}
}
