package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/agriconnect/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist_RevokeToken(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	err := blacklist.RevokeToken(ctx, "jti-1", time.Hour)
	require.NoError(t, err)

	revoked, err := blacklist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blacklist.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_EntryExpires(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	err := blacklist.RevokeToken(ctx, "jti-short", time.Millisecond)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	revoked, err := blacklist.IsRevoked(ctx, "jti-short")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_RevokeUserTokens(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	issuedAt := time.Now().Add(-time.Hour)

	revoked, err := blacklist.IsUserRevoked(ctx, "user-1", issuedAt)
	require.NoError(t, err)
	assert.False(t, revoked)

	err = blacklist.RevokeUserTokens(ctx, "user-1", time.Hour)
	require.NoError(t, err)

	revoked, err = blacklist.IsUserRevoked(ctx, "user-1", issuedAt)
	require.NoError(t, err)
	assert.True(t, revoked)

	// A token issued after the cutoff stays valid.
	futureIssue := time.Now().Add(time.Second)
	revoked, err = blacklist.IsUserRevoked(ctx, "user-1", futureIssue)
	require.NoError(t, err)
	assert.False(t, revoked)

	// Other users are unaffected.
	revoked, err = blacklist.IsUserRevoked(ctx, "user-2", issuedAt)
	require.NoError(t, err)
	assert.False(t, revoked)
}
