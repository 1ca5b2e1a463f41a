package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupSweep(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	codes := newFakeCodeStore()
	tokens := newFakeTokenStore(users)

	now := time.Now().UTC()
	codes.entries = append(codes.entries,
		&fakeCodeEntry{phone: "13800138000", code: "111111", expiresAt: now.Add(-time.Minute), createdAt: now.Add(-3 * time.Minute)},
		&fakeCodeEntry{phone: "13800138000", code: "222222", expiresAt: now.Add(time.Minute), used: true, createdAt: now},
		&fakeCodeEntry{phone: "13800138000", code: "333333", expiresAt: now.Add(time.Minute), createdAt: now},
	)
	require.NoError(t, tokens.Store(ctx, 1, "live", farFuture()))
	require.NoError(t, tokens.Store(ctx, 1, "expired", now.Add(-time.Minute)))
	require.NoError(t, tokens.Store(ctx, 1, "revoked", farFuture()))
	require.NoError(t, tokens.Revoke(ctx, "revoked"))

	NewCleanupWorker(codes, tokens, time.Minute).Sweep(ctx)

	assert.Len(t, codes.entries, 1)
	assert.Equal(t, "333333", codes.entries[0].code)
	assert.Len(t, tokens.byTok, 1)
	assert.Contains(t, tokens.byTok, "live")
}
