package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumichat/auth-service/internal/model"
)

func testUser() *model.User {
	name := "alice"
	return &model.User{ID: 7, Phone: "13800138000", Name: &name, Role: model.RoleUser}
}

func TestAccessTokenClaims(t *testing.T) {
	iss := NewIssuer("access-secret-a", "refresh-secret-b", 15*time.Minute, 30*24*time.Hour)

	signed, exp, err := iss.AccessToken(testUser())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), exp, 2*time.Second)

	claims, err := iss.VerifyAccess(signed)
	require.NoError(t, err)
	assert.Equal(t, "7", claims["sub"])
	assert.Equal(t, "13800138000", claims["phone"])
	assert.Equal(t, "USER", claims["role"])
	assert.Equal(t, "alice", claims["name"])
}

func TestSecretSeparation(t *testing.T) {
	iss := NewIssuer("access-secret-a", "refresh-secret-b", 15*time.Minute, time.Hour)

	access, _, err := iss.AccessToken(testUser())
	require.NoError(t, err)
	refresh, _, err := iss.RefreshToken(7)
	require.NoError(t, err)

	// each token only verifies against its own secret
	_, err = iss.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = iss.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	id, err := iss.VerifyRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	iss := NewIssuer("access-secret-a", "refresh-secret-b", time.Minute, time.Hour)
	other := NewIssuer("different-a", "different-b", time.Minute, time.Hour)

	signed, _, err := other.RefreshToken(7)
	require.NoError(t, err)
	_, err = iss.VerifyRefresh(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	iss := NewIssuer("access-secret-a", "refresh-secret-b", -time.Minute, -time.Minute)

	access, _, err := iss.AccessToken(testUser())
	require.NoError(t, err)
	refresh, _, err := iss.RefreshToken(7)
	require.NoError(t, err)

	_, err = iss.VerifyAccess(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = iss.VerifyRefresh(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	iss := NewIssuer("access-secret-a", "refresh-secret-b", time.Minute, time.Hour)
	for _, tok := range []string{"", "abc", "a.b.c"} {
		_, err := iss.VerifyRefresh(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}
