package token // package token mints and verifies the JWT credentials of the service

import (
	"errors"
	"strconv"
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

	"github.com/lumichat/auth-service/internal/model"
)

// ErrInvalidToken is returned when a refresh token fails signature or
// expiry verification.  Callers never learn which of the two failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// Issuer signs access and refresh tokens with two independent HS256
// secrets.  Secret separation means a leaked access-token secret cannot be
// used to forge refresh tokens.  The issuer is storage-free: persisting and
// revoking refresh tokens is the token repository's job.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewIssuer builds an Issuer from the two secrets and TTLs.  TTL values are
// validated at config load, so they arrive here as well-formed durations.
func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// AccessToken signs a short-lived token for the user.  The claims carry the
// identity a handler needs without a DB read: subject (sub), phone, role and
// name, plus exp and iat.
func (i *Issuer) AccessToken(u *model.User) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(i.accessTTL)
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(u.ID, 10),
		"phone": u.Phone,
		"role":  string(u.Role),
		"name":  u.DisplayName(),
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// RefreshToken signs a long-lived token containing only the user id.  It is
// signed with the refresh secret, never the access secret.
func (i *Issuer) RefreshToken(userID uint64) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(i.refreshTTL)
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(userID, 10),
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.refreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// VerifyRefresh checks signature and expiry of a refresh token and returns
// the embedded user id.  It deliberately does not consult the database;
// the persisted revocation state is the token repository's concern.
func (i *Issuer) VerifyRefresh(signed string) (uint64, error) {
	tok, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.refreshSecret, nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// VerifyAccess checks signature and expiry of an access token and returns
// its claims.  Used by the session gate middleware.
func (i *Issuer) VerifyAccess(signed string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.accessSecret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
