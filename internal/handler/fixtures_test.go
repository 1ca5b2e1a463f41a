package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/lumichat/auth-service/internal/handler"
	"github.com/lumichat/auth-service/internal/middleware"
	"github.com/lumichat/auth-service/internal/model"
	"github.com/lumichat/auth-service/internal/repository"
	"github.com/lumichat/auth-service/internal/router"
	"github.com/lumichat/auth-service/internal/service"
	"github.com/lumichat/auth-service/internal/token"
)

// The handler tests run the full stack below Echo: real services and
// middleware over in-memory stores.  Only MySQL, Redis, RabbitMQ and the
// SMS provider are faked out.

type memUsers struct {
	mu      sync.Mutex
	nextID  uint64
	byID    map[uint64]*model.User
	byPhone map[string]*model.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[uint64]*model.User{}, byPhone: map[string]*model.User{}}
}

func (s *memUsers) CreateWithPhone(_ context.Context, phone string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byPhone[phone]; ok {
		return 0, repository.ErrPhoneExists
	}
	s.nextID++
	u := &model.User{ID: s.nextID, Phone: phone, Role: model.RoleUser}
	s.byID[u.ID] = u
	s.byPhone[phone] = u
	return u.ID, nil
}

func (s *memUsers) GetByPhone(_ context.Context, phone string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.byPhone[phone]; u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *memUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.byID[id]; u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *memUsers) SetPasswordHash(_ context.Context, id uint64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.byID[id]; u != nil {
		u.PasswordHash = &hash
	}
	return nil
}

func (s *memUsers) SetRole(_ context.Context, id uint64, role model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.byID[id]; u != nil {
		u.Role = role
	}
	return nil
}

func (s *memUsers) SetSuspended(_ context.Context, id uint64, suspended bool, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.byID[id]; u != nil {
		u.IsSuspended = suspended
		if suspended {
			now := time.Now().UTC()
			u.SuspendedAt = &now
			u.SuspendedReason = &reason
		} else {
			u.SuspendedAt = nil
			u.SuspendedReason = nil
		}
	}
	return nil
}

func (s *memUsers) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.byID[id]; u != nil {
		delete(s.byPhone, u.Phone)
		delete(s.byID, id)
	}
	return nil
}

type memCode struct {
	phone     string
	code      string
	expiresAt time.Time
	used      bool
	createdAt time.Time
}

type memCodes struct {
	mu      sync.Mutex
	entries []*memCode
}

func (s *memCodes) Issue(_ context.Context, phone string, _ *uint64, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := "123456"
	s.entries = append(s.entries, &memCode{
		phone: phone, code: code,
		expiresAt: time.Now().UTC().Add(ttl),
		createdAt: time.Now().UTC(),
	})
	return code, nil
}

func (s *memCodes) Claim(_ context.Context, phone, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.phone == phone && e.code == code && !e.used && e.expiresAt.After(time.Now().UTC()) {
			e.used = true
			return true, nil
		}
	}
	return false, nil
}

func (s *memCodes) RecentCount(_ context.Context, phone string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	cutoff := time.Now().UTC().Add(-window)
	for _, e := range s.entries {
		if e.phone == phone && e.createdAt.After(cutoff) {
			n++
		}
	}
	return n, nil
}

func (s *memCodes) Cleanup(context.Context) (int64, error) { return 0, nil }

type memToken struct {
	userID    uint64
	expiresAt time.Time
	revoked   bool
}

type memTokens struct {
	mu    sync.Mutex
	byTok map[string]*memToken
	users *memUsers
}

func newMemTokens(users *memUsers) *memTokens {
	return &memTokens{byTok: map[string]*memToken{}, users: users}
}

func (s *memTokens) Store(_ context.Context, userID uint64, tok string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byTok[tok] = &memToken{userID: userID, expiresAt: exp}
	return nil
}

func (s *memTokens) FindValid(ctx context.Context, tok string) (*model.RefreshToken, *model.User, error) {
	s.mu.Lock()
	e := s.byTok[tok]
	if e == nil || e.revoked || !e.expiresAt.After(time.Now().UTC()) {
		s.mu.Unlock()
		return nil, nil, nil
	}
	rt := &model.RefreshToken{UserID: e.userID, Token: tok, ExpiresAt: e.expiresAt}
	s.mu.Unlock()
	u, err := s.users.GetByID(ctx, rt.UserID)
	if err != nil || u == nil {
		return nil, nil, err
	}
	return rt, u, nil
}

func (s *memTokens) Revoke(_ context.Context, tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.byTok[tok]; e != nil {
		e.revoked = true
	}
	return nil
}

func (s *memTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.byTok {
		if e.userID == userID {
			e.revoked = true
		}
	}
	return nil
}

func (s *memTokens) Cleanup(context.Context) (int64, error) { return 0, nil }

type captureSMS struct {
	mu       sync.Mutex
	lastCode string
}

func (d *captureSMS) Send(_ context.Context, _, code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastCode = code
	return nil
}

// testServer wires the real handlers, services and middleware over the
// in-memory stores.
type testServer struct {
	e      *echo.Echo
	users  *memUsers
	tokens *memTokens
	sms    *captureSMS
	issuer *token.Issuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	users := newMemUsers()
	codes := &memCodes{}
	tokens := newMemTokens(users)
	dispatcher := &captureSMS{}
	issuer := token.NewIssuer("access-secret-a", "refresh-secret-b", 15*time.Minute, 30*24*time.Hour)

	authSvc := service.NewAuthService(users, codes, tokens, issuer, dispatcher, service.NopPublisher{}, 2*time.Minute, 10, 4, false)
	adminSvc := service.NewUserAdminService(users, tokens, service.NopPublisher{})
	gate := middleware.Authenticate(issuer, users, false)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc, false), gate, middleware.RateLimit(nil, "", middleware.SubjectByIP))
	router.RegisterAdmin(e, handler.NewUserAdminHandler(adminSvc), gate)

	return &testServer{e: e, users: users, tokens: tokens, sms: dispatcher, issuer: issuer}
}

func (s *testServer) do(method, path, body, accessToken string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// login performs the full send-code + login-with-code exchange for phone and
// returns the issued token pair.
func (s *testServer) login(t *testing.T, phone string) (access, refresh string) {
	t.Helper()
	rec := s.do(http.MethodPost, "/v1/auth/send-code", `{"phone":"`+phone+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(http.MethodPost, "/v1/auth/login-with-code",
		`{"phone":"`+phone+`","code":"`+s.sms.lastCode+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AccessToken, resp.RefreshToken
}
