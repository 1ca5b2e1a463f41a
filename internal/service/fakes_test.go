package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lumichat/auth-service/internal/model"
	"github.com/lumichat/auth-service/internal/repository"
)

// In-memory fakes implementing the store interfaces.  They mirror the
// conditional-update semantics of the MySQL repositories: Claim and Revoke
// are compare-and-swap under a mutex, so the concurrency properties the
// real store guarantees per-row are observable here too.

type fakeUserStore struct {
	mu      sync.Mutex
	nextID  uint64
	byID    map[uint64]*model.User
	byPhone map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: map[uint64]*model.User{}, byPhone: map[string]*model.User{}}
}

func (s *fakeUserStore) CreateWithPhone(_ context.Context, phone string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byPhone[phone]; ok {
		return 0, repository.ErrPhoneExists
	}
	s.nextID++
	now := time.Now().UTC()
	u := &model.User{ID: s.nextID, Phone: phone, Role: model.RoleUser, CreatedAt: now, UpdatedAt: now}
	s.byID[u.ID] = u
	s.byPhone[phone] = u
	return u.ID, nil
}

func (s *fakeUserStore) GetByPhone(_ context.Context, phone string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.byPhone[phone]
	if u == nil {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.byID[id]
	if u == nil {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) SetPasswordHash(_ context.Context, id uint64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.byID[id]; u != nil {
		u.PasswordHash = &hash
	}
	return nil
}

func (s *fakeUserStore) SetRole(_ context.Context, id uint64, role model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.byID[id]; u != nil {
		u.Role = role
	}
	return nil
}

func (s *fakeUserStore) SetSuspended(_ context.Context, id uint64, suspended bool, reason string) error {
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

func (s *fakeUserStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.byID[id]; u != nil {
		delete(s.byPhone, u.Phone)
		delete(s.byID, id)
	}
	return nil
}

type fakeCodeEntry struct {
	phone     string
	code      string
	expiresAt time.Time
	used      bool
	createdAt time.Time
}

type fakeCodeStore struct {
	mu       sync.Mutex
	entries  []*fakeCodeEntry
	nextCode string // when set, Issue hands this out instead of a random code
}

func newFakeCodeStore() *fakeCodeStore { return &fakeCodeStore{} }

func (s *fakeCodeStore) Issue(_ context.Context, phone string, _ *uint64, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := s.nextCode
	if code == "" {
		code = "654321"
	}
	s.entries = append(s.entries, &fakeCodeEntry{
		phone:     phone,
		code:      code,
		expiresAt: time.Now().UTC().Add(ttl),
		createdAt: time.Now().UTC(),
	})
	return code, nil
}

func (s *fakeCodeStore) Claim(_ context.Context, phone, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// newest first, like the ORDER BY created_at DESC in the real query
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.phone == phone && e.code == code && !e.used && e.expiresAt.After(time.Now().UTC()) {
			e.used = true
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeCodeStore) RecentCount(_ context.Context, phone string, window time.Duration) (int, error) {
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

func (s *fakeCodeStore) Cleanup(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	var removed int64
	for _, e := range s.entries {
		if e.used || !e.expiresAt.After(time.Now().UTC()) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return removed, nil
}

type fakeTokenEntry struct {
	userID    uint64
	expiresAt time.Time
	revoked   bool
}

type fakeTokenStore struct {
	mu    sync.Mutex
	byTok map[string]*fakeTokenEntry
	users *fakeUserStore
}

func newFakeTokenStore(users *fakeUserStore) *fakeTokenStore {
	return &fakeTokenStore{byTok: map[string]*fakeTokenEntry{}, users: users}
}

func (s *fakeTokenStore) Store(_ context.Context, userID uint64, token string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byTok[token] = &fakeTokenEntry{userID: userID, expiresAt: exp}
	return nil
}

func (s *fakeTokenStore) FindValid(ctx context.Context, token string) (*model.RefreshToken, *model.User, error) {
	s.mu.Lock()
	e := s.byTok[token]
	if e == nil || e.revoked || !e.expiresAt.After(time.Now().UTC()) {
		s.mu.Unlock()
		return nil, nil, nil
	}
	rt := &model.RefreshToken{UserID: e.userID, Token: token, ExpiresAt: e.expiresAt}
	s.mu.Unlock()
	u, err := s.users.GetByID(ctx, rt.UserID)
	if err != nil || u == nil {
		return nil, nil, err
	}
	return rt, u, nil
}

func (s *fakeTokenStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.byTok[token]; e != nil {
		e.revoked = true
	}
	return nil
}

func (s *fakeTokenStore) RevokeAllForUser(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.byTok {
		if e.userID == userID {
			e.revoked = true
		}
	}
	return nil
}

func (s *fakeTokenStore) Cleanup(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for tok, e := range s.byTok {
		if e.revoked || !e.expiresAt.After(time.Now().UTC()) {
			delete(s.byTok, tok)
			removed++
		}
	}
	return removed, nil
}

type fakeDispatcher struct {
	mu       sync.Mutex
	lastCode string
	fail     bool
}

func (d *fakeDispatcher) Send(_ context.Context, _, code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return errDispatchBoom
	}
	d.lastCode = code
	return nil
}

var errDispatchBoom = errors.New("provider unreachable")

func farFuture() time.Time { return time.Now().UTC().Add(24 * time.Hour) }
