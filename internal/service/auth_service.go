package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/lumichat/auth-service/internal/model"
	"github.com/lumichat/auth-service/internal/queue"
	"github.com/lumichat/auth-service/internal/repository"
	"github.com/lumichat/auth-service/internal/sms"
	"github.com/lumichat/auth-service/internal/token"
	"github.com/lumichat/auth-service/internal/utils"
)

// Domestic mobile numbers only: leading 1, second digit 3-9, 11 digits total.
var (
	phoneRe = regexp.MustCompile(`^1[3-9]\d{9}$`)
	codeRe  = regexp.MustCompile(`^\d{6}$`)
)

const (
	codeSendWindow = time.Hour
	passwordMinLen = 6
	passwordMaxLen = 255
)

// AuthService orchestrates verification codes, logins and the refresh-token
// lifecycle.  All collaborators are injected at construction time so tests
// can substitute doubles.
type AuthService struct {
	users        UserStore
	codes        CodeStore
	tokens       TokenStore
	issuer       *token.Issuer
	dispatcher   sms.Dispatcher
	events       EventPublisher
	codeTTL      time.Duration
	codesPerHour int
	bcryptCost   int
	devMode      bool
}

func NewAuthService(users UserStore, codes CodeStore, tokens TokenStore, issuer *token.Issuer,
	dispatcher sms.Dispatcher, events EventPublisher, codeTTL time.Duration, codesPerHour, bcryptCost int, devMode bool) *AuthService {
	return &AuthService{
		users:        users,
		codes:        codes,
		tokens:       tokens,
		issuer:       issuer,
		dispatcher:   dispatcher,
		events:       events,
		codeTTL:      codeTTL,
		codesPerHour: codesPerHour,
		bcryptCost:   bcryptCost,
		devMode:      devMode,
	}
}

// AuthResult is what a successful login returns.
type AuthResult struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
}

// SendVerificationCode validates the phone, enforces the per-phone issuance
// cap, persists a fresh code and hands it to the SMS dispatcher.  The cap is
// skipped in development mode.
func (s *AuthService) SendVerificationCode(ctx context.Context, phone string) error {
	if !phoneRe.MatchString(phone) {
		return fmt.Errorf("%w: phone must be an 11-digit mobile number", ErrValidation)
	}
	if !s.devMode {
		n, err := s.codes.RecentCount(ctx, phone, codeSendWindow)
		if err != nil {
			return err
		}
		if n >= s.codesPerHour {
			return ErrRateLimited
		}
	}
	var userID *uint64
	if u, err := s.users.GetByPhone(ctx, phone); err != nil {
		return err
	} else if u != nil {
		userID = &u.ID
	}
	code, err := s.codes.Issue(ctx, phone, userID, s.codeTTL)
	if err != nil {
		return err
	}
	if err := s.dispatcher.Send(ctx, phone, code); err != nil {
		// Raw provider errors were already logged by the dispatcher.
		return ErrSMSDispatch
	}
	return nil
}

// LoginWithCode claims the code and logs the user in, creating the account
// on first contact.  This is the only registration path.  In single-device
// mode every refresh token the user already holds is revoked before the new
// pair is issued.
func (s *AuthService) LoginWithCode(ctx context.Context, phone, code string, singleDevice bool, ip string) (*AuthResult, error) {
	if !phoneRe.MatchString(phone) || !codeRe.MatchString(code) {
		return nil, fmt.Errorf("%w: phone or code malformed", ErrValidation)
	}
	claimed, err := s.codes.Claim(ctx, phone, code)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrCodeInvalid
	}
	u, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if u == nil {
		if _, err := s.users.CreateWithPhone(ctx, phone); err != nil && !errors.Is(err, repository.ErrPhoneExists) {
			return nil, err
		}
		// Re-read either way: on ErrPhoneExists a concurrent login won the
		// insert and we attach to that row.
		if u, err = s.users.GetByPhone(ctx, phone); err != nil {
			return nil, err
		}
		if u == nil {
			return nil, fmt.Errorf("user vanished after registration for %s", phone)
		}
	}
	return s.finishLogin(ctx, u, singleDevice, ip)
}

// LoginWithPassword authenticates against the stored bcrypt hash.  Unknown
// phone and wrong password fail identically.
func (s *AuthService) LoginWithPassword(ctx context.Context, phone, password string, singleDevice bool, ip string) (*AuthResult, error) {
	if !phoneRe.MatchString(phone) || password == "" {
		return nil, fmt.Errorf("%w: phone or password malformed", ErrValidation)
	}
	u, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if u.PasswordHash == nil {
		return nil, ErrPasswordNotSet
	}
	if !utils.VerifyPassword(*u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.finishLogin(ctx, u, singleDevice, ip)
}

// SetPassword consumes a verification code and stores a new password hash.
// It cannot register: the account must already exist.  Existing sessions
// stay valid; only role and suspension changes force re-authentication.
func (s *AuthService) SetPassword(ctx context.Context, phone, code, password string) error {
	if !phoneRe.MatchString(phone) || !codeRe.MatchString(code) {
		return fmt.Errorf("%w: phone or code malformed", ErrValidation)
	}
	if len(password) < passwordMinLen || len(password) > passwordMaxLen {
		return fmt.Errorf("%w: password must be %d-%d characters", ErrValidation, passwordMinLen, passwordMaxLen)
	}
	claimed, err := s.codes.Claim(ctx, phone, code)
	if err != nil {
		return err
	}
	if !claimed {
		return ErrCodeInvalid
	}
	u, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.SetPasswordHash(ctx, u.ID, hash)
}

// Refresh exchanges a refresh token for a new access token.  The token must
// pass two independent checks: signature+expiry on the JWT itself, then the
// persisted row, which catches tokens revoked before their exp claim.
// The refresh token is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if _, err := s.issuer.VerifyRefresh(refreshToken); err != nil {
		return nil, ErrTokenInvalid
	}
	rt, u, err := s.tokens.FindValid(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if rt == nil || u == nil {
		return nil, ErrTokenRevoked
	}
	access, _, err := s.issuer.AccessToken(u)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, AccessToken: access}, nil
}

// Logout revokes a refresh token.  Idempotent: revoking a garbage or
// already-revoked token succeeds, so the caller always sees a clean logout.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return err
	}
	_ = s.events.Publish(ctx, queue.AuthEvent{
		Type: queue.EventLogout,
		At:   time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

// finishLogin runs the shared tail of both login paths: suspension check,
// optional single-device revocation, token issuance and persistence.
func (s *AuthService) finishLogin(ctx context.Context, u *model.User, singleDevice bool, ip string) (*AuthResult, error) {
	if u.IsSuspended {
		return nil, ErrSuspended
	}
	if singleDevice {
		if err := s.tokens.RevokeAllForUser(ctx, u.ID); err != nil {
			return nil, err
		}
		_ = s.events.Publish(ctx, queue.AuthEvent{
			Type:     queue.EventSessionsCut,
			TargetID: u.ID,
			Detail:   "single-device login",
			IP:       ip,
			At:       time.Now().UTC().Format(time.RFC3339),
		})
	}
	access, _, err := s.issuer.AccessToken(u)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.issuer.RefreshToken(u.ID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Store(ctx, u.ID, refresh, refreshExp); err != nil {
		return nil, err
	}
	_ = s.events.Publish(ctx, queue.AuthEvent{
		Type:     queue.EventLogin,
		ActorID:  u.ID,
		TargetID: u.ID,
		Phone:    u.Phone,
		IP:       ip,
		At:       time.Now().UTC().Format(time.RFC3339),
	})
	return &AuthResult{User: u, AccessToken: access, RefreshToken: refresh}, nil
}
