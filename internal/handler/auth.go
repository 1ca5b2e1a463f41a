package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lumichat/auth-service/internal/middleware"
	"github.com/lumichat/auth-service/internal/model"
	"github.com/lumichat/auth-service/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth *service.AuthService
	Dev  bool // include internal error details in 500 bodies
}

func NewAuthHandler(auth *service.AuthService, dev bool) *AuthHandler {
	return &AuthHandler{Auth: auth, Dev: dev}
}

// ----- DTOs -----

type sendCodeReq struct {
	Phone string `json:"phone"`
}
type codeLoginReq struct {
	Phone            string `json:"phone"`
	Code             string `json:"code"`
	SingleDeviceMode bool   `json:"singleDeviceMode"`
}
type passwordLoginReq struct {
	Phone            string `json:"phone"`
	Password         string `json:"password"`
	SingleDeviceMode bool   `json:"singleDeviceMode"`
}
type setPasswordReq struct {
	Phone    string `json:"phone"`
	Code     string `json:"code"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

// userPart is the redacted projection returned to clients.  The password
// hash and suspension bookkeeping never serialize.
type userPart struct {
	ID    uint64 `json:"id"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func redact(u *model.User) userPart {
	return userPart{ID: u.ID, Phone: u.Phone, Name: u.DisplayName(), Role: string(u.Role)}
}

type loginResp struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	User         userPart `json:"user"`
}
type refreshResp struct {
	AccessToken string   `json:"accessToken"`
	User        userPart `json:"user"`
}

// SendCode issues a verification code and dispatches it over SMS.
func (h *AuthHandler) SendCode(c echo.Context) error {
	var req sendCodeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := opCtx(c)
	defer cancel()
	if err := h.Auth.SendVerificationCode(ctx, strings.TrimSpace(req.Phone)); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "verification code sent"})
}

// LoginWithCode exchanges a valid code for a token pair, registering the
// account on first login.
func (h *AuthHandler) LoginWithCode(c echo.Context) error {
	var req codeLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := opCtx(c)
	defer cancel()
	res, err := h.Auth.LoginWithCode(ctx, strings.TrimSpace(req.Phone), strings.TrimSpace(req.Code), req.SingleDeviceMode, c.RealIP())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, loginResp{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         redact(res.User),
	})
}

// LoginWithPassword authenticates an account that previously set a password.
func (h *AuthHandler) LoginWithPassword(c echo.Context) error {
	var req passwordLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := opCtx(c)
	defer cancel()
	res, err := h.Auth.LoginWithPassword(ctx, strings.TrimSpace(req.Phone), req.Password, req.SingleDeviceMode, c.RealIP())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, loginResp{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         redact(res.User),
	})
}

// SetPassword consumes a verification code and stores a new password.
func (h *AuthHandler) SetPassword(c echo.Context) error {
	var req setPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := opCtx(c)
	defer cancel()
	if err := h.Auth.SetPassword(ctx, strings.TrimSpace(req.Phone), strings.TrimSpace(req.Code), req.Password); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// Refresh validates a refresh token and returns a new access token WITHOUT
// rotating the refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "refreshToken required"})
	}
	ctx, cancel := opCtx(c)
	defer cancel()
	res, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, refreshResp{AccessToken: res.AccessToken, User: redact(res.User)})
}

// Logout revokes the supplied refresh token.  Always succeeds for garbage
// or already-revoked tokens; only a malformed body is rejected.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := opCtx(c)
	defer cancel()
	if err := h.Auth.Logout(ctx, strings.TrimSpace(req.RefreshToken)); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me echoes the authenticated identity.  Simple protected endpoint.
func (h *AuthHandler) Me(c echo.Context) error {
	ident := middleware.CurrentIdentity(c)
	return c.JSON(http.StatusOK, echo.Map{
		"id":    ident.ID,
		"phone": ident.Phone,
		"name":  ident.Name,
		"role":  string(ident.Role),
	})
}

// opCtx bounds every auth operation's storage work to a conservative
// timeout; a stall surfaces as a 500, never a silent retry.
func opCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// fail maps the service error taxonomy onto HTTP statuses.  Taxonomy
// messages are client-safe; anything unclassified becomes a generic 500
// with the detail included in dev mode only.
func (h *AuthHandler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrCodeInvalid),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrPasswordNotSet),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRateLimited),
		errors.Is(err, service.ErrSMSDispatch):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrTokenInvalid), errors.Is(err, service.ErrTokenRevoked):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrSuspended), errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	}
	c.Logger().Errorf("auth: internal error: %v", err)
	if h.Dev {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
