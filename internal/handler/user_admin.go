package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lumichat/auth-service/internal/middleware"
	"github.com/lumichat/auth-service/internal/model"
	"github.com/lumichat/auth-service/internal/service"
)

// UserAdminHandler exposes the security-relevant account mutations.  All
// routes sit behind the session gate plus a role gate; the self-action and
// admin-target rules are enforced again inside the service.
type UserAdminHandler struct {
	Admin *service.UserAdminService
}

func NewUserAdminHandler(admin *service.UserAdminService) *UserAdminHandler {
	return &UserAdminHandler{Admin: admin}
}

type changeRoleReq struct {
	Role string `json:"role"`
}
type suspendReq struct {
	Reason string `json:"reason"`
}

// ChangeRole moves the target user to a new role.
func (h *UserAdminHandler) ChangeRole(c echo.Context) error {
	actor := middleware.CurrentIdentity(c)
	target, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req changeRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role, err := model.ParseRole(strings.ToUpper(strings.TrimSpace(req.Role)))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}
	ctx, cancel := opCtx(c)
	defer cancel()
	if err := h.Admin.ChangeRole(ctx, actor.ID, target, role); err != nil {
		return adminFail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "role updated"})
}

// Suspend blocks the target account.
func (h *UserAdminHandler) Suspend(c echo.Context) error {
	actor := middleware.CurrentIdentity(c)
	target, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req suspendReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := opCtx(c)
	defer cancel()
	if err := h.Admin.Suspend(ctx, actor.ID, target, strings.TrimSpace(req.Reason)); err != nil {
		return adminFail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user suspended"})
}

// Unsuspend lifts a suspension.
func (h *UserAdminHandler) Unsuspend(c echo.Context) error {
	actor := middleware.CurrentIdentity(c)
	target, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := opCtx(c)
	defer cancel()
	if err := h.Admin.Unsuspend(ctx, actor.ID, target); err != nil {
		return adminFail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user unsuspended"})
}

// Delete removes the target account.
func (h *UserAdminHandler) Delete(c echo.Context) error {
	actor := middleware.CurrentIdentity(c)
	target, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := opCtx(c)
	defer cancel()
	if err := h.Admin.Delete(ctx, actor.ID, target); err != nil {
		return adminFail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

func adminFail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	}
	c.Logger().Errorf("user-admin: internal error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
