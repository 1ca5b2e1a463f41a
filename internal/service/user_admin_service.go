package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lumichat/auth-service/internal/model"
	"github.com/lumichat/auth-service/internal/queue"
)

// UserAdminService carries the security-relevant account mutations: role
// changes, suspension and deletion.  The self-action and admin-target guards
// live here as typed errors, re-validated on every call, not in middleware.
// Role and suspension changes revoke the target's refresh tokens so the
// change takes effect on their very next request.
type UserAdminService struct {
	users  UserStore
	tokens TokenStore
	events EventPublisher
}

func NewUserAdminService(users UserStore, tokens TokenStore, events EventPublisher) *UserAdminService {
	return &UserAdminService{users: users, tokens: tokens, events: events}
}

// ChangeRole moves the target to a new role.  Actors cannot change their
// own role.  All of the target's sessions are cut.
func (s *UserAdminService) ChangeRole(ctx context.Context, actorID, targetID uint64, role model.Role) error {
	if actorID == targetID {
		return fmt.Errorf("%w: cannot change own role", ErrForbidden)
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}
	if err := s.users.SetRole(ctx, targetID, role); err != nil {
		return err
	}
	if err := s.tokens.RevokeAllForUser(ctx, targetID); err != nil {
		return err
	}
	_ = s.events.Publish(ctx, queue.AuthEvent{
		Type:     queue.EventRoleChanged,
		ActorID:  actorID,
		TargetID: targetID,
		Detail:   string(role),
		At:       time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

// Suspend blocks the target account.  Self-suspension and suspension of
// ADMIN accounts are forbidden.  All of the target's sessions are cut so
// the suspension gates their next request.
func (s *UserAdminService) Suspend(ctx context.Context, actorID, targetID uint64, reason string) error {
	if actorID == targetID {
		return fmt.Errorf("%w: cannot suspend self", ErrForbidden)
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}
	if target.Role == model.RoleAdmin {
		return fmt.Errorf("%w: cannot suspend an admin account", ErrForbidden)
	}
	if err := s.users.SetSuspended(ctx, targetID, true, reason); err != nil {
		return err
	}
	if err := s.tokens.RevokeAllForUser(ctx, targetID); err != nil {
		return err
	}
	_ = s.events.Publish(ctx, queue.AuthEvent{
		Type:     queue.EventSuspended,
		ActorID:  actorID,
		TargetID: targetID,
		Detail:   reason,
		At:       time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

// Unsuspend lifts a suspension.  No guard beyond target existence: lifting
// a block is not a privilege-escalation surface.
func (s *UserAdminService) Unsuspend(ctx context.Context, actorID, targetID uint64) error {
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}
	if err := s.users.SetSuspended(ctx, targetID, false, ""); err != nil {
		return err
	}
	_ = s.events.Publish(ctx, queue.AuthEvent{
		Type:     queue.EventUnsuspended,
		ActorID:  actorID,
		TargetID: targetID,
		At:       time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

// Delete removes the target account.  Self-deletion and deletion of ADMIN
// accounts are forbidden.
func (s *UserAdminService) Delete(ctx context.Context, actorID, targetID uint64) error {
	if actorID == targetID {
		return fmt.Errorf("%w: cannot delete self", ErrForbidden)
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}
	if target.Role == model.RoleAdmin {
		return fmt.Errorf("%w: cannot delete an admin account", ErrForbidden)
	}
	if err := s.tokens.RevokeAllForUser(ctx, targetID); err != nil {
		return err
	}
	return s.users.Delete(ctx, targetID)
}
