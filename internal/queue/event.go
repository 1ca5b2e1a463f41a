// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types published by the auth and user-admin services.
const (
	EventLogin       = "auth.login"
	EventLogout      = "auth.logout"
	EventSessionsCut = "auth.sessions_revoked"
	EventSuspended   = "user.suspended"
	EventUnsuspended = "user.unsuspended"
	EventRoleChanged = "user.role_changed"
)

// AuthEvent is the append-only audit record emitted on security-relevant
// actions.  Downstream consumers log or report on it without querying the
// primary database; the service never reads these events back.
type AuthEvent struct {
	Type     string `json:"type"`
	ActorID  uint64 `json:"actor_id,omitempty"`
	TargetID uint64 `json:"target_id,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Detail   string `json:"detail,omitempty"`
	IP       string `json:"ip,omitempty"`
	At       string `json:"at"`
}
