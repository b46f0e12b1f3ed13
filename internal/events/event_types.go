package events

import (
	"time"

	"github.com/spec-kit/account-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered  EventType = "user_registered"
	EventUserLoggedIn    EventType = "user_logged_in"
	EventPasswordChanged EventType = "password_changed"
	EventRoleChanged     EventType = "role_changed"
	EventTokenRevoked    EventType = "token_revoked"
	EventUserDeleted     EventType = "user_deleted"
)

// Event represents an account event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string          `json:"email"`
	Role  domain.UserRole `json:"role"`
}

// UserLoggedInPayload payload.
type UserLoggedInPayload struct {
	Email string `json:"email"`
	IP    string `json:"ip,omitempty"`
}

// RoleChangedPayload payload.
type RoleChangedPayload struct {
	OldRole domain.UserRole `json:"old_role"`
	NewRole domain.UserRole `json:"new_role"`
}

// TokenRevokedPayload payload.
type TokenRevokedPayload struct {
	JTI string `json:"jti"`
}
