package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/framehouse/agency-console/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventClientInvited          EventType = "client_invited"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPortalAccessChanged    EventType = "portal_access_changed"
	EventStaffRoleChanged       EventType = "staff_role_changed"
)

// Actor identifies who triggered an event. Nil for self-service flows.
type Actor struct {
	Kind domain.SessionKind `json:"kind"`
	ID   string             `json:"id"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	AccountID string      `json:"account_id"`
	Actor     *Actor      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, accountID string, actor *Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		AccountID: accountID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ClientInvitedPayload carries the activation link material.
type ClientInvitedPayload struct {
	Email       string    `json:"email"`
	CompanyName string    `json:"company_name"`
	Token       string    `json:"-"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// PasswordResetRequestedPayload payload.
type PasswordResetRequestedPayload struct {
	Kind      domain.SessionKind `json:"kind"`
	Email     string             `json:"email"`
	Token     string             `json:"-"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// PortalAccessChangedPayload payload.
type PortalAccessChangedPayload struct {
	Enabled bool `json:"enabled"`
}

// StaffRoleChangedPayload payload.
type StaffRoleChangedPayload struct {
	OldRole domain.Role `json:"old_role"`
	NewRole domain.Role `json:"new_role"`
}
