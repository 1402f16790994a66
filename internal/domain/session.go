package domain

import "time"

// SessionTTL is the fixed lifetime of every session token.
const SessionTTL = 7 * 24 * time.Hour

// SessionKind differentiates staff vs client sessions.
type SessionKind string

const (
	SessionKindStaff  SessionKind = "staff"
	SessionKindClient SessionKind = "client"
)

// Valid reports whether k is a known session kind.
func (k SessionKind) Valid() bool {
	return k == SessionKindStaff || k == SessionKindClient
}

// SessionSubject is the identity summary embedded in a session token.
type SessionSubject struct {
	ID       string
	Email    string
	Name     string
	Role     Role
	AgencyID *string
}

// Session is a decoded, verified session token.
type Session struct {
	Subject   SessionSubject
	Kind      SessionKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsClient reports whether the session belongs to a client account.
func (s *Session) IsClient() bool {
	return s != nil && s.Kind == SessionKindClient
}

// StaffSubject builds the token subject for a staff user.
func StaffSubject(u *StaffUser) SessionSubject {
	return SessionSubject{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, AgencyID: u.AgencyID}
}

// ClientSubject builds the token subject for a client account.
func ClientSubject(c *ClientAccount) SessionSubject {
	return SessionSubject{ID: c.ID, Email: c.Email, Name: c.Name, Role: RoleClient, AgencyID: c.AgencyID}
}
