package domain

// Role enumerates the access roles carried by a session.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleTeam        Role = "TEAM"
	RoleAgencyAdmin Role = "AGENCY_ADMIN"
	RoleAgencyTeam  Role = "AGENCY_TEAM"
	// RoleClient is never stored; it is implied by a client account.
	RoleClient Role = "CLIENT"
)

// IsStaff reports whether the role belongs to an internal operator.
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleTeam, RoleAgencyAdmin, RoleAgencyTeam:
		return true
	}
	return false
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r.IsStaff() || r == RoleClient
}
