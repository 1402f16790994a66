package domain

import "time"

// ClientAccount is an external customer restricted to the portal.
//
// PasswordHash stays nil until an invited client activates the account.
type ClientAccount struct {
	ID            string
	Email         string
	PasswordHash  *string
	Name          string
	CompanyName   string
	AgencyID      *string
	PortalEnabled bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Activated reports whether the client has set a password.
func (c *ClientAccount) Activated() bool {
	return c.PasswordHash != nil && *c.PasswordHash != ""
}
