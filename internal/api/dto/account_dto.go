package dto

import "time"

// AgencyCreateRequest payload for registering a partner agency.
type AgencyCreateRequest struct {
	Name string `json:"name"`
}

// AgencyResponse is the settings view of an agency.
type AgencyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// StaffCreateRequest payload for adding a staff account.
type StaffCreateRequest struct {
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	AgencyID *string `json:"agency_id"`
}

// StaffRoleRequest payload for changing a staff role.
type StaffRoleRequest struct {
	Role string `json:"role"`
}

// StaffResponse is the settings view of a staff account. Password hashes never leave the service.
type StaffResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	AgencyID  *string   `json:"agency_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ClientInviteRequest payload for inviting a portal client.
type ClientInviteRequest struct {
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	CompanyName   string  `json:"company_name"`
	AgencyID      *string `json:"agency_id"`
	PortalEnabled *bool   `json:"portal_enabled"`
}

// PortalAccessRequest payload for toggling portal access.
type PortalAccessRequest struct {
	Enabled *bool `json:"enabled"`
}

// ClientResponse is the settings view of a client account.
type ClientResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	CompanyName   string    `json:"company_name"`
	AgencyID      *string   `json:"agency_id,omitempty"`
	PortalEnabled bool      `json:"portal_enabled"`
	Activated     bool      `json:"activated"`
	CreatedAt     time.Time `json:"created_at"`
}

// ClientInviteResponse confirms an invitation. The activation token is only
// delivered to the invitee.
type ClientInviteResponse struct {
	Client          ClientResponse `json:"client"`
	InviteExpiresAt time.Time      `json:"invite_expires_at"`
}

// PageResponse describes the page shell the front end should render.
type PageResponse struct {
	Page    string            `json:"page"`
	Path    string            `json:"path"`
	Account *SessionAccount   `json:"account,omitempty"`
	Params  map[string]string `json:"params,omitempty"`
}
