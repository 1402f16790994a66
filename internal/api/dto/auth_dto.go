package dto

import "time"

// LoginRequest payload for both staff and portal sign-in forms.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginResponse describes the identity placed in the new session.
type LoginResponse struct {
	Account   SessionAccount `json:"account"`
	ExpiresAt time.Time      `json:"expires_at"`
	Redirect  string         `json:"redirect"`
}

// SessionAccount is the public view of a session subject.
type SessionAccount struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Role     string  `json:"role"`
	Kind     string  `json:"kind"`
	AgencyID *string `json:"agency_id,omitempty"`
}

// PasswordResetRequest payload for initiating reset. AccountType is "staff"
// (default) or "client".
type PasswordResetRequest struct {
	Email       string `json:"email" form:"email"`
	AccountType string `json:"account_type" form:"account_type"`
}

// PasswordResetConfirmRequest payload for confirming reset.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" form:"token"`
	NewPassword string `json:"new_password" form:"new_password"`
}

// PortalActivateRequest payload for setting the first portal password.
type PortalActivateRequest struct {
	Token    string `json:"token" form:"token"`
	Password string `json:"password" form:"password"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
}
