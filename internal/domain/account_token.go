package domain

import "time"

// TokenPurpose distinguishes single-use account tokens.
type TokenPurpose string

const (
	TokenPurposePasswordReset TokenPurpose = "PASSWORD_RESET"
	TokenPurposeInvite        TokenPurpose = "INVITE"
)

// AccountToken is a single-use token for password resets and portal invitations.
type AccountToken struct {
	ID        string
	Kind      SessionKind
	SubjectID string
	Purpose   TokenPurpose
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable reports whether the token can still be redeemed at now.
func (t *AccountToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
