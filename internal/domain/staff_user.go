package domain

import "time"

// StaffUser models an internal operator account.
type StaffUser struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	AgencyID     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
