package service

import (
	"strings"

	"github.com/framehouse/agency-console/internal/domain"
	apperrors "github.com/framehouse/agency-console/pkg/util"
)

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.NewValidationError("password too short", map[string]any{"min_length": minPasswordLength})
	}
	if len(password) > maxPasswordBytes {
		return apperrors.NewValidationError("password too long", map[string]any{"max_bytes": maxPasswordBytes})
	}
	return nil
}

func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t\r\n") {
		return apperrors.NewValidationError("invalid email", map[string]any{"email": email})
	}
	return nil
}

func validateStaffRole(role domain.Role) error {
	if !role.IsStaff() {
		return apperrors.NewValidationError("invalid staff role", map[string]any{"role": role})
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
