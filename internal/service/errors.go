package service

import (
	"net/http"

	apperrors "github.com/framehouse/agency-console/pkg/util"
)

// Authentication outcomes surfaced to login forms. Credential mismatches share
// one error so callers cannot tell an unknown email from a wrong password.
var (
	ErrInvalidCredentials = apperrors.NewDomainError("INVALID_CREDENTIALS", "invalid email or password", http.StatusUnauthorized, nil)
	ErrPortalDisabled     = apperrors.NewDomainError("PORTAL_DISABLED", "portal access is disabled for this account", http.StatusForbidden, nil)
	ErrIncompleteAccount  = apperrors.NewDomainError("INCOMPLETE_ACCOUNT", "account setup is not complete; use your invitation link to set a password", http.StatusForbidden, nil)
	ErrTooManyAttempts    = apperrors.NewDomainError("TOO_MANY_ATTEMPTS", "too many failed sign-in attempts; try again later", http.StatusTooManyRequests, nil)
	ErrInvalidToken       = apperrors.NewDomainError("INVALID_TOKEN", "link is invalid or has expired", http.StatusBadRequest, nil)
)
