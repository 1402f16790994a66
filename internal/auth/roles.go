package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/framehouse/agency-console/internal/domain"
	apperrors "github.com/framehouse/agency-console/pkg/util"
)

// RequireClient ensures a client session is present.
func RequireClient() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok || !session.IsClient() {
			return apperrors.NewForbidden("client session required")
		}
		return c.Next()
	}
}

// RequireStaffRole ensures the staff session has one of the allowed roles.
func RequireStaffRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok || session.Kind != domain.SessionKindStaff {
			return apperrors.NewForbidden("staff session required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[session.Subject.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
