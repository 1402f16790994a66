package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/framehouse/agency-console/internal/api/dto"
	"github.com/framehouse/agency-console/internal/auth"
)

// PagesHandler answers page-shell requests with a descriptor of the page to
// render. By the time a handler runs the gateway has already admitted the request.
type PagesHandler struct{}

// NewPagesHandler constructs handler.
func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

// Page returns a handler describing the named page.
func (h *PagesHandler) Page(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp := dto.PageResponse{Page: name, Path: c.Path()}
		if session, ok := auth.SessionFromContext(c); ok {
			account := sessionAccount(session.Subject, session.Kind)
			resp.Account = &account
		}
		if token := c.Params("token"); token != "" {
			resp.Params = map[string]string{"token": token}
		}
		return c.JSON(fiber.Map{"data": resp})
	}
}
