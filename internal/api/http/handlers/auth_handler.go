package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/framehouse/agency-console/internal/api/dto"
	"github.com/framehouse/agency-console/internal/auth"
	"github.com/framehouse/agency-console/internal/domain"
	"github.com/framehouse/agency-console/internal/service"
	apperrors "github.com/framehouse/agency-console/pkg/util"
)

// AuthHandler exposes sign-in, sign-out and password endpoints for both
// session namespaces.
type AuthHandler struct {
	authService *service.AuthService
	lifecycle   *auth.SessionLifecycle
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, lifecycle *auth.SessionLifecycle) *AuthHandler {
	return &AuthHandler{authService: authService, lifecycle: lifecycle}
}

// StaffLogin handles POST /api/auth/login.
func (h *AuthHandler) StaffLogin(c *fiber.Ctx) error {
	req, err := parseLogin(c)
	if err != nil {
		return err
	}
	subject, err := h.authService.LoginStaff(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.startSession(c, subject, domain.SessionKindStaff)
}

// StaffLogout handles POST /api/auth/logout.
func (h *AuthHandler) StaffLogout(c *fiber.Ctx) error {
	h.lifecycle.Logout(c, domain.SessionKindStaff)
	return c.JSON(fiber.Map{"data": fiber.Map{"redirect": auth.RedirectLogin.Location()}})
}

// PortalLogin handles POST /api/auth/portal/login.
func (h *AuthHandler) PortalLogin(c *fiber.Ctx) error {
	req, err := parseLogin(c)
	if err != nil {
		return err
	}
	subject, err := h.authService.LoginClient(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.startSession(c, subject, domain.SessionKindClient)
}

// PortalLogout handles POST /api/auth/portal/logout.
func (h *AuthHandler) PortalLogout(c *fiber.Ctx) error {
	h.lifecycle.Logout(c, domain.SessionKindClient)
	return c.JSON(fiber.Map{"data": fiber.Map{"redirect": auth.RedirectPortalLogin.Location()}})
}

// ActivatePortal handles POST /api/auth/portal/activate.
func (h *AuthHandler) ActivatePortal(c *fiber.Ctx) error {
	var req dto.PortalActivateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Token == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "token and password required")
	}
	if err := h.authService.ActivateClient(c.UserContext(), req.Token, req.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"status":   "activated",
		"redirect": auth.RedirectPortalLogin.Location(),
	}})
}

// RequestPasswordReset handles POST /api/auth/password/reset/request. The answer
// is the same whether or not the address belongs to an account.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.Email) == "" {
		return fiber.NewError(http.StatusBadRequest, "email required")
	}
	kind := domain.SessionKindStaff
	if req.AccountType != "" {
		kind = domain.SessionKind(strings.ToLower(req.AccountType))
		if !kind.Valid() {
			return apperrors.NewValidationError("account_type must be staff or client", nil)
		}
	}

	if _, err := h.authService.RequestPasswordReset(c.UserContext(), kind, req.Email); err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"status": "reset_requested"}})
}

// ConfirmPasswordReset handles POST /api/auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Token == "" || req.NewPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "token and new password required")
	}
	if err := h.authService.ConfirmPasswordReset(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_reset"}})
}

// ChangePassword handles POST /api/account/password and POST /portal/account/password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "current and new password required")
	}

	if err := h.authService.ChangePassword(c.UserContext(), session, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_changed"}})
}

func (h *AuthHandler) startSession(c *fiber.Ctx, subject domain.SessionSubject, kind domain.SessionKind) error {
	expiresAt, err := h.lifecycle.Login(c, subject, kind)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	redirect := auth.RedirectHome.Location()
	if kind == domain.SessionKindClient {
		redirect = auth.RedirectPortal.Location()
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Account:   sessionAccount(subject, kind),
		ExpiresAt: expiresAt,
		Redirect:  redirect,
	}})
}

func parseLogin(c *fiber.Ctx) (dto.LoginRequest, error) {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return req, fiber.NewError(http.StatusBadRequest, "email and password required")
	}
	return req, nil
}
