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

// SettingsHandler exposes staff and client management for the settings area.
type SettingsHandler struct {
	accounts *service.AccountService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(accounts *service.AccountService) *SettingsHandler {
	return &SettingsHandler{accounts: accounts}
}

// ListAgencies handles GET /settings/agencies.
func (h *SettingsHandler) ListAgencies(c *fiber.Ctx) error {
	actor, err := actorSession(c)
	if err != nil {
		return err
	}
	var filters service.AgencyListFilters
	filters.Limit, filters.Offset = pagination(c)

	list, err := h.accounts.ListAgencies(c.UserContext(), actor, filters)
	if err != nil {
		return err
	}
	resp := make([]dto.AgencyResponse, 0, len(list))
	for i := range list {
		resp = append(resp, agencyResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// CreateAgency handles POST /settings/agencies.
func (h *SettingsHandler) CreateAgency(c *fiber.Ctx) error {
	actor, err := actorSession(c)
	if err != nil {
		return err
	}
	var req dto.AgencyCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	agency, err := h.accounts.CreateAgency(c.UserContext(), actor, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": agencyResponse(agency)})
}

// ListStaff handles GET /settings/staff.
func (h *SettingsHandler) ListStaff(c *fiber.Ctx) error {
	actor, err := actorSession(c)
	if err != nil {
		return err
	}
	var filters service.StaffListFilters
	if roleStr := c.Query("role"); roleStr != "" {
		role := domain.Role(strings.ToUpper(roleStr))
		if !role.Valid() {
			return apperrors.NewValidationError("unknown role", map[string]any{"role": roleStr})
		}
		filters.Role = &role
	}
	filters.Limit, filters.Offset = pagination(c)

	list, err := h.accounts.ListStaff(c.UserContext(), actor, filters)
	if err != nil {
		return err
	}
	resp := make([]dto.StaffResponse, 0, len(list))
	for i := range list {
		resp = append(resp, staffResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// CreateStaff handles POST /settings/staff.
func (h *SettingsHandler) CreateStaff(c *fiber.Ctx) error {
	actor, err := actorSession(c)
	if err != nil {
		return err
	}
	var req dto.StaffCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	staff, err := h.accounts.CreateStaff(c.UserContext(), actor, service.CreateStaffInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		AgencyID: req.AgencyID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": staffResponse(staff)})
}

// ChangeStaffRole handles PATCH /settings/staff/:id/role.
func (h *SettingsHandler) ChangeStaffRole(c *fiber.Ctx) error {
	actor, err := actorSession(c)
	if err != nil {
		return err
	}
	var req dto.StaffRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	staff, err := h.accounts.ChangeStaffRole(c.UserContext(), actor, c.Params("id"), domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(staff)})
}

// ListClients handles GET /settings/clients.
func (h *SettingsHandler) ListClients(c *fiber.Ctx) error {
	actor, err := actorSession(c)
	if err != nil {
		return err
	}
	filters := service.ClientListFilters{PortalEnabled: parseBoolQuery(c, "portal_enabled")}
	filters.Limit, filters.Offset = pagination(c)

	list, err := h.accounts.ListClients(c.UserContext(), actor, filters)
	if err != nil {
		return err
	}
	resp := make([]dto.ClientResponse, 0, len(list))
	for i := range list {
		resp = append(resp, clientResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// InviteClient handles POST /settings/clients.
func (h *SettingsHandler) InviteClient(c *fiber.Ctx) error {
	actor, err := actorSession(c)
	if err != nil {
		return err
	}
	var req dto.ClientInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	portalEnabled := true
	if req.PortalEnabled != nil {
		portalEnabled = *req.PortalEnabled
	}
	client, token, err := h.accounts.InviteClient(c.UserContext(), actor, service.InviteClientInput{
		Email:         req.Email,
		Name:          req.Name,
		CompanyName:   req.CompanyName,
		AgencyID:      req.AgencyID,
		PortalEnabled: portalEnabled,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ClientInviteResponse{
		Client:          clientResponse(client),
		InviteExpiresAt: token.ExpiresAt,
	}})
}

// SetPortalAccess handles PATCH /settings/clients/:id/portal.
func (h *SettingsHandler) SetPortalAccess(c *fiber.Ctx) error {
	actor, err := actorSession(c)
	if err != nil {
		return err
	}
	var req dto.PortalAccessRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Enabled == nil {
		return fiber.NewError(http.StatusBadRequest, "enabled required")
	}
	client, err := h.accounts.SetPortalEnabled(c.UserContext(), actor, c.Params("id"), *req.Enabled)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": clientResponse(client)})
}

func actorSession(c *fiber.Ctx) (*domain.Session, error) {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return session, nil
}
