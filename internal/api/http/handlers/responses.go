package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/framehouse/agency-console/internal/api/dto"
	"github.com/framehouse/agency-console/internal/domain"
)

func sessionAccount(subject domain.SessionSubject, kind domain.SessionKind) dto.SessionAccount {
	return dto.SessionAccount{
		ID:       subject.ID,
		Email:    subject.Email,
		Name:     subject.Name,
		Role:     string(subject.Role),
		Kind:     string(kind),
		AgencyID: subject.AgencyID,
	}
}

func agencyResponse(agency *domain.Agency) dto.AgencyResponse {
	return dto.AgencyResponse{ID: agency.ID, Name: agency.Name, CreatedAt: agency.CreatedAt}
}

func staffResponse(staff *domain.StaffUser) dto.StaffResponse {
	return dto.StaffResponse{
		ID:        staff.ID,
		Email:     staff.Email,
		Name:      staff.Name,
		Role:      string(staff.Role),
		AgencyID:  staff.AgencyID,
		CreatedAt: staff.CreatedAt,
	}
}

func clientResponse(client *domain.ClientAccount) dto.ClientResponse {
	return dto.ClientResponse{
		ID:            client.ID,
		Email:         client.Email,
		Name:          client.Name,
		CompanyName:   client.CompanyName,
		AgencyID:      client.AgencyID,
		PortalEnabled: client.PortalEnabled,
		Activated:     client.Activated(),
		CreatedAt:     client.CreatedAt,
	}
}

func parseBoolQuery(c *fiber.Ctx, key string) *bool {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return &parsed
		}
	}
	return nil
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

// pagination turns page/page_size query values into limit and offset.
func pagination(c *fiber.Ctx) (limit, offset int) {
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 50)
	if pageSize > 200 {
		pageSize = 200
	}
	return pageSize, (page - 1) * pageSize
}
