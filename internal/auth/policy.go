package auth

import "github.com/framehouse/agency-console/internal/domain"

// Outcome is the gateway's decision for a request.
type Outcome int

const (
	Allow Outcome = iota
	RedirectLogin
	RedirectPortalLogin
	RedirectHome
	RedirectPortal
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectPortalLogin:
		return "redirect-portal-login"
	case RedirectHome:
		return "redirect-home"
	case RedirectPortal:
		return "redirect-portal"
	}
	return "unknown"
}

// Location returns the redirect target, or "" for Allow.
func (o Outcome) Location() string {
	switch o {
	case RedirectLogin:
		return "/login"
	case RedirectPortalLogin:
		return "/portal/login"
	case RedirectHome:
		return "/"
	case RedirectPortal:
		return "/portal"
	}
	return ""
}

// Decide applies the access rules in order; the first matching rule wins.
// A session with an unknown role or a kind that contradicts its role is
// treated as no session.
func Decide(route Route, session *domain.Session) Outcome {
	if route.Class == RouteAPIAuth {
		return Allow
	}

	if !usableSession(session) {
		if route.Public() {
			return Allow
		}
		if route.Portal {
			return RedirectPortalLogin
		}
		return RedirectLogin
	}

	role := session.Subject.Role
	if route.Class == RouteLogin {
		if role == domain.RoleClient {
			return RedirectPortal
		}
		return RedirectHome
	}

	if role == domain.RoleClient {
		if route.Class != RoutePortal && route.Class != RoutePublicReview {
			return RedirectPortal
		}
		return Allow
	}

	switch role {
	case domain.RoleTeam, domain.RoleAgencyTeam:
		if route.Class == RouteFinance || route.Class == RouteSettings {
			return RedirectHome
		}
	case domain.RoleAgencyAdmin:
		if route.Class == RouteFinance {
			return RedirectHome
		}
	}
	return Allow
}

func usableSession(session *domain.Session) bool {
	if session == nil {
		return false
	}
	switch session.Kind {
	case domain.SessionKindStaff:
		return session.Subject.Role.IsStaff()
	case domain.SessionKindClient:
		return session.Subject.Role == domain.RoleClient
	}
	return false
}
