package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/framehouse/agency-console/internal/domain"
)

const sessionKey = "auth_session"

var staticPrefixes = []string{"/static/", "/assets/"}

var staticFiles = map[string]struct{}{
	"/favicon.ico": {},
	"/robots.txt":  {},
}

// Gateway gates every non-static request on its session cookie and route class.
type Gateway struct {
	codec *SessionCodec
}

// NewGateway constructs the request gateway.
func NewGateway(codec *SessionCodec) *Gateway {
	return &Gateway{codec: codec}
}

// Handle either passes the request on with its session in context or redirects.
// Paths the router could resolve differently from the classifier are rejected outright.
func (g *Gateway) Handle(c *fiber.Ctx) error {
	route := Classify(c.Path())
	if route.Ambiguous {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request path")
	}
	if isStaticAsset(route.Path) {
		return c.Next()
	}

	session := g.resolveSession(c, route)

	outcome := Decide(route, session)
	if outcome != Allow {
		return c.Redirect(outcome.Location(), fiber.StatusFound)
	}

	if session != nil {
		c.Locals(sessionKey, session)
	}
	return c.Next()
}

// resolveSession returns the first valid session in namespace preference order.
// Portal paths look at the client cookie first, everything else at the staff cookie.
// A token whose kind does not match its cookie is ignored.
func (g *Gateway) resolveSession(c *fiber.Ctx, route Route) *domain.Session {
	order := [2]domain.SessionKind{domain.SessionKindStaff, domain.SessionKindClient}
	if route.Portal {
		order = [2]domain.SessionKind{domain.SessionKindClient, domain.SessionKindStaff}
	}

	for _, kind := range order {
		raw := c.Cookies(CookieName(kind))
		if raw == "" {
			continue
		}
		session, ok := g.codec.Decode(raw)
		if !ok || session.Kind != kind {
			continue
		}
		return session
	}
	return nil
}

// SessionFromContext retrieves the session the gateway admitted the request with.
func SessionFromContext(c *fiber.Ctx) (*domain.Session, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	session, ok := val.(*domain.Session)
	return session, ok
}

func isStaticAsset(p string) bool {
	if _, ok := staticFiles[p]; ok {
		return true
	}
	for _, prefix := range staticPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
