package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/framehouse/agency-console/internal/domain"
)

// Cookie names for the two independent session namespaces.
const (
	StaffCookieName  = "session"
	ClientCookieName = "client_session"
)

// CookieName returns the cookie namespace for a session kind.
func CookieName(kind domain.SessionKind) string {
	if kind == domain.SessionKindClient {
		return ClientCookieName
	}
	return StaffCookieName
}

// SessionLifecycle issues and clears session cookies.
type SessionLifecycle struct {
	codec  *SessionCodec
	secure bool
}

// NewSessionLifecycle builds the lifecycle manager.
func NewSessionLifecycle(codec *SessionCodec, secureCookies bool) *SessionLifecycle {
	return &SessionLifecycle{codec: codec, secure: secureCookies}
}

// Login signs a session for subject and sets it in the kind's cookie only.
func (l *SessionLifecycle) Login(c *fiber.Ctx, subject domain.SessionSubject, kind domain.SessionKind) (time.Time, error) {
	token, expiresAt, err := l.codec.Encode(subject, kind)
	if err != nil {
		return time.Time{}, err
	}
	c.Cookie(&fiber.Cookie{
		Name:     CookieName(kind),
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   l.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return expiresAt, nil
}

// Logout expires the kind's cookie. Other namespaces and other devices are untouched.
func (l *SessionLifecycle) Logout(c *fiber.Ctx, kind domain.SessionKind) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName(kind),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   l.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
