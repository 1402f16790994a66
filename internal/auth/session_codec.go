package auth

import (
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/framehouse/agency-console/internal/config"
	"github.com/framehouse/agency-console/internal/domain"
)

// SessionCodec signs and verifies session tokens.
type SessionCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionCodec builds a codec. A missing or short secret is a configuration error.
func NewSessionCodec(secret, issuer string) (*SessionCodec, error) {
	if len(strings.TrimSpace(secret)) < config.MinSessionSecretLength {
		return nil, config.ErrMissingSessionSecret
	}
	return &SessionCodec{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    domain.SessionTTL,
		now:    time.Now,
	}, nil
}

type sessionClaims struct {
	Email    string             `json:"email"`
	Name     string             `json:"name"`
	Role     domain.Role        `json:"role"`
	AgencyID *string            `json:"agency_id,omitempty"`
	Kind     domain.SessionKind `json:"kind"`
	jwt.RegisteredClaims
}

// Encode signs a token for the subject. The expiry is always issue time plus SessionTTL.
func (sc *SessionCodec) Encode(subject domain.SessionSubject, kind domain.SessionKind) (string, time.Time, error) {
	issuedAt := jwt.NewNumericDate(sc.now())
	expiresAt := jwt.NewNumericDate(issuedAt.Add(sc.ttl))
	claims := &sessionClaims{
		Email:    subject.Email,
		Name:     subject.Name,
		Role:     subject.Role,
		AgencyID: subject.AgencyID,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sc.issuer,
			Subject:   subject.ID,
			IssuedAt:  issuedAt,
			ExpiresAt: expiresAt,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(sc.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt.Time, nil
}

// Decode verifies a token and returns its session.
// Every failure (malformed, wrong key or algorithm, expired, inconsistent claims)
// yields false without a reason.
func (sc *SessionCodec) Decode(tokenStr string) (*domain.Session, bool) {
	if tokenStr == "" {
		return nil, false
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(sc.issuer),
		jwt.WithTimeFunc(sc.now),
	)

	claims := &sessionClaims{}
	parsed, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return sc.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, false
	}
	if !consistentClaims(claims, sc.ttl) {
		return nil, false
	}

	return &domain.Session{
		Subject: domain.SessionSubject{
			ID:       claims.Subject,
			Email:    claims.Email,
			Name:     claims.Name,
			Role:     claims.Role,
			AgencyID: claims.AgencyID,
		},
		Kind:      claims.Kind,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, true
}

func consistentClaims(claims *sessionClaims, ttl time.Duration) bool {
	if claims.Subject == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return false
	}
	if claims.ExpiresAt.Sub(claims.IssuedAt.Time) != ttl {
		return false
	}
	switch claims.Kind {
	case domain.SessionKindStaff:
		return claims.Role.IsStaff()
	case domain.SessionKindClient:
		return claims.Role == domain.RoleClient
	}
	return false
}
