package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framehouse/agency-console/internal/config"
	"github.com/framehouse/agency-console/internal/domain"
)

const (
	testSecret  = "test-secret-test-secret-test-secret!"
	otherSecret = "another-secret-another-secret-another"
	testIssuer  = "agency-console"
)

func newTestCodec(t *testing.T, now time.Time) *SessionCodec {
	t.Helper()
	codec, err := NewSessionCodec(testSecret, testIssuer)
	require.NoError(t, err)
	codec.now = func() time.Time { return now }
	return codec
}

func staffSubject(role domain.Role) domain.SessionSubject {
	agency := "agency-1"
	return domain.SessionSubject{ID: "staff-1", Email: "ops@studio.test", Name: "Ops", Role: role, AgencyID: &agency}
}

func clientSubject() domain.SessionSubject {
	return domain.SessionSubject{ID: "client-1", Email: "buyer@brand.test", Name: "Buyer", Role: domain.RoleClient}
}

func TestNewSessionCodecRequiresSecret(t *testing.T) {
	_, err := NewSessionCodec("", testIssuer)
	assert.ErrorIs(t, err, config.ErrMissingSessionSecret)

	_, err = NewSessionCodec("short", testIssuer)
	assert.ErrorIs(t, err, config.ErrMissingSessionSecret)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, now)

	token, expiresAt, err := codec.Encode(staffSubject(domain.RoleAgencyAdmin), domain.SessionKindStaff)
	require.NoError(t, err)
	assert.True(t, now.Add(domain.SessionTTL).Equal(expiresAt))

	session, ok := codec.Decode(token)
	require.True(t, ok)
	assert.Equal(t, domain.SessionKindStaff, session.Kind)
	assert.Equal(t, "staff-1", session.Subject.ID)
	assert.Equal(t, domain.RoleAgencyAdmin, session.Subject.Role)
	require.NotNil(t, session.Subject.AgencyID)
	assert.Equal(t, "agency-1", *session.Subject.AgencyID)
	assert.Equal(t, domain.SessionTTL, session.ExpiresAt.Sub(session.IssuedAt))
}

func TestDecodeRejectsExpiredTokens(t *testing.T) {
	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, issued)
	token, _, err := codec.Encode(clientSubject(), domain.SessionKindClient)
	require.NoError(t, err)

	for _, offset := range []time.Duration{domain.SessionTTL, domain.SessionTTL + time.Second, 30 * 24 * time.Hour} {
		codec.now = func() time.Time { return issued.Add(offset) }
		_, ok := codec.Decode(token)
		assert.False(t, ok, "token must be rejected %s after issue", offset)
	}

	codec.now = func() time.Time { return issued.Add(domain.SessionTTL - time.Second) }
	_, ok := codec.Decode(token)
	assert.True(t, ok)
}

func TestDecodeRejectsForeignSecret(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(t, now)
	foreign, err := NewSessionCodec(otherSecret, testIssuer)
	require.NoError(t, err)

	for _, kind := range []domain.SessionKind{domain.SessionKindStaff, domain.SessionKindClient} {
		subject := staffSubject(domain.RoleAdmin)
		if kind == domain.SessionKindClient {
			subject = clientSubject()
		}
		token, _, err := foreign.Encode(subject, kind)
		require.NoError(t, err)

		_, ok := codec.Decode(token)
		assert.False(t, ok)
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	codec := newTestCodec(t, time.Now())
	token, _, err := codec.Encode(staffSubject(domain.RoleAdmin), domain.SessionKindStaff)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	for _, input := range []string{"", "garbage", "a.b.c", tampered, token + "x"} {
		session, ok := codec.Decode(input)
		assert.False(t, ok, input)
		assert.Nil(t, session)
	}
}

func TestDecodeRejectsUnsignedTokens(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(t, now)
	claims := &sessionClaims{
		Role: domain.RoleAdmin,
		Kind: domain.SessionKindStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Subject:   "staff-1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(domain.SessionTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, ok := codec.Decode(token)
	assert.False(t, ok)
}

func TestDecodeRejectsInconsistentClaims(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, now)

	sign := func(role domain.Role, kind domain.SessionKind, issuer string, ttl time.Duration) string {
		claims := &sessionClaims{
			Role: role,
			Kind: kind,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				Subject:   "subject-1",
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return token
	}

	cases := map[string]string{
		"client kind with staff role": sign(domain.RoleAdmin, domain.SessionKindClient, testIssuer, domain.SessionTTL),
		"staff kind with client role": sign(domain.RoleClient, domain.SessionKindStaff, testIssuer, domain.SessionTTL),
		"unknown kind":                sign(domain.RoleAdmin, domain.SessionKind("robot"), testIssuer, domain.SessionTTL),
		"unknown role":                sign(domain.Role("OWNER"), domain.SessionKindStaff, testIssuer, domain.SessionTTL),
		"foreign issuer":              sign(domain.RoleAdmin, domain.SessionKindStaff, "elsewhere", domain.SessionTTL),
		"extended lifetime":           sign(domain.RoleAdmin, domain.SessionKindStaff, testIssuer, 30*24*time.Hour),
	}
	for name, token := range cases {
		_, ok := codec.Decode(token)
		assert.False(t, ok, name)
	}

	_, ok := codec.Decode(sign(domain.RoleAdmin, domain.SessionKindStaff, testIssuer, domain.SessionTTL))
	assert.True(t, ok)
}
