package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		path   string
		class  RouteClass
		portal bool
	}{
		{"/", RouteDefault, false},
		{"/projects/42", RouteDefault, false},
		{"/api/auth", RouteAPIAuth, false},
		{"/api/auth/login", RouteAPIAuth, false},
		{"/api/auth/portal/login", RouteAPIAuth, false},
		{"/api/authors", RouteDefault, false},
		{"/api/projects", RouteDefault, false},
		{"/login", RouteLogin, false},
		{"/login/", RouteLogin, false},
		{"/portal/login", RouteLogin, true},
		{"/review/abc123", RoutePublicReview, false},
		{"/reviews", RouteDefault, false},
		{"/portal", RoutePortal, true},
		{"/portal/projects", RoutePortal, true},
		{"/portals", RouteDefault, false},
		{"/finance", RouteFinance, false},
		{"/finance/overview", RouteFinance, false},
		{"/financial", RouteDefault, false},
		{"/settings", RouteSettings, false},
		{"/settings/staff", RouteSettings, false},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			route := Classify(tc.path)
			assert.Equal(t, tc.class, route.Class)
			assert.Equal(t, tc.portal, route.Portal)
		})
	}
}

func TestClassifyMatchesRouterReading(t *testing.T) {
	for _, p := range []string{"/Finance", "/finance/", "/FINANCE/overview/", "/finance?tab=1", "/finance#top"} {
		route := Classify(p)
		assert.Equal(t, RouteFinance, route.Class, p)
		assert.False(t, route.Ambiguous, p)
	}

	// Escapes are not decoded, just as the router does not decode them.
	route := Classify("/%66inance/q")
	assert.Equal(t, RouteDefault, route.Class)
	assert.False(t, route.Ambiguous)
}

func TestClassifyFlagsAmbiguousPaths(t *testing.T) {
	paths := []string{
		"/finance/../review/x",
		"/review/../finance",
		"/finance/%2e%2e/review/x",
		"/finance/x/..%2f..%2fportal",
		"/portal/%2E%2E/settings",
		"/api/auth/../../settings",
		"/./settings",
		"//finance",
		"/review\\..\\finance",
		"/review/%zz",
	}
	for _, p := range paths {
		route := Classify(p)
		assert.True(t, route.Ambiguous, p)
		assert.Equal(t, RouteDefault, route.Class, p)
		assert.False(t, route.Public(), p)
	}
}

func TestRoutePublic(t *testing.T) {
	assert.True(t, Classify("/login").Public())
	assert.True(t, Classify("/portal/login").Public())
	assert.True(t, Classify("/review/x").Public())
	assert.False(t, Classify("/api/auth/login").Public())
	assert.False(t, Classify("/portal").Public())
}
