package auth

import (
	"net/url"
	"strings"
)

// RouteClass buckets request paths for access decisions.
type RouteClass int

const (
	// RouteDefault covers every authenticated page not otherwise classified.
	RouteDefault RouteClass = iota
	RouteAPIAuth
	RouteLogin
	RoutePublicReview
	RoutePortal
	RouteFinance
	RouteSettings
)

func (c RouteClass) String() string {
	switch c {
	case RouteAPIAuth:
		return "api-auth"
	case RouteLogin:
		return "login"
	case RoutePublicReview:
		return "public-review"
	case RoutePortal:
		return "portal"
	case RouteFinance:
		return "finance"
	case RouteSettings:
		return "settings"
	default:
		return "default"
	}
}

// Route is a classified request path.
type Route struct {
	Path  string
	Class RouteClass
	// Portal is set for every path under /portal, including the portal login page.
	Portal bool
	// Ambiguous marks paths that a decoding or cleaning reader would resolve to a
	// different location than the router does. They must be rejected.
	Ambiguous bool
}

// Public reports whether the route is reachable without a session.
func (r Route) Public() bool {
	return !r.Ambiguous && (r.Class == RouteLogin || r.Class == RoutePublicReview)
}

// escapedSeparators are escapes that decode into path structure.
var escapedSeparators = []string{"%2e", "%2f", "%5c"}

// Classify maps a raw request path onto its route class.
// It reads the path the way the router matches it: case-insensitively, without
// trailing slashes and without decoding escapes. Dot segments, escaped separators
// and malformed escapes yield an ambiguous RouteDefault.
func Classify(rawPath string) Route {
	p := routingPath(rawPath)
	if ambiguousPath(p) {
		return Route{Path: p, Class: RouteDefault, Ambiguous: true}
	}

	route := Route{Path: p, Portal: underPrefix(p, "/portal")}
	switch {
	case underPrefix(p, "/api/auth"):
		route.Class = RouteAPIAuth
	case p == "/login" || p == "/portal/login":
		route.Class = RouteLogin
	case underPrefix(p, "/review"):
		route.Class = RoutePublicReview
	case route.Portal:
		route.Class = RoutePortal
	case underPrefix(p, "/finance"):
		route.Class = RouteFinance
	case underPrefix(p, "/settings"):
		route.Class = RouteSettings
	default:
		route.Class = RouteDefault
	}
	return route
}

func routingPath(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	p := strings.TrimRight(strings.ToLower(raw), "/")
	if p == "" {
		return "/"
	}
	return p
}

func ambiguousPath(p string) bool {
	if !strings.HasPrefix(p, "/") || strings.Contains(p, "//") || strings.ContainsRune(p, '\\') {
		return true
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "." || seg == ".." {
			return true
		}
	}
	for _, esc := range escapedSeparators {
		if strings.Contains(p, esc) {
			return true
		}
	}
	_, err := url.PathUnescape(p)
	return err != nil
}

// underPrefix matches whole path segments: /finance and /finance/x, never /financial.
func underPrefix(p, prefix string) bool {
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}
