package authz

import "strings"

// RouteClass is the static classification of a request path.
type RouteClass uint8

const (
	RoutePublic RouteClass = iota
	RouteProtected
)

// protectedPrefixes lists path prefixes that require an identity claim.
// Admin- and vendor-scoped prefixes are disjoint by construction.
var protectedPrefixes = []string{
	"/dashboard",
	"/admin",
	"/api/admin",
	"/api/vendor",
	"/api/user",
}

// Classify maps a request path onto its route class. Classification is a
// pure function of the path string.
func Classify(path string) RouteClass {
	for _, prefix := range protectedPrefixes {
		if hasPathPrefix(path, prefix) {
			return RouteProtected
		}
	}
	return RoutePublic
}

// hasPathPrefix matches on whole path segments so that e.g. /administrivia
// is not treated as admin-scoped.
func hasPathPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
