package authz

import "strings"

// Decide produces exactly one Decision for a claim (nil when the requester
// is unauthenticated) and a request path. Rules are evaluated in strict
// precedence order; the first match wins. Authentication presence is checked
// before any role rule so unauthenticated requests learn nothing about
// role-gated redirect targets.
func Decide(claim *Claim, path string) Decision {
	if Classify(path) == RoutePublic {
		return allow()
	}
	if claim == nil {
		return denyUnauthenticated()
	}
	if !claim.Role.Valid() {
		// Unreachable with the closed role set, but a session forged or
		// corrupted into an unknown role must never pass.
		return denyForbidden(ReasonInvalidRole)
	}

	switch {
	case hasPathPrefix(path, "/admin") || hasPathPrefix(path, "/api/admin"):
		if claim.Role != RoleAdmin {
			return redirectTo("/dashboard/buyer")
		}
	case hasPathPrefix(path, "/dashboard/vendor"):
		if claim.Role != RoleVendor {
			return redirectTo("/dashboard/buyer")
		}
	case hasPathPrefix(path, "/dashboard/buyer"):
		if claim.Role == RoleVendor {
			return redirectTo("/dashboard/vendor")
		}
		if claim.Role == RoleAdmin {
			return redirectTo("/admin")
		}
	case strings.TrimRight(path, "/") == "/dashboard":
		return redirectTo(claim.Role.Landing())
	case hasPathPrefix(path, "/api/vendor"):
		if claim.Role != RoleVendor {
			return denyForbidden(ReasonNotOwner)
		}
	}

	return allow()
}
