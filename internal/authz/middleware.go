package authz

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/atelier-commerce/atelier/internal/platform/httpx"
)

// ClaimReader resolves the identity claim for a request, nil when the
// requester is unauthenticated. Implementations must not fail loudly;
// absence of a claim is an expected state, not an error.
type ClaimReader interface {
	Claims(r *http.Request) *Claim
}

// Middleware applies the gate decision to every request.
type Middleware struct {
	Reader  ClaimReader
	Logger  *slog.Logger
	Observe func(kind string)
}

// Gate enforces Decide on the wrapped handler tree.
func (m Middleware) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claim := m.Reader.Claims(r)
		decision := Decide(claim, r.URL.Path)
		if m.Observe != nil {
			m.Observe(decision.Kind.String())
		}

		switch decision.Kind {
		case DecisionAllow:
			if claim != nil {
				r = r.WithContext(ContextWithClaim(r.Context(), claim))
			}
			next.ServeHTTP(w, r)
		case DecisionDenyUnauthenticated:
			if isAPIPath(r.URL.Path) {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
				return
			}
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		case DecisionRedirect:
			http.Redirect(w, r, decision.Target, http.StatusSeeOther)
		case DecisionDenyForbidden:
			if m.Logger != nil {
				m.Logger.Warn("request forbidden",
					slog.String("path", r.URL.Path),
					slog.String("reason", string(decision.Why)))
			}
			if isAPIPath(r.URL.Path) {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", string(decision.Why))
				return
			}
			landing := "/auth/login"
			if claim != nil && claim.Role.Valid() {
				landing = claim.Role.Landing()
			}
			http.Redirect(w, r, landing, http.StatusSeeOther)
		default:
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		}
	})
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}
