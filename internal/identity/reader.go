package identity

import (
	"net/http"
	"strconv"

	"github.com/atelier-commerce/atelier/internal/authz"
	"github.com/atelier-commerce/atelier/internal/shared"
)

// SessionReader decodes the identity claim out of the session already
// loaded into the request context by the session middleware. It performs
// no I/O of its own; any malformed or absent payload maps to nil.
type SessionReader struct{}

// Claims implements authz.ClaimReader.
func (SessionReader) Claims(r *http.Request) *authz.Claim {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.UserID() == "" {
		return nil
	}
	id, err := strconv.ParseInt(sess.UserID(), 10, 64)
	if err != nil {
		return nil
	}
	role, err := authz.ParseRole(sess.Role())
	if err != nil {
		return nil
	}
	return &authz.Claim{SubjectID: id, Role: role, Verified: sess.Verified()}
}

var _ authz.ClaimReader = SessionReader{}
