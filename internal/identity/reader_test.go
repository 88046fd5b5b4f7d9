package identity_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-commerce/atelier/internal/authz"
	"github.com/atelier-commerce/atelier/internal/identity"
	"github.com/atelier-commerce/atelier/internal/shared"
)

func sessionRequest(t *testing.T, prepare func(*shared.Session)) *http.Request {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	sess, err := manager.Load(req.Context(), req)
	require.NoError(t, err)
	if prepare != nil {
		prepare(sess)
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestClaimsNilWithoutSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	assert.Nil(t, identity.SessionReader{}.Claims(req))
}

func TestClaimsNilForAnonymousSession(t *testing.T) {
	req := sessionRequest(t, nil)
	assert.Nil(t, identity.SessionReader{}.Claims(req))
}

func TestClaimsDecodesIdentity(t *testing.T) {
	req := sessionRequest(t, func(sess *shared.Session) {
		sess.SetIdentity("42", "vendor", true)
	})
	claim := identity.SessionReader{}.Claims(req)
	require.NotNil(t, claim)
	assert.Equal(t, int64(42), claim.SubjectID)
	assert.Equal(t, authz.RoleVendor, claim.Role)
	assert.True(t, claim.Verified)
}

func TestClaimsNilForMalformedIdentity(t *testing.T) {
	for name, prepare := range map[string]func(*shared.Session){
		"bad user id": func(s *shared.Session) { s.SetIdentity("not-a-number", "buyer", false) },
		"bad role":    func(s *shared.Session) { s.SetIdentity("1", "superuser", false) },
	} {
		req := sessionRequest(t, prepare)
		assert.Nil(t, identity.SessionReader{}.Claims(req), name)
	}
}
