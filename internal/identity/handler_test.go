package identity_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/atelier-commerce/atelier/internal/authz"
	"github.com/atelier-commerce/atelier/internal/identity"
	"github.com/atelier-commerce/atelier/internal/shared"
	"github.com/atelier-commerce/atelier/internal/view"
	_ "github.com/atelier-commerce/atelier/testing"
)

type stubRepo struct {
	account *identity.Account
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*identity.Account, error) {
	if s.account == nil {
		return nil, shared.ErrNotFound
	}
	return s.account, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*identity.Account, error) {
	if s.account == nil || s.account.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.account, nil
}

func (s *stubRepo) CreateAccount(ctx context.Context, email, name, passwordHash string, role authz.Role) (*identity.Account, error) {
	if s.account != nil && strings.EqualFold(s.account.Email, email) {
		return nil, shared.ErrEmailTaken
	}
	return &identity.Account{ID: 2, Email: email, Name: name, Role: role, IsActive: true}, nil
}

func (s *stubRepo) RegisterVendor(ctx context.Context, email, name, passwordHash, shopName string) (*identity.Account, error) {
	if s.account != nil && strings.EqualFold(s.account.Email, email) {
		return nil, shared.ErrEmailTaken
	}
	return &identity.Account{ID: 3, Email: email, Name: name, Role: authz.RoleVendor, IsActive: true}, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	return nil
}

func newAuthHandler(t *testing.T, repo identity.Repository) (*identity.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	handler := identity.NewHandler(nil, identity.NewService(repo), templates, sessionManager, csrfManager)
	return handler, sessionManager
}

func TestLoginPage(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	sess, err := sessionManager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)

	res := httptest.NewRecorder()
	handler.ShowLoginForTest(res, req)
	if err := sessionManager.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "<form") {
		t.Fatalf("expected login form in body")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	handler, sessionManager := newAuthHandler(t, &stubRepo{account: &identity.Account{
		ID: 1, Email: "user@test.local", PasswordHash: string(hashed), Role: authz.RoleBuyer, IsActive: true,
	}})

	res := postLogin(t, handler, sessionManager, "user@test.local", "wrongpass")

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Invalid email or password") {
		t.Fatalf("expected error message in response")
	}
}

func TestLoginRedirectsToRoleLanding(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	cases := []struct {
		role authz.Role
		want string
	}{
		{authz.RoleBuyer, "/dashboard/buyer"},
		{authz.RoleVendor, "/dashboard/vendor"},
		{authz.RoleAdmin, "/admin"},
	}
	for _, tc := range cases {
		handler, sessionManager := newAuthHandler(t, &stubRepo{account: &identity.Account{
			ID: 1, Email: "user@test.local", PasswordHash: string(hashed), Role: tc.role, IsActive: true,
		}})

		res := postLogin(t, handler, sessionManager, "user@test.local", "correctpass")

		if res.Code != http.StatusSeeOther {
			t.Fatalf("role %v: expected 303, got %d", tc.role, res.Code)
		}
		if got := res.Header().Get("Location"); got != tc.want {
			t.Fatalf("role %v: expected redirect to %s, got %s", tc.role, tc.want, got)
		}
	}
}

func TestLoginStoresIdentityInSession(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	handler, sessionManager := newAuthHandler(t, &stubRepo{account: &identity.Account{
		ID: 7, Email: "vendor@test.local", PasswordHash: string(hashed), Role: authz.RoleVendor, Verified: true, IsActive: true,
	}})

	sess := postLoginSession(t, handler, sessionManager, "vendor@test.local", "correctpass")

	if sess.UserID() != "7" {
		t.Fatalf("expected user id 7 in session, got %q", sess.UserID())
	}
	if sess.Role() != "vendor" {
		t.Fatalf("expected role vendor in session, got %q", sess.Role())
	}
	if !sess.Verified() {
		t.Fatalf("expected verified flag in session")
	}
}

func postLogin(t *testing.T, handler *identity.Handler, sessionManager *shared.SessionManager, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	res, _ := doLogin(t, handler, sessionManager, email, password)
	return res
}

func postLoginSession(t *testing.T, handler *identity.Handler, sessionManager *shared.SessionManager, email, password string) *shared.Session {
	t.Helper()
	_, sess := doLogin(t, handler, sessionManager, email, password)
	return sess
}

func doLogin(t *testing.T, handler *identity.Handler, sessionManager *shared.SessionManager, email, password string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()

	// Prime session via GET so the login form's session exists.
	getReq := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	sess, err := sessionManager.Load(context.Background(), getReq)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	getCtx := shared.ContextWithSession(getReq.Context(), sess)
	getRes := httptest.NewRecorder()
	handler.ShowLoginForTest(getRes, getReq.WithContext(getCtx))
	if err := sessionManager.Commit(getCtx, getRes, getReq, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	postData := url.Values{}
	postData.Set("email", email)
	postData.Set("password", password)

	postReq := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(postData.Encode()))
	postReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	postReq.AddCookie(&http.Cookie{Name: sessionManager.CookieName(), Value: sess.ID})

	loadedSess, err := sessionManager.Load(context.Background(), postReq)
	if err != nil {
		t.Fatalf("load session for post: %v", err)
	}
	postCtx := shared.ContextWithSession(postReq.Context(), loadedSess)
	postReq = postReq.WithContext(postCtx)

	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, postReq)
	if err := sessionManager.Commit(postCtx, res, postReq, loadedSess); err != nil {
		t.Fatalf("commit session post: %v", err)
	}
	return res, loadedSess
}
