package authz

import "testing"

func claim(role Role) *Claim {
	return &Claim{SubjectID: 42, Role: role, Verified: true}
}

func TestDecidePublicPathsAllowAnonymous(t *testing.T) {
	paths := []string{
		"/",
		"/welcome",
		"/auth/login",
		"/products/ceramic-vase",
		"/api/products",
		"/api/categories",
		"/dashboards", // prefix match must respect segment boundaries
		"/administrivia",
	}
	for _, path := range paths {
		if got := Decide(nil, path); got.Kind != DecisionAllow {
			t.Errorf("Decide(nil, %q) = %v, want allow", path, got.Kind)
		}
	}
}

func TestDecideProtectedPathsDenyAnonymous(t *testing.T) {
	paths := []string{
		"/dashboard",
		"/dashboard/buyer",
		"/dashboard/vendor/products",
		"/admin",
		"/admin/users/7",
		"/api/admin/analytics",
		"/api/vendor/orders",
		"/api/user/orders",
	}
	for _, path := range paths {
		got := Decide(nil, path)
		if got.Kind != DecisionDenyUnauthenticated {
			t.Errorf("Decide(nil, %q) = %v, want deny unauthenticated", path, got.Kind)
		}
	}
}

func TestDecideAdminScopeRedirectsNonAdmins(t *testing.T) {
	for _, role := range []Role{RoleBuyer, RoleVendor} {
		got := Decide(claim(role), "/admin/anything")
		if got.Kind != DecisionRedirect || got.Target != "/dashboard/buyer" {
			t.Errorf("role %v at /admin/anything: got %+v, want redirect /dashboard/buyer", role, got)
		}
	}
	if got := Decide(claim(RoleAdmin), "/admin/users"); !got.Allowed() {
		t.Errorf("admin at /admin/users: got %+v, want allow", got)
	}
}

func TestDecideVendorScopeRedirectsNonVendors(t *testing.T) {
	for _, role := range []Role{RoleBuyer, RoleAdmin} {
		got := Decide(claim(role), "/dashboard/vendor")
		if got.Kind != DecisionRedirect || got.Target != "/dashboard/buyer" {
			t.Errorf("role %v at /dashboard/vendor: got %+v, want redirect /dashboard/buyer", role, got)
		}
	}
}

func TestDecideBuyerScopeRedirectsByRole(t *testing.T) {
	if got := Decide(claim(RoleVendor), "/dashboard/buyer"); got.Kind != DecisionRedirect || got.Target != "/dashboard/vendor" {
		t.Errorf("vendor at /dashboard/buyer: got %+v, want redirect /dashboard/vendor", got)
	}
	if got := Decide(claim(RoleAdmin), "/dashboard/buyer"); got.Kind != DecisionRedirect || got.Target != "/admin" {
		t.Errorf("admin at /dashboard/buyer: got %+v, want redirect /admin", got)
	}
	if got := Decide(claim(RoleBuyer), "/dashboard/buyer/orders"); !got.Allowed() {
		t.Errorf("buyer at /dashboard/buyer/orders: got %+v, want allow", got)
	}
}

func TestDecideBareDashboardLandsPerRole(t *testing.T) {
	cases := map[Role]string{
		RoleAdmin:  "/admin",
		RoleVendor: "/dashboard/vendor",
		RoleBuyer:  "/dashboard/buyer",
	}
	for role, want := range cases {
		got := Decide(claim(role), "/dashboard")
		if got.Kind != DecisionRedirect || got.Target != want {
			t.Errorf("role %v at /dashboard: got %+v, want redirect %s", role, got, want)
		}
	}
}

func TestDecideIgnoresVerificationFlag(t *testing.T) {
	// Verification is enforced where a component requires it, never by the
	// route gate itself.
	unverified := &Claim{SubjectID: 9, Role: RoleVendor, Verified: false}
	if got := Decide(unverified, "/dashboard/vendor/products/new"); !got.Allowed() {
		t.Errorf("unverified vendor at /dashboard/vendor/products/new: got %+v, want allow", got)
	}
}

func TestDecideRejectsInvalidRole(t *testing.T) {
	forged := &Claim{SubjectID: 9, Role: Role(99), Verified: true}
	got := Decide(forged, "/dashboard")
	if got.Kind != DecisionDenyForbidden || got.Why != ReasonInvalidRole {
		t.Errorf("forged role at /dashboard: got %+v, want forbidden/invalid_role", got)
	}
}

func TestDecideVendorAPIRequiresVendorRole(t *testing.T) {
	got := Decide(claim(RoleBuyer), "/api/vendor/orders")
	if got.Kind != DecisionDenyForbidden {
		t.Errorf("buyer at /api/vendor/orders: got %+v, want forbidden", got)
	}
	if got := Decide(claim(RoleVendor), "/api/vendor/orders"); !got.Allowed() {
		t.Errorf("vendor at /api/vendor/orders: got %+v, want allow", got)
	}
}

func TestClassifySegmentBoundaries(t *testing.T) {
	if Classify("/dashboard") != RouteProtected {
		t.Error("/dashboard must be protected")
	}
	if Classify("/dashboard/") != RouteProtected {
		t.Error("/dashboard/ must be protected")
	}
	if Classify("/dashboardx") != RoutePublic {
		t.Error("/dashboardx must be public")
	}
	if Classify("/api/products") != RoutePublic {
		t.Error("/api/products must be public")
	}
}
