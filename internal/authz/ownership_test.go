package authz

import "testing"

func TestAuthorizeMutation(t *testing.T) {
	owner := &Claim{SubjectID: 7, Role: RoleVendor}
	other := &Claim{SubjectID: 8, Role: RoleVendor}
	admin := &Claim{SubjectID: 1, Role: RoleAdmin}

	if got := AuthorizeMutation(owner, 7); !got.Allowed() {
		t.Errorf("owner mutation: got %+v, want allow", got)
	}
	if got := AuthorizeMutation(admin, 7); !got.Allowed() {
		t.Errorf("admin mutation: got %+v, want allow", got)
	}
	if got := AuthorizeMutation(other, 7); got.Kind != DecisionDenyForbidden || got.Why != ReasonNotOwner {
		t.Errorf("non-owner mutation: got %+v, want forbidden/not_owner", got)
	}
	if got := AuthorizeMutation(nil, 7); got.Kind != DecisionDenyUnauthenticated {
		t.Errorf("anonymous mutation: got %+v, want deny unauthenticated", got)
	}
}

func TestAccountDeleteForbidsSelfDeletion(t *testing.T) {
	for _, role := range []Role{RoleBuyer, RoleVendor, RoleAdmin} {
		c := &Claim{SubjectID: 5, Role: role}
		got := AuthorizeAccountDelete(c, AccountRef{ID: 5, Role: role})
		if got.Kind != DecisionDenyForbidden || got.Why != ReasonSelfDeletion {
			t.Errorf("role %v self-delete: got %+v, want forbidden/self_deletion", role, got)
		}
	}
}

func TestAccountDeleteProtectsAdmins(t *testing.T) {
	requester := &Claim{SubjectID: 1, Role: RoleAdmin}
	got := AuthorizeAccountDelete(requester, AccountRef{ID: 2, Role: RoleAdmin})
	if got.Kind != DecisionDenyForbidden || got.Why != ReasonAdminProtected {
		t.Errorf("admin deleting admin: got %+v, want forbidden/admin_protected", got)
	}
}

func TestAccountDeleteAllowsAdminOnNonAdmins(t *testing.T) {
	requester := &Claim{SubjectID: 1, Role: RoleAdmin}
	if got := AuthorizeAccountDelete(requester, AccountRef{ID: 3, Role: RoleBuyer}); !got.Allowed() {
		t.Errorf("admin deleting buyer: got %+v, want allow", got)
	}
	if got := AuthorizeAccountDelete(requester, AccountRef{ID: 4, Role: RoleVendor}); !got.Allowed() {
		t.Errorf("admin deleting vendor: got %+v, want allow", got)
	}
}

func TestAccountDeleteDeniesNonAdminRequester(t *testing.T) {
	requester := &Claim{SubjectID: 10, Role: RoleBuyer}
	got := AuthorizeAccountDelete(requester, AccountRef{ID: 11, Role: RoleBuyer})
	if got.Kind != DecisionDenyForbidden || got.Why != ReasonNotOwner {
		t.Errorf("buyer deleting buyer: got %+v, want forbidden/not_owner", got)
	}
}
