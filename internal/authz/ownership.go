package authz

// AuthorizeMutation guards per-resource writes: admins may mutate anything,
// everyone else only resources they own.
func AuthorizeMutation(claim *Claim, ownerID int64) Decision {
	if claim == nil {
		return denyUnauthenticated()
	}
	if !claim.Role.Valid() {
		return denyForbidden(ReasonInvalidRole)
	}
	if claim.Role == RoleAdmin || claim.SubjectID == ownerID {
		return allow()
	}
	return denyForbidden(ReasonNotOwner)
}

// AccountRef is the minimal view of a deletion target needed for the
// account-deletion rules.
type AccountRef struct {
	ID   int64
	Role Role
}

// AuthorizeAccountDelete applies the account-deletion rules on top of the
// ownership check: no self-deletion, and admin accounts are never deletable,
// not even by another admin. The two denials carry distinct reasons.
func AuthorizeAccountDelete(claim *Claim, target AccountRef) Decision {
	if claim == nil {
		return denyUnauthenticated()
	}
	if claim.SubjectID == target.ID {
		return denyForbidden(ReasonSelfDeletion)
	}
	if target.Role == RoleAdmin {
		return denyForbidden(ReasonAdminProtected)
	}
	return AuthorizeMutation(claim, target.ID)
}
