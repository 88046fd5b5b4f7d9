package authz

// Claim is the decoded session payload identifying the requester. It is
// immutable for the lifetime of a request; re-login replaces it.
type Claim struct {
	SubjectID int64
	Role      Role
	Verified  bool
}
