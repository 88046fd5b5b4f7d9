package authz

// DecisionKind enumerates gate outcomes.
type DecisionKind uint8

const (
	DecisionAllow DecisionKind = iota
	DecisionDenyUnauthenticated
	DecisionDenyForbidden
	DecisionRedirect
)

// String names the outcome for logs and metrics labels.
func (k DecisionKind) String() string {
	switch k {
	case DecisionAllow:
		return "allow"
	case DecisionDenyUnauthenticated:
		return "deny_unauthenticated"
	case DecisionDenyForbidden:
		return "deny_forbidden"
	case DecisionRedirect:
		return "redirect"
	}
	return "unknown"
}

// Reason distinguishes otherwise identical deny decisions so they are
// individually testable and reportable.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonNoSession      Reason = "no_session"
	ReasonNotOwner       Reason = "not_owner"
	ReasonSelfDeletion   Reason = "self_deletion"
	ReasonAdminProtected Reason = "admin_protected"
	ReasonInvalidRole    Reason = "invalid_role"
)

// Decision is the single output value of the gate for a request.
type Decision struct {
	Kind   DecisionKind
	Target string // redirect target, set only for DecisionRedirect
	Why    Reason
}

// Allowed reports whether the decision permits the request to proceed.
func (d Decision) Allowed() bool {
	return d.Kind == DecisionAllow
}

func allow() Decision {
	return Decision{Kind: DecisionAllow}
}

func denyUnauthenticated() Decision {
	return Decision{Kind: DecisionDenyUnauthenticated, Why: ReasonNoSession}
}

func denyForbidden(why Reason) Decision {
	return Decision{Kind: DecisionDenyForbidden, Why: why}
}

func redirectTo(path string) Decision {
	return Decision{Kind: DecisionRedirect, Target: path}
}
