package authz

import "context"

type claimContextKey struct{}

// ContextWithClaim stores the identity claim in context once the gate has
// allowed the request.
func ContextWithClaim(ctx context.Context, claim *Claim) context.Context {
	return context.WithValue(ctx, claimContextKey{}, claim)
}

// ClaimFromContext extracts the identity claim, nil when unauthenticated.
func ClaimFromContext(ctx context.Context) *Claim {
	claim, _ := ctx.Value(claimContextKey{}).(*Claim)
	return claim
}
