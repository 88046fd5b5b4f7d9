package catalog

import (
	"fmt"
	"strings"
)

// Filter is a structured conjunction of typed predicates over the product
// listing. Each field contributes at most one clause; the zero value matches
// everything. Building SQL from a closed struct keeps the query surface
// reviewable, unlike an ad-hoc map assembled per request.
type Filter struct {
	// Search matches title, description and tags case-insensitively.
	Search string
	// CategoryID restricts to a single category.
	CategoryID *int64
	// VendorID restricts to a single vendor's products.
	VendorID *int64
	// Tags requires every listed tag to be present.
	Tags []string
	// PriceMinCents / PriceMaxCents bound the price range inclusively.
	PriceMinCents *int64
	PriceMaxCents *int64
	// ActiveOnly restricts to listings currently for sale.
	ActiveOnly bool
	// ApprovedVendorsOnly restricts to products of approved vendors. Set on
	// every public listing; vendor dashboards see their own products
	// regardless of approval state.
	ApprovedVendorsOnly bool
}

// Clauses renders the filter into a WHERE fragment and its arguments.
// Placeholders are numbered starting at startArg. An empty fragment is
// returned when no predicate applies.
func (f Filter) Clauses(startArg int) (string, []any) {
	var conds []string
	var args []any
	arg := startArg

	next := func(v any) string {
		args = append(args, v)
		p := fmt.Sprintf("$%d", arg)
		arg++
		return p
	}

	if s := strings.TrimSpace(f.Search); s != "" {
		p := next("%" + s + "%")
		conds = append(conds, fmt.Sprintf("(p.title ILIKE %[1]s OR p.description ILIKE %[1]s OR EXISTS (SELECT 1 FROM unnest(p.tags) t WHERE t ILIKE %[1]s))", p))
	}
	if f.CategoryID != nil {
		conds = append(conds, "p.category_id = "+next(*f.CategoryID))
	}
	if f.VendorID != nil {
		conds = append(conds, "p.vendor_id = "+next(*f.VendorID))
	}
	if len(f.Tags) > 0 {
		conds = append(conds, "p.tags @> "+next(f.Tags))
	}
	if f.PriceMinCents != nil {
		conds = append(conds, "p.price_cents >= "+next(*f.PriceMinCents))
	}
	if f.PriceMaxCents != nil {
		conds = append(conds, "p.price_cents <= "+next(*f.PriceMaxCents))
	}
	if f.ActiveOnly {
		conds = append(conds, "p.is_active")
	}
	if f.ApprovedVendorsOnly {
		conds = append(conds, "vp.approval_status = 'approved'")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
