package catalog

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/atelier-commerce/atelier/internal/authz"
)

// Service wraps catalog business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ErrForbidden indicates a mutation on a product the claim does not own.
var ErrForbidden = errors.New("catalog: forbidden")

// ListPublic returns the storefront view: active products of approved
// vendors only.
func (s *Service) ListPublic(ctx context.Context, f Filter, limit, offset int) ([]Product, int, error) {
	f.ActiveOnly = true
	f.ApprovedVendorsOnly = true
	return s.repo.List(ctx, f, limit, offset)
}

// ListForVendor returns all of a vendor's own products regardless of
// approval or active state.
func (s *Service) ListForVendor(ctx context.Context, vendorID int64, limit, offset int) ([]Product, int, error) {
	return s.repo.List(ctx, Filter{VendorID: &vendorID}, limit, offset)
}

// Get fetches a single product.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.Get(ctx, id)
}

// GetBySlug fetches a single product by its public slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// Create inserts a new product owned by the claim's subject. Unapproved
// vendors may create products; they stay invisible on the storefront until
// the vendor is approved.
func (s *Service) Create(ctx context.Context, claim *authz.Claim, req CreateProductRequest) (*Product, error) {
	if claim == nil || claim.Role != authz.RoleVendor {
		return nil, ErrForbidden
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	p := Product{
		VendorID:    claim.SubjectID,
		CategoryID:  req.CategoryID,
		Title:       strings.TrimSpace(req.Title),
		Slug:        Slugify(req.Title),
		Description: strings.TrimSpace(req.Description),
		PriceCents:  req.PriceCents,
		Currency:    strings.ToUpper(currency),
		Tags:        normalizeTags(req.Tags),
		Stock:       req.Stock,
		IsActive:    true,
	}
	created, err := s.repo.Create(ctx, p)
	if errors.Is(err, ErrDuplicateSlug) {
		// Retry once with a random suffix rather than surfacing the collision.
		p.Slug = fmt.Sprintf("%s-%04d", p.Slug, rand.Intn(10000))
		return s.repo.Create(ctx, p)
	}
	return created, err
}

// Update applies a partial update after an ownership check.
func (s *Service) Update(ctx context.Context, claim *authz.Claim, id int64, req UpdateProductRequest) (*Product, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.AuthorizeMutation(claim, existing.VendorID).Allowed() {
		return nil, ErrForbidden
	}
	if req.Tags != nil {
		req.Tags = normalizeTags(req.Tags)
	}
	return s.repo.Update(ctx, id, req)
}

// Delete removes a product after an ownership check.
func (s *Service) Delete(ctx context.Context, claim *authz.Claim, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !authz.AuthorizeMutation(claim, existing.VendorID).Allowed() {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a product title.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "listing"
	}
	if len(s) > 80 {
		s = strings.Trim(s[:80], "-")
	}
	return s
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
