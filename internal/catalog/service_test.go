package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-commerce/atelier/internal/authz"
	"github.com/atelier-commerce/atelier/internal/shared"
)

type stubRepo struct {
	products map[int64]*Product
	nextID   int64
	lastList Filter
}

func newStubRepo() *stubRepo {
	return &stubRepo{products: make(map[int64]*Product), nextID: 1}
}

func (s *stubRepo) Get(ctx context.Context, id int64) (*Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubRepo) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	for _, p := range s.products {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) List(ctx context.Context, f Filter, limit, offset int) ([]Product, int, error) {
	s.lastList = f
	var out []Product
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (s *stubRepo) Create(ctx context.Context, p Product) (*Product, error) {
	for _, existing := range s.products {
		if existing.Slug == p.Slug {
			return nil, ErrDuplicateSlug
		}
	}
	p.ID = s.nextID
	s.nextID++
	s.products[p.ID] = &p
	cp := p
	return &cp, nil
}

func (s *stubRepo) Update(ctx context.Context, id int64, req UpdateProductRequest) (*Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	cp := *p
	return &cp, nil
}

func (s *stubRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := s.products[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func vendorClaim(id int64) *authz.Claim {
	return &authz.Claim{SubjectID: id, Role: authz.RoleVendor, Verified: true}
}

func TestCreateRequiresVendorRole(t *testing.T) {
	svc := NewService(newStubRepo())
	buyer := &authz.Claim{SubjectID: 1, Role: authz.RoleBuyer}

	_, err := svc.Create(context.Background(), buyer, CreateProductRequest{Title: "Vase", PriceCents: 2500})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(context.Background(), nil, CreateProductRequest{Title: "Vase", PriceCents: 2500})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateSetsOwnershipAndDefaults(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), vendorClaim(9), CreateProductRequest{
		Title:      "  Ceramic Vase  ",
		PriceCents: 2500,
		Tags:       []string{"Clay", "clay", " Handmade "},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), p.VendorID)
	assert.Equal(t, "ceramic-vase", p.Slug)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, []string{"clay", "handmade"}, p.Tags)
	assert.True(t, p.IsActive)
}

func TestCreateRetriesOnSlugCollision(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	first, err := svc.Create(context.Background(), vendorClaim(1), CreateProductRequest{Title: "Vase", PriceCents: 100})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), vendorClaim(2), CreateProductRequest{Title: "Vase", PriceCents: 100})
	require.NoError(t, err)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.Contains(t, second.Slug, "vase-")
}

func TestUpdateEnforcesOwnership(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), vendorClaim(1), CreateProductRequest{Title: "Bowl", PriceCents: 900})
	require.NoError(t, err)

	title := "Stolen Bowl"
	_, err = svc.Update(context.Background(), vendorClaim(2), p.ID, UpdateProductRequest{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	// Admin override is allowed.
	admin := &authz.Claim{SubjectID: 99, Role: authz.RoleAdmin}
	updated, err := svc.Update(context.Background(), admin, p.ID, UpdateProductRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
}

func TestDeleteEnforcesOwnership(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), vendorClaim(1), CreateProductRequest{Title: "Mug", PriceCents: 700})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(context.Background(), vendorClaim(2), p.ID), ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), vendorClaim(1), p.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), vendorClaim(1), p.ID), shared.ErrNotFound)
}

func TestListPublicForcesStorefrontPredicates(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	_, _, err := svc.ListPublic(context.Background(), Filter{Search: "vase"}, 20, 0)
	require.NoError(t, err)
	assert.True(t, repo.lastList.ActiveOnly)
	assert.True(t, repo.lastList.ApprovedVendorsOnly)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hand-thrown-mug", Slugify("Hand-Thrown Mug!"))
	assert.Equal(t, "listing", Slugify("???"))
}
