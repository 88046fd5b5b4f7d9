package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-commerce/atelier/internal/authz"
	"github.com/atelier-commerce/atelier/internal/shared"
)

type stubRepo struct {
	orders map[int64]*Order
	nextID int64
}

func newStubRepo(orders ...Order) *stubRepo {
	m := make(map[int64]*Order, len(orders))
	var max int64
	for i := range orders {
		o := orders[i]
		m[o.ID] = &o
		if o.ID > max {
			max = o.ID
		}
	}
	return &stubRepo{orders: m, nextID: max + 1}
}

func (s *stubRepo) Create(ctx context.Context, buyerID int64, req CreateOrderRequest) (*Order, error) {
	order := &Order{ID: s.nextID, BuyerID: buyerID, Status: StatusPending}
	s.nextID++
	for _, item := range req.Items {
		order.Items = append(order.Items, Item{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	s.orders[order.ID] = order
	cp := *order
	return &cp, nil
}

func (s *stubRepo) Get(ctx context.Context, id int64) (*Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	return &cp, nil
}

func (s *stubRepo) ListForBuyer(ctx context.Context, buyerID int64, limit, offset int) ([]Order, int, error) {
	var out []Order
	for _, o := range s.orders {
		if o.BuyerID == buyerID {
			out = append(out, *o)
		}
	}
	return out, len(out), nil
}

func (s *stubRepo) ListForVendor(ctx context.Context, vendorID int64, limit, offset int) ([]Order, int, error) {
	var out []Order
	for _, o := range s.orders {
		for _, item := range o.Items {
			if item.VendorID == vendorID {
				out = append(out, *o)
				break
			}
		}
	}
	return out, len(out), nil
}

func (s *stubRepo) UpdateStatus(ctx context.Context, id int64, status Status) error {
	o, ok := s.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	o.Status = status
	return nil
}

func claim(id int64, role authz.Role) *authz.Claim {
	return &authz.Claim{SubjectID: id, Role: role, Verified: true}
}

func TestCreateRequiresBuyerRole(t *testing.T) {
	svc := NewService(newStubRepo())
	req := CreateOrderRequest{Items: []CreateOrderItem{{ProductID: 1, Quantity: 1}}}

	_, err := svc.Create(context.Background(), claim(10, authz.RoleVendor), req)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(context.Background(), claim(10, authz.RoleAdmin), req)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(context.Background(), nil, req)
	assert.ErrorIs(t, err, ErrForbidden)

	order, err := svc.Create(context.Background(), claim(10, authz.RoleBuyer), req)
	require.NoError(t, err)
	assert.Equal(t, int64(10), order.BuyerID)
	assert.Equal(t, StatusPending, order.Status)
}

func TestGetVisibility(t *testing.T) {
	repo := newStubRepo(Order{
		ID:      1,
		BuyerID: 10,
		Items: []Item{
			{ProductID: 1, VendorID: 20, Title: "Mug"},
			{ProductID: 2, VendorID: 21, Title: "Bowl"},
		},
	})
	svc := NewService(repo)

	own, err := svc.Get(context.Background(), claim(10, authz.RoleBuyer), 1)
	require.NoError(t, err)
	assert.Len(t, own.Items, 2)

	_, err = svc.Get(context.Background(), claim(11, authz.RoleBuyer), 1)
	assert.ErrorIs(t, err, shared.ErrNotFound, "other buyers must not see the order")

	asVendor, err := svc.Get(context.Background(), claim(20, authz.RoleVendor), 1)
	require.NoError(t, err)
	require.Len(t, asVendor.Items, 1, "vendor sees only their own lines")
	assert.Equal(t, "Mug", asVendor.Items[0].Title)

	_, err = svc.Get(context.Background(), claim(22, authz.RoleVendor), 1)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	asAdmin, err := svc.Get(context.Background(), claim(1, authz.RoleAdmin), 1)
	require.NoError(t, err)
	assert.Len(t, asAdmin.Items, 2)
}

func TestListForVendorRequiresVendorRole(t *testing.T) {
	repo := newStubRepo(Order{ID: 1, BuyerID: 10, Items: []Item{{VendorID: 20}}})
	svc := NewService(repo)

	_, _, err := svc.ListForVendor(context.Background(), claim(10, authz.RoleBuyer), shared.NewPagination(1, 20, 0))
	assert.ErrorIs(t, err, ErrForbidden)

	list, total, err := svc.ListForVendor(context.Background(), claim(20, authz.RoleVendor), shared.NewPagination(1, 20, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)
}
