package orders

import (
	"context"
	"errors"

	"github.com/atelier-commerce/atelier/internal/authz"
	"github.com/atelier-commerce/atelier/internal/shared"
)

var ErrForbidden = errors.New("orders: forbidden")

// Service enforces who may place and read orders.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create places an order on behalf of the authenticated buyer. Vendors and
// admins shop through buyer accounts, not their operational ones.
func (s *Service) Create(ctx context.Context, claim *authz.Claim, req CreateOrderRequest) (*Order, error) {
	if claim == nil || claim.Role != authz.RoleBuyer {
		return nil, ErrForbidden
	}
	return s.repo.Create(ctx, claim.SubjectID, req)
}

// Get returns one order. Buyers see their own orders, vendors see orders
// containing at least one of their products, admins see everything.
func (s *Service) Get(ctx context.Context, claim *authz.Claim, id int64) (*Order, error) {
	if claim == nil {
		return nil, ErrForbidden
	}
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.canView(claim, order) {
		if claim.Role == authz.RoleVendor && order.BuyerID != claim.SubjectID {
			order.Items = vendorItems(order.Items, claim.SubjectID)
		}
		return order, nil
	}
	return nil, shared.ErrNotFound
}

// ListForBuyer returns the caller's own orders.
func (s *Service) ListForBuyer(ctx context.Context, claim *authz.Claim, p shared.Pagination) ([]Order, int, error) {
	if claim == nil {
		return nil, 0, ErrForbidden
	}
	return s.repo.ListForBuyer(ctx, claim.SubjectID, p.PerPage, p.Offset())
}

// ListForVendor returns orders that include the vendor's products.
func (s *Service) ListForVendor(ctx context.Context, claim *authz.Claim, p shared.Pagination) ([]Order, int, error) {
	if claim == nil || claim.Role != authz.RoleVendor {
		return nil, 0, ErrForbidden
	}
	return s.repo.ListForVendor(ctx, claim.SubjectID, p.PerPage, p.Offset())
}

func (s *Service) canView(claim *authz.Claim, order *Order) bool {
	if claim.Role == authz.RoleAdmin {
		return true
	}
	if order.BuyerID == claim.SubjectID {
		return true
	}
	if claim.Role == authz.RoleVendor {
		for _, item := range order.Items {
			if item.VendorID == claim.SubjectID {
				return true
			}
		}
	}
	return false
}

// vendorItems narrows the line items to the vendor's own products so one
// vendor never learns what a buyer ordered from another.
func vendorItems(items []Item, vendorID int64) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item.VendorID == vendorID {
			out = append(out, item)
		}
	}
	return out
}
