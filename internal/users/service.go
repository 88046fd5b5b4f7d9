package users

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/atelier-commerce/atelier/internal/authz"
	"github.com/atelier-commerce/atelier/internal/shared"
)

// Deletion denials, distinguishable for callers and tests.
var (
	ErrSelfDeletion   = errors.New("users: accounts cannot delete themselves")
	ErrAdminProtected = errors.New("users: admin accounts cannot be deleted")
	ErrForbidden      = errors.New("users: forbidden")
)

// Service wraps user management rules on top of the repository.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// NewService constructs a new Service. audit may be nil.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns accounts for the admin console.
func (s *Service) List(ctx context.Context, req ListUsersRequest) ([]User, int, error) {
	if req.Limit <= 0 || req.Limit > 200 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

// Get fetches a single account.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// Update applies a partial update to an account.
func (s *Service) Update(ctx context.Context, claim *authz.Claim, id int64, req UpdateUserRequest) (*User, error) {
	if !authz.AuthorizeMutation(claim, id).Allowed() {
		return nil, ErrForbidden
	}
	updated, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.record(ctx, claim, "user.update", id)
	return updated, nil
}

// Delete removes an account subject to the deletion rules: no account may
// delete itself, and admin accounts are never deletable.
func (s *Service) Delete(ctx context.Context, claim *authz.Claim, id int64) error {
	target, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	decision := authz.AuthorizeAccountDelete(claim, authz.AccountRef{ID: target.ID, Role: target.Role})
	switch decision.Why {
	case authz.ReasonSelfDeletion:
		return ErrSelfDeletion
	case authz.ReasonAdminProtected:
		return ErrAdminProtected
	}
	if !decision.Allowed() {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, claim, "user.delete", id)
	return nil
}

func (s *Service) record(ctx context.Context, claim *authz.Claim, action string, targetID int64) {
	if s.audit == nil || claim == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  claim.SubjectID,
		Action:   action,
		Entity:   "account",
		EntityID: strconv.FormatInt(targetID, 10),
	}); err != nil {
		slog.Default().Warn("record user audit", slog.Any("error", err))
	}
}
