package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-commerce/atelier/internal/authz"
	"github.com/atelier-commerce/atelier/internal/shared"
)

type stubRepo struct {
	users map[int64]*User
}

func newStubRepo(users ...User) *stubRepo {
	m := make(map[int64]*User, len(users))
	for i := range users {
		u := users[i]
		m[u.ID] = &u
	}
	return &stubRepo{users: m}
}

func (s *stubRepo) List(ctx context.Context, req ListUsersRequest) ([]User, int, error) {
	var out []User
	for _, u := range s.users {
		if req.Role != nil && u.Role != *req.Role {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (s *stubRepo) Get(ctx context.Context, id int64) (*User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *stubRepo) Update(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	cp := *u
	return &cp, nil
}

func (s *stubRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := s.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func claim(id int64, role authz.Role) *authz.Claim {
	return &authz.Claim{SubjectID: id, Role: role, Verified: true}
}

func TestDeleteRefusesSelfDeletionForEveryRole(t *testing.T) {
	for _, role := range []authz.Role{authz.RoleBuyer, authz.RoleVendor, authz.RoleAdmin} {
		repo := newStubRepo(User{ID: 5, Role: role})
		svc := NewService(repo, nil)
		err := svc.Delete(context.Background(), claim(5, role), 5)
		assert.ErrorIs(t, err, ErrSelfDeletion, "role %v", role)
	}
}

func TestDeleteRefusesAdminTargets(t *testing.T) {
	repo := newStubRepo(User{ID: 2, Role: authz.RoleAdmin})
	svc := NewService(repo, nil)
	err := svc.Delete(context.Background(), claim(1, authz.RoleAdmin), 2)
	assert.ErrorIs(t, err, ErrAdminProtected)

	_, getErr := repo.Get(context.Background(), 2)
	require.NoError(t, getErr, "admin account must survive the attempt")
}

func TestDeleteAllowsAdminOnRegularAccounts(t *testing.T) {
	repo := newStubRepo(User{ID: 3, Role: authz.RoleBuyer})
	svc := NewService(repo, nil)
	require.NoError(t, svc.Delete(context.Background(), claim(1, authz.RoleAdmin), 3))

	_, err := repo.Get(context.Background(), 3)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteRefusesNonAdminRequester(t *testing.T) {
	repo := newStubRepo(User{ID: 4, Role: authz.RoleBuyer})
	svc := NewService(repo, nil)
	err := svc.Delete(context.Background(), claim(9, authz.RoleBuyer), 4)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteMissingUser(t *testing.T) {
	svc := NewService(newStubRepo(), nil)
	err := svc.Delete(context.Background(), claim(1, authz.RoleAdmin), 42)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateOwnershipRules(t *testing.T) {
	repo := newStubRepo(User{ID: 7, Role: authz.RoleBuyer, Name: "Before"})
	svc := NewService(repo, nil)

	name := "After"
	_, err := svc.Update(context.Background(), claim(8, authz.RoleBuyer), 7, UpdateUserRequest{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(context.Background(), claim(7, authz.RoleBuyer), 7, UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
}
