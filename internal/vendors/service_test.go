package vendors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-commerce/atelier/internal/authz"
	"github.com/atelier-commerce/atelier/internal/shared"
)

type stubAccount struct {
	role     authz.Role
	verified bool
	profile  *Profile
}

// stubRepo mimics the persistence-layer transition semantics: status
// changes count as modified, repeats do not, non-vendor accounts are
// filtered out.
type stubRepo struct {
	accounts map[int64]*stubAccount
}

func newStubRepo() *stubRepo {
	return &stubRepo{accounts: make(map[int64]*stubAccount)}
}

func (s *stubRepo) addVendor(id int64, status ApprovalStatus) {
	s.accounts[id] = &stubAccount{
		role:    authz.RoleVendor,
		profile: &Profile{AccountID: id, ShopName: "shop", ApprovalStatus: status, CreatedAt: time.Now()},
	}
}

func (s *stubRepo) addBuyer(id int64) {
	s.accounts[id] = &stubAccount{role: authz.RoleBuyer}
}

func (s *stubRepo) Get(ctx context.Context, accountID int64) (*Profile, error) {
	acc, ok := s.accounts[accountID]
	if !ok || acc.profile == nil {
		return nil, shared.ErrNotFound
	}
	cp := *acc.profile
	return &cp, nil
}

func (s *stubRepo) List(ctx context.Context, status *ApprovalStatus, limit, offset int) ([]Summary, int, error) {
	var out []Summary
	for _, acc := range s.accounts {
		if acc.profile == nil {
			continue
		}
		if status != nil && acc.profile.ApprovalStatus != *status {
			continue
		}
		out = append(out, Summary{Profile: *acc.profile, Verified: acc.verified})
	}
	return out, len(out), nil
}

func (s *stubRepo) Approve(ctx context.Context, accountID, approverID int64) (bool, error) {
	acc, ok := s.accounts[accountID]
	if !ok || acc.role != authz.RoleVendor || acc.profile == nil {
		return false, nil
	}
	acc.verified = true
	if acc.profile.ApprovalStatus == StatusApproved {
		return false, nil
	}
	acc.profile.ApprovalStatus = StatusApproved
	acc.profile.DecidedBy = &approverID
	now := time.Now()
	acc.profile.DecidedAt = &now
	acc.profile.RejectedReason = nil
	return true, nil
}

func (s *stubRepo) Reject(ctx context.Context, accountID, rejectorID int64, reason string) (bool, error) {
	acc, ok := s.accounts[accountID]
	if !ok || acc.role != authz.RoleVendor || acc.profile == nil {
		return false, nil
	}
	if acc.profile.ApprovalStatus == StatusRejected && acc.profile.RejectedReason != nil && *acc.profile.RejectedReason == reason {
		return false, nil
	}
	acc.profile.ApprovalStatus = StatusRejected
	acc.profile.DecidedBy = &rejectorID
	now := time.Now()
	acc.profile.DecidedAt = &now
	acc.profile.RejectedReason = &reason
	return true, nil
}

func (s *stubRepo) BulkApprove(ctx context.Context, accountIDs []int64, approverID int64) (int64, error) {
	var modified int64
	for _, id := range accountIDs {
		ok, err := s.Approve(ctx, id, approverID)
		if err != nil {
			return modified, err
		}
		if ok {
			modified++
		}
	}
	return modified, nil
}

type recordedNotification struct {
	accountID int64
	approved  bool
	reason    string
}

type stubNotifier struct {
	sent []recordedNotification
}

func (n *stubNotifier) NotifyVendorDecision(ctx context.Context, accountID int64, approved bool, reason string) error {
	n.sent = append(n.sent, recordedNotification{accountID, approved, reason})
	return nil
}

func adminClaim() *authz.Claim {
	return &authz.Claim{SubjectID: 1, Role: authz.RoleAdmin, Verified: true}
}

func TestApproveTransitionsAndStamps(t *testing.T) {
	repo := newStubRepo()
	repo.addVendor(10, StatusPending)
	notifier := &stubNotifier{}
	svc := NewService(repo, nil, notifier, nil)

	modified, err := svc.Approve(context.Background(), adminClaim(), 10)
	require.NoError(t, err)
	assert.True(t, modified)

	profile, err := svc.Get(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, profile.ApprovalStatus)
	require.NotNil(t, profile.DecidedBy)
	assert.Equal(t, int64(1), *profile.DecidedBy)
	assert.NotNil(t, profile.DecidedAt)
	assert.True(t, repo.accounts[10].verified)

	require.Len(t, notifier.sent, 1)
	assert.True(t, notifier.sent[0].approved)
}

func TestApproveIsIdempotent(t *testing.T) {
	repo := newStubRepo()
	repo.addVendor(10, StatusPending)
	svc := NewService(repo, nil, nil, nil)

	first, err := svc.Approve(context.Background(), adminClaim(), 10)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := svc.Approve(context.Background(), adminClaim(), 10)
	require.NoError(t, err)
	assert.False(t, second, "second approve must be a no-op, not an error")

	profile, err := svc.Get(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, profile.ApprovalStatus)
	assert.True(t, repo.accounts[10].verified)
}

func TestRejectStampsReasonAndKeepsVerified(t *testing.T) {
	repo := newStubRepo()
	repo.addVendor(10, StatusPending)
	repo.accounts[10].verified = true // previously approved, then re-reviewed
	notifier := &stubNotifier{}
	svc := NewService(repo, nil, notifier, nil)

	modified, err := svc.Reject(context.Background(), adminClaim(), 10, "  counterfeit goods  ")
	require.NoError(t, err)
	assert.True(t, modified)

	profile, err := svc.Get(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, profile.ApprovalStatus)
	require.NotNil(t, profile.RejectedReason)
	assert.Equal(t, "counterfeit goods", *profile.RejectedReason)
	assert.True(t, repo.accounts[10].verified, "rejection must not clear verified")

	require.Len(t, notifier.sent, 1)
	assert.False(t, notifier.sent[0].approved)
	assert.Equal(t, "counterfeit goods", notifier.sent[0].reason)
}

func TestBulkApproveFiltersNonVendors(t *testing.T) {
	repo := newStubRepo()
	repo.addVendor(1, StatusPending)
	repo.addBuyer(2)
	repo.addVendor(3, StatusPending)
	svc := NewService(repo, nil, nil, nil)

	count, err := svc.BulkApprove(context.Background(), adminClaim(), []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	assert.True(t, repo.accounts[1].verified)
	assert.False(t, repo.accounts[2].verified)
	assert.True(t, repo.accounts[3].verified)
}

func TestBulkApproveSkipsAlreadyApproved(t *testing.T) {
	repo := newStubRepo()
	repo.addVendor(1, StatusApproved)
	repo.addVendor(2, StatusPending)
	svc := NewService(repo, nil, nil, nil)

	count, err := svc.BulkApprove(context.Background(), adminClaim(), []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
