package vendors

import (
	"context"
	"log/slog"
	"strings"

	"github.com/atelier-commerce/atelier/internal/authz"
	"github.com/atelier-commerce/atelier/internal/shared"
)

// Notifier enqueues decision notifications for vendors. Implemented by the
// jobs client; nil disables notifications.
type Notifier interface {
	NotifyVendorDecision(ctx context.Context, accountID int64, approved bool, reason string) error
}

// Service orchestrates the vendor approval workflow.
type Service struct {
	repo     Repository
	history  *shared.ModerationRecorder
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs a new Service. history and notifier may be nil.
func NewService(repo Repository, history *shared.ModerationRecorder, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, history: history, notifier: notifier, logger: logger}
}

// Get returns a vendor profile.
func (s *Service) Get(ctx context.Context, accountID int64) (*Profile, error) {
	return s.repo.Get(ctx, accountID)
}

// List returns the moderation queue, optionally filtered by status.
func (s *Service) List(ctx context.Context, status *ApprovalStatus, limit, offset int) ([]Summary, int, error) {
	return s.repo.List(ctx, status, limit, offset)
}

// Approve transitions a vendor to approved, stamps the approver and marks
// the account verified. Approving an already-approved vendor succeeds with
// modified=false.
func (s *Service) Approve(ctx context.Context, claim *authz.Claim, accountID int64) (bool, error) {
	modified, err := s.repo.Approve(ctx, accountID, claim.SubjectID)
	if err != nil {
		return false, err
	}
	if modified {
		s.recordDecision(ctx, claim.SubjectID, accountID, shared.ModerationApprove, "")
		s.notify(ctx, accountID, true, "")
	}
	return modified, nil
}

// Reject transitions a vendor to rejected with a free-text reason. The
// verified flag is deliberately left untouched: a previously approved
// vendor that gets rejected keeps historical verification stamps.
func (s *Service) Reject(ctx context.Context, claim *authz.Claim, accountID int64, reason string) (bool, error) {
	reason = strings.TrimSpace(reason)
	modified, err := s.repo.Reject(ctx, accountID, claim.SubjectID, reason)
	if err != nil {
		return false, err
	}
	if modified {
		s.recordDecision(ctx, claim.SubjectID, accountID, shared.ModerationReject, reason)
		s.notify(ctx, accountID, false, reason)
	}
	return modified, nil
}

// BulkApprove approves every id that resolves to a vendor account and
// reports the number actually transitioned. Non-vendor ids are silently
// filtered out; interrupting the request mid-batch leaves already-updated
// rows approved.
func (s *Service) BulkApprove(ctx context.Context, claim *authz.Claim, accountIDs []int64) (int64, error) {
	modified, err := s.repo.BulkApprove(ctx, accountIDs, claim.SubjectID)
	if err != nil {
		return 0, err
	}
	if modified > 0 {
		s.recordDecision(ctx, claim.SubjectID, 0, shared.ModerationApprove, "bulk")
	}
	return modified, nil
}

func (s *Service) recordDecision(ctx context.Context, actorID, refID int64, action shared.ModerationAction, note string) {
	if s.history == nil {
		return
	}
	if refID == 0 {
		// Bulk decisions are recorded against the actor; per-row history is
		// reconstructable from vendor_profiles stamps.
		refID = actorID
	}
	if err := s.history.Record(ctx, shared.ModerationLog{
		Entity:  "vendor",
		RefID:   refID,
		ActorID: actorID,
		Action:  action,
		Note:    note,
	}); err != nil && s.logger != nil {
		s.logger.Warn("record vendor decision", slog.Any("error", err))
	}
}

func (s *Service) notify(ctx context.Context, accountID int64, approved bool, reason string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyVendorDecision(ctx, accountID, approved, reason); err != nil && s.logger != nil {
		s.logger.Warn("enqueue vendor notification", slog.Any("error", err))
	}
}
