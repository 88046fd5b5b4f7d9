package vendors

import "time"

// ApprovalStatus is the vendor moderation state.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Profile is the vendor approval record attached to a vendor account.
type Profile struct {
	AccountID      int64          `json:"account_id"`
	ShopName       string         `json:"shop_name"`
	Bio            string         `json:"bio,omitempty"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	DecidedBy      *int64         `json:"decided_by,omitempty"`
	DecidedAt      *time.Time     `json:"decided_at,omitempty"`
	RejectedReason *string        `json:"rejected_reason,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Summary is the admin moderation-queue view joining profile and account.
type Summary struct {
	Profile
	Email    string `json:"email"`
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
}
