package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeVendorDecision notifies a vendor about an approval decision.
	TaskTypeVendorDecision = "vendor:decision"
	// TaskTypeAnalyticsWarmup precomputes the admin dashboard aggregates.
	TaskTypeAnalyticsWarmup = "analytics:warmup"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// VendorDecisionPayload carries an approval outcome to the worker.
type VendorDecisionPayload struct {
	AccountID int64  `json:"account_id"`
	Approved  bool   `json:"approved"`
	Reason    string `json:"reason,omitempty"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewVendorDecisionTask constructs an Asynq task for a vendor decision.
func NewVendorDecisionTask(payload VendorDecisionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeVendorDecision, data), nil
}

// NewAnalyticsWarmupTask constructs the cache warmup task.
func NewAnalyticsWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeAnalyticsWarmup, nil)
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: delivered via SMTP/Mailpit in deployment.
	fmt.Printf("[jobs] send email to %s subject=%s\n", payload.To, payload.Subject)
	return nil
}

// AccountEmailLookup resolves a notification address for an account.
type AccountEmailLookup func(ctx context.Context, accountID int64) (email, name string, err error)

// NewVendorDecisionHandler builds the worker-side handler for vendor
// decision notifications. The lookup failing is retryable; a malformed
// payload is not.
func NewVendorDecisionHandler(lookup AccountEmailLookup) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload VendorDecisionPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		email, name, err := lookup(ctx, payload.AccountID)
		if err != nil {
			return err
		}
		subject := "Your Atelier shop has been approved"
		body := fmt.Sprintf("Hi %s, your shop is now live on Atelier.", name)
		if !payload.Approved {
			subject = "Your Atelier shop application"
			body = fmt.Sprintf("Hi %s, your shop application was not approved. Reason: %s", name, payload.Reason)
		}
		mail, err := NewSendEmailTask(SendEmailPayload{To: email, Subject: subject, Body: body})
		if err != nil {
			return err
		}
		return HandleSendEmailTask(ctx, mail)
	}
}

// WarmupFunc precomputes dashboard aggregates.
type WarmupFunc func(ctx context.Context) error

// NewAnalyticsWarmupHandler builds the worker-side warmup handler.
func NewAnalyticsWarmupHandler(warm WarmupFunc) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		return warm(ctx)
	}
}
