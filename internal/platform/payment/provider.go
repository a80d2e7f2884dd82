// Package payment defines the provider-neutral payment contract and the registry
// that resolves providers by name.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

var (
	// ErrInvalidSignature is returned by HandleWebhook before any payload is parsed.
	ErrInvalidSignature      = errors.New("invalid webhook signature")
	ErrInvalidWebhook        = errors.New("invalid webhook payload")
	ErrPaymentNotFound       = errors.New("payment not found at provider")
	ErrProviderNotConfigured = errors.New("payment provider not configured")
	ErrRefundNotAllowed      = errors.New("payment cannot be refunded in its current state")
	ErrProviderRequestFailed = errors.New("payment provider request failed")
)

// DefaultRequestTimeout bounds a single remote call when none is configured.
const DefaultRequestTimeout = 15 * time.Second

type Provider interface {
	Name() types.PaymentProvider
	CreatePayment(ctx context.Context, opts *CreatePaymentOptions) (*CreatePaymentResult, error)
	GetPaymentStatus(ctx context.Context, paymentID string) (*PaymentIntent, error)
	Refund(ctx context.Context, opts *RefundOptions) error
	// HandleWebhook verifies signature over the raw body, then parses it.
	HandleWebhook(ctx context.Context, body []byte, signature string) (*Webhook, error)
	HealthCheck(ctx context.Context) bool
}

// Verifier checks a webhook signature against the raw request body.
type Verifier interface {
	Verify(payload []byte, signature, secret string) bool
}

type CreatePaymentOptions struct {
	// Amount is in minor units (kopecks, cents).
	Amount      int64
	Currency    string
	Description string
	UserID      string
	Metadata    map[string]string
	// ReturnURL is where redirect-based providers send the user afterwards.
	ReturnURL string
}

type CreatePaymentResult struct {
	PaymentID        string
	ConfirmationURL  string
	ConfirmationData map[string]any
}

type PaymentIntent struct {
	ID          string
	Amount      int64
	Currency    string
	Status      types.PaymentStatus
	Description string
	Metadata    map[string]string
}

type RefundOptions struct {
	PaymentID string
	// Amount of zero refunds the full payment.
	Amount      int64
	Description string
}

// Webhook is a verified, normalized provider notification.
type Webhook struct {
	PaymentID string
	Status    types.PaymentStatus
	Amount    int64
	Currency  string
	Metadata  map[string]string
	Event     string
	Raw       json.RawMessage
}

// WithTimeout applies d, or DefaultRequestTimeout when d is not positive.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultRequestTimeout
	}
	return context.WithTimeout(ctx, d)
}
