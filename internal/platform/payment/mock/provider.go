// Package mock is an in-memory payment.Provider for development and tests. No money moves.
package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/mlyaho/ai-mem-generator/internal/platform/payment"
	cfgpkg "github.com/mlyaho/ai-mem-generator/pkg/config"
	"github.com/mlyaho/ai-mem-generator/pkg/logctx"
	"github.com/mlyaho/ai-mem-generator/pkg/tool"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

const IDPrefix = "mock_payment_"

var ErrSimulated = errors.New("payment simulation failed: insufficient funds")

// State is the mock's record of one payment.
type State struct {
	ID          string
	Amount      int64
	Currency    string
	Status      types.PaymentStatus
	Description string
	Metadata    map[string]string
	CreatedAt   time.Time
	ConfirmedAt *time.Time
	RefundedAt  *time.Time
}

type Provider struct {
	mu       sync.Mutex
	cfg      cfgpkg.MockPaymentConfig
	payments map[string]*State
	verifier payment.Verifier
	log      *zap.SugaredLogger
}

func New(cfg cfgpkg.MockPaymentConfig, log *zap.SugaredLogger) *Provider {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Provider{
		cfg:      cfg,
		payments: make(map[string]*State),
		verifier: payment.HMACVerifier{},
		log:      log.With("provider", types.PaymentProviderMock),
	}
}

func (p *Provider) Name() types.PaymentProvider { return types.PaymentProviderMock }

func (p *Provider) config() cfgpkg.MockPaymentConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

func (p *Provider) CreatePayment(ctx context.Context, opts *payment.CreatePaymentOptions) (*payment.CreatePaymentResult, error) {
	cfg := p.config()
	if cfg.ProcessingDelay > 0 {
		select {
		case <-time.After(cfg.ProcessingDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if cfg.SimulateError {
		logctx.FromCtx(ctx, p.log).Warnw("mock_payment_simulated_failure")
		return nil, ErrSimulated
	}

	id := tool.GeneratePrefixedID(IDPrefix)
	p.mu.Lock()
	p.payments[id] = &State{
		ID:          id,
		Amount:      opts.Amount,
		Currency:    opts.Currency,
		Status:      types.PaymentStatusPending,
		Description: opts.Description,
		Metadata:    lo.Assign(map[string]string{}, opts.Metadata),
		CreatedAt:   time.Now(),
	}
	p.mu.Unlock()

	if cfg.AutoConfirm {
		delay := cfg.ProcessingDelay
		if delay <= 0 {
			delay = 100 * time.Millisecond
		}
		time.AfterFunc(delay, func() { p.ConfirmPayment(id) })
	}

	confirmURL := ""
	if cfg.ConfirmBaseURL != "" {
		confirmURL = strings.TrimRight(cfg.ConfirmBaseURL, "/") + "/" + id
	}
	logctx.FromCtx(ctx, p.log).Infow("mock_payment_created", "payment_id", id, "amount", opts.Amount)
	return &payment.CreatePaymentResult{
		PaymentID:        id,
		ConfirmationURL:  confirmURL,
		ConfirmationData: map[string]any{"mock": true, "paymentId": id},
	}, nil
}

// ConfirmPayment marks a pending payment succeeded. It returns false for unknown ids.
func (p *Provider) ConfirmPayment(id string) (*State, bool) {
	return p.transition(id, types.PaymentStatusSucceeded)
}

// FailPayment marks a pending payment failed.
func (p *Provider) FailPayment(id string) (*State, bool) {
	return p.transition(id, types.PaymentStatusFailed)
}

func (p *Provider) transition(id string, status types.PaymentStatus) (*State, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.payments[id]
	if !ok {
		return nil, false
	}
	if st.Status == types.PaymentStatusPending || st.Status == status {
		st.Status = status
		if status == types.PaymentStatusSucceeded && st.ConfirmedAt == nil {
			now := time.Now()
			st.ConfirmedAt = &now
		}
	}
	cp := *st
	return &cp, true
}

func (p *Provider) GetPaymentStatus(ctx context.Context, paymentID string) (*payment.PaymentIntent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.payments[paymentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", payment.ErrPaymentNotFound, paymentID)
	}
	return &payment.PaymentIntent{
		ID:          st.ID,
		Amount:      st.Amount,
		Currency:    st.Currency,
		Status:      st.Status,
		Description: st.Description,
		Metadata:    lo.Assign(map[string]string{}, st.Metadata),
	}, nil
}

func (p *Provider) Refund(ctx context.Context, opts *payment.RefundOptions) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.payments[opts.PaymentID]
	if !ok {
		return fmt.Errorf("%w: %s", payment.ErrPaymentNotFound, opts.PaymentID)
	}
	if st.Status != types.PaymentStatusSucceeded {
		return fmt.Errorf("%w: status %s", payment.ErrRefundNotAllowed, st.Status)
	}
	now := time.Now()
	st.Status = types.PaymentStatusRefunded
	st.RefundedAt = &now
	logctx.FromCtx(ctx, p.log).Infow("mock_payment_refunded", "payment_id", opts.PaymentID)
	return nil
}

type webhookBody struct {
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
	Object    struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"object"`
}

// HandleWebhook accepts {"paymentId":"...","status":"..."} or {"object":{"id":"..."}}.
// An omitted status reports the payment's current mock state.
func (p *Provider) HandleWebhook(ctx context.Context, body []byte, signature string) (*payment.Webhook, error) {
	secret := p.config().WebhookSecret
	if secret == "" {
		logctx.FromCtx(ctx, p.log).Warnw("mock webhook secret not configured, skipping signature verification")
	} else if !p.verifier.Verify(body, signature, secret) {
		return nil, payment.ErrInvalidSignature
	}

	var b webhookBody
	if err := json.Unmarshal(body, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrInvalidWebhook, err)
	}
	id := lo.Ternary(b.Object.ID != "", b.Object.ID, b.PaymentID)
	if id == "" {
		return nil, fmt.Errorf("%w: no paymentId", payment.ErrInvalidWebhook)
	}
	requested := types.PaymentStatus(lo.Ternary(b.Object.Status != "", b.Object.Status, b.Status))

	var st *State
	switch requested {
	case "":
	case types.PaymentStatusSucceeded, types.PaymentStatusFailed:
		if _, ok := p.transition(id, requested); !ok {
			return nil, fmt.Errorf("%w: %s", payment.ErrPaymentNotFound, id)
		}
	case types.PaymentStatusRefunded:
		if err := p.Refund(ctx, &payment.RefundOptions{PaymentID: id}); err != nil && !errors.Is(err, payment.ErrRefundNotAllowed) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unsupported status %q", payment.ErrInvalidWebhook, requested)
	}

	p.mu.Lock()
	if cur, ok := p.payments[id]; ok {
		cp := *cur
		st = &cp
	}
	p.mu.Unlock()
	if st == nil {
		return nil, fmt.Errorf("%w: %s", payment.ErrPaymentNotFound, id)
	}

	return &payment.Webhook{
		PaymentID: st.ID,
		Status:    st.Status,
		Amount:    st.Amount,
		Currency:  st.Currency,
		Metadata:  st.Metadata,
		Event:     "payment." + string(st.Status),
		Raw:       json.RawMessage(body),
	}, nil
}

func (p *Provider) HealthCheck(context.Context) bool { return true }

// Payments returns a snapshot of every mock payment.
func (p *Provider) Payments() []State {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]State, 0, len(p.payments))
	for _, st := range p.payments {
		out = append(out, *st)
	}
	return out
}

func (p *Provider) Reset() {
	p.mu.Lock()
	p.payments = make(map[string]*State)
	p.mu.Unlock()
}
