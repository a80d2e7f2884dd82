// Package stripe implements payment.Provider on top of stripe-go PaymentIntents.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	stripeapi "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"github.com/mlyaho/ai-mem-generator/internal/platform/payment"
	cfgpkg "github.com/mlyaho/ai-mem-generator/pkg/config"
	"github.com/mlyaho/ai-mem-generator/pkg/logctx"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

const defaultTolerance = 5 * time.Minute

type Client struct {
	api           *client.API
	webhookSecret string
	tolerance     time.Duration
	timeout       time.Duration
	log           *zap.SugaredLogger
}

type Options struct {
	Config  cfgpkg.StripeConfig
	Timeout time.Duration
	Log     *zap.SugaredLogger
}

func New(opts Options) *Client {
	log := opts.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	var backends *stripeapi.Backends
	if opts.Config.BaseURL != "" {
		backend := stripeapi.GetBackendWithConfig(stripeapi.APIBackend, &stripeapi.BackendConfig{
			URL:               stripeapi.String(strings.TrimRight(opts.Config.BaseURL, "/")),
			MaxNetworkRetries: stripeapi.Int64(0),
			HTTPClient:        &http.Client{},
		})
		backends = &stripeapi.Backends{API: backend, Connect: backend, Uploads: backend}
	}
	tolerance := opts.Config.WebhookTolerance
	if tolerance <= 0 {
		tolerance = defaultTolerance
	}
	return &Client{
		api:           client.New(opts.Config.SecretKey, backends),
		webhookSecret: opts.Config.WebhookSecret,
		tolerance:     tolerance,
		timeout:       opts.Timeout,
		log:           log.With("provider", types.PaymentProviderStripe),
	}
}

func (c *Client) Name() types.PaymentProvider { return types.PaymentProviderStripe }

func (c *Client) CreatePayment(ctx context.Context, opts *payment.CreatePaymentOptions) (*payment.CreatePaymentResult, error) {
	ctx, cancel := payment.WithTimeout(ctx, c.timeout)
	defer cancel()

	metadata := map[string]string{"user_id": opts.UserID}
	for k, v := range opts.Metadata {
		metadata[k] = v
	}
	params := &stripeapi.PaymentIntentParams{
		Params:      stripeapi.Params{Context: ctx},
		Amount:      stripeapi.Int64(opts.Amount),
		Currency:    stripeapi.String(strings.ToLower(opts.Currency)),
		Description: stripeapi.String(opts.Description),
		Metadata:    metadata,
		AutomaticPaymentMethods: &stripeapi.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripeapi.Bool(true),
		},
	}
	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		logctx.FromCtx(ctx, c.log).Errorw("stripe_create_payment_failed", "err", err)
		return nil, wrapErr(err)
	}
	return &payment.CreatePaymentResult{
		PaymentID:        pi.ID,
		ConfirmationData: map[string]any{"clientSecret": pi.ClientSecret},
	}, nil
}

func (c *Client) GetPaymentStatus(ctx context.Context, paymentID string) (*payment.PaymentIntent, error) {
	ctx, cancel := payment.WithTimeout(ctx, c.timeout)
	defer cancel()

	pi, err := c.api.PaymentIntents.Get(paymentID, &stripeapi.PaymentIntentParams{Params: stripeapi.Params{Context: ctx}})
	if err != nil {
		return nil, wrapErr(err)
	}
	return intentFrom(pi), nil
}

func (c *Client) Refund(ctx context.Context, opts *payment.RefundOptions) error {
	ctx, cancel := payment.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := &stripeapi.RefundParams{
		Params:        stripeapi.Params{Context: ctx},
		PaymentIntent: stripeapi.String(opts.PaymentID),
	}
	if opts.Amount > 0 {
		params.Amount = stripeapi.Int64(opts.Amount)
	}
	if opts.Description != "" {
		params.AddMetadata("description", opts.Description)
	}
	if _, err := c.api.Refunds.New(params); err != nil {
		logctx.FromCtx(ctx, c.log).Errorw("stripe_refund_failed", "payment_id", opts.PaymentID, "err", err)
		return wrapErr(err)
	}
	return nil
}

func (c *Client) HandleWebhook(ctx context.Context, body []byte, signature string) (*payment.Webhook, error) {
	if c.webhookSecret == "" {
		return nil, fmt.Errorf("%w: stripe webhook secret not configured", payment.ErrInvalidSignature)
	}
	if err := webhook.ValidatePayloadWithTolerance(body, signature, c.webhookSecret, c.tolerance); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrInvalidSignature, err)
	}

	var event stripeapi.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrInvalidWebhook, err)
	}
	if event.Data == nil {
		return nil, fmt.Errorf("%w: event without data", payment.ErrInvalidWebhook)
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed", "payment_intent.canceled":
		var pi stripeapi.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("%w: %v", payment.ErrInvalidWebhook, err)
		}
		intent := intentFrom(&pi)
		status := intent.Status
		if event.Type == "payment_intent.payment_failed" {
			status = types.PaymentStatusFailed
		}
		return &payment.Webhook{
			PaymentID: intent.ID,
			Status:    status,
			Amount:    intent.Amount,
			Currency:  intent.Currency,
			Metadata:  intent.Metadata,
			Event:     string(event.Type),
			Raw:       json.RawMessage(body),
		}, nil
	case "charge.refunded":
		var ch stripeapi.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("%w: %v", payment.ErrInvalidWebhook, err)
		}
		if ch.PaymentIntent == nil || ch.PaymentIntent.ID == "" {
			return nil, fmt.Errorf("%w: charge without payment intent", payment.ErrInvalidWebhook)
		}
		return &payment.Webhook{
			PaymentID: ch.PaymentIntent.ID,
			Status:    types.PaymentStatusRefunded,
			Amount:    ch.AmountRefunded,
			Currency:  strings.ToUpper(string(ch.Currency)),
			Metadata:  ch.Metadata,
			Event:     string(event.Type),
			Raw:       json.RawMessage(body),
		}, nil
	default:
		// acknowledged without effect so Stripe stops redelivering
		logctx.FromCtx(ctx, c.log).Infow("stripe_webhook_ignored", "event_type", event.Type)
		return &payment.Webhook{Status: types.PaymentStatusPending, Event: string(event.Type), Raw: json.RawMessage(body)}, nil
	}
}

func (c *Client) HealthCheck(ctx context.Context) bool {
	ctx, cancel := payment.WithTimeout(ctx, c.timeout)
	defer cancel()
	_, err := c.api.Balance.Get(&stripeapi.BalanceParams{Params: stripeapi.Params{Context: ctx}})
	return err == nil
}

func intentFrom(pi *stripeapi.PaymentIntent) *payment.PaymentIntent {
	return &payment.PaymentIntent{
		ID:          pi.ID,
		Amount:      pi.Amount,
		Currency:    strings.ToUpper(string(pi.Currency)),
		Status:      mapStatus(pi.Status),
		Description: pi.Description,
		Metadata:    pi.Metadata,
	}
}

func mapStatus(s stripeapi.PaymentIntentStatus) types.PaymentStatus {
	switch s {
	case stripeapi.PaymentIntentStatusSucceeded:
		return types.PaymentStatusSucceeded
	case stripeapi.PaymentIntentStatusRequiresPaymentMethod:
		return types.PaymentStatusFailed
	case stripeapi.PaymentIntentStatusCanceled:
		return types.PaymentStatusCancelled
	default:
		// processing, requires_confirmation, requires_action, requires_capture
		return types.PaymentStatusPending
	}
}

func wrapErr(err error) error {
	var se *stripeapi.Error
	if errors.As(err, &se) && se.HTTPStatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", payment.ErrPaymentNotFound, se.Msg)
	}
	return fmt.Errorf("%w: %v", payment.ErrProviderRequestFailed, err)
}
