// Package yookassa implements payment.Provider over the YooKassa v3 REST API.
package yookassa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mlyaho/ai-mem-generator/internal/platform/payment"
	cfgpkg "github.com/mlyaho/ai-mem-generator/pkg/config"
	"github.com/mlyaho/ai-mem-generator/pkg/logctx"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

const DefaultBaseURL = "https://api.yookassa.ru/v3"

type Client struct {
	shopID        string
	apiKey        string
	webhookSecret string
	baseURL       string
	returnURL     string
	timeout       time.Duration
	httpClient    *http.Client
	verifier      payment.Verifier
	log           *zap.SugaredLogger
}

type Options struct {
	Config     cfgpkg.YooKassaConfig
	ReturnURL  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Log        *zap.SugaredLogger
}

func New(opts Options) *Client {
	base := strings.TrimRight(opts.Config.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		shopID:        opts.Config.ShopID,
		apiKey:        opts.Config.APIKey,
		webhookSecret: opts.Config.WebhookSecret,
		baseURL:       base,
		returnURL:     opts.ReturnURL,
		timeout:       opts.Timeout,
		httpClient:    hc,
		verifier:      payment.HMACVerifier{},
		log:           log.With("provider", types.PaymentProviderYooKassa),
	}
}

func (c *Client) Name() types.PaymentProvider { return types.PaymentProviderYooKassa }

type amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type confirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type paymentObject struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	Amount       amount            `json:"amount"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Confirmation *confirmation     `json:"confirmation,omitempty"`
	// PaymentID is set on refund objects.
	PaymentID string `json:"payment_id,omitempty"`
}

type createPaymentRequest struct {
	Amount       amount            `json:"amount"`
	Capture      bool              `json:"capture"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Confirmation confirmation      `json:"confirmation"`
}

type refundRequest struct {
	PaymentID   string `json:"payment_id"`
	Amount      amount `json:"amount"`
	Description string `json:"description,omitempty"`
}

type apiError struct {
	Type        string `json:"type"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (c *Client) CreatePayment(ctx context.Context, opts *payment.CreatePaymentOptions) (*payment.CreatePaymentResult, error) {
	metadata := map[string]string{"user_id": opts.UserID}
	for k, v := range opts.Metadata {
		metadata[k] = v
	}
	returnURL := opts.ReturnURL
	if returnURL == "" {
		returnURL = c.returnURL
	}
	req := createPaymentRequest{
		Amount:       amount{Value: toMajor(opts.Amount), Currency: opts.Currency},
		Capture:      true,
		Description:  opts.Description,
		Metadata:     metadata,
		Confirmation: confirmation{Type: "redirect", ReturnURL: returnURL},
	}

	var out paymentObject
	headers := map[string]string{"Idempotence-Key": uuid.NewString()}
	if err := c.do(ctx, http.MethodPost, "/payments", req, headers, &out); err != nil {
		logctx.FromCtx(ctx, c.log).Errorw("yookassa_create_payment_failed", "err", err)
		return nil, err
	}

	res := &payment.CreatePaymentResult{PaymentID: out.ID}
	if out.Confirmation != nil {
		res.ConfirmationURL = out.Confirmation.ConfirmationURL
	}
	return res, nil
}

func (c *Client) GetPaymentStatus(ctx context.Context, paymentID string) (*payment.PaymentIntent, error) {
	var out paymentObject
	if err := c.do(ctx, http.MethodGet, "/payments/"+paymentID, nil, nil, &out); err != nil {
		return nil, err
	}
	minor, err := toMinor(out.Amount.Value)
	if err != nil {
		return nil, err
	}
	return &payment.PaymentIntent{
		ID:          out.ID,
		Amount:      minor,
		Currency:    out.Amount.Currency,
		Status:      mapStatus(out.Status),
		Description: out.Description,
		Metadata:    out.Metadata,
	}, nil
}

// Refund returns opts.Amount, or the full payment amount when it is zero.
func (c *Client) Refund(ctx context.Context, opts *payment.RefundOptions) error {
	intent, err := c.GetPaymentStatus(ctx, opts.PaymentID)
	if err != nil {
		return err
	}
	value := opts.Amount
	if value <= 0 {
		value = intent.Amount
	}
	desc := opts.Description
	if desc == "" {
		desc = "Refund"
	}
	req := refundRequest{
		PaymentID:   opts.PaymentID,
		Amount:      amount{Value: toMajor(value), Currency: intent.Currency},
		Description: desc,
	}
	headers := map[string]string{"Idempotence-Key": uuid.NewString()}
	if err := c.do(ctx, http.MethodPost, "/refunds", req, headers, nil); err != nil {
		logctx.FromCtx(ctx, c.log).Errorw("yookassa_refund_failed", "payment_id", opts.PaymentID, "err", err)
		return err
	}
	logctx.FromCtx(ctx, c.log).Infow("yookassa_refund_requested", "payment_id", opts.PaymentID, "amount", value)
	return nil
}

type notification struct {
	Type   string        `json:"type"`
	Event  string        `json:"event"`
	Object paymentObject `json:"object"`
}

func (c *Client) HandleWebhook(ctx context.Context, body []byte, signature string) (*payment.Webhook, error) {
	if c.webhookSecret == "" {
		logctx.FromCtx(ctx, c.log).Warnw("yookassa webhook secret not configured, skipping signature verification")
	} else if !c.verifier.Verify(body, signature, c.webhookSecret) {
		return nil, payment.ErrInvalidSignature
	}

	var n notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrInvalidWebhook, err)
	}
	if n.Object.ID == "" {
		return nil, fmt.Errorf("%w: missing object id", payment.ErrInvalidWebhook)
	}

	wh := &payment.Webhook{
		PaymentID: n.Object.ID,
		Status:    mapStatus(n.Object.Status),
		Currency:  n.Object.Amount.Currency,
		Metadata:  n.Object.Metadata,
		Event:     n.Event,
		Raw:       json.RawMessage(body),
	}
	if strings.HasPrefix(n.Event, "refund.") {
		if n.Object.PaymentID == "" {
			return nil, fmt.Errorf("%w: refund without payment_id", payment.ErrInvalidWebhook)
		}
		wh.PaymentID = n.Object.PaymentID
		if n.Event == "refund.succeeded" {
			wh.Status = types.PaymentStatusRefunded
		} else {
			wh.Status = types.PaymentStatusPending
		}
	}
	if n.Object.Amount.Value != "" {
		minor, err := toMinor(n.Object.Amount.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", payment.ErrInvalidWebhook, err)
		}
		wh.Amount = minor
	}
	return wh, nil
}

func (c *Client) HealthCheck(ctx context.Context) bool {
	return c.do(ctx, http.MethodGet, "/me", nil, nil, nil) == nil
}

func (c *Client) do(ctx context.Context, method, path string, in any, headers map[string]string, out any) error {
	ctx, cancel := payment.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(c.shopID, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", payment.ErrProviderRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", payment.ErrPaymentNotFound, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		_ = json.Unmarshal(raw, &apiErr)
		return fmt.Errorf("%w: %s %s: status %d: %s", payment.ErrProviderRequestFailed, method, path, resp.StatusCode, apiErr.Description)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func mapStatus(s string) types.PaymentStatus {
	switch s {
	case "succeeded":
		return types.PaymentStatusSucceeded
	case "canceled":
		return types.PaymentStatusCancelled
	case "failed":
		return types.PaymentStatusFailed
	default:
		// pending, waiting_for_capture
		return types.PaymentStatusPending
	}
}

// toMajor renders minor units as a two-decimal string: 9900 -> "99.00".
func toMajor(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

func toMinor(major string) (int64, error) {
	d, err := decimal.NewFromString(major)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", major, err)
	}
	return d.Shift(2).Round(0).IntPart(), nil
}
