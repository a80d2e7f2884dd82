package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlyaho/ai-mem-generator/internal/platform/payment"
	cfgpkg "github.com/mlyaho/ai-mem-generator/pkg/config"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

const testWebhookSecret = "whsec_test"

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{
		Config: cfgpkg.StripeConfig{
			SecretKey:     "sk_test_123",
			WebhookSecret: testWebhookSecret,
			BaseURL:       srv.URL,
		},
		Timeout: 2 * time.Second,
	})
}

func sign(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.", ts.Unix())))
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestCreatePayment(t *testing.T) {
	var form url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		var err error
		form, err = url.ParseQuery(string(body))
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","amount":29900,"currency":"rub",
			"status":"requires_payment_method","client_secret":"pi_123_secret_abc"}`))
	})

	res, err := c.CreatePayment(context.Background(), &payment.CreatePaymentOptions{
		Amount:      29900,
		Currency:    "RUB",
		Description: "Premium subscription",
		UserID:      "u1",
		Metadata:    map[string]string{"type": "subscription", "plan": "premium"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", res.PaymentID)
	assert.Equal(t, "pi_123_secret_abc", res.ConfirmationData["clientSecret"])
	assert.Empty(t, res.ConfirmationURL)

	assert.Equal(t, "29900", form.Get("amount"))
	assert.Equal(t, "rub", form.Get("currency"))
	assert.Equal(t, "premium", form.Get("metadata[plan]"))
	assert.Equal(t, "u1", form.Get("metadata[user_id]"))
}

func TestGetPaymentStatus(t *testing.T) {
	cases := []struct {
		remote string
		want   types.PaymentStatus
	}{
		{"succeeded", types.PaymentStatusSucceeded},
		{"processing", types.PaymentStatusPending},
		{"requires_confirmation", types.PaymentStatusPending},
		{"requires_action", types.PaymentStatusPending},
		{"requires_capture", types.PaymentStatusPending},
		{"requires_payment_method", types.PaymentStatusFailed},
		{"canceled", types.PaymentStatusCancelled},
	}
	for _, tc := range cases {
		t.Run(tc.remote, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/v1/payment_intents/pi_1", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"id":"pi_1","object":"payment_intent","amount":9900,"currency":"rub","status":"` + tc.remote + `"}`))
			})
			intent, err := c.GetPaymentStatus(context.Background(), "pi_1")
			require.NoError(t, err)
			assert.Equal(t, tc.want, intent.Status)
			assert.Equal(t, int64(9900), intent.Amount)
			assert.Equal(t, "RUB", intent.Currency)
		})
	}
}

func TestGetPaymentStatusNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such payment_intent: 'pi_x'"}}`))
	})
	_, err := c.GetPaymentStatus(context.Background(), "pi_x")
	require.ErrorIs(t, err, payment.ErrPaymentNotFound)
}

func TestRefund(t *testing.T) {
	var form url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/refunds", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"re_1","object":"refund","amount":500,"status":"succeeded"}`))
	})

	require.NoError(t, c.Refund(context.Background(), &payment.RefundOptions{PaymentID: "pi_1", Amount: 500}))
	assert.Equal(t, "pi_1", form.Get("payment_intent"))
	assert.Equal(t, "500", form.Get("amount"))
}

func TestHandleWebhook(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	cases := []struct {
		name      string
		body      string
		paymentID string
		status    types.PaymentStatus
	}{
		{
			name:      "intent succeeded",
			body:      `{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","object":"payment_intent","amount":9900,"currency":"rub","status":"succeeded","metadata":{"type":"credits","credits":"10"}}}}`,
			paymentID: "pi_1",
			status:    types.PaymentStatusSucceeded,
		},
		{
			name:      "intent payment failed",
			body:      `{"id":"evt_2","object":"event","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_2","object":"payment_intent","amount":9900,"currency":"rub","status":"requires_payment_method"}}}`,
			paymentID: "pi_2",
			status:    types.PaymentStatusFailed,
		},
		{
			name:      "intent canceled",
			body:      `{"id":"evt_3","object":"event","type":"payment_intent.canceled","data":{"object":{"id":"pi_3","object":"payment_intent","amount":9900,"currency":"rub","status":"canceled"}}}`,
			paymentID: "pi_3",
			status:    types.PaymentStatusCancelled,
		},
		{
			name:      "charge refunded",
			body:      `{"id":"evt_4","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1","object":"charge","amount":9900,"amount_refunded":9900,"currency":"rub","payment_intent":"pi_4"}}}`,
			paymentID: "pi_4",
			status:    types.PaymentStatusRefunded,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := []byte(tc.body)
			wh, err := c.HandleWebhook(context.Background(), body, sign(body, testWebhookSecret, time.Now()))
			require.NoError(t, err)
			assert.Equal(t, tc.paymentID, wh.PaymentID)
			assert.Equal(t, tc.status, wh.Status)
		})
	}
}

func TestHandleWebhookRejectsBadSignatures(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	body := []byte(`{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`)

	cases := map[string]string{
		"wrong secret": sign(body, "whsec_other", time.Now()),
		"stale":        sign(body, testWebhookSecret, time.Now().Add(-time.Hour)),
		"garbage":      "not-a-signature",
		"empty":        "",
	}
	for name, sig := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.HandleWebhook(context.Background(), body, sig)
			require.ErrorIs(t, err, payment.ErrInvalidSignature)
		})
	}
}

func TestHandleWebhookUnsupportedEvent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	body := []byte(`{"id":"evt_1","object":"event","type":"customer.created","data":{"object":{"id":"cus_1"}}}`)
	wh, err := c.HandleWebhook(context.Background(), body, sign(body, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, types.PaymentStatusPending, wh.Status)
	assert.Empty(t, wh.PaymentID)
}

func TestHealthCheck(t *testing.T) {
	ok := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/balance", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"balance","available":[],"pending":[]}`))
	})
	assert.True(t, ok.HealthCheck(context.Background()))

	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Invalid API Key"}}`))
	})
	assert.False(t, down.HealthCheck(context.Background()))
}
