package yookassa

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlyaho/ai-mem-generator/internal/platform/payment"
	cfgpkg "github.com/mlyaho/ai-mem-generator/pkg/config"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

func newTestClient(t *testing.T, h http.HandlerFunc, secret string) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{
		Config: cfgpkg.YooKassaConfig{
			ShopID:        "shop",
			APIKey:        "key",
			WebhookSecret: secret,
			BaseURL:       srv.URL,
		},
		ReturnURL: "https://memes.example/payment/success",
		Timeout:   2 * time.Second,
	})
}

func TestCreatePayment(t *testing.T) {
	var got createPaymentRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/payments", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "shop", user)
		assert.Equal(t, "key", pass)
		assert.NotEmpty(t, r.Header.Get("Idempotence-Key"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		_, _ = w.Write([]byte(`{"id":"2d7b1c3a-000f","status":"pending","amount":{"value":"399.00","currency":"RUB"},
			"confirmation":{"type":"redirect","confirmation_url":"https://yoomoney.ru/checkout/2d7b"}}`))
	}, "")

	res, err := c.CreatePayment(context.Background(), &payment.CreatePaymentOptions{
		Amount:      39900,
		Currency:    "RUB",
		Description: "Purchase of 50 credits",
		UserID:      "u1",
		Metadata:    map[string]string{"type": "credits", "credits": "50"},
	})
	require.NoError(t, err)
	assert.Equal(t, "2d7b1c3a-000f", res.PaymentID)
	assert.Equal(t, "https://yoomoney.ru/checkout/2d7b", res.ConfirmationURL)

	assert.Equal(t, amount{Value: "399.00", Currency: "RUB"}, got.Amount)
	assert.True(t, got.Capture)
	assert.Equal(t, "redirect", got.Confirmation.Type)
	assert.Equal(t, "https://memes.example/payment/success", got.Confirmation.ReturnURL)
	assert.Equal(t, map[string]string{"user_id": "u1", "type": "credits", "credits": "50"}, got.Metadata)
}

func TestCreatePaymentProviderError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","code":"invalid_request","description":"bad amount"}`))
	}, "")

	_, err := c.CreatePayment(context.Background(), &payment.CreatePaymentOptions{Amount: 1, Currency: "RUB"})
	require.ErrorIs(t, err, payment.ErrProviderRequestFailed)
	assert.Contains(t, err.Error(), "bad amount")
}

func TestGetPaymentStatus(t *testing.T) {
	cases := []struct {
		remote string
		want   types.PaymentStatus
	}{
		{"succeeded", types.PaymentStatusSucceeded},
		{"pending", types.PaymentStatusPending},
		{"waiting_for_capture", types.PaymentStatusPending},
		{"canceled", types.PaymentStatusCancelled},
		{"failed", types.PaymentStatusFailed},
	}
	for _, tc := range cases {
		t.Run(tc.remote, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/payments/p1", r.URL.Path)
				_, _ = w.Write([]byte(`{"id":"p1","status":"` + tc.remote + `","amount":{"value":"2.99","currency":"RUB"}}`))
			}, "")
			intent, err := c.GetPaymentStatus(context.Background(), "p1")
			require.NoError(t, err)
			assert.Equal(t, tc.want, intent.Status)
			assert.Equal(t, int64(299), intent.Amount)
		})
	}
}

func TestGetPaymentStatusNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, "")
	_, err := c.GetPaymentStatus(context.Background(), "missing")
	require.ErrorIs(t, err, payment.ErrPaymentNotFound)
}

func TestRefundDefaultsToFullAmount(t *testing.T) {
	var refund refundRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/payments/p1":
			_, _ = w.Write([]byte(`{"id":"p1","status":"succeeded","amount":{"value":"599.00","currency":"RUB"}}`))
		case "/refunds":
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &refund))
			_, _ = w.Write([]byte(`{"id":"r1","status":"succeeded","payment_id":"p1"}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}, "")

	require.NoError(t, c.Refund(context.Background(), &payment.RefundOptions{PaymentID: "p1"}))
	assert.Equal(t, "p1", refund.PaymentID)
	assert.Equal(t, amount{Value: "599.00", Currency: "RUB"}, refund.Amount)
	assert.Equal(t, "Refund", refund.Description)
}

func TestHandleWebhook(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, "whsec")

	body := []byte(`{"type":"notification","event":"payment.succeeded","object":{"id":"p1","status":"succeeded",
		"amount":{"value":"99.00","currency":"RUB"},"metadata":{"type":"credits","credits":"10"}}}`)

	wh, err := c.HandleWebhook(context.Background(), body, payment.SignHMAC(body, "whsec"))
	require.NoError(t, err)
	assert.Equal(t, "p1", wh.PaymentID)
	assert.Equal(t, types.PaymentStatusSucceeded, wh.Status)
	assert.Equal(t, int64(9900), wh.Amount)
	assert.Equal(t, "10", wh.Metadata["credits"])

	_, err = c.HandleWebhook(context.Background(), body, payment.SignHMAC(body, "wrong"))
	require.ErrorIs(t, err, payment.ErrInvalidSignature)
}

func TestHandleWebhookRefund(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, "whsec")
	body := []byte(`{"type":"notification","event":"refund.succeeded","object":{"id":"r1","status":"succeeded",
		"payment_id":"p1","amount":{"value":"99.00","currency":"RUB"}}}`)

	wh, err := c.HandleWebhook(context.Background(), body, payment.SignHMAC(body, "whsec"))
	require.NoError(t, err)
	assert.Equal(t, "p1", wh.PaymentID)
	assert.Equal(t, types.PaymentStatusRefunded, wh.Status)
}

func TestHandleWebhookWithoutSecretSkipsVerification(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, "")
	body := []byte(`{"event":"payment.canceled","object":{"id":"p1","status":"canceled","amount":{"value":"1.00","currency":"RUB"}}}`)

	wh, err := c.HandleWebhook(context.Background(), body, "")
	require.NoError(t, err)
	assert.Equal(t, types.PaymentStatusCancelled, wh.Status)
}

func TestHandleWebhookMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, "")
	_, err := c.HandleWebhook(context.Background(), []byte(`{"event":"payment.succeeded"}`), "")
	require.ErrorIs(t, err, payment.ErrInvalidWebhook)
}

func TestHealthCheck(t *testing.T) {
	ok := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me", r.URL.Path)
		_, _ = w.Write([]byte(`{"account_id":"shop"}`))
	}, "")
	assert.True(t, ok.HealthCheck(context.Background()))

	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, "")
	assert.False(t, down.HealthCheck(context.Background()))
}

func TestAmountConversion(t *testing.T) {
	assert.Equal(t, "99.00", toMajor(9900))
	assert.Equal(t, "0.05", toMajor(5))
	assert.Equal(t, "3999.00", toMajor(399900))

	minor, err := toMinor("299.90")
	require.NoError(t, err)
	assert.Equal(t, int64(29990), minor)

	_, err = toMinor("abc")
	require.Error(t, err)
}
