package mock

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mlyaho/ai-mem-generator/internal/platform/payment"
	cfgpkg "github.com/mlyaho/ai-mem-generator/pkg/config"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

func createOpts() *payment.CreatePaymentOptions {
	return &payment.CreatePaymentOptions{
		Amount:      9900,
		Currency:    "RUB",
		Description: "Purchase of 10 credits",
		UserID:      "u1",
		Metadata:    map[string]string{"type": "credits", "credits": "10"},
	}
}

func TestCreateAndConfirm(t *testing.T) {
	p := New(cfgpkg.MockPaymentConfig{ConfirmBaseURL: "http://localhost:3000/payment/confirm/"}, nil)

	res, err := p.CreatePayment(context.Background(), createOpts())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(res.PaymentID, IDPrefix))
	assert.Equal(t, "http://localhost:3000/payment/confirm/"+res.PaymentID, res.ConfirmationURL)
	assert.Equal(t, true, res.ConfirmationData["mock"])

	intent, err := p.GetPaymentStatus(context.Background(), res.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentStatusPending, intent.Status)
	assert.Equal(t, "10", intent.Metadata["credits"])

	st, ok := p.ConfirmPayment(res.PaymentID)
	require.True(t, ok)
	assert.Equal(t, types.PaymentStatusSucceeded, st.Status)
	assert.NotNil(t, st.ConfirmedAt)

	_, ok = p.ConfirmPayment("mock_payment_missing")
	assert.False(t, ok)
}

func TestSimulateError(t *testing.T) {
	p := New(cfgpkg.MockPaymentConfig{SimulateError: true}, nil)
	_, err := p.CreatePayment(context.Background(), createOpts())
	require.ErrorIs(t, err, ErrSimulated)
	assert.Empty(t, p.Payments())
}

func TestProcessingDelayHonorsContext(t *testing.T) {
	p := New(cfgpkg.MockPaymentConfig{ProcessingDelay: time.Minute}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.CreatePayment(ctx, createOpts())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAutoConfirm(t *testing.T) {
	p := New(cfgpkg.MockPaymentConfig{AutoConfirm: true, ProcessingDelay: 5 * time.Millisecond}, nil)
	res, err := p.CreatePayment(context.Background(), createOpts())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		intent, err := p.GetPaymentStatus(context.Background(), res.PaymentID)
		return err == nil && intent.Status == types.PaymentStatusSucceeded
	}, time.Second, 5*time.Millisecond)
}

func TestRefundOnlyFromSucceeded(t *testing.T) {
	p := New(cfgpkg.MockPaymentConfig{}, nil)
	res, err := p.CreatePayment(context.Background(), createOpts())
	require.NoError(t, err)

	err = p.Refund(context.Background(), &payment.RefundOptions{PaymentID: res.PaymentID})
	require.ErrorIs(t, err, payment.ErrRefundNotAllowed)

	p.ConfirmPayment(res.PaymentID)
	require.NoError(t, p.Refund(context.Background(), &payment.RefundOptions{PaymentID: res.PaymentID}))

	intent, err := p.GetPaymentStatus(context.Background(), res.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentStatusRefunded, intent.Status)

	err = p.Refund(context.Background(), &payment.RefundOptions{PaymentID: "nope"})
	require.ErrorIs(t, err, payment.ErrPaymentNotFound)
}

func TestHandleWebhook(t *testing.T) {
	p := New(cfgpkg.MockPaymentConfig{WebhookSecret: "mock-secret"}, nil)
	res, err := p.CreatePayment(context.Background(), createOpts())
	require.NoError(t, err)

	body := []byte(`{"paymentId":"` + res.PaymentID + `","status":"succeeded"}`)
	_, err = p.HandleWebhook(context.Background(), body, "bad")
	require.ErrorIs(t, err, payment.ErrInvalidSignature)

	wh, err := p.HandleWebhook(context.Background(), body, payment.SignHMAC(body, "mock-secret"))
	require.NoError(t, err)
	assert.Equal(t, res.PaymentID, wh.PaymentID)
	assert.Equal(t, types.PaymentStatusSucceeded, wh.Status)
	assert.Equal(t, int64(9900), wh.Amount)

	// object form without status reports the stored state
	body = []byte(`{"object":{"id":"` + res.PaymentID + `"}}`)
	wh, err = p.HandleWebhook(context.Background(), body, payment.SignHMAC(body, "mock-secret"))
	require.NoError(t, err)
	assert.Equal(t, types.PaymentStatusSucceeded, wh.Status)
}

func TestUnsignedWebhookIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := New(cfgpkg.MockPaymentConfig{}, zap.New(core).Sugar())
	res, err := p.CreatePayment(context.Background(), createOpts())
	require.NoError(t, err)

	body := []byte(`{"paymentId":"` + res.PaymentID + `","status":"failed"}`)
	wh, err := p.HandleWebhook(context.Background(), body, "")
	require.NoError(t, err)
	assert.Equal(t, types.PaymentStatusFailed, wh.Status)
	assert.Equal(t, 1, logs.FilterMessageSnippet("skipping signature verification").Len())
}

func TestHandleWebhookErrors(t *testing.T) {
	p := New(cfgpkg.MockPaymentConfig{}, nil)

	cases := []struct {
		name string
		body string
		err  error
	}{
		{"malformed", `{`, payment.ErrInvalidWebhook},
		{"no id", `{"status":"succeeded"}`, payment.ErrInvalidWebhook},
		{"unknown payment", `{"paymentId":"mock_payment_x","status":"succeeded"}`, payment.ErrPaymentNotFound},
		{"unknown payment without status", `{"paymentId":"mock_payment_x"}`, payment.ErrPaymentNotFound},
		{"bad status", `{"paymentId":"mock_payment_x","status":"teleported"}`, payment.ErrInvalidWebhook},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.HandleWebhook(context.Background(), []byte(tc.body), "")
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestHealthCheckAndReset(t *testing.T) {
	p := New(cfgpkg.MockPaymentConfig{}, nil)
	assert.True(t, p.HealthCheck(context.Background()))

	_, err := p.CreatePayment(context.Background(), createOpts())
	require.NoError(t, err)
	assert.Len(t, p.Payments(), 1)
	p.Reset()
	assert.Empty(t, p.Payments())
}
