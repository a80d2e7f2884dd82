package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mlyaho/ai-mem-generator/internal/app/service/checkout"
	"github.com/mlyaho/ai-mem-generator/internal/platform/payment"
	"github.com/mlyaho/ai-mem-generator/pkg/logctx"
	"github.com/mlyaho/ai-mem-generator/pkg/response"
)

const (
	SignatureHeader       = "X-Webhook-Signature"
	StripeSignatureHeader = "Stripe-Signature"

	maxWebhookBody = 1 << 20
)

type WebhookAck struct {
	Received bool             `json:"received"`
	Outcome  checkout.Outcome `json:"outcome,omitempty"`
}

// @Summary      Payment provider webhook
// @Description  Receives a provider notification. The provider is taken from the path, or detected from the body when omitted.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        provider  path  string  false  "yookassa, stripe or mock"
// @Success      200  {object}  handlers.RespWebhook
// @Failure      400  {object}  handlers.RespOK
// @Failure      500  {object}  handlers.RespOK
// @Router       /api/payment/webhook/{provider} [post]
func ApiPaymentWebhook(svc *checkout.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			badRequest(c, err)
			return
		}
		signature := c.GetHeader(SignatureHeader)
		if signature == "" {
			signature = c.GetHeader(StripeSignatureHeader)
		}

		res, err := svc.HandleWebhook(c.Request.Context(), provider, body, signature)
		if err != nil {
			if errors.Is(err, payment.ErrInvalidSignature) ||
				errors.Is(err, payment.ErrInvalidWebhook) ||
				errors.Is(err, payment.ErrProviderNotConfigured) {
				logctx.FromGin(c, log).Warnw("webhook_rejected", "provider", provider, "err", err)
				badRequest(c, err)
				return
			}
			logctx.FromGin(c, log).Errorw("webhook_failed", "provider", provider, "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(&WebhookAck{Received: true, Outcome: res.Outcome}))
	}
}

func RegisterWebhookRoutes(r gin.IRouter, svc *checkout.Service, log *zap.SugaredLogger) {
	h := ApiPaymentWebhook(svc, log)
	r.POST("/webhook", h)
	r.POST("/webhook/:provider", h)
}
