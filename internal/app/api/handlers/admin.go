package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mlyaho/ai-mem-generator/internal/app/service/checkout"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/credit"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/statistics"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/subscription"
	"github.com/mlyaho/ai-mem-generator/internal/platform/payment"
	"github.com/mlyaho/ai-mem-generator/pkg/logctx"
	"github.com/mlyaho/ai-mem-generator/pkg/metrics"
	"github.com/mlyaho/ai-mem-generator/pkg/response"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

// AdminDeps are the services behind the admin API.
type AdminDeps struct {
	Checkout      *checkout.Service
	Ledger        *credit.Service
	Subscriptions *subscription.Service
	Statistics    *statistics.Service
	Factory       *payment.Factory
	Business      *metrics.Business
	Log           *zap.SugaredLogger
}

// @Summary      List payments (Admin)
// @Description  Retrieves a paginated and filterable list of payments.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Param        request body checkout.ScanPaymentsRequest true "Filters, pagination and sorting"
// @Success      200  {object}  handlers.RespListPayments
// @Router       /api/v1/admin/payments/list [post]
func ApiListPayments(svc *checkout.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkout.ScanPaymentsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		res, err := svc.ScanPayments(c.Request.Context(), &req)
		if err != nil {
			writeError(c, log, "scan_payments_failed", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Sync payment (Admin)
// @Description  Polls the provider for the payment status and applies it locally.
// @Tags         Admin
// @Produce      json
// @Security     BasicAuth
// @Param        id  path  string  true  "Local payment id"
// @Success      200  {object}  handlers.RespSync
// @Failure      404  {object}  handlers.RespOK
// @Router       /api/v1/admin/payments/{id}/sync [post]
func ApiSyncPayment(svc *checkout.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.SyncPayment(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, log, "sync_payment_failed", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Payment notifications (Admin)
// @Description  Lists the provider notifications received for a payment and how they were handled.
// @Tags         Admin
// @Produce      json
// @Security     BasicAuth
// @Param        id  path  string  true  "Local payment id"
// @Success      200  {object}  handlers.RespNotifications
// @Failure      404  {object}  handlers.RespOK
// @Router       /api/v1/admin/payments/{id}/notifications [get]
func ApiPaymentNotifications(svc *checkout.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		logs, err := svc.PaymentNotifications(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, log, "list_payment_notifications_failed", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(logs))
	}
}

type RefundPaymentRequest struct {
	// Amount in minor units; zero refunds the whole payment.
	Amount      int64  `json:"amount" binding:"gte=0"`
	Description string `json:"description" binding:"max=256"`
}

// @Summary      Refund payment (Admin)
// @Description  Refunds a succeeded payment at its provider.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Param        id       path  string                true   "Local payment id"
// @Param        request  body  RefundPaymentRequest  false  "Refund options"
// @Success      200  {object}  handlers.RespRefund
// @Failure      400  {object}  handlers.RespOK
// @Failure      404  {object}  handlers.RespOK
// @Router       /api/v1/admin/payments/{id}/refund [post]
func ApiRefundPayment(svc *checkout.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefundPaymentRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err)
				return
			}
		}
		res, err := svc.RefundPayment(c.Request.Context(), c.Param("id"), req.Amount, req.Description)
		if err != nil {
			writeError(c, log, "refund_payment_failed", err)
			return
		}
		logctx.FromGin(c, log).Infow("admin_payment_refunded", "payment_id", c.Param("id"), "amount", req.Amount)
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type ProviderHealthResponse struct {
	Default   types.PaymentProvider          `json:"default"`
	Providers map[types.PaymentProvider]bool `json:"providers"`
}

// @Summary      Provider health (Admin)
// @Description  Probes every configured payment provider.
// @Tags         Admin
// @Produce      json
// @Security     BasicAuth
// @Success      200  {object}  handlers.RespProviderHealth
// @Router       /api/v1/admin/providers/health [get]
func ApiProviderHealth(factory *payment.Factory, biz *metrics.Business) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := factory.HealthCheck(c.Request.Context())
		for name, ok := range health {
			biz.ProviderHealth(string(name), ok)
		}
		c.JSON(http.StatusOK, response.OKT(&ProviderHealthResponse{Default: factory.DefaultProvider(), Providers: health}))
	}
}

// @Summary      Payment statistics (Admin)
// @Description  Computes daily payment counts, GMV, credit flow and active subscriptions.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Param        request body statistics.Request true "Statistic request parameters"
// @Success      200  {object}  handlers.RespStatistics
// @Router       /api/v1/admin/statistics [post]
func ApiGetStatistics(svc *statistics.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		res, err := svc.GetStatistics(c.Request.Context(), &req)
		if err != nil {
			writeError(c, log, "get_statistics_failed", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type GiftCreditsRequest struct {
	UserID      string `json:"userId" binding:"required"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description" binding:"max=256"`
}

// @Summary      Gift credits (Admin)
// @Description  Adds bonus credits to a user.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Param        request body GiftCreditsRequest true "Gift"
// @Success      200  {object}  handlers.RespCreditBalance
// @Failure      400  {object}  handlers.RespOK
// @Router       /api/v1/admin/credits/gift [post]
func ApiGiftCredits(ledger *credit.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GiftCreditsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		desc := req.Description
		if desc == "" {
			desc = "Gift from support"
		}
		bal, err := ledger.AddCredits(c.Request.Context(), credit.AddCreditsOptions{
			UserID:      req.UserID,
			Amount:      req.Amount,
			Type:        types.CreditTransactionTypeBonus,
			Description: desc,
		})
		if err != nil {
			writeError(c, log, "gift_credits_failed", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(bal))
	}
}

type RefundCreditsRequest struct {
	UserID        string `json:"userId" binding:"required"`
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	Description   string `json:"description" binding:"max=256"`
	TransactionID string `json:"transactionId"`
}

// @Summary      Refund credits (Admin)
// @Description  Returns credits to a user, e.g. after a failed generation.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Param        request body RefundCreditsRequest true "Credit refund"
// @Success      200  {object}  handlers.RespCreditBalance
// @Failure      400  {object}  handlers.RespOK
// @Router       /api/v1/admin/credits/refund [post]
func ApiRefundCredits(ledger *credit.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefundCreditsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		bal, err := ledger.RefundCredits(c.Request.Context(), req.UserID, req.Amount, req.Description, req.TransactionID)
		if err != nil {
			writeError(c, log, "refund_credits_failed", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(bal))
	}
}

type ReferralRequest struct {
	ReferrerID string `json:"referrerId" binding:"required"`
	RefereeID  string `json:"refereeId" binding:"required"`
}

// @Summary      Award referral (Admin)
// @Description  Credits the referrer and the invited user.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Param        request body ReferralRequest true "Referral"
// @Success      200  {object}  handlers.RespOK
// @Failure      400  {object}  handlers.RespOK
// @Router       /api/v1/admin/credits/referral [post]
func ApiAwardReferral(ledger *credit.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReferralRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if err := ledger.AwardReferralBonus(c.Request.Context(), req.ReferrerID, req.RefereeID); err != nil {
			writeError(c, log, "award_referral_failed", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

type RenewSubscriptionRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// @Summary      Renew subscription (Admin)
// @Description  Extends a user's paid plan by one period.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Param        request body RenewSubscriptionRequest true "Renewal"
// @Success      200  {object}  handlers.RespSubscriptionModel
// @Failure      400  {object}  handlers.RespOK
// @Router       /api/v1/admin/subscriptions/renew [post]
func ApiRenewSubscription(subs *subscription.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RenewSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		sub, err := subs.RenewSubscription(c.Request.Context(), req.UserID)
		if err != nil {
			writeError(c, log, "renew_subscription_failed", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      Create promo code (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Param        request body checkout.CreatePromoCodeRequest true "Promo code"
// @Success      200  {object}  handlers.RespPromoCode
// @Failure      400  {object}  handlers.RespOK
// @Router       /api/v1/admin/promo_codes [post]
func ApiCreatePromoCode(svc *checkout.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkout.CreatePromoCodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		promo, err := svc.CreatePromoCode(c.Request.Context(), &req)
		if err != nil {
			writeError(c, log, "create_promo_code_failed", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(promo))
	}
}

// @Summary      Deactivate promo code (Admin)
// @Tags         Admin
// @Produce      json
// @Security     BasicAuth
// @Param        code  path  string  true  "Promo code"
// @Success      200  {object}  handlers.RespOK
// @Failure      404  {object}  handlers.RespOK
// @Router       /api/v1/admin/promo_codes/{code}/deactivate [post]
func ApiDeactivatePromoCode(svc *checkout.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeactivatePromoCode(c.Request.Context(), c.Param("code")); err != nil {
			writeError(c, log, "deactivate_promo_code_failed", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterAdminRoutes(r gin.IRouter, d AdminDeps) {
	r.POST("/payments/list", ApiListPayments(d.Checkout, d.Log))
	r.POST("/payments/:id/sync", ApiSyncPayment(d.Checkout, d.Log))
	r.POST("/payments/:id/refund", ApiRefundPayment(d.Checkout, d.Log))
	r.GET("/payments/:id/notifications", ApiPaymentNotifications(d.Checkout, d.Log))
	r.GET("/providers/health", ApiProviderHealth(d.Factory, d.Business))
	r.POST("/statistics", ApiGetStatistics(d.Statistics, d.Log))
	r.POST("/credits/gift", ApiGiftCredits(d.Ledger, d.Log))
	r.POST("/credits/refund", ApiRefundCredits(d.Ledger, d.Log))
	r.POST("/credits/referral", ApiAwardReferral(d.Ledger, d.Log))
	r.POST("/subscriptions/renew", ApiRenewSubscription(d.Subscriptions, d.Log))
	r.POST("/promo_codes", ApiCreatePromoCode(d.Checkout, d.Log))
	r.POST("/promo_codes/:code/deactivate", ApiDeactivatePromoCode(d.Checkout, d.Log))
}
