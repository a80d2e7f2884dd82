package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mlyaho/ai-mem-generator/internal/app/service/checkout"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/credit"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/subscription"
	"github.com/mlyaho/ai-mem-generator/internal/models"
	"github.com/mlyaho/ai-mem-generator/pkg/logctx"
	"github.com/mlyaho/ai-mem-generator/pkg/response"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

const recentTransactions = 10

type BalanceView struct {
	Current  int64 `json:"current"`
	Lifetime int64 `json:"lifetime"`
}

type SubscriptionView struct {
	Plan              types.Plan               `json:"plan"`
	Status            types.SubscriptionStatus `json:"status"`
	CurrentPeriodEnd  *time.Time               `json:"currentPeriodEnd"`
	CancelAtPeriodEnd bool                     `json:"cancelAtPeriodEnd"`
	Limits            subscription.PlanLimits  `json:"limits"`
}

type GenerationLimitView struct {
	// Remaining is -1 for unlimited plans.
	Remaining int64     `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
}

type BalanceResponse struct {
	Balance            BalanceView                 `json:"balance"`
	Subscription       SubscriptionView            `json:"subscription"`
	Limits             GenerationLimitView         `json:"limits"`
	RecentTransactions []*models.CreditTransaction `json:"recentTransactions"`
}

func toSubscriptionView(sub *models.Subscription) SubscriptionView {
	return SubscriptionView{
		Plan:              sub.Plan,
		Status:            sub.Status,
		CurrentPeriodEnd:  sub.CurrentPeriodEnd,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		Limits:            subscription.GetPlanLimits(sub.Plan),
	}
}

// @Summary      Get balance
// @Description  Returns the caller's credit balance, plan, daily generation quota and latest ledger entries.
// @Tags         Payment
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespBalance
// @Failure      401  {object}  handlers.RespOK
// @Router       /api/v1/payment/balance [get]
func ApiGetBalance(ledger *credit.Service, subs *subscription.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := principal(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()

		bal, err := ledger.GetBalance(ctx, userID)
		if err != nil {
			writeError(c, log, "get_balance_failed", err)
			return
		}
		sub, err := subs.GetSubscription(ctx, userID)
		if err != nil {
			writeError(c, log, "get_subscription_failed", err)
			return
		}
		limit, err := subs.CheckGenerationLimit(ctx, userID)
		if err != nil {
			writeError(c, log, "check_generation_limit_failed", err)
			return
		}
		txs, err := ledger.GetTransactionHistory(ctx, userID, recentTransactions, 0)
		if err != nil {
			writeError(c, log, "get_transaction_history_failed", err)
			return
		}

		c.JSON(http.StatusOK, response.OKT(&BalanceResponse{
			Balance:            BalanceView{Current: bal.Balance, Lifetime: bal.Lifetime},
			Subscription:       toSubscriptionView(sub),
			Limits:             GenerationLimitView{Remaining: limit.Remaining, ResetAt: limit.ResetAt},
			RecentTransactions: txs,
		}))
	}
}

// @Summary      Create payment
// @Description  Opens a payment for a credit pack or a subscription plan and returns the provider confirmation data.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body checkout.CreatePaymentRequest true "Payment request"
// @Success      200  {object}  handlers.RespCreatePayment
// @Failure      400  {object}  handlers.RespOK
// @Failure      401  {object}  handlers.RespOK
// @Failure      500  {object}  handlers.RespOK
// @Router       /api/v1/payment/create [post]
func ApiCreatePayment(svc *checkout.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := principal(c)
		if !ok {
			return
		}
		var req checkout.CreatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		res, err := svc.CreatePayment(c.Request.Context(), userID, &req)
		if err != nil {
			if !isClientError(err) && !errors.Is(err, credit.ErrInsufficientCredits) {
				logctx.FromGin(c, log).Errorw("create_payment_failed", "type", req.Type, "provider", req.Provider, "err", err)
				c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "payment could not be created"))
				return
			}
			writeError(c, log, "create_payment_failed", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterPaymentRoutes(r gin.IRouter, ledger *credit.Service, subs *subscription.Service, svc *checkout.Service, log *zap.SugaredLogger) {
	r.GET("/balance", ApiGetBalance(ledger, subs, log))
	r.POST("/create", ApiCreatePayment(svc, log))
}
