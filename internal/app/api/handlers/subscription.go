package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mlyaho/ai-mem-generator/internal/app/service/subscription"
	"github.com/mlyaho/ai-mem-generator/pkg/response"
)

type GetSubscriptionResponse struct {
	Subscription SubscriptionView              `json:"subscription"`
	Limits       *subscription.GenerationLimit `json:"limits"`
}

// @Summary      Get subscription
// @Description  Returns the caller's plan and today's generation quota.
// @Tags         Subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespSubscription
// @Failure      401  {object}  handlers.RespOK
// @Router       /api/v1/subscription [get]
func ApiGetSubscription(subs *subscription.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := principal(c)
		if !ok {
			return
		}
		sub, err := subs.GetSubscription(c.Request.Context(), userID)
		if err != nil {
			writeError(c, log, "get_subscription_failed", err)
			return
		}
		limit, err := subs.CheckGenerationLimit(c.Request.Context(), userID)
		if err != nil {
			writeError(c, log, "check_generation_limit_failed", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&GetSubscriptionResponse{Subscription: toSubscriptionView(sub), Limits: limit}))
	}
}

type CancelSubscriptionRequest struct {
	// Immediate ends the plan now instead of at the period end.
	Immediate bool `json:"immediate"`
}

type CancelSubscriptionResponse struct {
	Message      string           `json:"message"`
	Subscription SubscriptionView `json:"subscription"`
}

// @Summary      Cancel subscription
// @Description  Cancels the caller's paid plan, immediately or at the end of the current period.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CancelSubscriptionRequest false "Cancel options"
// @Success      200  {object}  handlers.RespCancelSubscription
// @Failure      400  {object}  handlers.RespOK
// @Failure      401  {object}  handlers.RespOK
// @Router       /api/v1/subscription/cancel [post]
func ApiCancelSubscription(subs *subscription.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := principal(c)
		if !ok {
			return
		}
		var req CancelSubscriptionRequest
		// an empty body means a deferred cancellation
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err)
				return
			}
		}
		sub, err := subs.CancelSubscription(c.Request.Context(), userID, req.Immediate)
		if err != nil {
			writeError(c, log, "cancel_subscription_failed", err)
			return
		}
		msg := "Subscription will be cancelled at the end of the current period"
		if req.Immediate {
			msg = "Subscription cancelled"
		}
		c.JSON(http.StatusOK, response.OKT(&CancelSubscriptionResponse{Message: msg, Subscription: toSubscriptionView(sub)}))
	}
}

func RegisterSubscriptionRoutes(r gin.IRouter, subs *subscription.Service, log *zap.SugaredLogger) {
	r.GET("", ApiGetSubscription(subs, log))
	r.POST("/cancel", ApiCancelSubscription(subs, log))
}
