package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mlyaho/ai-mem-generator/internal/app/api/middleware"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/checkout"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/credit"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/monetization"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/statistics"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/subscription"
	"github.com/mlyaho/ai-mem-generator/internal/platform/payment"
	"github.com/mlyaho/ai-mem-generator/pkg/logctx"
	"github.com/mlyaho/ai-mem-generator/pkg/response"
)

// clientErrors are safe to echo back; anything else is logged and answered generically.
var clientErrors = []error{
	checkout.ErrInvalidRequest,
	checkout.ErrUnknownCreditPack,
	checkout.ErrPromoExpired,
	checkout.ErrPromoExhausted,
	checkout.ErrPromoCodeExists,
	credit.ErrInvalidAmount,
	credit.ErrInvalidTransactionType,
	credit.ErrSelfReferral,
	credit.ErrMissingUser,
	subscription.ErrUnknownPlan,
	subscription.ErrInvalidStatus,
	subscription.ErrNoActiveSubscription,
	monetization.ErrNothingToCharge,
	statistics.ErrUnknownStatistic,
	payment.ErrRefundNotAllowed,
	payment.ErrInvalidSignature,
	payment.ErrInvalidWebhook,
	payment.ErrProviderNotConfigured,
}

func isClientError(err error) bool {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// writeError maps a service error onto the status codes of the public API.
func writeError(c *gin.Context, log *zap.SugaredLogger, event string, err error) {
	switch {
	case errors.Is(err, credit.ErrInsufficientCredits):
		c.JSON(http.StatusPaymentRequired, response.ErrorT[any](response.APIResponseCodePaymentRequired, err.Error()))
	case checkout.IsNotFound(err), errors.Is(err, payment.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, nil))
	case isClientError(err):
		c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
	default:
		logctx.FromGin(c, log).Errorw(event, "err", err)
		c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
}

// principal returns the authenticated user, or writes 401 and returns false.
func principal(c *gin.Context) (string, bool) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
		return "", false
	}
	return userID, true
}
