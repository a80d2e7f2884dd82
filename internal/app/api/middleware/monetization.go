package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mlyaho/ai-mem-generator/internal/app/service/monetization"
	"github.com/mlyaho/ai-mem-generator/pkg/logctx"
	"github.com/mlyaho/ai-mem-generator/pkg/response"
)

// DenialStatus maps a gate denial to its HTTP status and envelope code.
func DenialStatus(r monetization.Reason) (int, response.APIResponseCode) {
	switch r {
	case monetization.ReasonAuth:
		return http.StatusUnauthorized, response.APIResponseCodeUnauthorized
	case monetization.ReasonCredits:
		return http.StatusPaymentRequired, response.APIResponseCodePaymentRequired
	case monetization.ReasonLimit:
		return http.StatusTooManyRequests, response.APIResponseCodeTooManyRequests
	default:
		return http.StatusForbidden, response.APIResponseCodeForbidden
	}
}

// AbortWithDenial writes d in the standard envelope and stops the chain.
func AbortWithDenial(c *gin.Context, d *monetization.Denial) {
	status, code := DenialStatus(d.Reason)
	c.AbortWithStatusJSON(status, response.ErrorT(code, d))
}

// RequireMonetization admits the request only when the gate allows limit for the principal.
// It must run after AuthMiddleware.
func RequireMonetization(gate *monetization.Gate, limit monetization.Limit, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := gate.Check(c.Request.Context(), UserID(c), limit)
		if err != nil {
			logctx.FromGin(c, log).Errorw("monetization_check_failed", "action", limit.Action, "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		if d != nil {
			logctx.FromGin(c, log).Infow("monetization_denied", "action", limit.Action, "reason", d.Reason)
			AbortWithDenial(c, d)
			return
		}
		c.Next()
	}
}

const actionLimitKey = "monetization_limit"

// RequireAction resolves the :action path parameter to a named limit and gates it like
// RequireMonetization. Unknown actions get 404.
func RequireAction(gate *monetization.Gate, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, ok := monetization.LimitFor(c.Param("action"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, "unknown action"))
			return
		}
		c.Set(actionLimitKey, limit)
		RequireMonetization(gate, limit, log)(c)
	}
}

// ActionLimit returns the limit resolved by RequireAction.
func ActionLimit(c *gin.Context) (monetization.Limit, bool) {
	v, ok := c.Get(actionLimitKey)
	if !ok {
		return monetization.Limit{}, false
	}
	l, ok := v.(monetization.Limit)
	return l, ok
}
