package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mlyaho/ai-mem-generator/internal/app/api/middleware"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/credit"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/monetization"
	"github.com/mlyaho/ai-mem-generator/internal/models"
	"github.com/mlyaho/ai-mem-generator/pkg/logctx"
	"github.com/mlyaho/ai-mem-generator/pkg/response"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

// @Summary      List credit packs
// @Tags         Credits
// @Produce      json
// @Success      200  {object}  handlers.RespCreditPacks
// @Router       /api/v1/credits/packs [get]
func ApiListCreditPacks(c *gin.Context) {
	c.JSON(http.StatusOK, response.OKT(credit.GetAvailableCreditPacks()))
}

type CostResponse struct {
	Cost    int64              `json:"cost"`
	Options credit.CostOptions `json:"options"`
}

// @Summary      Generation cost
// @Description  Prices one meme generation for the given options.
// @Tags         Credits
// @Produce      json
// @Param        withText   query  bool  false  "Text generation"
// @Param        withImage  query  bool  false  "Image generation"
// @Param        hd         query  bool  false  "HD upgrade"
// @Param        ultraHd    query  bool  false  "Ultra HD upgrade"
// @Param        priority   query  bool  false  "Priority queue"
// @Success      200  {object}  handlers.RespCost
// @Failure      400  {object}  handlers.RespOK
// @Router       /api/v1/credits/cost [get]
func ApiGetGenerationCost(c *gin.Context) {
	var opts credit.CostOptions
	if err := c.ShouldBindQuery(&opts); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKT(&CostResponse{Cost: credit.GetMemeGenerationCost(opts), Options: opts}))
}

type ListTransactionsRequest struct {
	Limit  int `form:"limit" binding:"gte=0,lte=100"`
	Offset int `form:"offset" binding:"gte=0"`
}

type ListTransactionsResponse struct {
	Items  []*models.CreditTransaction `json:"items"`
	Total  int64                       `json:"total"`
	Limit  int                         `json:"limit"`
	Offset int                         `json:"offset"`
}

// @Summary      List credit transactions
// @Description  Pages the caller's credit ledger, newest first.
// @Tags         Credits
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "Page size (default 50, max 100)"
// @Param        offset  query  int  false  "Offset"
// @Success      200  {object}  handlers.RespTransactions
// @Failure      401  {object}  handlers.RespOK
// @Router       /api/v1/credits/transactions [get]
func ApiListCreditTransactions(ledger *credit.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := principal(c)
		if !ok {
			return
		}
		var req ListTransactionsRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			badRequest(c, err)
			return
		}
		items, err := ledger.GetTransactionHistory(c.Request.Context(), userID, req.Limit, req.Offset)
		if err != nil {
			writeError(c, log, "get_transaction_history_failed", err)
			return
		}
		total, err := ledger.CountTransactions(c.Request.Context(), userID)
		if err != nil {
			writeError(c, log, "count_transactions_failed", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&ListTransactionsResponse{Items: items, Total: total, Limit: req.Limit, Offset: req.Offset}))
	}
}

type ChargeRequest struct {
	credit.CostOptions
	RequiredPlan types.Plan `json:"requiredPlan,omitempty" binding:"omitempty,oneof=free premium pro"`
}

// @Summary      Charge a generation
// @Description  Checks the caller's plan and daily quota, then debits the generation cost.
// @Tags         Credits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ChargeRequest true "Generation options"
// @Success      200  {object}  handlers.RespCharge
// @Failure      400  {object}  handlers.RespOK
// @Failure      401  {object}  handlers.RespDenial
// @Failure      402  {object}  handlers.RespDenial
// @Failure      403  {object}  handlers.RespDenial
// @Failure      429  {object}  handlers.RespDenial
// @Router       /api/v1/credits/charge [post]
func ApiChargeGeneration(gate *monetization.Gate, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChargeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		res, denial, err := gate.ChargeGeneration(c.Request.Context(), middleware.UserID(c), req.CostOptions, req.RequiredPlan)
		if err != nil {
			if errors.Is(err, monetization.ErrNothingToCharge) {
				badRequest(c, err)
				return
			}
			writeError(c, log, "charge_generation_failed", err)
			return
		}
		if denial != nil {
			logctx.FromGin(c, log).Infow("generation_denied", "reason", denial.Reason)
			middleware.AbortWithDenial(c, denial)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      List named actions
// @Description  Credit cost and plan requirement of every named action.
// @Tags         Credits
// @Produce      json
// @Success      200  {object}  handlers.RespActions
// @Router       /api/v1/credits/actions [get]
func ApiListActions(c *gin.Context) {
	c.JSON(http.StatusOK, response.OKT(monetization.Actions()))
}

type ActionCheckResponse struct {
	monetization.Limit
	Allowed bool `json:"allowed"`
}

// @Summary      Check a named action
// @Description  Reports whether the caller may perform the action now. Nothing is charged.
// @Tags         Credits
// @Produce      json
// @Security     BearerAuth
// @Param        action  path  string  true  "Action name"
// @Success      200  {object}  handlers.RespActionCheck
// @Failure      401  {object}  handlers.RespDenial
// @Failure      402  {object}  handlers.RespDenial
// @Failure      403  {object}  handlers.RespDenial
// @Failure      404  {object}  handlers.RespOK
// @Router       /api/v1/credits/actions/{action} [get]
func ApiCheckAction(c *gin.Context) {
	limit, _ := middleware.ActionLimit(c)
	c.JSON(http.StatusOK, response.OKT(&ActionCheckResponse{Limit: limit, Allowed: true}))
}

func RegisterCreditRoutes(r gin.IRouter, ledger *credit.Service, gate *monetization.Gate, log *zap.SugaredLogger) {
	r.GET("/packs", ApiListCreditPacks)
	r.GET("/cost", ApiGetGenerationCost)
	r.GET("/transactions", ApiListCreditTransactions(ledger, log))
	r.POST("/charge", ApiChargeGeneration(gate, log))
	r.GET("/actions", ApiListActions)
	r.GET("/actions/:action", middleware.RequireAction(gate, log), ApiCheckAction)
}
