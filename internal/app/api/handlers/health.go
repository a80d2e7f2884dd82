package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mlyaho/ai-mem-generator/internal/platform/payment"
	"github.com/mlyaho/ai-mem-generator/pkg/response"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

type HealthResponse struct {
	Status    string                  `json:"status"`
	Database  string                  `json:"database"`
	Providers []types.PaymentProvider `json:"providers"`
}

// @Summary      Health check
// @Description  Pings the store and lists the registered payment providers
// @Tags         System
// @Produce      json
// @Success      200  {object}  RespHealth
// @Failure      503  {object}  RespHealth
// @Router       /healthz [get]
func Healthz(db *gorm.DB, factory *payment.Factory) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{Status: "ok", Database: "ok", Providers: factory.AvailableProviders()}
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			resp.Status, resp.Database = "degraded", "unreachable"
			c.JSON(http.StatusServiceUnavailable, response.ErrorT(response.APIResponseCodeError, resp))
			return
		}
		c.JSON(http.StatusOK, response.OKT(resp))
	}
}

func RegisterHealthRoutes(r gin.IRouter, db *gorm.DB, factory *payment.Factory) {
	r.GET("/healthz", Healthz(db, factory))
}
