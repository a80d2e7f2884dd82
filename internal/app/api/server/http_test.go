package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/mlyaho/ai-mem-generator/internal/app/service/checkout"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/credit"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/monetization"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/notification_log"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/statistics"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/subscription"
	"github.com/mlyaho/ai-mem-generator/internal/platform/db/dbtest"
	"github.com/mlyaho/ai-mem-generator/internal/platform/payment"
	"github.com/mlyaho/ai-mem-generator/internal/platform/payment/mock"
	cfgpkg "github.com/mlyaho/ai-mem-generator/pkg/config"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

func newTestDeps(t *testing.T, cfg *cfgpkg.Config) routeDeps {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb := dbtest.New(t)
	log := zap.NewNop().Sugar()
	factory := payment.NewFactory(types.PaymentProviderMock, mock.New(cfg.Payment.Mock, log))
	ledger := credit.NewService(gdb, log, nil)
	subs := subscription.NewService(gdb, log, ledger)
	notif := notification_log.New(gdb, log)
	t.Cleanup(notif.Wait)

	return routeDeps{
		Lifecycle: fxtest.NewLifecycle(t),
		Engine:    newEngine(cfg),
		Log:       log,
		Config:    cfg,
		DB:        gdb,
		Checkout: checkout.NewService(checkout.Deps{
			DB: gdb, Log: log, Config: cfg, Factory: factory,
			Ledger: ledger, Subscriptions: subs, Notifications: notif,
		}),
		Ledger:        ledger,
		Subscriptions: subs,
		Gate:          monetization.NewGate(subs, ledger, log),
		Statistics:    statistics.New(gdb),
		Factory:       factory,
	}
}

func testConfig() *cfgpkg.Config {
	return &cfgpkg.Config{
		Auth: cfgpkg.AuthConfig{JWTSecret: "secret"},
		Payment: cfgpkg.PaymentConfig{
			DefaultProvider: "mock",
			RequestTimeout:  time.Second,
			Mock:            cfgpkg.MockPaymentConfig{Enabled: true},
		},
	}
}

func routeSet(r *gin.Engine) map[string]bool {
	out := map[string]bool{}
	for _, rt := range r.Routes() {
		out[rt.Method+" "+rt.Path] = true
	}
	return out
}

func TestRegisterRoutes(t *testing.T) {
	cfg := testConfig()
	cfg.Admin = cfgpkg.AdminConfig{Username: "ops", Password: "pw"}
	d := newTestDeps(t, cfg)
	registerRoutes(d)

	routes := routeSet(d.Engine)
	for _, want := range []string{
		"GET /healthz",
		"GET /swagger/*any",
		"POST /api/payment/webhook",
		"POST /api/payment/webhook/:provider",
		"GET /api/v1/payment/balance",
		"POST /api/v1/payment/create",
		"GET /api/v1/subscription",
		"POST /api/v1/subscription/cancel",
		"GET /api/v1/credits/packs",
		"GET /api/v1/credits/cost",
		"GET /api/v1/credits/transactions",
		"POST /api/v1/credits/charge",
		"GET /api/v1/credits/actions",
		"GET /api/v1/credits/actions/:action",
		"POST /api/v1/admin/payments/list",
		"POST /api/v1/admin/payments/:id/sync",
		"POST /api/v1/admin/payments/:id/refund",
		"GET /api/v1/admin/payments/:id/notifications",
		"GET /api/v1/admin/providers/health",
		"POST /api/v1/admin/statistics",
		"POST /api/v1/admin/credits/gift",
		"POST /api/v1/admin/credits/referral",
		"POST /api/v1/admin/promo_codes",
	} {
		assert.True(t, routes[want], want)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	d.Engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAdminRoutesNeedCredentials(t *testing.T) {
	d := newTestDeps(t, testConfig())
	registerRoutes(d)

	routes := routeSet(d.Engine)
	assert.False(t, routes["GET /api/v1/admin/providers/health"])
	assert.True(t, routes["GET /api/v1/payment/balance"])
}
