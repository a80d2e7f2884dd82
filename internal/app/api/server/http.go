package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mlyaho/ai-mem-generator/docs"
	"github.com/mlyaho/ai-mem-generator/internal/app/api/handlers"
	mw "github.com/mlyaho/ai-mem-generator/internal/app/api/middleware"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/checkout"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/credit"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/monetization"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/statistics"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/subscription"
	"github.com/mlyaho/ai-mem-generator/internal/platform/payment"
	cfgpkg "github.com/mlyaho/ai-mem-generator/pkg/config"
	metrics "github.com/mlyaho/ai-mem-generator/pkg/metrics"
)

func newEngine(cfg *cfgpkg.Config) *gin.Engine {
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeDeps struct {
	fx.In

	Lifecycle     fx.Lifecycle
	Engine        *gin.Engine
	Log           *zap.SugaredLogger
	Config        *cfgpkg.Config
	DB            *gorm.DB
	Checkout      *checkout.Service
	Ledger        *credit.Service
	Subscriptions *subscription.Service
	Gate          *monetization.Gate
	Statistics    *statistics.Service
	Factory       *payment.Factory
	Business      *metrics.Business `optional:"true"`
}

func registerRoutes(d routeDeps) {
	r, log, cfg := d.Engine, d.Log, d.Config

	// Prometheus metrics
	if cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)
		d.Lifecycle.Append(fx.Hook{OnStop: p.Shutdown})

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}
	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub, d.DB, d.Factory)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Provider callbacks carry no user principal
	hooks := r.Group("/api/payment")
	hooks.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterWebhookRoutes(hooks, d.Checkout, log)

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(), mw.AuthMiddleware(cfg.Auth.JWTSecret, log))
	if cfg.Auth.JWTSecret == "" {
		log.Warnw("auth.jwt_secret is empty; every request is anonymous")
	}
	handlers.RegisterPaymentRoutes(apiV1.Group("/payment"), d.Ledger, d.Subscriptions, d.Checkout, log)
	handlers.RegisterSubscriptionRoutes(apiV1.Group("/subscription"), d.Subscriptions, log)
	handlers.RegisterCreditRoutes(apiV1.Group("/credits"), d.Ledger, d.Gate, log)

	// Admin payment APIs
	if cfg.Admin.Username == "" || cfg.Admin.Password == "" {
		log.Warnw("admin credentials not configured; admin API disabled")
		return
	}
	admin := apiV1.Group("/admin", gin.BasicAuth(gin.Accounts{cfg.Admin.Username: cfg.Admin.Password}))
	handlers.RegisterAdminRoutes(admin, handlers.AdminDeps{
		Checkout:      d.Checkout,
		Ledger:        d.Ledger,
		Subscriptions: d.Subscriptions,
		Statistics:    d.Statistics,
		Factory:       d.Factory,
		Business:      d.Business,
		Log:           log,
	})
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
