package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/mlyaho/ai-mem-generator/internal/app/api/server"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/checkout"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/credit"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/monetization"
	notificationlog "github.com/mlyaho/ai-mem-generator/internal/app/service/notification_log"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/statistics"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/subscription"
	"github.com/mlyaho/ai-mem-generator/internal/platform/db"
	"github.com/mlyaho/ai-mem-generator/internal/platform/payment/providers"
	"github.com/mlyaho/ai-mem-generator/pkg/config"
	"github.com/mlyaho/ai-mem-generator/pkg/errtrack"
	"github.com/mlyaho/ai-mem-generator/pkg/logger"
	"github.com/mlyaho/ai-mem-generator/pkg/metrics"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	metrics.Module,
	errtrack.Module,
	providers.Module,
	credit.Module,
	// daily generation quota is counted from the ledger
	fx.Provide(func(c *credit.Service) subscription.GenerationCounter { return c }),
	subscription.Module,
	monetization.Module,
	notificationlog.Module,
	statistics.Module,
	checkout.Module,
	server.Module,
)
