package monetization

import (
	"go.uber.org/fx"

	"github.com/mlyaho/ai-mem-generator/internal/app/service/credit"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/subscription"
)

var Module = fx.Options(
	fx.Provide(
		func(s *subscription.Service) Subscriptions { return s },
		func(c *credit.Service) Ledger { return c },
		NewGate,
	),
)
