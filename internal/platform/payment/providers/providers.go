// Package providers builds the payment.Factory from configuration.
package providers

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mlyaho/ai-mem-generator/internal/platform/payment"
	"github.com/mlyaho/ai-mem-generator/internal/platform/payment/mock"
	"github.com/mlyaho/ai-mem-generator/internal/platform/payment/stripe"
	"github.com/mlyaho/ai-mem-generator/internal/platform/payment/yookassa"
	cfgpkg "github.com/mlyaho/ai-mem-generator/pkg/config"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

// NewFactoryFromConfig registers each provider whose credentials are present.
func NewFactoryFromConfig(cfg *cfgpkg.Config, log *zap.SugaredLogger) *payment.Factory {
	pc := cfg.Payment
	var list []payment.Provider

	if pc.YooKassa.Configured() {
		list = append(list, yookassa.New(yookassa.Options{
			Config:    pc.YooKassa,
			ReturnURL: pc.ReturnURL,
			Timeout:   pc.RequestTimeout,
			Log:       log,
		}))
	}
	if pc.Stripe.Configured() {
		list = append(list, stripe.New(stripe.Options{
			Config:  pc.Stripe,
			Timeout: pc.RequestTimeout,
			Log:     log,
		}))
	}
	if pc.Mock.Enabled {
		switch {
		case pc.Mock.WebhookSecret != "":
			list = append(list, mock.New(pc.Mock, log))
		case cfg.Env == cfgpkg.EnvDev:
			log.Warnw("mock payment webhooks are unsigned; set payment.mock.webhook_secret outside local development")
			list = append(list, mock.New(pc.Mock, log))
		default:
			log.Errorw("mock payment provider disabled: payment.mock.webhook_secret is required outside env=dev", "env", cfg.Env)
		}
	}

	f := payment.NewFactory(types.PaymentProvider(pc.DefaultProvider), list...)
	log.Infow("payment providers registered",
		"default", pc.DefaultProvider,
		"available", f.AvailableProviders(),
	)
	if _, err := f.GetProvider(""); err != nil {
		log.Warnw("default payment provider is not configured", "default", pc.DefaultProvider)
	}
	return f
}

var Module = fx.Options(
	fx.Provide(NewFactoryFromConfig),
)
