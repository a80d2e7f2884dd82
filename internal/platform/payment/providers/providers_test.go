package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	cfgpkg "github.com/mlyaho/ai-mem-generator/pkg/config"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

func TestNewFactoryFromConfig(t *testing.T) {
	cases := []struct {
		name string
		env  cfgpkg.Env
		cfg  cfgpkg.PaymentConfig
		want []types.PaymentProvider
	}{
		{
			name: "nothing configured",
			cfg:  cfgpkg.PaymentConfig{DefaultProvider: "mock"},
			want: []types.PaymentProvider{},
		},
		{
			name: "unsigned mock in dev",
			env:  cfgpkg.EnvDev,
			cfg:  cfgpkg.PaymentConfig{DefaultProvider: "mock", Mock: cfgpkg.MockPaymentConfig{Enabled: true}},
			want: []types.PaymentProvider{types.PaymentProviderMock},
		},
		{
			name: "unsigned mock outside dev",
			env:  "staging",
			cfg:  cfgpkg.PaymentConfig{DefaultProvider: "mock", Mock: cfgpkg.MockPaymentConfig{Enabled: true}},
			want: []types.PaymentProvider{},
		},
		{
			name: "signed mock in prod",
			env:  cfgpkg.EnvProd,
			cfg:  cfgpkg.PaymentConfig{DefaultProvider: "mock", Mock: cfgpkg.MockPaymentConfig{Enabled: true, WebhookSecret: "whsec"}},
			want: []types.PaymentProvider{types.PaymentProviderMock},
		},
		{
			name: "yookassa needs shop id and key",
			cfg: cfgpkg.PaymentConfig{
				DefaultProvider: "yookassa",
				YooKassa:        cfgpkg.YooKassaConfig{ShopID: "shop"},
				Stripe:          cfgpkg.StripeConfig{SecretKey: "sk_test"},
			},
			want: []types.PaymentProvider{types.PaymentProviderStripe},
		},
		{
			name: "all",
			env:  cfgpkg.EnvDev,
			cfg: cfgpkg.PaymentConfig{
				DefaultProvider: "yookassa",
				YooKassa:        cfgpkg.YooKassaConfig{ShopID: "shop", APIKey: "key"},
				Stripe:          cfgpkg.StripeConfig{SecretKey: "sk_test"},
				Mock:            cfgpkg.MockPaymentConfig{Enabled: true},
			},
			want: []types.PaymentProvider{types.PaymentProviderMock, types.PaymentProviderStripe, types.PaymentProviderYooKassa},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFactoryFromConfig(&cfgpkg.Config{Env: tc.env, Payment: tc.cfg}, zap.NewNop().Sugar())
			assert.Equal(t, tc.want, f.AvailableProviders())
		})
	}
}

func TestUnsignedMockIsLogged(t *testing.T) {
	cfg := &cfgpkg.Config{Env: cfgpkg.EnvDev, Payment: cfgpkg.PaymentConfig{
		DefaultProvider: "mock",
		Mock:            cfgpkg.MockPaymentConfig{Enabled: true},
	}}
	core, logs := observer.New(zapcore.WarnLevel)
	NewFactoryFromConfig(cfg, zap.New(core).Sugar())
	assert.Equal(t, 1, logs.FilterMessageSnippet("unsigned").Len())

	cfg.Env = cfgpkg.EnvProd
	core, logs = observer.New(zapcore.WarnLevel)
	f := NewFactoryFromConfig(cfg, zap.New(core).Sugar())
	assert.Empty(t, f.AvailableProviders())
	assert.Equal(t, 1, logs.FilterMessageSnippet("webhook_secret is required").Len())
}
