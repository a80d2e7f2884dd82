package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const businessSubsystem = "monetization"

// Business counts monetization events. A nil *Business is valid and records nothing,
// so services can be built without metrics in tests.
type Business struct {
	paymentsCreated *prometheus.CounterVec
	webhooks        *prometheus.CounterVec
	credits         *prometheus.CounterVec
	providerHealth  *prometheus.GaugeVec
}

func NewBusiness(reg prometheus.Registerer, log *zap.SugaredLogger) *Business {
	b := &Business{
		paymentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: businessSubsystem,
			Name:      "payments_created_total",
			Help:      "Payments accepted by a provider, partitioned by provider and payment type.",
		}, []string{"provider", "type"}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: businessSubsystem,
			Name:      "webhooks_total",
			Help:      "Webhook deliveries, partitioned by provider and outcome.",
		}, []string{"provider", "outcome"}),
		credits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: businessSubsystem,
			Name:      "credits_total",
			Help:      "Credits moved through the ledger, partitioned by direction and transaction type.",
		}, []string{"direction", "type"}),
		providerHealth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Subsystem: businessSubsystem,
			Name:      "provider_health",
			Help:      "Last health probe result per provider (1 healthy, 0 unhealthy).",
		}, []string{"provider"}),
	}
	for _, c := range []prometheus.Collector{b.paymentsCreated, b.webhooks, b.credits, b.providerHealth} {
		if err := reg.Register(c); err != nil {
			log.Warnw("business metric could not be registered", "err", err)
		}
	}
	return b
}

func (b *Business) PaymentCreated(provider, paymentType string) {
	if b == nil {
		return
	}
	b.paymentsCreated.WithLabelValues(provider, paymentType).Inc()
}

func (b *Business) Webhook(provider, outcome string) {
	if b == nil {
		return
	}
	b.webhooks.WithLabelValues(provider, outcome).Inc()
}

// Credits records a ledger movement. amount is signed.
func (b *Business) Credits(txType string, amount int64) {
	if b == nil || amount == 0 {
		return
	}
	direction := "in"
	if amount < 0 {
		direction = "out"
		amount = -amount
	}
	b.credits.WithLabelValues(direction, txType).Add(float64(amount))
}

func (b *Business) ProviderHealth(provider string, healthy bool) {
	if b == nil {
		return
	}
	v := 0.0
	if healthy {
		v = 1
	}
	b.providerHealth.WithLabelValues(provider).Set(v)
}

func newDefaultBusiness(log *zap.SugaredLogger) *Business {
	return NewBusiness(prometheus.DefaultRegisterer, log)
}

var Module = fx.Options(
	fx.Provide(newDefaultBusiness),
)
