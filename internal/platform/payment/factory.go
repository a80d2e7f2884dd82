package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

const defaultHealthTimeout = 5 * time.Second

// Factory holds the configured providers. It is read-only after construction.
type Factory struct {
	defaultName   types.PaymentProvider
	providers     map[types.PaymentProvider]Provider
	healthTimeout time.Duration
}

// NewFactory registers providers under their own names. Later duplicates win.
func NewFactory(defaultName types.PaymentProvider, providers ...Provider) *Factory {
	f := &Factory{
		defaultName:   defaultName,
		providers:     make(map[types.PaymentProvider]Provider, len(providers)),
		healthTimeout: defaultHealthTimeout,
	}
	for _, p := range providers {
		if p == nil {
			continue
		}
		f.providers[p.Name()] = p
	}
	return f
}

// SetHealthTimeout bounds each provider probe in HealthCheck.
func (f *Factory) SetHealthTimeout(d time.Duration) {
	if d > 0 {
		f.healthTimeout = d
	}
}

func (f *Factory) DefaultProvider() types.PaymentProvider {
	return f.defaultName
}

// GetProvider resolves name, or the default provider when name is empty.
func (f *Factory) GetProvider(name types.PaymentProvider) (Provider, error) {
	if name == "" {
		name = f.defaultName
	}
	p, ok := f.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotConfigured, name)
	}
	return p, nil
}

func (f *Factory) AvailableProviders() []types.PaymentProvider {
	names := lo.Keys(f.providers)
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// HealthCheck probes every provider concurrently. A probe that panics or outlives
// the per-provider timeout is reported unhealthy.
func (f *Factory) HealthCheck(ctx context.Context) map[types.PaymentProvider]bool {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[types.PaymentProvider]bool, len(f.providers))
	)
	for name, p := range f.providers {
		wg.Add(1)
		go func(name types.PaymentProvider, p Provider) {
			defer wg.Done()
			healthy := f.probe(ctx, p)
			mu.Lock()
			out[name] = healthy
			mu.Unlock()
		}(name, p)
	}
	wg.Wait()
	return out
}

func (f *Factory) probe(ctx context.Context, p Provider) (healthy bool) {
	ctx, cancel := context.WithTimeout(ctx, f.healthTimeout)
	defer cancel()

	done := make(chan bool, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- false
			}
		}()
		done <- p.HealthCheck(ctx)
	}()

	select {
	case healthy = <-done:
		return healthy
	case <-ctx.Done():
		return false
	}
}

type detectEnvelope struct {
	Provider string `json:"provider"`
	Object   any    `json:"object"`
	Data     struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
	PaymentID string `json:"paymentId"`
}

// DetectProvider guesses the sender of a webhook that arrived without an explicit
// provider. The answer may be wrong; the provider's own verification is authoritative.
func DetectProvider(body []byte) types.PaymentProvider {
	var env detectEnvelope
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&env); err != nil {
		return types.PaymentProviderYooKassa
	}
	if p := types.PaymentProvider(strings.ToLower(env.Provider)); p.Valid() {
		return p
	}

	var objectID string
	switch obj := env.Object.(type) {
	case string:
		if obj == "event" {
			return types.PaymentProviderStripe
		}
	case map[string]any:
		objectID, _ = obj["id"].(string)
	}
	if objectID == "" {
		objectID = env.Data.Object.ID
	}
	if objectID == "" {
		objectID = env.PaymentID
	}

	switch {
	case strings.HasPrefix(objectID, "pi_"), strings.HasPrefix(objectID, "ch_"):
		return types.PaymentProviderStripe
	case strings.HasPrefix(objectID, "mock_payment_"):
		return types.PaymentProviderMock
	}
	return types.PaymentProviderYooKassa
}
