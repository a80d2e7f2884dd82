// Package errtrack reports operator-facing failures to Sentry.
package errtrack

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/mlyaho/ai-mem-generator/pkg/config"
	"github.com/mlyaho/ai-mem-generator/pkg/logctx"
)

const flushTimeout = 2 * time.Second

// Tracker wraps a Sentry hub. A nil Tracker, or one built without a DSN, drops every event.
type Tracker struct {
	hub *sentry.Hub
}

func New(cfg *cfgpkg.Config, log *zap.SugaredLogger) (*Tracker, error) {
	if cfg.Sentry.DSN == "" {
		log.Infow("sentry disabled: no dsn configured")
		return &Tracker{}, nil
	}
	env := cfg.Sentry.Environment
	if env == "" {
		env = string(cfg.Env)
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: env,
		SampleRate:  cfg.Sentry.SampleRate,
	})
	if err != nil {
		return nil, err
	}
	return &Tracker{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// Capture sends err with the request's trace and user ids plus the given tags.
func (t *Tracker) Capture(ctx context.Context, err error, tags map[string]string) {
	if t == nil || t.hub == nil || err == nil {
		return
	}
	hub := t.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		if tid := logctx.TraceID(ctx); tid != "" {
			scope.SetTag("trace_id", tid)
		}
		if uid := logctx.UserID(ctx); uid != "" {
			scope.SetUser(sentry.User{ID: uid})
		}
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		hub.CaptureException(err)
	})
}

func (t *Tracker) Flush() {
	if t == nil || t.hub == nil {
		return
	}
	t.hub.Flush(flushTimeout)
}

func registerFlush(lc fx.Lifecycle, t *Tracker) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			t.Flush()
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(registerFlush),
)
