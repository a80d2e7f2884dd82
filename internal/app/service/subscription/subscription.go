package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mlyaho/ai-mem-generator/internal/models"
	"github.com/mlyaho/ai-mem-generator/pkg/logctx"
	"github.com/mlyaho/ai-mem-generator/pkg/tool"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

var (
	ErrUnknownPlan          = errors.New("unknown subscription plan")
	ErrInvalidStatus        = errors.New("invalid subscription status")
	ErrNoActiveSubscription = errors.New("no active subscription")
)

// GenerationCounter counts ledger entries; the credit ledger implements it.
type GenerationCounter interface {
	CountTransactionsSince(ctx context.Context, userID string, txType types.CreditTransactionType, since time.Time) (int64, error)
}

type Service struct {
	db      *gorm.DB
	log     *zap.SugaredLogger
	counter GenerationCounter
	now     func() time.Time
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, counter GenerationCounter) *Service {
	return &Service{
		db:      db,
		log:     log,
		counter: counter,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithTx returns a copy bound to tx, used to change a subscription atomically with a payment.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	cp := *s
	cp.db = tx
	return &cp
}

type CreateOptions struct {
	UserID    string
	Plan      types.Plan
	TrialDays int
}

type UpdateOptions struct {
	Plan              *types.Plan
	Status            *types.SubscriptionStatus
	CancelAtPeriodEnd *bool
}

type GenerationLimit struct {
	Allowed bool       `json:"allowed"`
	Plan    types.Plan `json:"plan"`
	// Remaining is Unlimited for plans without a daily quota.
	Remaining int64 `json:"remaining"`
	Used      int64 `json:"used"`
	// Quota is the plan's daily allowance, Unlimited when uncapped.
	Quota   int64     `json:"quota"`
	ResetAt time.Time `json:"resetAt"`
}

// CreateSubscription starts (or restarts) the user's plan. TrialDays > 0 starts a trial of that
// length, otherwise a paid period of 30 days.
func (s *Service) CreateSubscription(ctx context.Context, opts CreateOptions) (*models.Subscription, error) {
	if !opts.Plan.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlan, opts.Plan)
	}
	now := s.now()
	status := types.SubscriptionStatusActive
	end := now.AddDate(0, 0, periodDays)
	if opts.TrialDays > 0 {
		status = types.SubscriptionStatusTrialing
		end = now.AddDate(0, 0, opts.TrialDays)
	}

	sub, err := s.mutate(ctx, opts.UserID, types.SubscriptionChangeReasonCreate, func(sub *models.Subscription) error {
		sub.Plan = opts.Plan
		sub.Status = status
		sub.CurrentPeriodEnd = &end
		sub.CancelAtPeriodEnd = false
		sub.CancelledAt = nil
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("subscription_created",
		"user_id", opts.UserID, "plan", sub.Plan, "status", sub.Status, "period_end", end)
	return sub, nil
}

// GetSubscription returns the user's subscription, creating a free one on first access.
// An active subscription past its period end is downgraded to free/expired before returning.
func (s *Service) GetSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.loadOrDefault(tx, userID, &sub); err != nil {
			return err
		}
		now := s.now()
		if !sub.Expired(now) {
			return nil
		}
		before := sub
		res := tx.Model(&models.Subscription{}).
			Where("id = ? AND status = ? AND current_period_end < ?", sub.ID, types.SubscriptionStatusActive, now).
			Updates(map[string]any{
				"status":             types.SubscriptionStatusExpired,
				"plan":               types.PlanFree,
				"current_period_end": nil,
				"updated_at":         now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to expire subscription: %w", res.Error)
		}
		// reload into a zero value; gorm leaves set pointers alone on NULL columns
		var fresh models.Subscription
		if err := tx.Where("id = ?", sub.ID).First(&fresh).Error; err != nil {
			return fmt.Errorf("failed to reload subscription: %w", err)
		}
		sub = fresh
		if res.RowsAffected == 0 {
			// a concurrent reader expired it first
			return nil
		}
		logctx.FromCtx(ctx, s.log).Infow("subscription_expired", "user_id", userID, "plan", before.Plan)
		return s.writeLog(tx, userID, types.SubscriptionChangeReasonExpire, &before, &sub)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

// UpdateSubscription applies the non-nil fields. A plan change restarts the 30-day period.
func (s *Service) UpdateSubscription(ctx context.Context, userID string, opts UpdateOptions) (*models.Subscription, error) {
	if opts.Plan != nil && !opts.Plan.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlan, *opts.Plan)
	}
	if opts.Status != nil && !validStatus(*opts.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *opts.Status)
	}
	now := s.now()
	sub, err := s.mutate(ctx, userID, types.SubscriptionChangeReasonUpdate, func(sub *models.Subscription) error {
		if opts.Plan != nil {
			end := now.AddDate(0, 0, periodDays)
			sub.Plan = *opts.Plan
			sub.CurrentPeriodEnd = &end
		}
		if opts.Status != nil {
			sub.Status = *opts.Status
		}
		if opts.CancelAtPeriodEnd != nil {
			sub.CancelAtPeriodEnd = *opts.CancelAtPeriodEnd
			if *opts.CancelAtPeriodEnd {
				sub.CancelledAt = &now
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}
	return sub, nil
}

// CancelSubscription ends the paid plan now (immediate) or at the end of the current period.
func (s *Service) CancelSubscription(ctx context.Context, userID string, immediate bool) (*models.Subscription, error) {
	if _, err := s.GetSubscription(ctx, userID); err != nil {
		return nil, err
	}
	now := s.now()
	sub, err := s.mutate(ctx, userID, types.SubscriptionChangeReasonCancel, func(sub *models.Subscription) error {
		if sub.Plan == types.PlanFree {
			return ErrNoActiveSubscription
		}
		sub.CancelledAt = &now
		if immediate {
			sub.Status = types.SubscriptionStatusCancelled
			sub.CancelAtPeriodEnd = false
			sub.CurrentPeriodEnd = &now
		} else {
			sub.CancelAtPeriodEnd = true
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNoActiveSubscription) {
			return nil, ErrNoActiveSubscription
		}
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("subscription_cancelled", "user_id", userID, "plan", sub.Plan, "immediate", immediate)
	return sub, nil
}

// RenewSubscription extends a paid plan by a fresh 30-day period.
func (s *Service) RenewSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	if _, err := s.GetSubscription(ctx, userID); err != nil {
		return nil, err
	}
	now := s.now()
	sub, err := s.mutate(ctx, userID, types.SubscriptionChangeReasonRenew, func(sub *models.Subscription) error {
		if sub.Plan == types.PlanFree {
			return ErrNoActiveSubscription
		}
		end := now.AddDate(0, 0, periodDays)
		sub.Status = types.SubscriptionStatusActive
		sub.CurrentPeriodEnd = &end
		sub.CancelAtPeriodEnd = false
		sub.CancelledAt = nil
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNoActiveSubscription) {
			return nil, ErrNoActiveSubscription
		}
		return nil, fmt.Errorf("failed to renew subscription: %w", err)
	}
	return sub, nil
}

// HasActiveSubscription reports whether the user's subscription is live and at least plan.
// An empty plan only checks liveness.
func (s *Service) HasActiveSubscription(ctx context.Context, userID string, plan types.Plan) (bool, error) {
	sub, err := s.GetSubscription(ctx, userID)
	if err != nil {
		return false, err
	}
	if !sub.Live(s.now()) {
		return false, nil
	}
	if plan == "" {
		return true, nil
	}
	return sub.Plan.Rank() >= plan.Rank(), nil
}

// CheckGenerationLimit evaluates today's (UTC) generation quota for the user's plan.
func (s *Service) CheckGenerationLimit(ctx context.Context, userID string) (*GenerationLimit, error) {
	sub, err := s.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	resetAt := dayStart.AddDate(0, 0, 1)

	plan := sub.Plan
	if !sub.Live(now) {
		plan = types.PlanFree
	}
	quota := GetPlanLimits(plan).AIGenerationsPerDay
	if quota == Unlimited {
		return &GenerationLimit{Allowed: true, Plan: plan, Remaining: Unlimited, Quota: Unlimited, ResetAt: resetAt}, nil
	}

	used, err := s.counter.CountTransactionsSince(ctx, userID, types.CreditTransactionTypeGeneration, dayStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count today's generations: %w", err)
	}
	remaining := max(quota-used, 0)
	return &GenerationLimit{
		Allowed:   remaining > 0,
		Plan:      plan,
		Remaining: remaining,
		Used:      used,
		Quota:     quota,
		ResetAt:   resetAt,
	}, nil
}

// mutate loads (or creates) the user's row under lock, applies fn and saves the result
// together with an audit log entry.
func (s *Service) mutate(ctx context.Context, userID string, reason types.SubscriptionChangeReason, fn func(sub *models.Subscription) error) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Subscription
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load subscription: %w", err)
		}
		var before *models.Subscription
		if err == nil {
			cp := existing
			before = &cp
			sub = existing
		} else {
			sub = models.Subscription{
				ID:     tool.GenerateUUIDV7(),
				UserID: userID,
				Plan:   types.PlanFree,
				Status: types.SubscriptionStatusActive,
			}
		}

		if err := fn(&sub); err != nil {
			return err
		}
		sub.UpdatedAt = s.now()
		if before == nil {
			sub.CreatedAt = sub.UpdatedAt
			if err := tx.Create(&sub).Error; err != nil {
				return fmt.Errorf("failed to insert subscription: %w", err)
			}
		} else if err := tx.Save(&sub).Error; err != nil {
			return fmt.Errorf("failed to save subscription: %w", err)
		}
		return s.writeLog(tx, userID, reason, before, &sub)
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// loadOrDefault reads the user's row, inserting the default free subscription when missing.
func (s *Service) loadOrDefault(tx *gorm.DB, userID string, out *models.Subscription) error {
	now := s.now()
	def := &models.Subscription{
		ID:        tool.GenerateUUIDV7(),
		UserID:    userID,
		Plan:      types.PlanFree,
		Status:    types.SubscriptionStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(def)
	if res.Error != nil {
		return fmt.Errorf("failed to create default subscription: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		if err := s.writeLog(tx, userID, types.SubscriptionChangeReasonCreate, nil, def); err != nil {
			return err
		}
	}
	if err := tx.Where("user_id = ?", userID).First(out).Error; err != nil {
		return fmt.Errorf("failed to load subscription: %w", err)
	}
	return nil
}

func (s *Service) writeLog(tx *gorm.DB, userID string, reason types.SubscriptionChangeReason, before, after *models.Subscription) error {
	var afterCopy *models.Subscription
	if after != nil {
		cp := *after
		afterCopy = &cp
	}
	entry := &models.SubscriptionLog{
		ID:        tool.GenerateUUIDV7(),
		UserID:    userID,
		Reason:    reason,
		Before:    datatypes.NewJSONType(before),
		After:     datatypes.NewJSONType(afterCopy),
		CreatedAt: s.now(),
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to save subscription log: %w", err)
	}
	return nil
}

func validStatus(st types.SubscriptionStatus) bool {
	switch st {
	case types.SubscriptionStatusActive, types.SubscriptionStatusTrialing,
		types.SubscriptionStatusCancelled, types.SubscriptionStatusExpired:
		return true
	}
	return false
}
