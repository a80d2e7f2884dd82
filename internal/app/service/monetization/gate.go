package monetization

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mlyaho/ai-mem-generator/internal/app/service/credit"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/subscription"
	"github.com/mlyaho/ai-mem-generator/internal/models"
	"github.com/mlyaho/ai-mem-generator/pkg/logctx"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

var ErrNothingToCharge = errors.New("generation options select nothing to charge for")

type Reason string

const (
	ReasonAuth         Reason = "auth"
	ReasonSubscription Reason = "subscription"
	ReasonCredits      Reason = "credits"
	ReasonLimit        Reason = "limit"
)

// Limit describes what an action needs from the caller.
type Limit struct {
	Action          string     `json:"action"`
	RequiredCredits int64      `json:"requiredCredits"`
	RequiredPlan    types.Plan `json:"requiredPlan,omitempty"`
}

// Named actions and their credit cost.
var (
	LimitGenerateText        = Limit{Action: "generate_text", RequiredCredits: 1}
	LimitGenerateImage       = Limit{Action: "generate_image", RequiredCredits: 2}
	LimitGenerateMeme        = Limit{Action: "generate_meme", RequiredCredits: 3}
	LimitGenerateMemeHD      = Limit{Action: "generate_meme_hd", RequiredCredits: 4}
	LimitGenerateMemeUltraHD = Limit{Action: "generate_meme_ultra_hd", RequiredCredits: 5}
	LimitRemoveWatermark     = Limit{Action: "remove_watermark", RequiredCredits: 5}
	LimitPriorityGeneration  = Limit{Action: "priority_generation", RequiredCredits: 2}
)

var actionLimits = map[string]Limit{
	LimitGenerateText.Action:        LimitGenerateText,
	LimitGenerateImage.Action:       LimitGenerateImage,
	LimitGenerateMeme.Action:        LimitGenerateMeme,
	LimitGenerateMemeHD.Action:      LimitGenerateMemeHD,
	LimitGenerateMemeUltraHD.Action: LimitGenerateMemeUltraHD,
	LimitRemoveWatermark.Action:     LimitRemoveWatermark,
	LimitPriorityGeneration.Action:  LimitPriorityGeneration,
}

// LimitFor returns the named action limit.
func LimitFor(action string) (Limit, bool) {
	l, ok := actionLimits[action]
	return l, ok
}

// Actions lists the named action limits ordered by action.
func Actions() []Limit {
	out := make([]Limit, 0, len(actionLimits))
	for _, l := range actionLimits {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Action < out[j].Action })
	return out
}

// Denial explains why an action was refused. A nil *Denial means the action is allowed.
type Denial struct {
	Reason          Reason     `json:"reason"`
	Message         string     `json:"message"`
	UpgradeRequired types.Plan `json:"upgradeRequired,omitempty"`
	// Remaining is the credit balance for credits denials and zero for limit denials.
	Remaining *int64     `json:"remaining,omitempty"`
	ResetAt   *time.Time `json:"resetAt,omitempty"`
}

type Subscriptions interface {
	GetSubscription(ctx context.Context, userID string) (*models.Subscription, error)
	HasActiveSubscription(ctx context.Context, userID string, plan types.Plan) (bool, error)
	CheckGenerationLimit(ctx context.Context, userID string) (*subscription.GenerationLimit, error)
}

type Ledger interface {
	GetBalance(ctx context.Context, userID string) (*models.CreditBalance, error)
	HasEnoughCredits(ctx context.Context, userID string, amount int64) (bool, error)
	SpendCredits(ctx context.Context, opts credit.SpendCreditsOptions) (*models.CreditBalance, error)
}

type Gate struct {
	subs   Subscriptions
	ledger Ledger
	log    *zap.SugaredLogger
}

func NewGate(subs Subscriptions, ledger Ledger, log *zap.SugaredLogger) *Gate {
	return &Gate{subs: subs, ledger: ledger, log: log}
}

// Check runs the auth, plan and credit checks in that order and returns the first failure.
// Store errors are returned as errors, never as denials.
func (g *Gate) Check(ctx context.Context, userID string, limit Limit) (*Denial, error) {
	if userID == "" {
		return &Denial{Reason: ReasonAuth, Message: "authentication required"}, nil
	}

	if limit.RequiredPlan != "" {
		ok, err := g.subs.HasActiveSubscription(ctx, userID, limit.RequiredPlan)
		if err != nil {
			return nil, fmt.Errorf("failed to check subscription: %w", err)
		}
		if !ok {
			sub, err := g.subs.GetSubscription(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("failed to get subscription: %w", err)
			}
			d := &Denial{
				Reason:  ReasonSubscription,
				Message: fmt.Sprintf("%s subscription required", limit.RequiredPlan),
			}
			if limit.RequiredPlan.Rank() > sub.Plan.Rank() {
				d.UpgradeRequired = limit.RequiredPlan
			}
			return d, nil
		}
	}

	if limit.RequiredCredits > 0 {
		ok, err := g.ledger.HasEnoughCredits(ctx, userID, limit.RequiredCredits)
		if err != nil {
			return nil, fmt.Errorf("failed to check credits: %w", err)
		}
		if !ok {
			return g.creditsDenial(ctx, userID, limit.RequiredCredits)
		}
	}
	return nil, nil
}

func (g *Gate) creditsDenial(ctx context.Context, userID string, required int64) (*Denial, error) {
	bal, err := g.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	remaining := bal.Balance
	return &Denial{
		Reason:    ReasonCredits,
		Message:   fmt.Sprintf("insufficient credits: required %d, available %d", required, remaining),
		Remaining: &remaining,
	}, nil
}

type ChargeResult struct {
	Cost    int64 `json:"cost"`
	Balance int64 `json:"balance"`
	// RemainingGenerations is subscription.Unlimited for plans without a daily quota.
	RemainingGenerations int64     `json:"remainingGenerations"`
	ResetAt              time.Time `json:"resetAt"`
}

// ChargeGeneration prices one meme generation, checks the gate and the daily generation quota,
// then debits the ledger. Exactly one of the result and the denial is non-nil on success.
func (g *Gate) ChargeGeneration(ctx context.Context, userID string, opts credit.CostOptions, requiredPlan types.Plan) (*ChargeResult, *Denial, error) {
	cost := credit.GetMemeGenerationCost(opts)
	if cost <= 0 {
		return nil, nil, ErrNothingToCharge
	}

	denial, err := g.Check(ctx, userID, Limit{Action: "generate_meme", RequiredCredits: cost, RequiredPlan: requiredPlan})
	if err != nil || denial != nil {
		return nil, denial, err
	}

	quota, err := g.subs.CheckGenerationLimit(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check generation limit: %w", err)
	}
	if !quota.Allowed {
		return nil, limitDenial(quota), nil
	}

	spend := credit.SpendCreditsOptions{
		UserID:      userID,
		Amount:      cost,
		Type:        types.CreditTransactionTypeGeneration,
		Description: describeGeneration(opts),
	}
	if quota.Quota != subscription.Unlimited {
		// the quota is recounted under the ledger row lock
		spend.Cap = quota.Quota
		spend.CapSince = quota.ResetAt.AddDate(0, 0, -1)
	}
	bal, err := g.ledger.SpendCredits(ctx, spend)
	if errors.Is(err, credit.ErrInsufficientCredits) {
		// lost a race with a concurrent spend
		denial, derr := g.creditsDenial(ctx, userID, cost)
		return nil, denial, derr
	}
	if errors.Is(err, credit.ErrCapReached) {
		return nil, limitDenial(quota), nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to charge generation: %w", err)
	}

	remaining := quota.Remaining
	if remaining != subscription.Unlimited {
		remaining--
	}
	logctx.FromCtx(ctx, g.log).Infow("generation_charged", "user_id", userID, "cost", cost, "balance", bal.Balance)
	return &ChargeResult{
		Cost:                 cost,
		Balance:              bal.Balance,
		RemainingGenerations: remaining,
		ResetAt:              quota.ResetAt,
	}, nil, nil
}

func limitDenial(quota *subscription.GenerationLimit) *Denial {
	var zero int64
	resetAt := quota.ResetAt
	return &Denial{
		Reason:    ReasonLimit,
		Message:   fmt.Sprintf("daily generation limit of the %s plan reached", quota.Plan),
		Remaining: &zero,
		ResetAt:   &resetAt,
	}
}

func describeGeneration(opts credit.CostOptions) string {
	desc := "meme generation"
	switch {
	case opts.UltraHD:
		desc += " (ultra hd)"
	case opts.HD:
		desc += " (hd)"
	}
	if opts.Priority {
		desc += " with priority"
	}
	return desc
}
