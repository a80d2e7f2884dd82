package models

import (
	"time"

	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

// Subscription stores the user's plan. A missing row means the implicit free plan.
// Use Live() to determine whether the plan currently grants its features.
type Subscription struct {
	ID     string                   `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID string                   `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex" json:"userId"`
	Plan   types.Plan               `gorm:"column:plan;type:varchar(32);not null" json:"plan"`
	Status types.SubscriptionStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	// CurrentPeriodEnd is nil for the default free plan.
	CurrentPeriodEnd *time.Time `gorm:"column:current_period_end;default:null" json:"currentPeriodEnd"`
	// CancelAtPeriodEnd defers termination to CurrentPeriodEnd.
	CancelAtPeriodEnd bool       `gorm:"column:cancel_at_period_end;not null;default:false" json:"cancelAtPeriodEnd"`
	CancelledAt       *time.Time `gorm:"column:cancelled_at;default:null" json:"cancelledAt"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (Subscription) TableName() string {
	return "subscription"
}

// Live reports whether status is active/trialing and the period (if any) has not passed at now.
func (s *Subscription) Live(now time.Time) bool {
	if s == nil || !s.Status.Live() {
		return false
	}
	return s.CurrentPeriodEnd == nil || !now.After(*s.CurrentPeriodEnd)
}

// Expired reports whether an active subscription has run past its period end.
func (s *Subscription) Expired(now time.Time) bool {
	return s != nil &&
		s.Status == types.SubscriptionStatusActive &&
		s.CurrentPeriodEnd != nil &&
		now.After(*s.CurrentPeriodEnd)
}
