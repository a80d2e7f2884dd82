package types

type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
	PlanPro     Plan = "pro"
)

var planRanks = map[Plan]int{
	PlanFree:    0,
	PlanPremium: 1,
	PlanPro:     2,
}

// Rank orders plans free < premium < pro. Unknown plans rank below free.
func (p Plan) Rank() int {
	if r, ok := planRanks[p]; ok {
		return r
	}
	return -1
}

func (p Plan) Valid() bool {
	_, ok := planRanks[p]
	return ok
}

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusTrialing  SubscriptionStatus = "trialing"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

// Live reports whether the status grants plan features (period permitting).
func (s SubscriptionStatus) Live() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusTrialing
}

type SubscriptionChangeReason string

const (
	SubscriptionChangeReasonCreate SubscriptionChangeReason = "create"
	SubscriptionChangeReasonUpdate SubscriptionChangeReason = "update"
	SubscriptionChangeReasonCancel SubscriptionChangeReason = "cancel"
	SubscriptionChangeReasonRenew  SubscriptionChangeReason = "renew"
	SubscriptionChangeReasonExpire SubscriptionChangeReason = "expire"
)
