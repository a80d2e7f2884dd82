package subscription

import "github.com/mlyaho/ai-mem-generator/pkg/types"

// Unlimited marks a quota without an upper bound.
const Unlimited int64 = -1

const periodDays = 30

type PlanLimits struct {
	AIGenerationsPerDay int64  `json:"aiGenerationsPerDay"`
	SavedMemes          int64  `json:"savedMemes"`
	MaxResolution       int    `json:"maxResolution"`
	Watermark           bool   `json:"watermark"`
	Priority            string `json:"priority"`
}

var planLimits = map[types.Plan]PlanLimits{
	types.PlanFree: {
		AIGenerationsPerDay: 3,
		SavedMemes:          10,
		MaxResolution:       512,
		Watermark:           true,
		Priority:            "normal",
	},
	types.PlanPremium: {
		AIGenerationsPerDay: 50,
		SavedMemes:          Unlimited,
		MaxResolution:       1024,
		Watermark:           false,
		Priority:            "high",
	},
	types.PlanPro: {
		AIGenerationsPerDay: Unlimited,
		SavedMemes:          Unlimited,
		MaxResolution:       2048,
		Watermark:           false,
		Priority:            "vip",
	},
}

// Plan prices in major currency units per period.
var planPrices = map[types.Plan]int64{
	types.PlanFree:    0,
	types.PlanPremium: 299,
	types.PlanPro:     599,
}

// GetPlanLimits returns the limits of plan. Unknown plans get the free limits.
func GetPlanLimits(plan types.Plan) PlanLimits {
	if l, ok := planLimits[plan]; ok {
		return l
	}
	return planLimits[types.PlanFree]
}

// GetPlanPrice returns the plan price, or 0 for unknown plans.
func GetPlanPrice(plan types.Plan) int64 {
	return planPrices[plan]
}
