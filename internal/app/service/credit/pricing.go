package credit

import (
	"math"
	"sort"
)

// Credit pack sizes and their prices in major currency units.
var creditPackPrices = map[int64]int64{
	10:   99,
	50:   399,
	200:  999,
	1000: 3999,
}

// baseCreditPrice is the undiscounted price of a single credit.
const baseCreditPrice = 9.9

// Action costs in credits.
const (
	CostTextGeneration     int64 = 1
	CostImageGeneration    int64 = 2
	CostMemeGeneration     int64 = 3
	CostHDUpgrade          int64 = 1
	CostUltraHDUpgrade     int64 = 2
	CostWatermarkRemoval   int64 = 5
	CostPriorityGeneration int64 = 2
)

type CreditPack struct {
	Amount int64 `json:"amount"`
	Price  int64 `json:"price"`
	// Bonus is the discount against baseCreditPrice, expressed in credits.
	Bonus int64 `json:"bonus"`
}

// GetCreditPackPrice returns the price of a pack, or false when amount is not a sold size.
func GetCreditPackPrice(amount int64) (int64, bool) {
	p, ok := creditPackPrices[amount]
	return p, ok
}

func GetAvailableCreditPacks() []CreditPack {
	packs := make([]CreditPack, 0, len(creditPackPrices))
	for amount, price := range creditPackPrices {
		perCredit := float64(price) / float64(amount)
		bonus := math.Round((baseCreditPrice*float64(amount) - float64(price)) / perCredit)
		packs = append(packs, CreditPack{Amount: amount, Price: price, Bonus: int64(bonus)})
	}
	sort.Slice(packs, func(i, j int) bool { return packs[i].Amount < packs[j].Amount })
	return packs
}

type CostOptions struct {
	WithText  bool `json:"withText" form:"withText"`
	WithImage bool `json:"withImage" form:"withImage"`
	HD        bool `json:"hd" form:"hd"`
	UltraHD   bool `json:"ultraHd" form:"ultraHd"`
	Priority  bool `json:"priority" form:"priority"`
}

// GetMemeGenerationCost prices one generation. UltraHD supersedes HD.
func GetMemeGenerationCost(opts CostOptions) int64 {
	var cost int64
	switch {
	case opts.WithText && opts.WithImage:
		cost = CostMemeGeneration
	case opts.WithImage:
		cost = CostImageGeneration
	case opts.WithText:
		cost = CostTextGeneration
	}
	switch {
	case opts.UltraHD:
		cost += CostUltraHDUpgrade
	case opts.HD:
		cost += CostHDUpgrade
	}
	if opts.Priority {
		cost += CostPriorityGeneration
	}
	return cost
}
