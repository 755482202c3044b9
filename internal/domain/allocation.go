package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AllocationRule maps an RSI threshold to a base fiat amount. The rule fires
// when the RSI is strictly below the threshold.
type AllocationRule struct {
	Threshold decimal.Decimal
	Amount    decimal.Decimal
}

// AllocationTable is an ordered set of allocation rules. Rules are kept in
// strictly ascending threshold order so the first match is always the
// smallest qualifying threshold, i.e. the deepest signal wins.
type AllocationTable struct {
	rules []AllocationRule
}

// NewAllocationTable validates the rule set. Thresholds must be positive and
// strictly increasing, amounts positive.
func NewAllocationTable(rules []AllocationRule) (AllocationTable, error) {
	if len(rules) == 0 {
		return AllocationTable{}, fmt.Errorf("at least one allocation rule is required")
	}

	for i, r := range rules {
		if r.Threshold.LessThanOrEqual(decimal.Zero) {
			return AllocationTable{}, fmt.Errorf("rule %d: threshold must be positive, got %s", i, r.Threshold)
		}
		if r.Amount.LessThanOrEqual(decimal.Zero) {
			return AllocationTable{}, fmt.Errorf("rule %d: amount must be positive, got %s", i, r.Amount)
		}
		if i > 0 && !rules[i-1].Threshold.LessThan(r.Threshold) {
			return AllocationTable{}, fmt.Errorf("rule %d: thresholds must be strictly increasing (%s after %s)",
				i, r.Threshold, rules[i-1].Threshold)
		}
	}

	table := AllocationTable{rules: make([]AllocationRule, len(rules))}
	copy(table.rules, rules)
	return table, nil
}

// AmountFor returns the base amount of the first rule whose threshold the
// RSI is strictly below, or false when no rule fires.
func (t AllocationTable) AmountFor(rsi decimal.Decimal) (decimal.Decimal, bool) {
	for _, r := range t.rules {
		if rsi.LessThan(r.Threshold) {
			return r.Amount, true
		}
	}
	return decimal.Zero, false
}

// MaxAmount is the largest base amount any rule can produce.
func (t AllocationTable) MaxAmount() decimal.Decimal {
	max := decimal.Zero
	for _, r := range t.rules {
		if r.Amount.GreaterThan(max) {
			max = r.Amount
		}
	}
	return max
}

// Rules returns a copy of the rule set in threshold order.
func (t AllocationTable) Rules() []AllocationRule {
	out := make([]AllocationRule, len(t.rules))
	copy(out, t.rules)
	return out
}

// AssetWeight assigns an asset its share of every base amount.
type AssetWeight struct {
	Asset  string
	Weight decimal.Decimal
}

// AssetWeights is the portfolio split. Weights must sum to 1.
type AssetWeights []AssetWeight

// weightEpsilon absorbs decimal representations like 0.3333 * 3.
var weightEpsilon = decimal.New(1, -6)

// Validate checks the weight set: non-empty, no duplicate assets, positive
// weights summing to 1 within epsilon.
func (w AssetWeights) Validate() error {
	if len(w) == 0 {
		return fmt.Errorf("at least one asset weight is required")
	}

	seen := make(map[string]struct{}, len(w))
	sum := decimal.Zero
	for i, aw := range w {
		if aw.Asset == "" {
			return fmt.Errorf("weight %d: asset is required", i)
		}
		if _, ok := seen[aw.Asset]; ok {
			return fmt.Errorf("duplicate asset %s", aw.Asset)
		}
		seen[aw.Asset] = struct{}{}
		if aw.Weight.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("weight for %s must be positive, got %s", aw.Asset, aw.Weight)
		}
		sum = sum.Add(aw.Weight)
	}

	if sum.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(weightEpsilon) {
		return fmt.Errorf("asset weights must sum to 1, got %s", sum)
	}
	return nil
}
