package entities

import "github.com/shopspring/decimal"

// ScenarioOptions centralizes the rounding and epsilon policy a planning
// scenario applies to quantities. All strategies route quantity decisions
// through it so that one scenario rounds consistently everywhere.
type ScenarioOptions interface {
	RoundQty(qty decimal.Decimal) decimal.Decimal
	IsStrictlyGreaterThanZero(qty decimal.Decimal) bool
}

// StandardScenarioOptions rounds to a fixed number of decimal places and
// compares against a small epsilon instead of exact zero.
type StandardScenarioOptions struct {
	QtyDecimalPlaces int32
	QtyEpsilon       decimal.Decimal
}

// DefaultScenarioOptions returns the rounding policy used when a scenario
// does not configure its own: six decimal places, matching epsilon.
func DefaultScenarioOptions() StandardScenarioOptions {
	return StandardScenarioOptions{
		QtyDecimalPlaces: 6,
		QtyEpsilon:       decimal.New(1, -6),
	}
}

func (o StandardScenarioOptions) RoundQty(qty decimal.Decimal) decimal.Decimal {
	return qty.Round(o.QtyDecimalPlaces)
}

func (o StandardScenarioOptions) IsStrictlyGreaterThanZero(qty decimal.Decimal) bool {
	return qty.GreaterThanOrEqual(o.QtyEpsilon)
}
