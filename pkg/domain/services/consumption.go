package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantive/mrplan/pkg/domain/entities"
)

// ConsumptionLink records one quantity matched between a forecast shipment
// and a sales-order line during a consumption pass.
type ConsumptionLink struct {
	Shipment *entities.ForecastShipment
	SOD      *entities.SalesOrderLineDistribution
	Qty      decimal.Decimal
}

// SODConsumption summarizes one sales-order line after a pass.
type SODConsumption struct {
	SOD       *entities.SalesOrderLineDistribution
	Consumed  decimal.Decimal
	Remainder decimal.Decimal
}

// ConsumptionResult is the audit record of a consumption pass: every link
// posted plus per-line totals, in processing order.
type ConsumptionResult struct {
	Links  []ConsumptionLink
	PerSOD []SODConsumption
}

// TotalConsumed returns the quantity consumed across all links
func (r *ConsumptionResult) TotalConsumed() decimal.Decimal {
	total := decimal.Zero
	for _, link := range r.Links {
		total = total.Add(link.Qty)
	}
	return total
}

func (r *ConsumptionResult) addLink(shipment *entities.ForecastShipment, sod *entities.SalesOrderLineDistribution, qty decimal.Decimal) {
	r.Links = append(r.Links, ConsumptionLink{Shipment: shipment, SOD: sod, Qty: qty})
}

// ForecastConsumer runs forecast consumption for one inventory. The policy
// is a per-scenario configuration choice; a single pass never switches
// policies except for the intentional two-phase backward-then-forward run.
type ForecastConsumer struct {
	Policy     entities.ConsumptionPolicy
	WindowDays decimal.Decimal // 0 = unbounded
	Options    entities.ScenarioOptions
}

// NewForecastConsumer creates a consumer for the given policy and window
func NewForecastConsumer(policy entities.ConsumptionPolicy, windowDays decimal.Decimal, options entities.ScenarioOptions) *ForecastConsumer {
	if options == nil {
		options = entities.DefaultScenarioOptions()
	}
	return &ForecastConsumer{Policy: policy, WindowDays: windowDays, Options: options}
}

// ConsumeForecasts matches the inventory's open sales-order lines against its
// forecast shipments under the configured policy. Lines are processed in the
// order given; shipments are mutated in place. Empty inputs are a no-op, not
// an error.
func (c *ForecastConsumer) ConsumeForecasts(sods []*entities.SalesOrderLineDistribution,
	shipments []*entities.ForecastShipment) *ConsumptionResult {

	result := &ConsumptionResult{}

	for _, sod := range sods {
		var remainder decimal.Decimal

		switch c.Policy {
		case entities.Backward:
			remainder = c.consumeBackward(sod, shipments, sod.QtyOpenToShip, result)
		case entities.Forward:
			remainder = c.ConsumeForward(sod, shipments, sod.QtyOpenToShip, result)
		case entities.BackwardThenForward:
			remainder = c.consumeBackward(sod, shipments, sod.QtyOpenToShip, result)
			remainder = c.ConsumeForward(sod, shipments, remainder, result)
		case entities.Spread:
			remainder = c.consumeSpread(sod, shipments, result)
		default:
			remainder = sod.QtyOpenToShip
		}

		result.PerSOD = append(result.PerSOD, SODConsumption{
			SOD:       sod,
			Consumed:  sod.QtyOpenToShip.Sub(remainder),
			Remainder: remainder,
		})
	}

	return result
}

// windowSpan converts the configured window to a duration. The second return
// is false when the window is unbounded.
func (c *ForecastConsumer) windowSpan() (time.Duration, bool) {
	if !c.WindowDays.IsPositive() {
		return 0, false
	}
	nanos := c.WindowDays.Mul(decimal.NewFromInt(int64(24 * time.Hour)))
	return time.Duration(nanos.IntPart()), true
}

// consumeBackward greedily consumes backward-eligible shipments closest to
// the line's due date first, and returns the unconsumed remainder.
func (c *ForecastConsumer) consumeBackward(sod *entities.SalesOrderLineDistribution,
	shipments []*entities.ForecastShipment, qty decimal.Decimal, result *ConsumptionResult) decimal.Decimal {

	eligible := c.backwardEligible(sod, shipments)
	// Closest-to-due first
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].RequiredAt.After(eligible[j].RequiredAt)
	})
	return c.consumeGreedy(sod, eligible, qty, result)
}

// ConsumeForward greedily consumes forward-eligible shipments soonest first,
// starting from an explicit quantity. The backward-then-forward policy hands
// its backward remainder in here; callers running forward alone pass the
// line's full open quantity.
func (c *ForecastConsumer) ConsumeForward(sod *entities.SalesOrderLineDistribution,
	shipments []*entities.ForecastShipment, qty decimal.Decimal, result *ConsumptionResult) decimal.Decimal {

	eligible := c.forwardEligible(sod, shipments)
	// Soonest-available first
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].RequiredAt.Before(eligible[j].RequiredAt)
	})
	return c.consumeGreedy(sod, eligible, qty, result)
}

func (c *ForecastConsumer) consumeGreedy(sod *entities.SalesOrderLineDistribution,
	eligible []*entities.ForecastShipment, qty decimal.Decimal, result *ConsumptionResult) decimal.Decimal {

	remaining := qty
	for _, shipment := range eligible {
		if !c.Options.IsStrictlyGreaterThanZero(remaining) {
			break
		}
		take := decimal.Min(shipment.UnconsumedQty(), remaining)
		if !c.Options.IsStrictlyGreaterThanZero(take) {
			continue
		}
		shipment.ConsumeSalesOrder(sod, take)
		result.addLink(shipment, sod, take)
		remaining = remaining.Sub(take)
	}
	return remaining
}

// backwardEligible returns open shipments due at or before the line's
// required date, within the window when one is configured. Window edges are
// inclusive for the greedy strategies.
func (c *ForecastConsumer) backwardEligible(sod *entities.SalesOrderLineDistribution,
	shipments []*entities.ForecastShipment) []*entities.ForecastShipment {

	span, bounded := c.windowSpan()
	var eligible []*entities.ForecastShipment
	for _, s := range shipments {
		if s.RequiredAt.After(sod.RequiredAvailableAt) {
			continue
		}
		if bounded && s.RequiredAt.Before(sod.RequiredAvailableAt.Add(-span)) {
			continue
		}
		if !c.Options.IsStrictlyGreaterThanZero(s.UnconsumedQty()) {
			continue
		}
		eligible = append(eligible, s)
	}
	return eligible
}

// forwardEligible is the forward mirror of backwardEligible.
func (c *ForecastConsumer) forwardEligible(sod *entities.SalesOrderLineDistribution,
	shipments []*entities.ForecastShipment) []*entities.ForecastShipment {

	span, bounded := c.windowSpan()
	var eligible []*entities.ForecastShipment
	for _, s := range shipments {
		if s.RequiredAt.Before(sod.RequiredAvailableAt) {
			continue
		}
		if bounded && s.RequiredAt.After(sod.RequiredAvailableAt.Add(span)) {
			continue
		}
		if !c.Options.IsStrictlyGreaterThanZero(s.UnconsumedQty()) {
			continue
		}
		eligible = append(eligible, s)
	}
	return eligible
}

// consumeSpread splits each iteration's remaining quantity between the
// nearest open backward and forward shipments, weighting the closer one more
// heavily. An iteration that consumes nothing terminates the loop, which
// bounds the pass even when rounding collapses amounts to zero.
func (c *ForecastConsumer) consumeSpread(sod *entities.SalesOrderLineDistribution,
	shipments []*entities.ForecastShipment, result *ConsumptionResult) decimal.Decimal {

	remaining := sod.QtyOpenToShip
	one := decimal.NewFromInt(1)

	for c.Options.IsStrictlyGreaterThanZero(remaining) {
		backward := c.nearestBackward(sod, shipments)
		forward := c.nearestForward(sod, shipments)
		if backward == nil && forward == nil {
			break
		}

		ratio := spreadRatio(sod.RequiredAvailableAt, backward, forward)
		consumedThisPass := decimal.Zero

		if backward != nil {
			take := decimal.Min(backward.UnconsumedQty(), c.Options.RoundQty(remaining.Mul(ratio)))
			take = decimal.Min(take, remaining)
			if c.Options.IsStrictlyGreaterThanZero(take) {
				backward.ConsumeSalesOrder(sod, take)
				result.addLink(backward, sod, take)
				consumedThisPass = consumedThisPass.Add(take)
			}
		}
		if forward != nil && forward != backward {
			take := decimal.Min(forward.UnconsumedQty(), c.Options.RoundQty(remaining.Mul(one.Sub(ratio))))
			take = decimal.Min(take, remaining.Sub(consumedThisPass))
			if c.Options.IsStrictlyGreaterThanZero(take) {
				forward.ConsumeSalesOrder(sod, take)
				result.addLink(forward, sod, take)
				consumedThisPass = consumedThisPass.Add(take)
			}
		}

		if !c.Options.IsStrictlyGreaterThanZero(consumedThisPass) {
			break
		}
		remaining = remaining.Sub(consumedThisPass)
	}

	return remaining
}

// nearestBackward finds the single open backward shipment closest to the
// line's required date. The spread search keeps the historical strict window
// edge: a shipment exactly at the window boundary is not a candidate.
func (c *ForecastConsumer) nearestBackward(sod *entities.SalesOrderLineDistribution,
	shipments []*entities.ForecastShipment) *entities.ForecastShipment {

	span, bounded := c.windowSpan()
	var nearest *entities.ForecastShipment
	for _, s := range shipments {
		if s.RequiredAt.After(sod.RequiredAvailableAt) {
			continue
		}
		if bounded && !s.RequiredAt.After(sod.RequiredAvailableAt.Add(-span)) {
			continue
		}
		if !c.Options.IsStrictlyGreaterThanZero(s.UnconsumedQty()) {
			continue
		}
		if nearest == nil || s.RequiredAt.After(nearest.RequiredAt) {
			nearest = s
		}
	}
	return nearest
}

// nearestForward is the forward mirror of nearestBackward.
func (c *ForecastConsumer) nearestForward(sod *entities.SalesOrderLineDistribution,
	shipments []*entities.ForecastShipment) *entities.ForecastShipment {

	span, bounded := c.windowSpan()
	var nearest *entities.ForecastShipment
	for _, s := range shipments {
		if s.RequiredAt.Before(sod.RequiredAvailableAt) {
			continue
		}
		if bounded && !s.RequiredAt.Before(sod.RequiredAvailableAt.Add(span)) {
			continue
		}
		if !c.Options.IsStrictlyGreaterThanZero(s.UnconsumedQty()) {
			continue
		}
		if nearest == nil || s.RequiredAt.Before(nearest.RequiredAt) {
			nearest = s
		}
	}
	return nearest
}

// spreadRatio computes the backward share of the split: 1 with no forward
// candidate, 0 with no backward candidate, otherwise linear interpolation
// between the two instants so the closer shipment absorbs more.
func spreadRatio(sodAt time.Time, backward, forward *entities.ForecastShipment) decimal.Decimal {
	switch {
	case backward == nil:
		return decimal.Zero
	case forward == nil:
		return decimal.NewFromInt(1)
	}

	span := forward.RequiredAt.Sub(backward.RequiredAt)
	if span <= 0 {
		// Both candidates sit on the line's own date
		return decimal.NewFromInt(1)
	}
	behind := sodAt.Sub(backward.RequiredAt)
	return decimal.NewFromInt(1).Sub(
		decimal.NewFromFloat(float64(behind)).Div(decimal.NewFromFloat(float64(span))))
}
