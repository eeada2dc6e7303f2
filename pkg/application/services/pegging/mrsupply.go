package pegging

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantive/mrplan/pkg/domain/entities"
)

// AvailabilityOverride may recompute an activity's effective material
// availability. It is injected by the caller; returning false leaves the
// computed date untouched.
type AvailabilityOverride func(adj *entities.Adjustment, activity entities.ActivitySupply) (time.Time, bool)

// MRSupply is the time-ordered set of adjustments pegged to one material
// requirement. All queries are pure reads over an already-posted ledger;
// empty data yields zero values, never errors.
type MRSupply struct {
	RequirementID string

	override    AvailabilityOverride
	adjustments []*entities.Adjustment
}

// NewMRSupply creates an empty pegging record for one requirement
func NewMRSupply(requirementID string, override AvailabilityOverride) *MRSupply {
	return &MRSupply{RequirementID: requirementID, override: override}
}

// Add pegs an adjustment to this requirement. Members stay ordered by
// instant ascending, insertion order on ties.
func (m *MRSupply) Add(adj *entities.Adjustment) error {
	if adj.RequirementID != m.RequirementID {
		return fmt.Errorf("adjustment belongs to requirement %q, not %q", adj.RequirementID, m.RequirementID)
	}
	m.adjustments = append(m.adjustments, adj)
	sort.SliceStable(m.adjustments, func(i, j int) bool {
		return m.adjustments[i].Instant.Before(m.adjustments[j].Instant)
	})
	return nil
}

// Adjustments returns the pegged adjustments, instant ascending
func (m *MRSupply) Adjustments() []*entities.Adjustment {
	return m.adjustments
}

// supplyInstant resolves one adjustment to the date its supply is available.
// A zero time means unknown: an activity that is neither scheduled nor
// reported has no usable date yet.
func (m *MRSupply) supplyInstant(adj *entities.Adjustment) time.Time {
	switch src := adj.Source.(type) {
	case entities.ActivitySupply:
		var at time.Time
		if src.Scheduled || src.Reported {
			at = src.FinishAt.Add(src.PostProcessing)
		}
		if m.override != nil {
			if overridden, ok := m.override(adj, src); ok {
				at = overridden
			}
		}
		return at
	case entities.PurchaseSupply:
		return src.AvailableAt
	case entities.TransferSupply:
		return src.ScheduledReceiveAt
	default:
		return adj.Instant
	}
}

// LatestSupplyInstant returns the latest date any pegged supply becomes
// available. Unknown dates count as the minimum, so they never win unless
// nothing is dated at all.
func (m *MRSupply) LatestSupplyInstant() time.Time {
	var latest time.Time
	for _, adj := range m.adjustments {
		if at := m.supplyInstant(adj); at.After(latest) {
			latest = at
		}
	}
	return latest
}

// EarliestSupplySourceInstant returns the earliest known supply date,
// ignoring entries with no usable date. Zero when nothing is dated.
func (m *MRSupply) EarliestSupplySourceInstant() time.Time {
	var earliest time.Time
	for _, adj := range m.adjustments {
		at := m.supplyInstant(adj)
		if at.IsZero() {
			continue
		}
		if earliest.IsZero() || at.Before(earliest) {
			earliest = at
		}
	}
	return earliest
}

// LatestSupplyInventory returns the inventory owning the latest-dated pegged
// entry. On equal dates the first-seen entry wins.
func (m *MRSupply) LatestSupplyInventory() string {
	var latest time.Time
	var inventoryID string
	for i, adj := range m.adjustments {
		at := m.supplyInstant(adj)
		if i == 0 || at.After(latest) {
			latest = at
			inventoryID = adj.InventoryID
		}
	}
	return inventoryID
}

// SourcesFrom classifies the pegged supply against the named adjustment
// types. With exclusive set, every adjustment's type must be among types;
// with inclusive set, every named type must appear at least once; the flags
// combine. With neither flag, any single match suffices.
func (m *MRSupply) SourcesFrom(exclusive, inclusive bool, types ...entities.AdjustmentType) bool {
	named := make(map[entities.AdjustmentType]bool, len(types))
	for _, t := range types {
		named[t] = false
	}

	anyMatch := false
	allMatch := true
	for _, adj := range m.adjustments {
		if _, ok := named[adj.Type]; ok {
			named[adj.Type] = true
			anyMatch = true
		} else {
			allMatch = false
		}
	}

	if !exclusive && !inclusive {
		return anyMatch
	}
	if exclusive && !allMatch {
		return false
	}
	if inclusive {
		for _, seen := range named {
			if !seen {
				return false
			}
		}
	}
	return true
}

// CondensedSupplyDescription is the merged view of adjacent same-source
// supply: one production activity, purchase order, transfer, or lot feeding
// the same storage area collapses into a single quantity and time span.
type CondensedSupplyDescription struct {
	Source      entities.SupplySource
	StorageArea string
	TotalQty    decimal.Decimal
	EarliestAt  time.Time
	LatestAt    time.Time
	FirstSeenAt time.Time
	Expired     bool
}

// Condense groups the pegged adjustments by (source id, storage area) and
// returns the groups in descending first-seen-instant order.
func (m *MRSupply) Condense() []CondensedSupplyDescription {
	index := make(map[string]int)
	var groups []CondensedSupplyDescription

	for _, adj := range m.adjustments {
		var sourceID, area string
		if adj.Source != nil {
			sourceID = adj.Source.SourceID()
		}
		if adj.Storage != nil {
			area = adj.Storage.StorageArea
		}
		key := sourceID + "\x00" + area

		at := m.supplyInstant(adj)
		if i, ok := index[key]; ok {
			g := &groups[i]
			g.TotalQty = g.TotalQty.Add(adj.ChangeQty)
			if !at.IsZero() && (g.EarliestAt.IsZero() || at.Before(g.EarliestAt)) {
				g.EarliestAt = at
			}
			if at.After(g.LatestAt) {
				g.LatestAt = at
			}
			g.Expired = g.Expired || adj.Expired
			continue
		}

		index[key] = len(groups)
		groups = append(groups, CondensedSupplyDescription{
			Source:      adj.Source,
			StorageArea: area,
			TotalQty:    adj.ChangeQty,
			EarliestAt:  at,
			LatestAt:    at,
			FirstSeenAt: adj.Instant,
			Expired:     adj.Expired,
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].FirstSeenAt.After(groups[j].FirstSeenAt)
	})
	return groups
}

// Describe renders the condensed supply as a single human-readable line,
// groups joined by "; ".
func (m *MRSupply) Describe() string {
	groups := m.Condense()
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		parts = append(parts, g.String())
	}
	return strings.Join(parts, "; ")
}

func (d CondensedSupplyDescription) String() string {
	var b strings.Builder

	switch src := d.Source.(type) {
	case entities.ActivitySupply:
		fmt.Fprintf(&b, "%s produced by activity %s", d.TotalQty, src.ActivityRef)
	case entities.PurchaseSupply:
		fmt.Fprintf(&b, "%s received on purchase order %s", d.TotalQty, src.OrderRef)
	case entities.TransferSupply:
		fmt.Fprintf(&b, "%s received on transfer %s", d.TotalQty, src.TransferRef)
	case entities.LeadTimeSupply:
		fmt.Fprintf(&b, "%s assumed within lead time of inventory %s", d.TotalQty, src.InventoryID)
	default:
		fmt.Fprintf(&b, "%s from inventory", d.TotalQty)
	}

	if d.StorageArea != "" {
		fmt.Fprintf(&b, " into %s", d.StorageArea)
	}

	switch {
	case d.EarliestAt.IsZero() && d.LatestAt.IsZero():
		// No usable dates; leave the span out
	case d.EarliestAt.Equal(d.LatestAt):
		fmt.Fprintf(&b, " on %s", d.EarliestAt.Format("2006-01-02"))
	default:
		fmt.Fprintf(&b, " between %s and %s",
			d.EarliestAt.Format("2006-01-02"), d.LatestAt.Format("2006-01-02"))
	}

	if d.Expired {
		b.WriteString(" (expired)")
	}
	return b.String()
}
