package wargrid

import (
	"maps"
)

// TurnState represents one phase of a faction's turn processing.
// Phases are executed in order: BeginTurn drives Idle through
// UnitResourceUpdate, EndTurn returns the faction to Idle.
type TurnState uint8

const (
	// TurnIdle is the resting state between turns.
	TurnIdle TurnState = iota

	// TurnBeginProcessing validates the turn start and flushes pending
	// global attribute recomputation.
	TurnBeginProcessing

	// TurnAutoDestroy disbands units the faction can no longer support.
	TurnAutoDestroy

	// TurnAccumulating applies the aggregated resource modifiers and
	// disband refunds to the faction's resource stockpile.
	TurnAccumulating

	// TurnUnitResourceUpdate updates each owned unit's own resources
	// from its Self-target resource modifiers.
	TurnUnitResourceUpdate
)

// String returns the string representation of the state.
func (s TurnState) String() string {
	switch s {
	case TurnIdle:
		return "Idle"
	case TurnBeginProcessing:
		return "BeginTurnProcessing"
	case TurnAutoDestroy:
		return "AutoDestroyEvaluation"
	case TurnAccumulating:
		return "AccumulatingResourceUpdate"
	case TurnUnitResourceUpdate:
		return "UnitResourceUpdate"
	default:
		return "Unknown"
	}
}

// advanceTurn moves a faction to the next phase and notifies observers.
func (w *World) advanceTurn(f *Faction, next TurnState) {
	before := f.state
	f.state = next
	w.notify(TurnStateChangedEvent{Faction: f.id, Before: before, After: next})
}

// BeginTurn runs a faction's turn processing pipeline: Idle →
// BeginTurnProcessing → AutoDestroyEvaluation → AccumulatingResourceUpdate
// → UnitResourceUpdate. The faction then waits in UnitResourceUpdate for
// EndTurn. Calling BeginTurn outside Idle returns ErrInvalidTransition.
func (w *World) BeginTurn(id FactionID) error {
	f := w.faction(id)
	if f.state != TurnIdle {
		return invalidTransition("faction %d begin turn in state %s", id, f.state)
	}

	w.advanceTurn(f, TurnBeginProcessing)
	w.RecomputeAttributes()

	w.advanceTurn(f, TurnAutoDestroy)
	refunds := w.resolveShortfalls(f)

	w.advanceTurn(f, TurnAccumulating)
	deltas := w.computeResourceModifiers(f, false)
	for id, v := range refunds {
		deltas[id] += v
	}
	if f.resources.ImportChanges(deltas) {
		w.notify(ResourcesUpdatedEvent{Faction: f.id, Applied: maps.Clone(deltas)})
	}

	w.advanceTurn(f, TurnUnitResourceUpdate)
	w.updateUnitResources(f)

	return nil
}

// EndTurn returns a faction from UnitResourceUpdate to Idle. Calling it in
// any other state returns ErrInvalidTransition.
func (w *World) EndTurn(id FactionID) error {
	f := w.faction(id)
	if f.state != TurnUnitResourceUpdate {
		return invalidTransition("faction %d end turn in state %s", id, f.state)
	}
	w.advanceTurn(f, TurnIdle)
	return nil
}

// ComputeResourceModifiers aggregates the faction's resource grid into
// per-variable delta totals.
//
// Collection runs over the distinct local cells of the faction's entities:
// each contributing cell is counted once no matter how many entities stack
// on it, and a non-placed upgrade's derived cell counts even if no unit
// stands there. With excludeUnits true, cells whose only occupants are
// units are skipped, so the difference between the two calls is the share
// attributable to units.
func (w *World) ComputeResourceModifiers(id FactionID, excludeUnits bool) map[VariableID]int {
	return w.computeResourceModifiers(w.faction(id), excludeUnits)
}

func (w *World) computeResourceModifiers(f *Faction, excludeUnits bool) map[VariableID]int {
	// true means a non-unit entity also projects through the cell.
	cells := make(map[SiteIndex]bool)
	for _, eid := range f.entities {
		e := w.entities[eid-1]
		if e == nil {
			continue
		}
		site, ok := w.localSite(e)
		if !ok {
			continue
		}
		cells[site] = cells[site] || e.kind != KindUnit
	}

	totals := make(map[VariableID]int)
	for site, nonUnit := range cells {
		if excludeUnits && !nonUnit {
			continue
		}
		for vid, v := range f.resourceGrid.cells[site] {
			if v != 0 {
				totals[vid] += v
			}
		}
	}
	return totals
}

// ApplyResourceUpdate computes the faction's resource modifiers and
// imports them into its resource stockpile, outside the turn pipeline.
// It returns the deltas that were applied.
func (w *World) ApplyResourceUpdate(id FactionID) map[VariableID]int {
	f := w.faction(id)
	deltas := w.computeResourceModifiers(f, false)
	if f.resources.ImportChanges(deltas) {
		w.notify(ResourcesUpdatedEvent{Faction: f.id, Applied: maps.Clone(deltas)})
	}
	return deltas
}

// resolveShortfalls clears every projected resource shortfall by greedily
// disbanding units, least valuable first.
//
// For each resource whose projected value (current + modifiers + refunds
// so far) sits below its minimum, it repeatedly disbands the
// least-valuable unit with a strictly positive per-turn cost for that
// resource, adds the unit's partial build cost refund to the running
// refund totals, and rechecks; the saved upkeep enters through the
// recomputed modifier totals. The loop stops as soon as the shortfall
// clears or no eligible unit remains, so it never disbands more units than
// required. This is a local per-resource greedy heuristic, not a global
// optimum; ties break by original unit order.
func (w *World) resolveShortfalls(f *Faction) map[VariableID]int {
	refunds := make(map[VariableID]int)
	for _, v := range f.resources.Variables() {
		base := v.Value()
		for {
			deltas := w.computeResourceModifiers(f, false)
			if base+deltas[v.ID]+refunds[v.ID] >= v.Minimum {
				break
			}
			u := w.selectUnsupported(f, v.ID)
			if u == nil {
				break
			}
			cls := w.catalog.Class(u.class)
			pct := cls.RefundPercent
			if pct < 0 {
				pct = w.settings.DefaultRefundPercent()
			}
			for rid, cost := range cls.cost {
				refunds[rid] += cost * pct / 100
			}
			w.log.Debug("wargrid: disbanding unsupported unit",
				"faction", f.id, "entity", u.id, "resource", v.ID)
			w.disband(u, true, v.ID)
		}
	}
	return refunds
}

// SelectUnsupportedUnit returns the unit the shortfall resolver would
// disband next for the given deficient resource: the least-valuable owned
// unit with a strictly positive per-turn cost for that resource, ties
// broken by original unit order. It reports false when no unit is
// eligible.
func (w *World) SelectUnsupportedUnit(id FactionID, resource VariableID) (EntityID, bool) {
	u := w.selectUnsupported(w.faction(id), resource)
	if u == nil {
		return NoEntity, false
	}
	return u.id, true
}

func (w *World) selectUnsupported(f *Faction, resource VariableID) *Entity {
	var best *Entity
	bestValue := 0
	for _, eid := range f.entities {
		e := w.entities[eid-1]
		if e == nil || e.kind != KindUnit {
			continue
		}
		// A per-turn cost is a negative Owner-target resource entry.
		if -e.resourceModifiers.Value(resource, TargetOwner) <= 0 {
			continue
		}
		value := w.valuator.Value(w, e)
		if best == nil || value < bestValue {
			best = e
			bestValue = value
		}
	}
	return best
}

// updateUnitResources applies each owned unit's Self-target resource
// modifiers to its own resource container. Only resources the unit
// carries are touched.
func (w *World) updateUnitResources(f *Faction) {
	for _, eid := range f.Entities() {
		e := w.Entity(eid)
		if e == nil || e.kind != KindUnit {
			continue
		}
		for _, entry := range e.resourceModifiers.list(TargetSelf) {
			if !e.resources.Has(entry.ID) || entry.Value == 0 {
				continue
			}
			if e.resources.Adjust(entry.ID, entry.Value) {
				w.notify(VariableChangedEvent{Entity: e.id, Variable: entry.ID, Value: e.resources.Value(entry.ID)})
			}
		}
	}
}
