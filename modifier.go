package wargrid

import (
	"fmt"
	"slices"
)

// ModifierTarget is the audience a variable modifier applies to.
type ModifierTarget uint8

const (
	// TargetSelf modifies the carrying entity's own variables. Self
	// entries never reach a modifier grid; they are folded directly into
	// the entity's effective attributes.
	TargetSelf ModifierTarget = iota

	// TargetOwner modifies the owning faction, at the entity's local
	// cell of the owner's grid. Per-turn upkeep lives here as negative
	// resource entries.
	TargetOwner

	// TargetUnits modifies other factions' units at the entity's local
	// cell of every non-owning faction's grid.
	TargetUnits

	// TargetUnitsRanged modifies other factions' units within the
	// class's modifier range, broadcast over every non-owning faction's
	// grid.
	TargetUnitsRanged

	// TargetOwnerUnits modifies the owner's units at the entity's local
	// cell of the owner's grid.
	TargetOwnerUnits

	// TargetOwnerUnitsRanged modifies the owner's units within the
	// class's modifier range, broadcast over the owner's grid.
	TargetOwnerUnitsRanged

	targetCount
)

// String returns the string representation of the target.
func (t ModifierTarget) String() string {
	switch t {
	case TargetSelf:
		return "Self"
	case TargetOwner:
		return "Owner"
	case TargetUnits:
		return "Units"
	case TargetUnitsRanged:
		return "UnitsRanged"
	case TargetOwnerUnits:
		return "OwnerUnits"
	case TargetOwnerUnitsRanged:
		return "OwnerUnitsRanged"
	default:
		return "Unknown"
	}
}

// ModifierEntry is one contribution of a modifier list: the variable kind
// it modifies and the signed amount contributed.
type ModifierEntry struct {
	ID    VariableID
	Value int
}

// VariableModifierContainer holds six parallel per-target modifier lists,
// indexed by ModifierTarget. Like VariableContainer it is copy-on-write,
// but all six lists fork together as one unit: the shared/owned tag lives
// on the container, and a single promotion copies every list.
//
// All mutation goes through SetValue and ImportChanges so that every
// change is observable by the entity modifier projector; Variables returns
// a read-only snapshot.
type VariableModifierContainer struct {
	lists [targetCount][]ModifierEntry
	state cowState
}

// NewVariableModifierContainer creates an empty owned container.
func NewVariableModifierContainer() *VariableModifierContainer {
	return &VariableModifierContainer{state: cowOwned}
}

// NewSharedVariableModifierContainer creates a container aliasing shared
// default lists, typically a class's scenario-declared modifiers. The
// caller guarantees the lists are never mutated.
func NewSharedVariableModifierContainer(defaults [6][]ModifierEntry) *VariableModifierContainer {
	return &VariableModifierContainer{lists: defaults, state: cowShared}
}

// Clone returns an independent container sharing all six backing lists.
// Both sides are demoted to shared state.
func (c *VariableModifierContainer) Clone() *VariableModifierContainer {
	c.state = cowShared
	return &VariableModifierContainer{lists: c.lists, state: cowShared}
}

// promote forks all six lists in one fork event if currently shared.
func (c *VariableModifierContainer) promote() {
	if c.state == cowOwned {
		return
	}
	for t := range c.lists {
		c.lists[t] = slices.Clone(c.lists[t])
	}
	c.state = cowOwned
}

// checkTarget panics on an out-of-range target.
func checkTarget(target ModifierTarget) {
	if target >= targetCount {
		panic(fmt.Sprintf("wargrid: invalid modifier target %d", target))
	}
}

// index returns the position of the entry for id in the target's list,
// or -1 if absent.
func (c *VariableModifierContainer) index(target ModifierTarget, id VariableID) int {
	for i := range c.lists[target] {
		if c.lists[target][i].ID == id {
			return i
		}
	}
	return -1
}

// SetValue stores the contribution for the given variable kind in the
// specified target's list, inserting the entry if absent. It reports
// whether the stored contribution changed.
func (c *VariableModifierContainer) SetValue(id VariableID, target ModifierTarget, value int) bool {
	checkTarget(target)
	i := c.index(target, id)
	if i >= 0 && c.lists[target][i].Value == value {
		return false
	}
	c.promote()
	if i >= 0 {
		c.lists[target][i].Value = value
		return true
	}
	c.lists[target] = append(c.lists[target], ModifierEntry{ID: id, Value: value})
	return true
}

// Value returns the stored contribution for the given variable kind and
// target, or zero if absent.
func (c *VariableModifierContainer) Value(id VariableID, target ModifierTarget) int {
	checkTarget(target)
	i := c.index(target, id)
	if i < 0 {
		return 0
	}
	return c.lists[target][i].Value
}

// ImportChanges applies external deltas to entries that already exist in
// the target's list; deltas for absent entries are ignored. It reports
// whether any contribution changed.
func (c *VariableModifierContainer) ImportChanges(target ModifierTarget, deltas map[VariableID]int) bool {
	checkTarget(target)
	changed := false
	for id, delta := range deltas {
		i := c.index(target, id)
		if i < 0 || delta == 0 {
			continue
		}
		if c.SetValue(id, target, c.lists[target][i].Value+delta) {
			changed = true
		}
	}
	return changed
}

// Variables returns a read-only snapshot of the target's modifier list in
// insertion order.
func (c *VariableModifierContainer) Variables(target ModifierTarget) []ModifierEntry {
	checkTarget(target)
	return slices.Clone(c.lists[target])
}

// list returns the live backing list for internal iteration.
func (c *VariableModifierContainer) list(target ModifierTarget) []ModifierEntry {
	return c.lists[target]
}

// Empty returns true if all six lists are empty.
func (c *VariableModifierContainer) Empty() bool {
	for t := range c.lists {
		if len(c.lists[t]) > 0 {
			return false
		}
	}
	return true
}
