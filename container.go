package wargrid

import (
	"fmt"
	"slices"
)

// VariableContainer is an ordered, unique-keyed collection of Variables
// with copy-on-write semantics.
//
// A container built from a scenario-default list initially aliases that
// shared, immutable backing slice. Any mutating call first checks whether
// the backing slice is currently shared and, if so, privately forks a
// fresh mutable copy before writing, leaving every other referencing clone
// untouched. See cowState for the shared/owned discipline.
type VariableContainer struct {
	vars    []Variable
	present Bitmask
	state   cowState
}

// NewVariableContainer creates an owned container holding the given
// variables in order. Duplicate IDs are a defect and panic.
func NewVariableContainer(vars ...Variable) *VariableContainer {
	c := &VariableContainer{state: cowOwned}
	for _, v := range vars {
		c.Add(v)
	}
	return c
}

// NewSharedVariableContainer creates a container aliasing a shared default
// list. The caller guarantees the list is never mutated; the container
// forks a private copy before its first write.
func NewSharedVariableContainer(defaults []Variable) *VariableContainer {
	c := &VariableContainer{vars: defaults, state: cowShared}
	for i := range defaults {
		if c.present.Has(defaults[i].ID) {
			panic(fmt.Sprintf("wargrid: duplicate variable id %d in default list", defaults[i].ID))
		}
		c.present.Set(defaults[i].ID)
	}
	return c
}

// Clone returns an independent container sharing the backing storage.
// Both sides are demoted to shared state; whichever mutates first forks.
func (c *VariableContainer) Clone() *VariableContainer {
	c.state = cowShared
	return &VariableContainer{
		vars:    c.vars,
		present: c.present,
		state:   cowShared,
	}
}

// promote forks the backing slice if it is currently shared.
func (c *VariableContainer) promote() {
	if c.state == cowOwned {
		return
	}
	c.vars = slices.Clone(c.vars)
	c.state = cowOwned
}

// Len returns the number of variables in the container.
func (c *VariableContainer) Len() int {
	return len(c.vars)
}

// Has returns true if a variable with the given ID is present.
func (c *VariableContainer) Has(id VariableID) bool {
	return c.present.Has(id)
}

// index returns the slice index of the variable with the given ID, or -1.
func (c *VariableContainer) index(id VariableID) int {
	if !c.present.Has(id) {
		return -1
	}
	for i := range c.vars {
		if c.vars[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns a copy of the variable with the given ID.
func (c *VariableContainer) Get(id VariableID) (Variable, bool) {
	i := c.index(id)
	if i < 0 {
		return Variable{}, false
	}
	return c.vars[i], true
}

// Value returns the current value of the variable with the given ID, or
// zero if it is absent.
func (c *VariableContainer) Value(id VariableID) int {
	i := c.index(id)
	if i < 0 {
		return 0
	}
	return c.vars[i].value
}

// Add appends a variable, preserving insertion order. Adding a duplicate
// ID is a defect and panics.
func (c *VariableContainer) Add(v Variable) {
	if c.present.Has(v.ID) {
		panic(fmt.Sprintf("wargrid: variable id %d already present in container", v.ID))
	}
	c.promote()
	v.value = clampValue(v.value, v.Minimum, v.Maximum)
	c.vars = append(c.vars, v)
	c.present.Set(v.ID)
}

// SetValue clamps and stores a value on an existing variable, reporting
// whether the stored value changed. The backing storage is forked only
// when a change is actually written, so no-op writes keep clones sharing.
// Setting an absent variable is a defect and panics.
func (c *VariableContainer) SetValue(id VariableID, value int) bool {
	i := c.index(id)
	if i < 0 {
		panic(fmt.Sprintf("wargrid: set on absent variable id %d", id))
	}
	v := &c.vars[i]
	clamped := clampValue(value, v.Minimum, v.Maximum)
	if clamped == v.value {
		return false
	}
	c.promote()
	c.vars[i].value = clamped
	return true
}

// Adjust adds delta to an existing variable's value, clamped. It reports
// whether the stored value changed.
func (c *VariableContainer) Adjust(id VariableID, delta int) bool {
	i := c.index(id)
	if i < 0 {
		panic(fmt.Sprintf("wargrid: adjust on absent variable id %d", id))
	}
	return c.SetValue(id, c.vars[i].value+delta)
}

// ImportChanges applies external deltas to variables that already exist in
// the container. Deltas for absent variables are ignored; the import never
// creates new entries. It reports whether any stored value changed.
func (c *VariableContainer) ImportChanges(deltas map[VariableID]int) bool {
	changed := false
	for id, delta := range deltas {
		i := c.index(id)
		if i < 0 || delta == 0 {
			continue
		}
		if c.SetValue(id, c.vars[i].value+delta) {
			changed = true
		}
	}
	return changed
}

// ExportChanges produces a sparse diff of the container against baseline:
// for every variable whose value differs from the baseline's value for the
// same ID (absent in baseline counts as zero), the map holds the delta to
// apply to the baseline to reach this container. The result round-trips
// through ImportChanges on a container shaped like the baseline.
func (c *VariableContainer) ExportChanges(baseline *VariableContainer) map[VariableID]int {
	diff := make(map[VariableID]int)
	for i := range c.vars {
		v := &c.vars[i]
		base := 0
		if baseline != nil {
			base = baseline.Value(v.ID)
		}
		if v.value != base {
			diff[v.ID] = v.value - base
		}
	}
	return diff
}

// Each calls fn for every variable in insertion order. The variable is
// passed by value; mutation goes through SetValue.
func (c *VariableContainer) Each(fn func(v Variable)) {
	for i := range c.vars {
		fn(c.vars[i])
	}
}

// Variables returns a copy of the contained variables in insertion order.
func (c *VariableContainer) Variables() []Variable {
	return slices.Clone(c.vars)
}

// String returns a string representation of the container for debugging.
func (c *VariableContainer) String() string {
	s := "VariableContainer{" + c.state.String()
	for i := range c.vars {
		s += fmt.Sprintf(", %d=%d", c.vars[i].ID, c.vars[i].value)
	}
	return s + "}"
}
