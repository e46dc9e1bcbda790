package wargrid

import (
	"fmt"
)

// VariableID is a unique identifier for a registered variable kind.
// Valid IDs range from 0 to 255.
type VariableID uint8

// MaxVariables is the maximum number of variable kinds supported.
const MaxVariables = 255

// Category classifies what a variable represents.
type Category uint8

const (
	// CategoryAttribute is a combat or movement property of an entity,
	// recomputed eagerly from the attribute modifier grids.
	CategoryAttribute Category = iota

	// CategoryResource is an income or stockpile value, reconciled
	// lazily per faction during turn processing.
	CategoryResource

	// CategoryCounter is a plain counter with no modifier semantics.
	CategoryCounter

	categoryCount
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryAttribute:
		return "Attribute"
	case CategoryResource:
		return "Resource"
	case CategoryCounter:
		return "Counter"
	default:
		return "Unknown"
	}
}

// Purpose is a set of flags describing what a variable is consulted for.
type Purpose uint32

const (
	// PurposeCost marks variables that participate in build costs and
	// disband refunds.
	PurposeCost Purpose = 1 << iota

	// PurposeUpkeep marks variables drained per turn by units.
	PurposeUpkeep

	// PurposeScore marks variables that feed the default contextual
	// valuation of a unit.
	PurposeScore

	// PurposeHidden marks variables not meant for presentation layers.
	PurposeHidden
)

// Has returns true if all flags in p2 are set in p.
func (p Purpose) Has(p2 Purpose) bool {
	return p&p2 == p2
}

// Definition describes one variable kind as declared by a scenario:
// identity, category, purpose flags and the value range every instance of
// the variable is clamped to.
type Definition struct {
	ID       VariableID
	Name     string
	Category Category
	Purpose  Purpose
	Minimum  int
	Maximum  int
	Initial  int
}

// Registry assigns sequential VariableIDs to variable definitions and
// resolves names to IDs. One registry belongs to one world (and all of its
// clones); it is written during scenario setup and read-only afterwards.
type Registry struct {
	defs   []Definition
	byName map[string]VariableID
}

// NewRegistry creates an empty variable registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]VariableID)}
}

// Register assigns the next free ID to the definition and returns it.
// The ID and any clamped Initial value are written back into the stored
// definition. Registering a duplicate name or exceeding MaxVariables is a
// scenario authoring defect and panics.
func (r *Registry) Register(def Definition) VariableID {
	if def.Name == "" {
		panic("wargrid: variable definition without a name")
	}
	if _, ok := r.byName[def.Name]; ok {
		panic("wargrid: duplicate variable name " + def.Name)
	}
	if len(r.defs) >= MaxVariables {
		panic(fmt.Sprintf("wargrid: variable limit exceeded (max %d kinds)", MaxVariables))
	}
	if def.Category >= categoryCount {
		panic("wargrid: invalid variable category for " + def.Name)
	}
	if def.Minimum > def.Maximum {
		panic("wargrid: variable " + def.Name + " has minimum above maximum")
	}
	def.ID = VariableID(len(r.defs))
	def.Initial = clampValue(def.Initial, def.Minimum, def.Maximum)
	r.defs = append(r.defs, def)
	r.byName[def.Name] = def.ID
	return def.ID
}

// Lookup returns the ID registered under the given name.
func (r *Registry) Lookup(name string) (VariableID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Definition returns the definition stored for the given ID.
// Asking for an unregistered ID is a defect and panics.
func (r *Registry) Definition(id VariableID) Definition {
	if int(id) >= len(r.defs) {
		panic(fmt.Sprintf("wargrid: unregistered variable id %d", id))
	}
	return r.defs[id]
}

// Name returns the name registered for the given ID.
func (r *Registry) Name(id VariableID) string {
	return r.Definition(id).Name
}

// Count returns the number of registered variable kinds.
func (r *Registry) Count() int {
	return len(r.defs)
}

// NewVariable instantiates a variable from its definition, seeded with the
// definition's initial value.
func (r *Registry) NewVariable(id VariableID) Variable {
	def := r.Definition(id)
	return Variable{
		ID:       def.ID,
		Category: def.Category,
		Purpose:  def.Purpose,
		Minimum:  def.Minimum,
		Maximum:  def.Maximum,
		Initial:  def.Initial,
		value:    def.Initial,
	}
}

// Variable is one range-restricted named integer. Every write runs through
// the clamp in SetValue, so minimum <= value <= maximum holds at all times.
//
// Variables are created from a scenario template, cloned with their owning
// container and mutated only via SetValue (directly or through container
// ImportChanges).
type Variable struct {
	ID       VariableID
	Category Category
	Purpose  Purpose
	Minimum  int
	Maximum  int
	Initial  int

	value int
}

// Value returns the current value.
func (v *Variable) Value() int {
	return v.value
}

// SetValue clamps the requested value to [Minimum, Maximum] and stores it.
// It reports whether the stored value changed: a write whose clamped result
// equals the prior value is a no-op and must not be reported as a change,
// otherwise consumers cascade recomputation for nothing.
func (v *Variable) SetValue(value int) bool {
	clamped := clampValue(value, v.Minimum, v.Maximum)
	if clamped == v.value {
		return false
	}
	v.value = clamped
	return true
}

// clampValue restricts value to [lo, hi].
func clampValue(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
