package wargrid

// Valuator orders units for the shortfall resolver: when a faction cannot
// pay a resource's upkeep, the least-valuable eligible unit is disbanded
// first. The valuation is contextual: it may consult the world state, not
// just the unit.
//
// There is exactly one default implementation and one override slot on the
// world (WorldBuilder.Valuator); behavior variants are selected by entity
// class data rather than open-ended subclassing.
type Valuator interface {
	Value(w *World, e *Entity) int
}

// ValuatorFunc adapts a plain function to the Valuator interface.
type ValuatorFunc func(w *World, e *Entity) int

// Value implements Valuator.
func (f ValuatorFunc) Value(w *World, e *Entity) int {
	return f(w, e)
}

// defaultValuator values a unit as its class valuation weight plus the
// current total of its score-flagged attributes, so a damaged unit values
// below a healthy one of the same class.
type defaultValuator struct{}

func (defaultValuator) Value(w *World, e *Entity) int {
	value := w.catalog.Class(e.class).Valuation
	e.attributes.Each(func(v Variable) {
		if v.Purpose.Has(PurposeScore) {
			value += v.Value()
		}
	})
	return value
}
