package wargrid

// Observer receives the world's mutation events. The command layer that
// drives this package registers an observer to mirror applied mutations
// into its own dispatch/undo machinery.
//
// Dispatch is synchronous and happens after the mutation (including its
// grid retract/reapply) has fully taken effect. No-op mutations dispatch
// nothing.
type Observer interface {
	Notify(event any)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(event any)

// Notify implements Observer.
func (f ObserverFunc) Notify(event any) {
	f(event)
}

// VariableChangedEvent is emitted when an entity's plain variable changes
// through SetEntityVariable.
type VariableChangedEvent struct {
	Entity   EntityID
	Variable VariableID
	Value    int
}

// ModifierChangedEvent is emitted when an entity's modifier contribution
// changes through SetEntityModifier.
type ModifierChangedEvent struct {
	Entity   EntityID
	Variable VariableID
	Target   ModifierTarget
	Value    int
}

// OwnerChangedEvent is emitted when an entity changes owner.
type OwnerChangedEvent struct {
	Entity EntityID
	Before FactionID
	After  FactionID
}

// SiteChangedEvent is emitted when an entity is placed, moved or removed
// from the map.
type SiteChangedEvent struct {
	Entity EntityID
	Before SiteIndex
	After  SiteIndex
}

// ClassChangedEvent is emitted when an entity changes class.
type ClassChangedEvent struct {
	Entity EntityID
	Before ClassID
	After  ClassID
}

// EntityCreatedEvent is emitted when an entity enters the arena.
type EntityCreatedEvent struct {
	Entity EntityID
	Class  ClassID
}

// EntityDisbandedEvent is emitted when an entity leaves the arena. For
// shortfall disbandment, Resource names the deficient resource; for plain
// removal it is zero and Shortfall is false.
type EntityDisbandedEvent struct {
	Entity    EntityID
	Faction   FactionID
	Shortfall bool
	Resource  VariableID
}

// TurnStateChangedEvent is emitted for every turn-processing phase
// transition of a faction.
type TurnStateChangedEvent struct {
	Faction FactionID
	Before  TurnState
	After   TurnState
}

// ResourcesUpdatedEvent is emitted after a faction's accumulated resource
// update has been applied. Applied holds the deltas that were imported.
type ResourcesUpdatedEvent struct {
	Faction FactionID
	Applied map[VariableID]int
}
