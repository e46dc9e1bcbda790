package wargrid

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/google/uuid"
)

// World is the single mutable simulation state: the entity arena, the
// factions with their aggregate modifier grids, and the per-cell
// occupancy index. Exactly one World instance is mutated at a time;
// speculative execution (AI lookahead, undo) clones the whole world first
// and discards the clone on failure. There is no transactional rollback;
// once a mutation begins altering grids it runs to completion.
//
// All mutation goes through the World's primitives (SetEntityVariable,
// SetEntityModifier, SetOwner, SetSite, SetClass, CreateEntity,
// RemoveEntity, BeginTurn, EndTurn). Each primitive retracts the affected
// entity's grid contributions before the change, reapplies them after,
// and then notifies observers, in that order.
type World struct {
	id       uuid.UUID
	catalog  *ClassCatalog
	settings Settings
	valuator Valuator
	log      *slog.Logger

	width  int
	height int

	factions []*Faction
	entities []*Entity
	byGUID   map[uuid.UUID]EntityID

	// stacks indexes entity ids by occupied cell.
	stacks [][]EntityID

	observers []Observer

	// attributeGridsChanged is set when any attribute-grid cell changes
	// and cleared by RecomputeAttributes. Resource-grid changes never
	// set it: resource consumers recompute lazily per faction.
	attributeGridsChanged bool
}

// ID returns the world instance identifier. Every clone gets a fresh one;
// entity GUIDs, not the world ID, are the stable cross-clone identity.
func (w *World) ID() uuid.UUID {
	return w.id
}

// Width returns the map width in cells.
func (w *World) Width() int {
	return w.width
}

// Height returns the map height in cells.
func (w *World) Height() int {
	return w.height
}

// Catalog returns the class catalog shared by the world and its clones.
func (w *World) Catalog() *ClassCatalog {
	return w.catalog
}

// Registry returns the variable registry shared by the world and its
// clones.
func (w *World) Registry() *Registry {
	return w.catalog.registry
}

// InBounds returns true if the coordinate lies on the map.
func (w *World) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < w.width && c.Y >= 0 && c.Y < w.height
}

// SiteAt returns the cell index for a coordinate. Out-of-bounds
// coordinates are a defect and panic.
func (w *World) SiteAt(c Coord) SiteIndex {
	if !w.InBounds(c) {
		panic(fmt.Sprintf("wargrid: coordinate %v out of bounds", c))
	}
	return SiteIndex(c.Y*w.width + c.X)
}

// CoordOf returns the coordinate for a cell index.
func (w *World) CoordOf(idx SiteIndex) Coord {
	if idx < 0 || int(idx) >= w.width*w.height {
		panic(fmt.Sprintf("wargrid: cell index %d out of range", idx))
	}
	return Coord{X: int(idx) % w.width, Y: int(idx) / w.width}
}

// Faction returns the faction with the given id. Unknown ids are a defect
// and panic.
func (w *World) Faction(id FactionID) *Faction {
	return w.faction(id)
}

func (w *World) faction(id FactionID) *Faction {
	if id == NoFaction || int(id) > len(w.factions) {
		panic(fmt.Sprintf("wargrid: unknown faction id %d", id))
	}
	return w.factions[id-1]
}

// FactionCount returns the number of factions.
func (w *World) FactionCount() int {
	return len(w.factions)
}

// Entity returns the entity with the given id, or nil if it has been
// removed or never existed.
func (w *World) Entity(id EntityID) *Entity {
	if id == NoEntity || int(id) > len(w.entities) {
		return nil
	}
	return w.entities[id-1]
}

// EntityByGUID returns the entity with the given stable identifier, or
// nil.
func (w *World) EntityByGUID(guid uuid.UUID) *Entity {
	return w.Entity(w.byGUID[guid])
}

// mustEntity resolves an id that callers assert is live.
func (w *World) mustEntity(id EntityID) *Entity {
	e := w.Entity(id)
	if e == nil {
		panic(fmt.Sprintf("wargrid: unknown entity id %d", id))
	}
	return e
}

// EntitiesAt returns a copy of the entity ids stacked on one cell.
func (w *World) EntitiesAt(site SiteIndex) []EntityID {
	if site < 0 || int(site) >= len(w.stacks) {
		panic(fmt.Sprintf("wargrid: cell index %d out of range", site))
	}
	return slices.Clone(w.stacks[site])
}

// AddObserver registers an observer for mutation events. Observers are
// not carried into clones; a promoted clone gets its observers
// re-registered by the command layer.
func (w *World) AddObserver(o Observer) {
	if o == nil {
		panic("wargrid: nil observer")
	}
	w.observers = append(w.observers, o)
}

// notify dispatches an event to all observers, synchronously and in
// registration order.
func (w *World) notify(event any) {
	for _, o := range w.observers {
		o.Notify(event)
	}
}

// AttributeGridsChanged reports whether any attribute-grid cell has
// changed since the last RecomputeAttributes.
func (w *World) AttributeGridsChanged() bool {
	return w.attributeGridsChanged
}

// enforce applies an invariant violation: in free-authoring mode it is
// logged and swallowed, otherwise returned to the caller. State is never
// silently corrupted: a returned error means the mutation did not happen.
func (w *World) enforce(err error) error {
	if err == nil {
		return nil
	}
	if w.settings.FreeAuthoring() {
		w.log.Debug("wargrid: invariant suppressed in authoring mode", "err", err)
		return nil
	}
	return err
}

// checkStack verifies that placing a unit owned by owner on site leaves
// the stack single-owner. Only units participate in the stacking rule.
func (w *World) checkStack(site SiteIndex, owner FactionID, self EntityID) error {
	if site == NoSite {
		return nil
	}
	for _, id := range w.stacks[site] {
		o := w.entities[id-1]
		if o == nil || o.id == self || o.kind != KindUnit {
			continue
		}
		if o.owner != owner {
			return invalidTransition("site %d already holds units of faction %d", site, o.owner)
		}
	}
	return nil
}

// validateBounds rejects a site index off the map. NoSite is allowed.
func (w *World) validateBounds(site SiteIndex) {
	if site != NoSite && (site < 0 || int(site) >= w.width*w.height) {
		panic(fmt.Sprintf("wargrid: cell index %d out of range", site))
	}
}

// CreateEntity creates an entity of the given class with the given owner
// and site, wires it into the arena, the owning faction and the cell
// stack, and applies its modifier contributions to the grids.
//
// The new entity's containers alias the class's scenario-default lists
// copy-on-write, so creating many entities of one class shares storage
// until individual entities diverge.
func (w *World) CreateEntity(class ClassID, owner FactionID, site SiteIndex) (*Entity, error) {
	cls := w.catalog.Class(class)
	w.validateBounds(site)
	if err := w.enforce(validatePlacement(cls.Kind, owner, site)); err != nil {
		return nil, err
	}
	if cls.Kind == KindUnit {
		if err := w.enforce(w.checkStack(site, owner, NoEntity)); err != nil {
			return nil, err
		}
	}

	e := &Entity{
		id:                 EntityID(len(w.entities) + 1),
		guid:               uuid.New(),
		class:              class,
		kind:               cls.Kind,
		owner:              owner,
		founder:            owner,
		site:               site,
		attributes:         NewSharedVariableContainer(cls.defaultAttributes),
		attributeModifiers: NewSharedVariableModifierContainer(cls.defaultAttrMods),
		counters:           NewSharedVariableContainer(cls.defaultCounters),
		resources:          NewSharedVariableContainer(cls.defaultResources),
		resourceModifiers:  NewSharedVariableModifierContainer(cls.defaultResMods),
	}
	w.entities = append(w.entities, e)
	w.byGUID[e.guid] = e.id
	if owner != NoFaction {
		w.faction(owner).addEntity(e.id)
	}
	if site != NoSite {
		w.stacks[site] = append(w.stacks[site], e.id)
	}

	w.UpdateModifierMaps(e, Adding)
	w.refreshEntityAttributes(e)
	w.notify(EntityCreatedEvent{Entity: e.id, Class: class})
	return e, nil
}

// RemoveEntity retracts the entity's grid contributions and removes it
// from the arena, its faction and its cell stack.
func (w *World) RemoveEntity(id EntityID) {
	w.disband(w.mustEntity(id), false, 0)
}

// disband removes an entity. Shortfall disbandment carries the deficient
// resource for the event.
func (w *World) disband(e *Entity, shortfall bool, resource VariableID) {
	w.UpdateModifierMaps(e, Retracting)

	if e.site != NoSite {
		stack := w.stacks[e.site]
		for i, id := range stack {
			if id == e.id {
				w.stacks[e.site] = slices.Delete(stack, i, i+1)
				break
			}
		}
	}
	if e.owner != NoFaction {
		w.faction(e.owner).removeEntity(e.id)
	}
	delete(w.byGUID, e.guid)
	w.entities[e.id-1] = nil

	w.notify(EntityDisbandedEvent{
		Entity:    e.id,
		Faction:   e.owner,
		Shortfall: shortfall,
		Resource:  resource,
	})
}

// SetOwner transfers an entity to another faction (or to NoFaction where
// the kind allows it). The entity's contributions are retracted under the
// old owner and reapplied under the new one, so Owner-target entries move
// between grids and Units-target entries swap audiences exactly.
func (w *World) SetOwner(id EntityID, owner FactionID) error {
	e := w.mustEntity(id)
	if e.owner == owner {
		return nil
	}
	if err := w.enforce(validatePlacement(e.kind, owner, e.site)); err != nil {
		return err
	}
	if e.kind == KindUnit {
		if err := w.enforce(w.checkStack(e.site, owner, e.id)); err != nil {
			return err
		}
	}

	w.UpdateModifierMaps(e, Retracting)
	before := e.owner
	if before != NoFaction {
		w.faction(before).removeEntity(e.id)
	}
	e.owner = owner
	if owner != NoFaction {
		w.faction(owner).addEntity(e.id)
	}
	w.UpdateModifierMaps(e, Adding)
	w.refreshEntityAttributes(e)

	w.notify(OwnerChangedEvent{Entity: e.id, Before: before, After: owner})
	return nil
}

// SetSite moves an entity to another cell, places it, or removes it from
// the map (NoSite), with the usual retract-then-reapply pair around the
// move.
func (w *World) SetSite(id EntityID, site SiteIndex) error {
	e := w.mustEntity(id)
	if e.site == site {
		return nil
	}
	w.validateBounds(site)
	if err := w.enforce(validatePlacement(e.kind, e.owner, site)); err != nil {
		return err
	}
	if e.kind == KindUnit {
		if err := w.enforce(w.checkStack(site, e.owner, e.id)); err != nil {
			return err
		}
	}

	w.UpdateModifierMaps(e, Retracting)
	before := e.site
	if before != NoSite {
		stack := w.stacks[before]
		for i, sid := range stack {
			if sid == e.id {
				w.stacks[before] = slices.Delete(stack, i, i+1)
				break
			}
		}
	}
	e.site = site
	if site != NoSite {
		w.stacks[site] = append(w.stacks[site], e.id)
	}
	w.UpdateModifierMaps(e, Adding)
	w.refreshEntityAttributes(e)

	w.notify(SiteChangedEvent{Entity: e.id, Before: before, After: site})
	return nil
}

// SetClass changes an entity's class. The class's kind must be legal for
// the entity's current owner and site. Containers are kept: a class
// change alters the projection (kind, range), not the entity's variables.
func (w *World) SetClass(id EntityID, class ClassID) error {
	e := w.mustEntity(id)
	if e.class == class {
		return nil
	}
	cls := w.catalog.Class(class)
	if err := w.enforce(validatePlacement(cls.Kind, e.owner, e.site)); err != nil {
		return err
	}
	if cls.Kind == KindUnit {
		if err := w.enforce(w.checkStack(e.site, e.owner, e.id)); err != nil {
			return err
		}
	}

	w.UpdateModifierMaps(e, Retracting)
	before := e.class
	e.class = class
	e.kind = cls.Kind
	w.UpdateModifierMaps(e, Adding)
	w.refreshEntityAttributes(e)

	w.notify(ClassChangedEvent{Entity: e.id, Before: before, After: class})
	return nil
}

// SetEntityVariable writes a plain variable on whichever of the entity's
// containers holds it (attributes, resources, counters, in that order).
// The value is clamped; the report follows the clamped result. Writing a
// variable the entity does not carry is a defect and panics.
//
// Plain variable writes never touch the grids: only modifier containers
// project, and those are mutated through SetEntityModifier.
func (w *World) SetEntityVariable(id EntityID, variable VariableID, value int) bool {
	e := w.mustEntity(id)
	var c *VariableContainer
	switch {
	case e.attributes.Has(variable):
		c = e.attributes
	case e.resources.Has(variable):
		c = e.resources
	case e.counters.Has(variable):
		c = e.counters
	default:
		panic(fmt.Sprintf("wargrid: entity %d does not carry variable %d", id, variable))
	}
	if !c.SetValue(variable, value) {
		return false
	}
	w.notify(VariableChangedEvent{Entity: e.id, Variable: variable, Value: c.Value(variable)})
	return true
}

// SetEntityModifier writes a modifier contribution on the entity,
// routing to the attribute or resource modifier container by the
// variable's registered category. The change is wrapped in a
// retract-then-reapply pair so the grids track it exactly. It reports
// whether anything changed; a no-op touches neither grids nor observers.
func (w *World) SetEntityModifier(id EntityID, variable VariableID, target ModifierTarget, value int) bool {
	e := w.mustEntity(id)
	var c *VariableModifierContainer
	switch w.catalog.registry.Definition(variable).Category {
	case CategoryAttribute:
		c = e.attributeModifiers
	case CategoryResource:
		c = e.resourceModifiers
	default:
		panic(fmt.Sprintf("wargrid: counter variable %d cannot be a modifier", variable))
	}
	checkTarget(target)
	if c.Value(variable, target) == value {
		return false
	}

	w.UpdateModifierMaps(e, Retracting)
	c.SetValue(variable, target, value)
	w.UpdateModifierMaps(e, Adding)
	w.refreshEntityAttributes(e)

	w.notify(ModifierChangedEvent{Entity: e.id, Variable: variable, Target: target, Value: value})
	return true
}

// attributeAggregate computes the attribute aggregate currently applicable
// to a unit: its owner's attribute-grid cell plus its own Self attribute
// modifiers. Zero net entries are dropped.
func (w *World) attributeAggregate(e *Entity) map[VariableID]int {
	agg := make(map[VariableID]int)
	if e.kind == KindUnit && e.site != NoSite && e.owner != NoFaction {
		grid := w.faction(e.owner).attributeGrid
		for id, v := range grid.cells[e.site] {
			if v != 0 {
				agg[id] += v
			}
		}
	}
	for _, entry := range e.attributeModifiers.list(TargetSelf) {
		agg[entry.ID] += entry.Value
	}
	for id, v := range agg {
		if v == 0 {
			delete(agg, id)
		}
	}
	return agg
}

// refreshEntityAttributes folds the delta between the unit's current
// attribute aggregate and the aggregate last applied into its attributes
// container, preserving unrelated gameplay writes (damage, experience).
// Only variables the entity actually carries are adjusted, mirroring
// ImportChanges semantics. No-op when nothing changed.
func (w *World) refreshEntityAttributes(e *Entity) {
	if e.kind != KindUnit {
		return
	}
	agg := w.attributeAggregate(e)
	if len(agg) == 0 && len(e.applied) == 0 {
		return
	}
	for id, prev := range e.applied {
		if _, ok := agg[id]; ok {
			continue
		}
		if e.attributes.Has(id) {
			e.attributes.Adjust(id, -prev)
		}
	}
	applied := make(map[VariableID]int, len(agg))
	for id, next := range agg {
		if !e.attributes.Has(id) {
			continue
		}
		if delta := next - e.applied[id]; delta != 0 {
			e.attributes.Adjust(id, delta)
		}
		applied[id] = next
	}
	if len(applied) == 0 {
		applied = nil
	}
	e.applied = applied
}

// RecomputeAttributes recomputes every placed unit's attributes from the
// attribute grids. It is a no-op unless some attribute-grid cell changed
// since the last call; when it runs it must visit all placed units before
// clearing the flag, since one entity's contribution can affect many
// units sharing overlapping cells.
func (w *World) RecomputeAttributes() {
	if !w.attributeGridsChanged {
		return
	}
	for _, e := range w.entities {
		if e == nil || e.kind != KindUnit || e.site == NoSite {
			continue
		}
		w.refreshEntityAttributes(e)
	}
	w.attributeGridsChanged = false
}

// Clone returns a fully independent copy of the world for speculative
// lookahead or undo. The catalog, registry, settings and valuator are
// shared (they are immutable); every mutable structure is copied, with
// the copy-on-write containers sharing leaf storage until either side
// writes. Observers are not carried over.
func (w *World) Clone() *World {
	out := &World{
		id:                    uuid.New(),
		catalog:               w.catalog,
		settings:              w.settings,
		valuator:              w.valuator,
		log:                   w.log,
		width:                 w.width,
		height:                w.height,
		factions:              make([]*Faction, len(w.factions)),
		entities:              make([]*Entity, len(w.entities)),
		byGUID:                maps.Clone(w.byGUID),
		stacks:                make([][]EntityID, len(w.stacks)),
		attributeGridsChanged: w.attributeGridsChanged,
	}
	for i, f := range w.factions {
		out.factions[i] = f.clone()
	}
	for i, e := range w.entities {
		if e != nil {
			out.entities[i] = e.clone()
		}
	}
	for i, stack := range w.stacks {
		if len(stack) > 0 {
			out.stacks[i] = slices.Clone(stack)
		}
	}
	return out
}
