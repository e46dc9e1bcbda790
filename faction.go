package wargrid

import (
	"fmt"
	"slices"
)

// Faction is one player side: its resource stockpile, its two aggregate
// modifier grids and the ordered set of entities it owns.
//
// A faction holds entity ids rather than entity pointers; the world arena
// resolves them. The unit order is creation order and is the tie-breaker
// for the shortfall resolver.
type Faction struct {
	id        FactionID
	name      string
	home      SiteIndex
	reference SiteIndex

	resources *VariableContainer

	attributeGrid *ModifierGrid
	resourceGrid  *ModifierGrid

	entities []EntityID

	state TurnState
}

// newFaction creates a faction with grids sized to the map dimensions.
func newFaction(id FactionID, name string, width, height int, home, reference SiteIndex, resources *VariableContainer) *Faction {
	return &Faction{
		id:            id,
		name:          name,
		home:          home,
		reference:     reference,
		resources:     resources,
		attributeGrid: NewModifierGrid(width, height),
		resourceGrid:  NewModifierGrid(width, height),
	}
}

// ID returns the faction identifier.
func (f *Faction) ID() FactionID {
	return f.id
}

// Name returns the faction name.
func (f *Faction) Name() string {
	return f.name
}

// Home returns the faction's home site.
func (f *Faction) Home() SiteIndex {
	return f.home
}

// Reference returns the faction's designated reference cell, through which
// map-wide upgrades project their modifiers.
func (f *Faction) Reference() SiteIndex {
	return f.reference
}

// Resources returns the faction's resource container.
func (f *Faction) Resources() *VariableContainer {
	return f.resources
}

// AttributeGrid returns the faction's aggregate attribute modifier grid.
func (f *Faction) AttributeGrid() *ModifierGrid {
	return f.attributeGrid
}

// ResourceGrid returns the faction's aggregate resource modifier grid.
func (f *Faction) ResourceGrid() *ModifierGrid {
	return f.resourceGrid
}

// TurnState returns the faction's current turn-processing state.
func (f *Faction) TurnState() TurnState {
	return f.state
}

// Entities returns a copy of the faction's owned entity ids in creation
// order.
func (f *Faction) Entities() []EntityID {
	return slices.Clone(f.entities)
}

// addEntity appends an entity id, preserving creation order.
func (f *Faction) addEntity(id EntityID) {
	f.entities = append(f.entities, id)
}

// removeEntity removes an entity id, preserving the order of the rest.
func (f *Faction) removeEntity(id EntityID) {
	for i, eid := range f.entities {
		if eid == id {
			f.entities = slices.Delete(f.entities, i, i+1)
			return
		}
	}
	panic(fmt.Sprintf("wargrid: entity %d not owned by faction %d", id, f.id))
}

// clone returns a deep copy of the faction. The resource container clones
// copy-on-write; the grids copy eagerly, dropping zero entries.
func (f *Faction) clone() *Faction {
	out := *f
	out.resources = f.resources.Clone()
	out.attributeGrid = f.attributeGrid.Clone()
	out.resourceGrid = f.resourceGrid.Clone()
	out.entities = slices.Clone(f.entities)
	return &out
}
