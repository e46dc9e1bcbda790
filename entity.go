package wargrid

import (
	"fmt"
	"maps"

	"github.com/google/uuid"
)

// EntityID identifies an entity within one world arena. IDs are dense
// indices assigned at creation and stable for the entity's lifetime,
// including across world clones. The zero value is never assigned.
type EntityID uint32

// NoEntity is the zero EntityID.
const NoEntity EntityID = 0

// FactionID identifies a faction within one world. The zero value means
// "no faction".
type FactionID uint8

// NoFaction is the absent-owner FactionID.
const NoFaction FactionID = 0

// SiteIndex identifies one map cell as y*width+x, or NoSite for entities
// that are not placed.
type SiteIndex int32

// NoSite is the absent-site SiteIndex.
const NoSite SiteIndex = -1

// Coord is a map cell position.
type Coord struct {
	X int
	Y int
}

// Entity is one simulated object: a unit, terrain feature, area effect or
// faction upgrade. It owns five copy-on-write containers and projects its
// modifier containers into the faction grids through the world's
// UpdateModifierMaps.
//
// Entities live in the world's arena and reference their owner and site by
// id/index only; the world resolves both. The guid survives cloning, so
// the external command layer can address "the same" entity in a clone.
type Entity struct {
	id      EntityID
	guid    uuid.UUID
	class   ClassID
	kind    EntityKind
	owner   FactionID
	founder FactionID
	site    SiteIndex

	attributes         *VariableContainer
	attributeModifiers *VariableModifierContainer
	counters           *VariableContainer
	resources          *VariableContainer
	resourceModifiers  *VariableModifierContainer

	// applied caches the attribute aggregate (grid cell + self
	// modifiers) last folded into the attributes container, so a
	// recompute adjusts by the delta and preserves unrelated gameplay
	// writes. Nil when nothing has been applied.
	applied map[VariableID]int
}

// ID returns the entity's arena identifier.
func (e *Entity) ID() EntityID {
	return e.id
}

// GUID returns the entity's stable identifier, shared across clones.
func (e *Entity) GUID() uuid.UUID {
	return e.guid
}

// Class returns the entity's class identifier.
func (e *Entity) Class() ClassID {
	return e.class
}

// Kind returns the entity's placement subtype, cached from its class.
func (e *Entity) Kind() EntityKind {
	return e.kind
}

// Owner returns the owning faction, or NoFaction.
func (e *Entity) Owner() FactionID {
	return e.owner
}

// Founder returns the faction that created the entity. Ranged upgrades
// project through the owner's home site only while owner == founder.
func (e *Entity) Founder() FactionID {
	return e.founder
}

// Site returns the occupied cell index, or NoSite.
func (e *Entity) Site() SiteIndex {
	return e.site
}

// Placed returns true if the entity occupies a map cell.
func (e *Entity) Placed() bool {
	return e.site != NoSite
}

// Attributes returns the entity's attribute container.
func (e *Entity) Attributes() *VariableContainer {
	return e.attributes
}

// AttributeModifiers returns the entity's attribute modifier container.
// Mutate it only through World.SetEntityModifier so the projector observes
// the change.
func (e *Entity) AttributeModifiers() *VariableModifierContainer {
	return e.attributeModifiers
}

// Counters returns the entity's counter container.
func (e *Entity) Counters() *VariableContainer {
	return e.counters
}

// Resources returns the entity's resource container.
func (e *Entity) Resources() *VariableContainer {
	return e.resources
}

// ResourceModifiers returns the entity's resource modifier container.
// Mutate it only through World.SetEntityModifier.
func (e *Entity) ResourceModifiers() *VariableModifierContainer {
	return e.resourceModifiers
}

// clone returns a deep copy of the entity. Containers clone copy-on-write;
// the applied-aggregate cache copies eagerly (it is small and already
// sparse).
func (e *Entity) clone() *Entity {
	out := *e
	out.attributes = e.attributes.Clone()
	out.attributeModifiers = e.attributeModifiers.Clone()
	out.counters = e.counters.Clone()
	out.resources = e.resources.Clone()
	out.resourceModifiers = e.resourceModifiers.Clone()
	if e.applied != nil {
		out.applied = maps.Clone(e.applied)
	}
	return &out
}

// String returns a string representation of the entity for debugging.
func (e *Entity) String() string {
	return fmt.Sprintf("Entity{ID: %d, GUID: %s, Kind: %s, Owner: %d, Site: %d}",
		e.id, e.guid, e.kind, e.owner, e.site)
}

// validatePlacement checks the kind-specific owner/site rules for a
// prospective owner/site pair. Stacking rules need world context and are
// checked separately by the world's mutators.
func validatePlacement(kind EntityKind, owner FactionID, site SiteIndex) error {
	switch kind {
	case KindUnit:
		if owner == NoFaction {
			return invalidTransition("unit requires an owner")
		}
	case KindUpgrade:
		if owner == NoFaction {
			return invalidTransition("upgrade requires an owner")
		}
		if site != NoSite {
			return invalidTransition("upgrade cannot occupy a site")
		}
	case KindTerrain, KindEffect:
		if site == NoSite {
			return invalidTransition("%s requires a site", kind)
		}
	default:
		panic(fmt.Sprintf("wargrid: invalid entity kind %d", kind))
	}
	return nil
}
