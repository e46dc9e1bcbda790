package wargrid

// Direction tells UpdateModifierMaps whether an entity's contributions are
// being added to or retracted from the faction grids.
//
// Every contribution change is an explicit retract-then-reapply pair:
// retract with the old state before a value changes, add with the new
// state after. The grids stay an exact running total that way; there is
// no approximate path and no full recomputation.
type Direction uint8

const (
	// Adding applies the entity's current contributions.
	Adding Direction = iota

	// Retracting subtracts the entity's current contributions.
	Retracting
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	switch d {
	case Adding:
		return "Adding"
	case Retracting:
		return "Retracting"
	default:
		return "Unknown"
	}
}

// localSite computes the cell through which an entity projects its
// modifiers. Placed entities project through their current cell. A
// non-placed upgrade projects through a site derived from its owning
// faction: the faction's designated reference cell when the class has
// map-wide range, else the faction's home site, the latter only while the
// upgrade is still owned by its founding faction. An entity with no local
// site contributes nothing.
func (w *World) localSite(e *Entity) (SiteIndex, bool) {
	if e.site != NoSite {
		return e.site, true
	}
	if e.kind != KindUpgrade || e.owner == NoFaction {
		return NoSite, false
	}
	f := w.faction(e.owner)
	if w.catalog.Class(e.class).ModifierRange == 0 {
		return f.reference, true
	}
	if e.owner == e.founder {
		return f.home, true
	}
	return NoSite, false
}

// UpdateModifierMaps projects the entity's modifier containers into the
// faction grids (dir == Adding) or removes that projection (Retracting).
//
// Routing per target: Owner and OwnerUnits contribute to the owning
// faction's grid at the local cell, OwnerUnitsRanged to the owning
// faction's grid over the class's range; Units and UnitsRanged contribute
// to every faction other than the owner, at the local cell and over the
// range respectively. Self never reaches a grid.
//
// Any change to an attribute-grid cell sets the world's attribute-grids
// flag; resource-grid changes do not. Attribute consumers recompute
// eagerly and globally once per command, resource consumers recompute
// lazily on demand per faction.
func (w *World) UpdateModifierMaps(e *Entity, dir Direction) {
	site, ok := w.localSite(e)
	if !ok {
		return
	}
	radius := w.catalog.Class(e.class).ModifierRange
	for _, f := range w.factions {
		if f.id == e.owner {
			w.projectInto(f, e, site, radius, dir, TargetOwner, TargetOwnerUnits, TargetOwnerUnitsRanged)
		} else {
			w.projectInto(f, e, site, radius, dir, TargetUnits, TargetUnitsRanged)
		}
	}
}

// projectInto applies the entity's contributions for the given targets to
// one faction's grids. The last target listed is the ranged one; the rest
// are local-cell only.
func (w *World) projectInto(f *Faction, e *Entity, site SiteIndex, radius int, dir Direction, locals ...ModifierTarget) {
	ranged := locals[len(locals)-1]
	locals = locals[:len(locals)-1]

	for _, target := range locals {
		if w.foldEntries(f.attributeGrid, e.attributeModifiers.list(target), site, dir) {
			w.attributeGridsChanged = true
		}
		w.foldEntries(f.resourceGrid, e.resourceModifiers.list(target), site, dir)
	}
	if w.broadcastEntries(f.attributeGrid, e.attributeModifiers.list(ranged), site, radius, dir) {
		w.attributeGridsChanged = true
	}
	w.broadcastEntries(f.resourceGrid, e.resourceModifiers.list(ranged), site, radius, dir)
}

// foldEntries folds a modifier list into a single cell, reporting whether
// any total changed.
func (w *World) foldEntries(g *ModifierGrid, entries []ModifierEntry, site SiteIndex, dir Direction) bool {
	changed := false
	for _, entry := range entries {
		if g.fold(site, entry.ID, entry.Value, dir) {
			changed = true
		}
	}
	return changed
}

// broadcastEntries folds a modifier list into the range-broadcast cell
// set: every cell of the grid when radius is zero (zero means map-wide,
// not "no effect"), otherwise exactly the cells within radius grid steps
// of the local site, measured as Chebyshev distance.
func (w *World) broadcastEntries(g *ModifierGrid, entries []ModifierEntry, center SiteIndex, radius int, dir Direction) bool {
	if len(entries) == 0 {
		return false
	}
	changed := false
	if radius == 0 {
		for y := 0; y < w.height; y++ {
			for x := 0; x < w.width; x++ {
				if w.foldEntries(g, entries, SiteIndex(y*w.width+x), dir) {
					changed = true
				}
			}
		}
		return changed
	}
	c := w.CoordOf(center)
	minX, maxX := max(c.X-radius, 0), min(c.X+radius, w.width-1)
	minY, maxY := max(c.Y-radius, 0), min(c.Y+radius, w.height-1)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if w.foldEntries(g, entries, SiteIndex(y*w.width+x), dir) {
				changed = true
			}
		}
	}
	return changed
}
