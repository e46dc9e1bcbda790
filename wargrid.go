// Package wargrid is the variable/modifier aggregation and copy-on-write
// world-state core of a turn-based grid-strategy simulation.
//
// For every faction and every map cell it maintains aggregated numeric
// modifier totals contributed by many mobile and stationary entities,
// updated incrementally as entities move, change ownership or change
// class (never by full recomputation), while supporting cheap deep
// cloning of the entire mutable state (for speculative lookahead and
// undo) via lazily-forked copy-on-write collections.
//
// # Quick Start
//
// Load a scenario catalog and build a world:
//
//	catalog, err := wargrid.LoadCatalog(data)
//	if err != nil {
//	    return err
//	}
//
//	w := wargrid.NewWorldBuilder().
//	    Map(24, 16).
//	    Catalog(catalog).
//	    Faction("Crimson", wargrid.Coord{X: 2, Y: 3}).
//	    Faction("Azure", wargrid.Coord{X: 20, Y: 12}).
//	    Init()
//
//	infantry, _ := catalog.Lookup("infantry")
//	u, err := w.CreateEntity(infantry, 1, w.SiteAt(wargrid.Coord{X: 2, Y: 3}))
//
// # Mutation
//
// All mutation goes through the world's primitives; each one retracts the
// affected entity's grid contributions before the change, reapplies them
// after, and then notifies observers:
//
//	w.SetSite(u.ID(), w.SiteAt(wargrid.Coord{X: 3, Y: 3}))
//	w.SetOwner(u.ID(), 2)
//	w.SetEntityModifier(u.ID(), gold, wargrid.TargetOwner, -5)
//
// # Speculation
//
// Clone the world, try a line of play, discard on failure:
//
//	spec := w.Clone()
//	spec.BeginTurn(1)
//	// inspect spec, keep or drop it
//
// Cloning is cheap: containers share leaf storage with the original until
// either side writes. The simulation is single-threaded: one
// world instance is mutated at a time, and independently cloned instances
// share no mutable storage after any divergent write.
package wargrid

// Version is the wargrid version.
const Version = "1.0.0"
