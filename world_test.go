package wargrid

import (
	"errors"
	"testing"
)

func TestCreateEntityWiresWorld(t *testing.T) {
	w := newTestWorld(t)
	home := w.SiteAt(Coord{X: 2, Y: 3})
	u := mustCreate(t, w, "infantry", 1, home)

	if got := w.Entity(u.ID()); got != u {
		t.Fatal("arena lookup did not return the entity")
	}
	if got := w.EntityByGUID(u.GUID()); got != u {
		t.Fatal("guid lookup did not return the entity")
	}
	stack := w.EntitiesAt(home)
	if len(stack) != 1 || stack[0] != u.ID() {
		t.Fatalf("stack = %v", stack)
	}
	owned := w.Faction(1).Entities()
	if len(owned) != 1 || owned[0] != u.ID() {
		t.Fatalf("faction entities = %v", owned)
	}
	if u.Founder() != 1 || u.Kind() != KindUnit {
		t.Fatalf("entity = %s", u)
	}

	// Class defaults seed the containers.
	if got := u.Attributes().Value(varID(t, w, "Strength")); got != 10 {
		t.Fatalf("strength = %d, want 10", got)
	}
	if got := u.Resources().Value(varID(t, w, "Fuel")); got != 20 {
		t.Fatalf("fuel = %d, want 20", got)
	}
}

func TestCreateEntityInvariants(t *testing.T) {
	w := newTestWorld(t)
	home := w.SiteAt(Coord{X: 2, Y: 3})
	mustCreate(t, w, "infantry", 1, home)

	tests := []struct {
		name  string
		class string
		owner FactionID
		site  SiteIndex
	}{
		{"unit without owner", "infantry", NoFaction, home},
		{"upgrade with site", "embargo", 1, home},
		{"upgrade without owner", "embargo", NoFaction, NoSite},
		{"terrain without site", "banner", 1, NoSite},
		{"enemy unit on occupied cell", "militia", 2, home},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.CreateEntity(classID(t, w, tt.class), tt.owner, tt.site)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("err = %v, want ErrInvalidTransition", err)
			}
		})
	}

	// Terrain on the occupied cell is fine: only units stack-conflict.
	mustCreate(t, w, "banner", 2, home)
}

func TestAuthoringModeSuppressesInvariants(t *testing.T) {
	w := newTestWorld(t, func(b *WorldBuilder) {
		b.Settings(StaticSettings{Authoring: true, RefundPercent: 50})
	})
	home := w.SiteAt(Coord{X: 2, Y: 3})
	mustCreate(t, w, "infantry", 1, home)

	// Violations that live play rejects go through while authoring.
	if _, err := w.CreateEntity(classID(t, w, "militia"), 2, home); err != nil {
		t.Fatalf("enemy stack while authoring: %v", err)
	}
	if _, err := w.CreateEntity(classID(t, w, "infantry"), NoFaction, NoSite); err != nil {
		t.Fatalf("ownerless unit while authoring: %v", err)
	}
}

func TestRemoveEntityRetractsEverything(t *testing.T) {
	w := newTestWorld(t)
	gold := varID(t, w, "Gold")
	home := w.SiteAt(Coord{X: 2, Y: 3})
	u := mustCreate(t, w, "infantry", 1, home)
	guid := u.GUID()

	w.RemoveEntity(u.ID())

	if w.Entity(u.ID()) != nil || w.EntityByGUID(guid) != nil {
		t.Fatal("removed entity still resolvable")
	}
	if len(w.EntitiesAt(home)) != 0 {
		t.Fatal("removed entity still stacked")
	}
	if len(w.Faction(1).Entities()) != 0 {
		t.Fatal("removed entity still owned")
	}
	if got := w.Faction(1).ResourceGrid().ValueAt(home, gold); got != 0 {
		t.Fatalf("upkeep left on grid after removal: %d", got)
	}
}

func TestSetEntityVariableRoutesAndClamps(t *testing.T) {
	w := newTestWorld(t)
	strength := varID(t, w, "Strength")
	kills := varID(t, w, "Kills")
	u := mustCreate(t, w, "infantry", 1, w.SiteAt(Coord{X: 2, Y: 3}))

	if !w.SetEntityVariable(u.ID(), strength, 150) {
		t.Fatal("write not reported as change")
	}
	if got := u.Attributes().Value(strength); got != 99 {
		t.Fatalf("strength = %d, want clamped 99", got)
	}
	if !w.SetEntityVariable(u.ID(), kills, 2) {
		t.Fatal("counter write not reported as change")
	}
	if got := u.Counters().Value(kills); got != 2 {
		t.Fatalf("kills = %d, want 2", got)
	}
	// Plain variable writes never touch the grids.
	if w.AttributeGridsChanged() {
		t.Fatal("plain variable write set the attribute-grids flag")
	}
}

func TestSetEntityVariableAbsentPanics(t *testing.T) {
	w := newTestWorld(t)
	gold := varID(t, w, "Gold")
	u := mustCreate(t, w, "militia", 1, w.SiteAt(Coord{X: 2, Y: 3}))
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on a variable the entity does not carry")
		}
	}()
	w.SetEntityVariable(u.ID(), gold, 1)
}

func TestSetEntityModifierCounterPanics(t *testing.T) {
	w := newTestWorld(t)
	kills := varID(t, w, "Kills")
	u := mustCreate(t, w, "infantry", 1, w.SiteAt(Coord{X: 2, Y: 3}))
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on a counter modifier")
		}
	}()
	w.SetEntityModifier(u.ID(), kills, TargetOwner, 1)
}

func TestSelfModifierFoldsIntoAttributes(t *testing.T) {
	w := newTestWorld(t)
	strength := varID(t, w, "Strength")
	u := mustCreate(t, w, "infantry", 1, w.SiteAt(Coord{X: 2, Y: 3}))

	w.SetEntityModifier(u.ID(), strength, TargetSelf, 5)
	if got := u.Attributes().Value(strength); got != 15 {
		t.Fatalf("strength = %d, want 15", got)
	}
	// Self entries stay off the grids.
	if w.AttributeGridsChanged() {
		t.Fatal("self modifier set the attribute-grids flag")
	}

	w.SetEntityModifier(u.ID(), strength, TargetSelf, 0)
	if got := u.Attributes().Value(strength); got != 10 {
		t.Fatalf("strength after clearing = %d, want 10", got)
	}
}

func TestRecomputeAttributesFromGrid(t *testing.T) {
	w := newTestWorld(t)
	strength := varID(t, w, "Strength")
	home := w.SiteAt(Coord{X: 2, Y: 3})
	u := mustCreate(t, w, "infantry", 1, home)

	banner := mustCreate(t, w, "banner", 1, home)
	// The banner changed the grid, but already-placed units refresh on the
	// next recompute, not immediately.
	if got := u.Attributes().Value(strength); got != 10 {
		t.Fatalf("strength before recompute = %d, want 10", got)
	}
	if !w.AttributeGridsChanged() {
		t.Fatal("banner did not set the attribute-grids flag")
	}

	w.RecomputeAttributes()
	if got := u.Attributes().Value(strength); got != 13 {
		t.Fatalf("strength after recompute = %d, want 13", got)
	}
	if w.AttributeGridsChanged() {
		t.Fatal("recompute did not clear the flag")
	}

	// Removing the aura restores the base value on the next recompute.
	w.RemoveEntity(banner.ID())
	w.RecomputeAttributes()
	if got := u.Attributes().Value(strength); got != 10 {
		t.Fatalf("strength after aura removal = %d, want 10", got)
	}
}

func TestRecomputePreservesGameplayWrites(t *testing.T) {
	w := newTestWorld(t)
	strength := varID(t, w, "Strength")
	home := w.SiteAt(Coord{X: 2, Y: 3})
	u := mustCreate(t, w, "infantry", 1, home)

	// Battle damage knocks strength down before the aura appears.
	w.SetEntityVariable(u.ID(), strength, 7)
	mustCreate(t, w, "banner", 1, home)
	w.RecomputeAttributes()

	// The aura folds in as a delta on top of the damaged value.
	if got := u.Attributes().Value(strength); got != 10 {
		t.Fatalf("strength = %d, want damaged 7 + aura 3", got)
	}
}

func TestUnitEnteringAuraRefreshesImmediately(t *testing.T) {
	w := newTestWorld(t)
	strength := varID(t, w, "Strength")
	home := w.SiteAt(Coord{X: 2, Y: 3})
	mustCreate(t, w, "banner", 1, home)
	w.RecomputeAttributes()

	u := mustCreate(t, w, "infantry", 1, w.SiteAt(Coord{X: 0, Y: 0}))
	if got := u.Attributes().Value(strength); got != 10 {
		t.Fatalf("strength off the aura = %d, want 10", got)
	}
	if err := w.SetSite(u.ID(), home); err != nil {
		t.Fatalf("SetSite: %v", err)
	}
	if got := u.Attributes().Value(strength); got != 13 {
		t.Fatalf("strength on the aura = %d, want 13", got)
	}
	if err := w.SetSite(u.ID(), w.SiteAt(Coord{X: 0, Y: 0})); err != nil {
		t.Fatalf("SetSite back: %v", err)
	}
	if got := u.Attributes().Value(strength); got != 10 {
		t.Fatalf("strength after leaving = %d, want 10", got)
	}
}

func TestObserverEvents(t *testing.T) {
	w := newTestWorld(t)
	strength := varID(t, w, "Strength")
	var events []any
	w.AddObserver(ObserverFunc(func(event any) {
		events = append(events, event)
	}))

	u := mustCreate(t, w, "infantry", 1, w.SiteAt(Coord{X: 2, Y: 3}))
	w.SetEntityVariable(u.ID(), strength, 12)
	// No-op mutations dispatch nothing.
	w.SetEntityVariable(u.ID(), strength, 12)
	if err := w.SetSite(u.ID(), u.Site()); err != nil {
		t.Fatalf("no-op SetSite: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("events = %v", events)
	}
	if _, ok := events[0].(EntityCreatedEvent); !ok {
		t.Fatalf("events[0] = %T, want EntityCreatedEvent", events[0])
	}
	changed, ok := events[1].(VariableChangedEvent)
	if !ok || changed.Value != 12 || changed.Entity != u.ID() {
		t.Fatalf("events[1] = %+v", events[1])
	}
}

func TestCloneIndependence(t *testing.T) {
	w := newTestWorld(t)
	gold := varID(t, w, "Gold")
	home := w.SiteAt(Coord{X: 2, Y: 3})
	u := mustCreate(t, w, "infantry", 1, home)
	w.Faction(1).Resources().SetValue(gold, 100)

	clone := w.Clone()
	if clone.ID() == w.ID() {
		t.Fatal("clone shares the world id")
	}
	cu := clone.EntityByGUID(u.GUID())
	if cu == nil || cu.ID() != u.ID() {
		t.Fatal("entity not addressable in the clone")
	}

	// Divergent play in the clone leaves the original untouched.
	target := clone.SiteAt(Coord{X: 1, Y: 1})
	if err := clone.SetSite(cu.ID(), target); err != nil {
		t.Fatalf("SetSite in clone: %v", err)
	}
	clone.Faction(1).Resources().SetValue(gold, 1)
	if err := clone.BeginTurn(1); err != nil {
		t.Fatalf("BeginTurn in clone: %v", err)
	}

	if u.Site() != home {
		t.Fatal("clone mutation moved the original entity")
	}
	if got := w.Faction(1).Resources().Value(gold); got != 100 {
		t.Fatalf("original gold = %d, want 100", got)
	}
	if got := w.Faction(1).ResourceGrid().ValueAt(home, gold); got != -5 {
		t.Fatalf("original grid = %d, want -5", got)
	}
	if got := w.Faction(1).TurnState(); got != TurnIdle {
		t.Fatalf("original state = %s, want Idle", got)
	}
}

func TestCloneSharesUntouchedStorage(t *testing.T) {
	w := newTestWorld(t)
	strength := varID(t, w, "Strength")
	ids := make([]EntityID, 1000)
	for i := range ids {
		ids[i] = mustCreate(t, w, "militia", 1, NoSite).ID()
	}

	clone := w.Clone()
	clone.SetEntityVariable(ids[0], strength, 9)

	// Only the written entity forked; the other 999 still alias the
	// original's storage (which itself aliases the class default list).
	if &w.Entity(ids[0]).attributes.vars[0] == &clone.Entity(ids[0]).attributes.vars[0] {
		t.Fatal("written entity still shares storage")
	}
	for _, id := range ids[1:] {
		if &w.Entity(id).attributes.vars[0] != &clone.Entity(id).attributes.vars[0] {
			t.Fatalf("untouched entity %d forked its storage", id)
		}
	}
	if got := w.Entity(ids[0]).Attributes().Value(strength); got != 5 {
		t.Fatalf("original value = %d, want 5", got)
	}
}

func TestCloneRetractsCancelledContributions(t *testing.T) {
	w := newTestWorld(t)
	sight := varID(t, w, "Sight")
	home := w.SiteAt(Coord{X: 2, Y: 3})
	a := mustCreate(t, w, "militia", 1, home)
	b := mustCreate(t, w, "militia", 1, home)
	w.SetEntityModifier(a.ID(), sight, TargetUnits, 1)
	w.SetEntityModifier(b.ID(), sight, TargetUnits, -1)

	// The two contributions cancel at the home cell, so the clone drops
	// that grid entry entirely. Moving one contributor afterwards retracts
	// a key the clone never held; the cell must split back into -1/+1
	// instead of failing.
	clone := w.Clone()
	ca := clone.EntityByGUID(a.GUID())
	target := clone.SiteAt(Coord{X: 1, Y: 1})
	if err := clone.SetSite(ca.ID(), target); err != nil {
		t.Fatalf("SetSite in clone: %v", err)
	}
	azure := clone.Faction(2).AttributeGrid()
	if got := azure.ValueAt(home, sight); got != -1 {
		t.Fatalf("old cell = %d, want -1", got)
	}
	if got := azure.ValueAt(target, sight); got != 1 {
		t.Fatalf("new cell = %d, want 1", got)
	}
	if got := w.Faction(2).AttributeGrid().ValueAt(home, sight); got != 0 {
		t.Fatalf("original cell = %d, want 0", got)
	}
	if got := b.AttributeModifiers().Value(sight, TargetUnits); got != -1 {
		t.Fatalf("original contributor entry = %d, want -1", got)
	}
}

func TestCloneDropsObservers(t *testing.T) {
	w := newTestWorld(t)
	calls := 0
	w.AddObserver(ObserverFunc(func(any) { calls++ }))

	clone := w.Clone()
	mustCreate(t, clone, "infantry", 1, clone.SiteAt(Coord{X: 2, Y: 3}))
	if calls != 0 {
		t.Fatalf("observer called %d times through the clone", calls)
	}

	mustCreate(t, w, "infantry", 1, w.SiteAt(Coord{X: 2, Y: 3}))
	if calls != 1 {
		t.Fatalf("observer called %d times through the original", calls)
	}
}

func TestSiteAtOutOfBoundsPanics(t *testing.T) {
	w := newTestWorld(t)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on out-of-bounds coordinate")
		}
	}()
	w.SiteAt(Coord{X: 5, Y: 0})
}

func TestCoordRoundTrip(t *testing.T) {
	w := newTestWorld(t)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			c := Coord{X: x, Y: y}
			if got := w.CoordOf(w.SiteAt(c)); got != c {
				t.Fatalf("round trip %v -> %v", c, got)
			}
		}
	}
}
