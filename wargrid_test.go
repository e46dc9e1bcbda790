package wargrid

import (
	"testing"
)

// testCatalogYAML is the balance data shared by the package tests.
const testCatalogYAML = `
variables:
  - name: Strength
    category: attribute
    purpose: [score]
    min: 0
    max: 99
  - name: Sight
    category: attribute
    min: 0
    max: 20
  - name: Gold
    category: resource
    purpose: [cost, upkeep]
    min: 0
    max: 30000
  - name: Fuel
    category: resource
    min: 0
    max: 100
  - name: Kills
    category: counter
    min: 0
    max: 1000
classes:
  - name: infantry
    kind: unit
    range: 1
    valuation: 10
    cost: {Gold: 30}
    attributes: {Strength: 10, Sight: 4}
    resources: {Fuel: 20}
    counters: {Kills: 0}
    modifiers:
      - {variable: Gold, target: owner, value: -5}
  - name: militia
    kind: unit
    valuation: 4
    cost: {Gold: 10}
    attributes: {Strength: 5}
    modifiers:
      - {variable: Gold, target: owner, value: -5}
  - name: banner
    kind: terrain
    modifiers:
      - {variable: Strength, target: owner_units, value: 3}
  - name: jammer
    kind: unit
    range: 1
    valuation: 8
    attributes: {Strength: 6}
    modifiers:
      - {variable: Strength, target: units, value: -1}
      - {variable: Strength, target: units_ranged, value: -2}
  - name: embargo
    kind: upgrade
    range: 0
    modifiers:
      - {variable: Gold, target: units_ranged, value: -1}
  - name: mine
    kind: terrain
    modifiers:
      - {variable: Gold, target: owner, value: 8}
  - name: beacon
    kind: upgrade
    range: 2
    modifiers:
      - {variable: Strength, target: owner_units_ranged, value: 1}
`

// newTestWorld builds a 5x5 two-faction world from the test catalog.
// Crimson (faction 1) is home at (2,3), Azure (faction 2) at (4,4).
func newTestWorld(t *testing.T, opts ...func(*WorldBuilder)) *World {
	t.Helper()
	catalog, err := LoadCatalog([]byte(testCatalogYAML))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	b := NewWorldBuilder().
		Map(5, 5).
		Catalog(catalog).
		Faction("Crimson", Coord{X: 2, Y: 3}).
		Faction("Azure", Coord{X: 4, Y: 4})
	for _, opt := range opts {
		opt(b)
	}
	return b.Init()
}

// classID resolves a class name or fails the test.
func classID(t *testing.T, w *World, name string) ClassID {
	t.Helper()
	id, ok := w.Catalog().Lookup(name)
	if !ok {
		t.Fatalf("unknown class %s", name)
	}
	return id
}

// varID resolves a variable name or fails the test.
func varID(t *testing.T, w *World, name string) VariableID {
	t.Helper()
	id, ok := w.Registry().Lookup(name)
	if !ok {
		t.Fatalf("unknown variable %s", name)
	}
	return id
}

// mustCreate creates an entity or fails the test.
func mustCreate(t *testing.T, w *World, class string, owner FactionID, site SiteIndex) *Entity {
	t.Helper()
	e, err := w.CreateEntity(classID(t, w, class), owner, site)
	if err != nil {
		t.Fatalf("CreateEntity(%s): %v", class, err)
	}
	return e
}

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Fatal("empty version")
	}
}
