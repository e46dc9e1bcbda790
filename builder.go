package wargrid

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// WorldBuilder configures a world before initialization.
// Use NewWorldBuilder() and chain configuration methods:
//
//	catalog, err := wargrid.LoadCatalog(data)
//	if err != nil { ... }
//
//	w := wargrid.NewWorldBuilder().
//	    Map(24, 16).
//	    Catalog(catalog).
//	    Faction("Crimson", wargrid.Coord{X: 2, Y: 3}).
//	    Faction("Azure", wargrid.Coord{X: 20, Y: 12}).
//	    Init()
type WorldBuilder struct {
	width     int
	height    int
	catalog   *ClassCatalog
	settings  Settings
	valuator  Valuator
	log       *slog.Logger
	observers []Observer
	factions  []factionSpec
}

type factionSpec struct {
	name      string
	home      Coord
	reference Coord
}

// NewWorldBuilder creates a new world builder.
func NewWorldBuilder() *WorldBuilder {
	return &WorldBuilder{}
}

// Map sets the fixed map dimensions. Grids are sized to them once and
// never resized.
func (b *WorldBuilder) Map(width, height int) *WorldBuilder {
	b.width = width
	b.height = height
	return b
}

// Catalog sets the class catalog (and with it the variable registry).
func (b *WorldBuilder) Catalog(c *ClassCatalog) *WorldBuilder {
	b.catalog = c
	return b
}

// Settings injects the player-settings provider. Defaults to
// DefaultSettings().
func (b *WorldBuilder) Settings(s Settings) *WorldBuilder {
	b.settings = s
	return b
}

// Valuator overrides the contextual unit valuation used by the shortfall
// resolver.
func (b *WorldBuilder) Valuator(v Valuator) *WorldBuilder {
	b.valuator = v
	return b
}

// Logger sets the diagnostic logger. Defaults to slog.Default().
func (b *WorldBuilder) Logger(l *slog.Logger) *WorldBuilder {
	b.log = l
	return b
}

// Observer registers a mutation observer on the initial world.
func (b *WorldBuilder) Observer(o Observer) *WorldBuilder {
	b.observers = append(b.observers, o)
	return b
}

// Faction adds a faction whose reference cell is its home site.
func (b *WorldBuilder) Faction(name string, home Coord) *WorldBuilder {
	return b.FactionWithReference(name, home, home)
}

// FactionWithReference adds a faction with a distinct designated reference
// cell for map-wide upgrade projection.
func (b *WorldBuilder) FactionWithReference(name string, home, reference Coord) *WorldBuilder {
	b.factions = append(b.factions, factionSpec{name: name, home: home, reference: reference})
	return b
}

// Init builds the world. Misconfiguration (no catalog, bad dimensions,
// faction sites off the map) is an authoring defect and panics.
func (b *WorldBuilder) Init() *World {
	if b.catalog == nil {
		panic("wargrid: world builder requires a catalog")
	}
	if b.width <= 0 || b.height <= 0 {
		panic(fmt.Sprintf("wargrid: invalid map dimensions %dx%d", b.width, b.height))
	}
	if len(b.factions) > 254 {
		panic("wargrid: too many factions")
	}
	settings := b.settings
	if settings == nil {
		settings = DefaultSettings()
	}
	valuator := b.valuator
	if valuator == nil {
		valuator = defaultValuator{}
	}
	log := b.log
	if log == nil {
		log = slog.Default()
	}

	w := &World{
		id:       uuid.New(),
		catalog:  b.catalog,
		settings: settings,
		valuator: valuator,
		log:      log,
		width:    b.width,
		height:   b.height,
		byGUID:   make(map[uuid.UUID]EntityID),
		stacks:   make([][]EntityID, b.width*b.height),
	}

	// One shared default list seeds every faction's resource container;
	// containers fork from it copy-on-write as stockpiles diverge.
	defaults := b.factionResourceDefaults()
	for i, spec := range b.factions {
		if !w.InBounds(spec.home) || !w.InBounds(spec.reference) {
			panic(fmt.Sprintf("wargrid: faction %s sites off the map", spec.name))
		}
		w.factions = append(w.factions, newFaction(
			FactionID(i+1),
			spec.name,
			b.width, b.height,
			w.SiteAt(spec.home),
			w.SiteAt(spec.reference),
			NewSharedVariableContainer(defaults),
		))
	}

	w.observers = append(w.observers, b.observers...)
	return w
}

// factionResourceDefaults builds the shared default resource list: every
// registered resource variable at its initial value, in registry order.
func (b *WorldBuilder) factionResourceDefaults() []Variable {
	reg := b.catalog.Registry()
	var defaults []Variable
	for i := 0; i < reg.Count(); i++ {
		def := reg.Definition(VariableID(i))
		if def.Category == CategoryResource {
			defaults = append(defaults, reg.NewVariable(def.ID))
		}
	}
	return defaults
}
