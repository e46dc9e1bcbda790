package wargrid

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// EntityKind is the placement subtype of an entity class.
type EntityKind uint8

const (
	// KindUnit is a mobile entity. Units require an owner while alive
	// and may occupy a site.
	KindUnit EntityKind = iota

	// KindTerrain is a static map feature. Terrain requires a site and
	// tolerates an owner.
	KindTerrain

	// KindEffect is a static area effect. Effects require a site and
	// tolerate an owner.
	KindEffect

	// KindUpgrade is a non-placeable faction improvement. Upgrades
	// require an owner and never have a site.
	KindUpgrade

	kindCount
)

// String returns the string representation of the kind.
func (k EntityKind) String() string {
	switch k {
	case KindUnit:
		return "Unit"
	case KindTerrain:
		return "Terrain"
	case KindEffect:
		return "Effect"
	case KindUpgrade:
		return "Upgrade"
	default:
		return "Unknown"
	}
}

// ClassID identifies an entity class within a catalog.
type ClassID uint16

// EntityClass is the resolved, immutable description of one entity class:
// its kind, modifier range, build cost and the scenario-default variable
// and modifier lists new entities of the class alias copy-on-write.
//
// ModifierRange is the broadcast radius in grid steps for the ranged
// modifier targets. Zero means map-wide, not "no effect".
type EntityClass struct {
	Name          string
	Kind          EntityKind
	ModifierRange int
	Valuation     int

	// RefundPercent is the share of the build cost refunded when the
	// unit is disbanded for lack of upkeep. -1 defers to the settings
	// provider's default.
	RefundPercent int

	cost map[VariableID]int

	defaultAttributes []Variable
	defaultCounters   []Variable
	defaultResources  []Variable
	defaultAttrMods   [6][]ModifierEntry
	defaultResMods    [6][]ModifierEntry
}

// Cost returns a copy of the class's build cost per resource kind.
func (c *EntityClass) Cost() map[VariableID]int {
	out := make(map[VariableID]int, len(c.cost))
	for id, v := range c.cost {
		out[id] = v
	}
	return out
}

// CostOf returns the build cost in one resource kind, or zero.
func (c *EntityClass) CostOf(id VariableID) int {
	return c.cost[id]
}

// ClassCatalog resolves class names to ClassIDs and owns the resolved
// EntityClass records. Like the variable registry it is written during
// scenario setup and read-only afterwards, so a world and all of its
// clones share one catalog.
type ClassCatalog struct {
	registry *Registry
	classes  []EntityClass
	byName   map[string]ClassID
}

// NewClassCatalog creates an empty catalog resolving variable names
// against the given registry.
func NewClassCatalog(registry *Registry) *ClassCatalog {
	if registry == nil {
		panic("wargrid: nil registry for class catalog")
	}
	return &ClassCatalog{registry: registry, byName: make(map[string]ClassID)}
}

// Registry returns the variable registry the catalog resolves against.
func (c *ClassCatalog) Registry() *Registry {
	return c.registry
}

// Class returns the resolved class record for the given ID.
// Asking for an unregistered ID is a defect and panics.
func (c *ClassCatalog) Class(id ClassID) *EntityClass {
	if int(id) >= len(c.classes) {
		panic(fmt.Sprintf("wargrid: unregistered class id %d", id))
	}
	return &c.classes[id]
}

// Lookup returns the ClassID registered under the given name.
func (c *ClassCatalog) Lookup(name string) (ClassID, bool) {
	id, ok := c.byName[name]
	return id, ok
}

// Count returns the number of registered classes.
func (c *ClassCatalog) Count() int {
	return len(c.classes)
}

// VariableSpec declares one variable kind in a catalog document.
type VariableSpec struct {
	Name     string   `yaml:"name"`
	Category string   `yaml:"category"`
	Purpose  []string `yaml:"purpose"`
	Minimum  int      `yaml:"min"`
	Maximum  int      `yaml:"max"`
	Initial  int      `yaml:"initial"`
}

// ModifierSpec declares one scenario-default modifier contribution.
type ModifierSpec struct {
	Variable string `yaml:"variable"`
	Target   string `yaml:"target"`
	Value    int    `yaml:"value"`
}

// ClassSpec declares one entity class in a catalog document. Attribute,
// resource and counter maps override the registered initial values for
// variables the class carries.
type ClassSpec struct {
	Name       string         `yaml:"name"`
	Kind       string         `yaml:"kind"`
	Range      int            `yaml:"range"`
	Valuation  int            `yaml:"valuation"`
	Refund     *int           `yaml:"refund"`
	Cost       map[string]int `yaml:"cost"`
	Attributes map[string]int `yaml:"attributes"`
	Resources  map[string]int `yaml:"resources"`
	Counters   map[string]int `yaml:"counters"`
	Modifiers  []ModifierSpec `yaml:"modifiers"`
}

// CatalogFile is the root of a catalog document.
type CatalogFile struct {
	Variables []VariableSpec `yaml:"variables"`
	Classes   []ClassSpec    `yaml:"classes"`
}

// LoadCatalog parses a YAML catalog document, registers its variable
// definitions into a fresh registry and resolves its classes. This is
// balance data, not world-state serialization: the resulting registry and
// catalog are immutable once loaded.
func LoadCatalog(data []byte) (*ClassCatalog, error) {
	var file CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	registry := NewRegistry()
	for _, vs := range file.Variables {
		def, err := vs.definition()
		if err != nil {
			return nil, err
		}
		registry.Register(def)
	}
	catalog := NewClassCatalog(registry)
	for _, cs := range file.Classes {
		if _, err := catalog.Register(cs); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

// definition resolves a VariableSpec into a registry definition.
func (vs VariableSpec) definition() (Definition, error) {
	if vs.Name == "" {
		return Definition{}, fmt.Errorf("variable without a name")
	}
	cat, err := parseCategory(vs.Category)
	if err != nil {
		return Definition{}, fmt.Errorf("variable %s: %w", vs.Name, err)
	}
	var purpose Purpose
	for _, p := range vs.Purpose {
		flag, err := parsePurpose(p)
		if err != nil {
			return Definition{}, fmt.Errorf("variable %s: %w", vs.Name, err)
		}
		purpose |= flag
	}
	if vs.Minimum > vs.Maximum {
		return Definition{}, fmt.Errorf("variable %s: minimum above maximum", vs.Name)
	}
	return Definition{
		Name:     vs.Name,
		Category: cat,
		Purpose:  purpose,
		Minimum:  vs.Minimum,
		Maximum:  vs.Maximum,
		Initial:  vs.Initial,
	}, nil
}

// Register resolves a ClassSpec against the catalog's registry and stores
// the class, returning its ID.
func (c *ClassCatalog) Register(spec ClassSpec) (ClassID, error) {
	if spec.Name == "" {
		return 0, fmt.Errorf("class without a name")
	}
	if _, ok := c.byName[spec.Name]; ok {
		return 0, fmt.Errorf("duplicate class name %s", spec.Name)
	}
	kind, err := parseKind(spec.Kind)
	if err != nil {
		return 0, fmt.Errorf("class %s: %w", spec.Name, err)
	}
	if spec.Range < 0 {
		return 0, fmt.Errorf("class %s: negative modifier range", spec.Name)
	}
	cls := EntityClass{
		Name:          spec.Name,
		Kind:          kind,
		ModifierRange: spec.Range,
		Valuation:     spec.Valuation,
		RefundPercent: -1,
	}
	if spec.Refund != nil {
		if *spec.Refund < 0 || *spec.Refund > 100 {
			return 0, fmt.Errorf("class %s: refund outside 0..100", spec.Name)
		}
		cls.RefundPercent = *spec.Refund
	}

	cls.cost = make(map[VariableID]int, len(spec.Cost))
	for name, amount := range spec.Cost {
		id, ok := c.registry.Lookup(name)
		if !ok {
			return 0, fmt.Errorf("class %s: unknown cost variable %s", spec.Name, name)
		}
		cls.cost[id] = amount
	}

	cls.defaultAttributes = c.defaultList(CategoryAttribute, spec.Attributes)
	cls.defaultResources = c.defaultList(CategoryResource, spec.Resources)
	cls.defaultCounters = c.defaultList(CategoryCounter, spec.Counters)

	for _, ms := range spec.Modifiers {
		id, ok := c.registry.Lookup(ms.Variable)
		if !ok {
			return 0, fmt.Errorf("class %s: unknown modifier variable %s", spec.Name, ms.Variable)
		}
		target, err := parseTarget(ms.Target)
		if err != nil {
			return 0, fmt.Errorf("class %s: %w", spec.Name, err)
		}
		entry := ModifierEntry{ID: id, Value: ms.Value}
		switch c.registry.Definition(id).Category {
		case CategoryAttribute:
			cls.defaultAttrMods[target] = append(cls.defaultAttrMods[target], entry)
		case CategoryResource:
			cls.defaultResMods[target] = append(cls.defaultResMods[target], entry)
		default:
			return 0, fmt.Errorf("class %s: counter variable %s cannot be a modifier", spec.Name, ms.Variable)
		}
	}

	id := ClassID(len(c.classes))
	c.classes = append(c.classes, cls)
	c.byName[spec.Name] = id
	return id, nil
}

// defaultList builds a class's shared default variable list for one
// category: every registered variable of the category named in overrides,
// in registry ID order so the list is deterministic, seeded with the
// override value (clamped). Variables not named are omitted; classes carry
// only the variables their spec declares.
func (c *ClassCatalog) defaultList(cat Category, overrides map[string]int) []Variable {
	if len(overrides) == 0 {
		return nil
	}
	var list []Variable
	for i := 0; i < c.registry.Count(); i++ {
		def := c.registry.Definition(VariableID(i))
		if def.Category != cat {
			continue
		}
		value, ok := overrides[def.Name]
		if !ok {
			continue
		}
		v := c.registry.NewVariable(def.ID)
		v.value = clampValue(value, v.Minimum, v.Maximum)
		list = append(list, v)
	}
	return list
}

func parseCategory(s string) (Category, error) {
	switch s {
	case "attribute":
		return CategoryAttribute, nil
	case "resource":
		return CategoryResource, nil
	case "counter":
		return CategoryCounter, nil
	default:
		return 0, fmt.Errorf("unknown category %q", s)
	}
}

func parsePurpose(s string) (Purpose, error) {
	switch s {
	case "cost":
		return PurposeCost, nil
	case "upkeep":
		return PurposeUpkeep, nil
	case "score":
		return PurposeScore, nil
	case "hidden":
		return PurposeHidden, nil
	default:
		return 0, fmt.Errorf("unknown purpose %q", s)
	}
}

func parseKind(s string) (EntityKind, error) {
	switch s {
	case "unit":
		return KindUnit, nil
	case "terrain":
		return KindTerrain, nil
	case "effect":
		return KindEffect, nil
	case "upgrade":
		return KindUpgrade, nil
	default:
		return 0, fmt.Errorf("unknown kind %q", s)
	}
}

func parseTarget(s string) (ModifierTarget, error) {
	switch s {
	case "self":
		return TargetSelf, nil
	case "owner":
		return TargetOwner, nil
	case "units":
		return TargetUnits, nil
	case "units_ranged":
		return TargetUnitsRanged, nil
	case "owner_units":
		return TargetOwnerUnits, nil
	case "owner_units_ranged":
		return TargetOwnerUnitsRanged, nil
	default:
		return 0, fmt.Errorf("unknown modifier target %q", s)
	}
}
