package wargrid

import (
	"strings"
	"testing"
)

func TestLoadCatalog(t *testing.T) {
	catalog, err := LoadCatalog([]byte(testCatalogYAML))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if catalog.Count() != 7 {
		t.Fatalf("class count = %d, want 7", catalog.Count())
	}
	if catalog.Registry().Count() != 5 {
		t.Fatalf("variable count = %d, want 5", catalog.Registry().Count())
	}

	id, ok := catalog.Lookup("infantry")
	if !ok {
		t.Fatal("infantry not registered")
	}
	cls := catalog.Class(id)
	if cls.Kind != KindUnit || cls.ModifierRange != 1 || cls.Valuation != 10 {
		t.Fatalf("infantry = %+v", cls)
	}
	gold, _ := catalog.Registry().Lookup("Gold")
	if cls.CostOf(gold) != 30 {
		t.Fatalf("infantry gold cost = %d, want 30", cls.CostOf(gold))
	}
	if cls.RefundPercent != -1 {
		t.Fatalf("infantry refund = %d, want -1 (settings default)", cls.RefundPercent)
	}

	// Default lists carry only declared variables, in registry order,
	// with the override values.
	strength, _ := catalog.Registry().Lookup("Strength")
	sight, _ := catalog.Registry().Lookup("Sight")
	attrs := cls.defaultAttributes
	if len(attrs) != 2 || attrs[0].ID != strength || attrs[1].ID != sight {
		t.Fatalf("infantry default attributes = %v", attrs)
	}
	if attrs[0].value != 10 || attrs[1].value != 4 {
		t.Fatalf("infantry default attribute values = %d, %d", attrs[0].value, attrs[1].value)
	}

	// Modifiers route to the attribute or resource list by category.
	if len(cls.defaultResMods[TargetOwner]) != 1 {
		t.Fatalf("infantry owner resource modifiers = %v", cls.defaultResMods[TargetOwner])
	}
	if got := cls.defaultResMods[TargetOwner][0]; got != (ModifierEntry{ID: gold, Value: -5}) {
		t.Fatalf("infantry upkeep entry = %v", got)
	}
	if len(cls.defaultAttrMods[TargetOwner]) != 0 {
		t.Fatal("resource modifier leaked into the attribute list")
	}
}

func TestLoadCatalogVariablePurposes(t *testing.T) {
	catalog, err := LoadCatalog([]byte(testCatalogYAML))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	reg := catalog.Registry()
	gold, _ := reg.Lookup("Gold")
	def := reg.Definition(gold)
	if !def.Purpose.Has(PurposeCost) || !def.Purpose.Has(PurposeUpkeep) {
		t.Fatalf("gold purpose = %v", def.Purpose)
	}
	if def.Category != CategoryResource || def.Maximum != 30000 {
		t.Fatalf("gold definition = %+v", def)
	}
}

func TestLoadCatalogErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			"unknown category",
			"variables:\n  - {name: A, category: bogus}\n",
			"unknown category",
		},
		{
			"inverted range",
			"variables:\n  - {name: A, category: resource, min: 9, max: 1}\n",
			"minimum above maximum",
		},
		{
			"unknown kind",
			"classes:\n  - {name: a, kind: bogus}\n",
			"unknown kind",
		},
		{
			"duplicate class",
			"classes:\n  - {name: a, kind: unit}\n  - {name: a, kind: unit}\n",
			"duplicate class name",
		},
		{
			"unknown cost variable",
			"classes:\n  - {name: a, kind: unit, cost: {Nope: 1}}\n",
			"unknown cost variable",
		},
		{
			"unknown modifier variable",
			"classes:\n  - name: a\n    kind: unit\n    modifiers:\n      - {variable: Nope, target: owner, value: 1}\n",
			"unknown modifier variable",
		},
		{
			"unknown modifier target",
			"variables:\n  - {name: A, category: resource}\nclasses:\n  - name: a\n    kind: unit\n    modifiers:\n      - {variable: A, target: everyone, value: 1}\n",
			"unknown modifier target",
		},
		{
			"counter as modifier",
			"variables:\n  - {name: A, category: counter}\nclasses:\n  - name: a\n    kind: unit\n    modifiers:\n      - {variable: A, target: owner, value: 1}\n",
			"cannot be a modifier",
		},
		{
			"refund out of range",
			"classes:\n  - {name: a, kind: unit, refund: 120}\n",
			"refund outside 0..100",
		},
		{
			"negative range",
			"classes:\n  - {name: a, kind: unit, range: -2}\n",
			"negative modifier range",
		},
		{
			"not yaml",
			"{{{{",
			"parse catalog",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestCatalogUnregisteredClassPanics(t *testing.T) {
	catalog, err := LoadCatalog([]byte(testCatalogYAML))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unregistered class id")
		}
	}()
	catalog.Class(ClassID(catalog.Count()))
}
