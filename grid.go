package wargrid

import (
	"fmt"
)

// ModifierGrid is one dense width×height array of sparse variable-total
// maps, owned by a faction. Each cell holds the exact running sum of all
// entities' currently active contributions to that cell under the
// projection rule; a nil cell and a missing key both mean zero.
//
// Grids are sized once at faction creation to the fixed map dimensions and
// never resized. Zero-valued entries may linger after retraction; they
// are equivalent to a missing entry and are dropped when the grid is
// cloned.
type ModifierGrid struct {
	width  int
	height int
	cells  []map[VariableID]int
}

// NewModifierGrid creates an empty grid of the given dimensions.
// Non-positive dimensions are a defect and panic.
func NewModifierGrid(width, height int) *ModifierGrid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("wargrid: invalid grid dimensions %dx%d", width, height))
	}
	return &ModifierGrid{
		width:  width,
		height: height,
		cells:  make([]map[VariableID]int, width*height),
	}
}

// Width returns the grid width in cells.
func (g *ModifierGrid) Width() int {
	return g.width
}

// Height returns the grid height in cells.
func (g *ModifierGrid) Height() int {
	return g.height
}

// checkIndex panics on an out-of-range cell index.
func (g *ModifierGrid) checkIndex(idx SiteIndex) {
	if idx < 0 || int(idx) >= len(g.cells) {
		panic(fmt.Sprintf("wargrid: grid cell index %d out of range", idx))
	}
}

// Value returns the aggregated total for one variable kind at one cell.
// A missing entry is zero.
func (g *ModifierGrid) Value(x, y int, id VariableID) int {
	return g.ValueAt(SiteIndex(y*g.width+x), id)
}

// ValueAt is Value addressed by cell index.
func (g *ModifierGrid) ValueAt(idx SiteIndex, id VariableID) int {
	g.checkIndex(idx)
	return g.cells[idx][id]
}

// Cell returns a copy of the sparse totals at one cell, omitting
// zero-valued entries. The copy is safe to hold across mutations.
func (g *ModifierGrid) Cell(x, y int) map[VariableID]int {
	idx := SiteIndex(y*g.width + x)
	g.checkIndex(idx)
	out := make(map[VariableID]int, len(g.cells[idx]))
	for id, v := range g.cells[idx] {
		if v != 0 {
			out[id] = v
		}
	}
	return out
}

// fold applies one contribution step to a cell: the value is added when
// adding and subtracted when retracting, creating the key if absent. An
// absent key reads as zero either way. Retraction cannot demand a present
// key: cloning drops net-zero entries, so after a clone a dropped zero and
// a never-added key are indistinguishable.
//
// It reports whether the cell's total actually changed (a zero value is a
// no-op).
func (g *ModifierGrid) fold(idx SiteIndex, id VariableID, value int, dir Direction) bool {
	g.checkIndex(idx)
	if value == 0 {
		return false
	}
	cell := g.cells[idx]
	if cell == nil {
		cell = make(map[VariableID]int)
		g.cells[idx] = cell
	}
	if dir == Retracting {
		cell[id] -= value
		return true
	}
	cell[id] += value
	return true
}

// Clone returns a deep copy of the grid. Every cell's sparse map is
// copied, dropping entries whose net value is exactly zero, which keeps
// clones sparse and cheap.
func (g *ModifierGrid) Clone() *ModifierGrid {
	out := &ModifierGrid{
		width:  g.width,
		height: g.height,
		cells:  make([]map[VariableID]int, len(g.cells)),
	}
	for i, cell := range g.cells {
		var copied map[VariableID]int
		for id, v := range cell {
			if v == 0 {
				continue
			}
			if copied == nil {
				copied = make(map[VariableID]int, len(cell))
			}
			copied[id] = v
		}
		out.cells[i] = copied
	}
	return out
}
