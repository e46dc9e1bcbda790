package wargrid

// Bitmask is a 256-bit presence mask covering the full VariableID range.
// Containers use it for O(1) membership checks alongside their ordered
// variable slices. Variables are never removed from a container, so the
// mask only ever gains bits.
type Bitmask [4]uint64

// Set sets the bit at the given index.
func (m *Bitmask) Set(id VariableID) {
	m[id/64] |= 1 << (id % 64)
}

// Has returns true if the bit at the given index is set.
func (m *Bitmask) Has(id VariableID) bool {
	return m[id/64]&(1<<(id%64)) != 0
}
