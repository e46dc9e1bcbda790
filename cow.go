package wargrid

// cowState is the explicit shared/owned tag used by every copy-on-write
// container in this package.
//
// A container whose backing storage is cowShared may be aliased by any
// number of clones (or by an immutable scenario-default list) and must not
// be written through. The first mutating call forks a private copy of the
// backing storage and promotes the container to cowOwned; every other
// referencing container is left untouched.
//
// Cloning always demotes both sides to cowShared, even a container that was
// previously owned: after Clone() neither side knows which of the two will
// write first, so neither may treat the storage as private.
//
// The world state is cloned on every speculative move (AI lookahead, undo),
// and the large majority of entities never change most of their variables
// per clone. Keeping the tag explicit rather than an implicit read-only
// flag makes the fork points auditable: grep for promote calls.
type cowState uint8

const (
	// cowShared marks backing storage that may be aliased elsewhere.
	cowShared cowState = iota

	// cowOwned marks backing storage private to one container.
	cowOwned
)

// String returns the string representation of the state.
func (s cowState) String() string {
	switch s {
	case cowShared:
		return "Shared"
	case cowOwned:
		return "Owned"
	default:
		return "Unknown"
	}
}
