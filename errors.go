package wargrid

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when an owner or site assignment would
// violate the placement invariants: a live unit without an owner, mixed
// ownership on one stack, an upgrade with a site, or terrain/effects
// without one.
//
// Callers can test for it with errors.Is. The returned error always wraps
// ErrInvalidTransition with context describing the rejected assignment.
//
// Invariant checks are suppressed entirely when the injected Settings
// provider reports free-authoring mode; scenario editors rely on that to
// build intermediate states that would otherwise be rejected.
var ErrInvalidTransition = errors.New("invalid owner/site transition")

// invalidTransition wraps ErrInvalidTransition with a formatted reason.
func invalidTransition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTransition, fmt.Sprintf(format, args...))
}
