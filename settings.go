package wargrid

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Settings is the player-settings provider injected into the world.
// Keeping it an explicit dependency rather than a process-wide callback
// lets independently cloned worlds (and tests) carry different settings.
type Settings interface {
	// FreeAuthoring reports whether ownership/placement invariant checks
	// are suppressed. Scenario editors enable this to build intermediate
	// states that live play would reject.
	FreeAuthoring() bool

	// DefaultRefundPercent is the share of a unit's build cost refunded
	// on disbandment when its class does not specify one.
	DefaultRefundPercent() int
}

// StaticSettings is a fixed Settings implementation.
type StaticSettings struct {
	Authoring     bool
	RefundPercent int
}

// DefaultSettings returns the settings used when none are injected:
// invariants enforced, 50% build cost refund.
func DefaultSettings() StaticSettings {
	return StaticSettings{RefundPercent: 50}
}

// FreeAuthoring implements Settings.
func (s StaticSettings) FreeAuthoring() bool {
	return s.Authoring
}

// DefaultRefundPercent implements Settings.
func (s StaticSettings) DefaultRefundPercent() int {
	return s.RefundPercent
}

// EnvSettings is a Settings implementation populated from WARGRID_*
// environment variables.
type EnvSettings struct {
	Authoring     bool `env:"WARGRID_FREE_AUTHORING"`
	RefundPercent int  `env:"WARGRID_REFUND_PERCENT" envDefault:"50"`
}

// LoadEnvSettings parses settings from the environment.
func LoadEnvSettings() (*EnvSettings, error) {
	var s EnvSettings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse settings from environment: %w", err)
	}
	return &s, nil
}

// FreeAuthoring implements Settings.
func (s *EnvSettings) FreeAuthoring() bool {
	return s.Authoring
}

// DefaultRefundPercent implements Settings.
func (s *EnvSettings) DefaultRefundPercent() int {
	return s.RefundPercent
}
