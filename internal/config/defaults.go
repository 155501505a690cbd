package config

import (
	_ "embed"
	"time"

	"github.com/vovakirdan/axiom-drop/internal/core"
)

//go:embed defaults/axiomdrop.yaml
var defaultYAML []byte

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Viewport:   core.Viewport{W: 390, H: 844},
		Simulation: DefaultSimConfig(),
		Host: HostConfig{
			TickRate:      60,
			BroadcastRate: 30,
			OutcomeDelay:  time.Second,
		},
	}
}

// DefaultSimConfig returns the stock gameplay constants.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		TiltStep:           20,
		EdgeMargin:         50,
		StartY:             100,
		FallMargin:         100,
		NodeRadius:         55, // core visual ~40, node ~12; 55 makes overlap reliable
		StabilizerCharges:  3,
		StabilizerDuration: 2 * time.Second,
		StabilizerDamping:  0.3,
		RotationStep:       0.05,
		PulseDuration:      200 * time.Millisecond,
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
