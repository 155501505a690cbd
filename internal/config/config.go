// Package config provides YAML-based configuration loading for the
// simulation tuning, the logical viewport and the hosts.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/axiom-drop/internal/core"
)

// Config is the complete runtime configuration.
type Config struct {
	Viewport   core.Viewport `yaml:"viewport"`
	Simulation SimConfig     `yaml:"simulation"`
	Host       HostConfig    `yaml:"host"`
}

// SimConfig holds the gameplay constants of the simulation.
type SimConfig struct {
	TiltStep           float64       `yaml:"tilt_step"`           // Horizontal nudge per tilt command
	EdgeMargin         float64       `yaml:"edge_margin"`         // Core x is clamped into [margin, W-margin]
	StartY             float64       `yaml:"start_y"`             // Spawn height
	FallMargin         float64       `yaml:"fall_margin"`         // Fail once y exceeds H + margin
	NodeRadius         float64       `yaml:"node_radius"`         // Node collision radius
	StabilizerCharges  int           `yaml:"stabilizer_charges"`  // Charges granted per attempt
	StabilizerDuration time.Duration `yaml:"stabilizer_duration"` // Length of one damping window
	StabilizerDamping  float64       `yaml:"stabilizer_damping"`  // Descent multiplier while damped
	RotationStep       float64       `yaml:"rotation_step"`       // Cosmetic spin per advance
	PulseDuration      time.Duration `yaml:"pulse_duration"`      // Node-hit scale pulse length
}

// HostConfig holds settings for the loops that drive a simulation.
type HostConfig struct {
	TickRate      int           `yaml:"tick_rate"`      // Simulation ticks per second
	BroadcastRate int           `yaml:"broadcast_rate"` // Websocket snapshots per second
	OutcomeDelay  time.Duration `yaml:"outcome_delay"`  // Pause before showing a result screen
}

// Validate checks that the configuration describes a playable game.
func (c Config) Validate() error {
	var errs []error
	if c.Viewport.W <= 0 || c.Viewport.H <= 0 {
		errs = append(errs, fmt.Errorf("viewport must be positive, got %vx%v", c.Viewport.W, c.Viewport.H))
	}
	s := c.Simulation
	if s.TiltStep <= 0 {
		errs = append(errs, errors.New("simulation.tilt_step must be positive"))
	}
	if s.EdgeMargin < 0 || s.EdgeMargin*2 >= core.MinViewportW {
		errs = append(errs, fmt.Errorf("simulation.edge_margin %v out of range", s.EdgeMargin))
	}
	if s.NodeRadius <= 0 {
		errs = append(errs, errors.New("simulation.node_radius must be positive"))
	}
	if s.StabilizerCharges < 0 {
		errs = append(errs, errors.New("simulation.stabilizer_charges must not be negative"))
	}
	if s.StabilizerDamping <= 0 || s.StabilizerDamping > 1 {
		errs = append(errs, fmt.Errorf("simulation.stabilizer_damping %v must be in (0, 1]", s.StabilizerDamping))
	}
	if c.Host.TickRate <= 0 {
		errs = append(errs, errors.New("host.tick_rate must be positive"))
	}
	if c.Host.BroadcastRate <= 0 || c.Host.BroadcastRate > c.Host.TickRate {
		errs = append(errs, fmt.Errorf("host.broadcast_rate %d must be in [1, tick_rate]", c.Host.BroadcastRate))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// RuntimeConfig builds the host runtime config for a terminal of the given size.
func (c Config) RuntimeConfig(screenW, screenH int) core.RuntimeConfig {
	return core.RuntimeConfig{
		ScreenW:  screenW,
		ScreenH:  screenH,
		TickRate: c.Host.TickRate,
		Viewport: c.Viewport.Normalize(),
	}
}
