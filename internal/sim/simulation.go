// Package sim implements the falling-core gameplay simulation.
//
// A Simulation is single-writer: it holds no locks, and every call must come
// from the one goroutine that drives it (a Bubble Tea Update loop or a
// websocket session actor). Timing uses wall-clock deltas; there is no
// fixed-step accumulator, so frame-rate jitter scales descent per tick.
package sim

import (
	"math"
	"sort"
	"time"

	"github.com/vovakirdan/axiom-drop/internal/config"
	"github.com/vovakirdan/axiom-drop/internal/core"
	"github.com/vovakirdan/axiom-drop/internal/level"
)

// Cosmetic values for the core.
const (
	baseGlow      = 1.0
	baseScale     = 1.0
	completeGlow  = 1.5
	completeScale = 1.2
	failGlow      = 0.3
	pulseScale    = 1.15
)

// Simulation owns the mutable state of one play session.
type Simulation struct {
	cfg   config.SimConfig
	vp    core.Viewport
	clock Clock

	level *level.Level
	state GameState

	position core.Point
	previous core.Point
	rotation float64
	glow     float64
	scale    float64

	score           int
	stabilizers     int
	stabilizerUntil time.Time // zero when no window is active
	hitNodes        map[int]struct{}

	lastUpdate time.Time
	pausedAt   time.Time
	playTime   time.Duration
}

// New creates an idle simulation. A nil clock uses the system clock.
func New(cfg config.SimConfig, vp core.Viewport, clock Clock) *Simulation {
	if clock == nil {
		clock = SystemClock{}
	}
	s := &Simulation{
		cfg:   cfg,
		vp:    vp.Normalize(),
		clock: clock,
	}
	s.Reset()
	return s
}

// Start begins a new attempt at lvl. A level whose node positions and types
// differ in length is refused with level.ErrGeometryMismatch and the session
// is left untouched.
func (s *Simulation) Start(lvl level.Level) error {
	if err := lvl.Validate(); err != nil {
		return err
	}

	s.level = &lvl
	s.state = StatePlaying
	s.score = 0
	s.stabilizers = s.cfg.StabilizerCharges
	s.stabilizerUntil = time.Time{}
	s.hitNodes = make(map[int]struct{}, len(lvl.NodePositions))
	s.resetCosmetics()
	s.position = core.Pt(s.vp.CenterX(), s.cfg.StartY)
	s.previous = s.position
	s.lastUpdate = s.clock.Now()
	s.pausedAt = time.Time{}
	s.playTime = 0
	return nil
}

// Tick returns the seconds elapsed since the previous tick and records now.
func (s *Simulation) Tick(now time.Time) float64 {
	dt := now.Sub(s.lastUpdate).Seconds()
	s.lastUpdate = now
	return dt
}

// Step ticks against the simulation clock and advances by the elapsed time.
func (s *Simulation) Step() StepResult {
	return s.Advance(s.Tick(s.clock.Now()))
}

// Advance moves the core down by dt seconds of descent and resolves
// collisions. It does nothing unless the session is playing.
func (s *Simulation) Advance(dt float64) StepResult {
	var res StepResult
	if s.state != StatePlaying {
		return res
	}

	multiplier := 1.0
	if !s.stabilizerUntil.IsZero() && s.clock.Now().Before(s.stabilizerUntil) {
		multiplier = s.cfg.StabilizerDamping
	} else {
		s.stabilizerUntil = time.Time{}
	}

	s.previous = s.position
	s.position.Y += s.level.DescentSpeed * dt * multiplier
	s.rotation += s.cfg.RotationStep
	s.position.X = s.clampX(s.position.X)
	if s.position.Y < 0 {
		s.position.Y = 0
	}
	if dt > 0 {
		s.playTime += time.Duration(math.Round(dt * float64(time.Second)))
	}

	if s.position.Y > s.vp.H+s.cfg.FallMargin {
		s.finish(&res, StateFailed, CauseFell)
		return res
	}

	s.resolveCollisions(&res)
	return res
}

// ApplyTilt nudges the core one step sideways, clamped to the play field.
func (s *Simulation) ApplyTilt(dir Direction) {
	if s.state != StatePlaying {
		return
	}
	step := s.cfg.TiltStep
	if dir == Left {
		step = -step
	}
	s.position.X = s.clampX(s.position.X + step)
}

// ActivateStabilizer spends a charge to damp descent for the configured window.
func (s *Simulation) ActivateStabilizer() {
	if s.state != StatePlaying || s.stabilizers <= 0 {
		return
	}
	s.stabilizers--
	s.stabilizerUntil = s.clock.Now().Add(s.cfg.StabilizerDuration)
}

// Pause freezes a playing session.
func (s *Simulation) Pause() {
	if s.state != StatePlaying {
		return
	}
	s.state = StatePaused
	s.pausedAt = s.clock.Now()
}

// Resume continues a paused session. Time spent paused does not count
// toward descent or the stabilizer window.
func (s *Simulation) Resume() {
	if s.state != StatePaused {
		return
	}
	now := s.clock.Now()
	if !s.stabilizerUntil.IsZero() {
		s.stabilizerUntil = s.stabilizerUntil.Add(now.Sub(s.pausedAt))
	}
	s.pausedAt = time.Time{}
	s.lastUpdate = now
	s.state = StatePlaying
}

// EndPulse reverts the node-hit scale pulse if the session is still playing.
func (s *Simulation) EndPulse() {
	if s.state == StatePlaying {
		s.scale = baseScale
	}
}

// Reset returns the session to idle and clears the attempt.
func (s *Simulation) Reset() {
	s.level = nil
	s.state = StateIdle
	s.score = 0
	s.stabilizers = s.cfg.StabilizerCharges
	s.stabilizerUntil = time.Time{}
	s.hitNodes = nil
	s.position = core.Point{}
	s.previous = core.Point{}
	s.resetCosmetics()
	s.pausedAt = time.Time{}
	s.playTime = 0
}

// Apply maps a host action onto the simulation. It reports whether the
// action is one the simulation handles.
func (s *Simulation) Apply(a core.Action) bool {
	switch a {
	case core.ActionTiltLeft:
		s.ApplyTilt(Left)
	case core.ActionTiltRight:
		s.ApplyTilt(Right)
	case core.ActionStabilize:
		s.ActivateStabilizer()
	case core.ActionPause:
		if s.state == StatePaused {
			s.Resume()
		} else {
			s.Pause()
		}
	default:
		return false
	}
	return true
}

func (s *Simulation) finish(res *StepResult, state GameState, cause Cause) {
	s.state = state
	switch state {
	case StateCompleted:
		s.glow = completeGlow
		s.scale = completeScale
	case StateFailed:
		if cause == CauseDestabilizer {
			s.glow = failGlow
		}
	}
	res.Outcome = &Outcome{State: state, Cause: cause, Score: s.score}
}

func (s *Simulation) clampX(x float64) float64 {
	return core.ClampF(x, s.cfg.EdgeMargin, s.vp.W-s.cfg.EdgeMargin)
}

func (s *Simulation) resetCosmetics() {
	s.rotation = 0
	s.glow = baseGlow
	s.scale = baseScale
}

// State returns the current phase.
func (s *Simulation) State() GameState { return s.state }

// Level returns the level being played, or nil when idle.
func (s *Simulation) Level() *level.Level { return s.level }

// Viewport returns the normalized play-field size.
func (s *Simulation) Viewport() core.Viewport { return s.vp }

// Position returns the core position.
func (s *Simulation) Position() core.Point { return s.position }

// Score returns the points collected this attempt.
func (s *Simulation) Score() int { return s.score }

// Stabilizers returns the remaining stabilizer charges.
func (s *Simulation) Stabilizers() int { return s.stabilizers }

// StabilizerActive reports whether descent is currently damped.
func (s *Simulation) StabilizerActive() bool {
	return !s.stabilizerUntil.IsZero() && s.clock.Now().Before(s.stabilizerUntil)
}

// Rotation, Glow and Scale are cosmetic outputs for renderers.
func (s *Simulation) Rotation() float64 { return s.rotation }
func (s *Simulation) Glow() float64     { return s.glow }
func (s *Simulation) Scale() float64    { return s.scale }

// NodeHit reports whether node i has been collected.
func (s *Simulation) NodeHit(i int) bool {
	_, ok := s.hitNodes[i]
	return ok
}

// PlayTime returns the simulated descent time of the attempt.
func (s *Simulation) PlayTime() time.Duration { return s.playTime }

// Snapshot is a serializable view of the session.
type Snapshot struct {
	State            GameState  `json:"state"`
	LevelID          int        `json:"levelId,omitempty"`
	Position         core.Point `json:"position"`
	Rotation         float64    `json:"rotation"`
	Glow             float64    `json:"glow"`
	Scale            float64    `json:"scale"`
	Score            int        `json:"score"`
	Stabilizers      int        `json:"stabilizers"`
	StabilizerActive bool       `json:"stabilizerActive"`
	HitNodes         []int      `json:"hitNodes"`
}

// Snapshot captures the current state.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		State:            s.state,
		Position:         s.position,
		Rotation:         s.rotation,
		Glow:             s.glow,
		Scale:            s.scale,
		Score:            s.score,
		Stabilizers:      s.stabilizers,
		StabilizerActive: s.StabilizerActive(),
		HitNodes:         make([]int, 0, len(s.hitNodes)),
	}
	if s.level != nil {
		snap.LevelID = s.level.ID
	}
	for i := range s.hitNodes {
		snap.HitNodes = append(snap.HitNodes, i)
	}
	sort.Ints(snap.HitNodes)
	return snap
}
