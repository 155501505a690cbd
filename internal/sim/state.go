package sim

import "fmt"

// GameState is the phase of a simulation session.
type GameState int

const (
	StateIdle GameState = iota
	StatePlaying
	StatePaused
	StateCompleted
	StateFailed
)

var stateNames = [...]string{
	StateIdle:      "idle",
	StatePlaying:   "playing",
	StatePaused:    "paused",
	StateCompleted: "completed",
	StateFailed:    "failed",
}

// String returns the lowercase state name.
func (s GameState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("GameState(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText encodes the state by name so JSON snapshots stay readable.
func (s GameState) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(stateNames) {
		return nil, fmt.Errorf("sim: invalid game state %d", int(s))
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText decodes a state name.
func (s *GameState) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = GameState(i)
			return nil
		}
	}
	return fmt.Errorf("sim: unknown game state %q", text)
}

// Finished reports whether the session ended in a win or a loss.
func (s GameState) Finished() bool {
	return s == StateCompleted || s == StateFailed
}

// Direction is a tilt direction.
type Direction int

const (
	Left Direction = iota
	Right
)

// String returns "left" or "right".
func (d Direction) String() string {
	if d == Left {
		return "left"
	}
	return "right"
}

// ParseDirection parses "left" or "right".
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "left":
		return Left, true
	case "right":
		return Right, true
	}
	return Left, false
}
