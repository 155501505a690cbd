package core

// Action represents a semantic player action, abstracted from physical key
// presses and network messages. Hosts translate their input into actions.
type Action int

const (
	ActionNone      Action = iota
	ActionTiltLeft         // Left arrow, A, H - nudge the core left
	ActionTiltRight        // Right arrow, D, L - nudge the core right
	ActionStabilize        // Space, S - spend a stabilizer charge
	ActionPause            // P - pause/resume
	ActionRestart          // R - retry the level after an outcome
	ActionNext             // N - continue to the next level after a win
	ActionBack             // B, Escape - leave to the menu
	ActionQuit             // Q, Ctrl+C - exit the session
)

var actionNames = map[Action]string{
	ActionNone:      "none",
	ActionTiltLeft:  "tilt_left",
	ActionTiltRight: "tilt_right",
	ActionStabilize: "stabilize",
	ActionPause:     "pause",
	ActionRestart:   "restart",
	ActionNext:      "next",
	ActionBack:      "back",
	ActionQuit:      "quit",
}

// String returns the wire name of the action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAction returns the action with the given wire name.
func ParseAction(name string) (Action, bool) {
	for a, n := range actionNames {
		if n == name {
			return a, true
		}
	}
	return ActionNone, false
}
