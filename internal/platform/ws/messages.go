// Package ws hosts simulations for remote clients over websockets.
//
// Each connection gets its own Session actor that owns one simulation; the
// socket's read pump only forwards commands into the actor's inbox and the
// write pump only drains its outbox.
package ws

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vovakirdan/axiom-drop/internal/level"
	"github.com/vovakirdan/axiom-drop/internal/progress"
	"github.com/vovakirdan/axiom-drop/internal/sim"
)

// Message types sent to clients.
const (
	TypeLevel    = "level"    // payload: level.Level, sent when an attempt starts
	TypeSnapshot = "snapshot" // payload: sim.Snapshot
	TypeEvent    = "event"    // payload: Event
	TypeError    = "error"    // payload: string
)

// Command types accepted from clients.
const (
	CmdTilt      = "tilt"
	CmdStabilize = "stabilize"
	CmdPause     = "pause"
	CmdResume    = "resume"
	CmdRestart   = "restart"
)

// Message is the JSON envelope for everything written to a client.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Event reports what happened during one step.
type Event struct {
	Hits       []sim.NodeHit        `json:"hits,omitempty"`
	Outcome    *sim.Outcome         `json:"outcome,omitempty"`
	Milestones []progress.Milestone `json:"milestones,omitempty"`
}

// Command is a client request.
type Command struct {
	Type      string `json:"type"`
	Direction string `json:"direction,omitempty"`

	dir sim.Direction
}

// TiltCommand returns a tilt command for dir.
func TiltCommand(dir sim.Direction) Command {
	return Command{Type: CmdTilt, Direction: dir.String(), dir: dir}
}

var errEmptyCommand = errors.New("ws: command has no type")

// ParseCommand decodes and validates a client command.
func ParseCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("ws: decode command: %w", err)
	}

	switch cmd.Type {
	case "":
		return Command{}, errEmptyCommand
	case CmdTilt:
		dir, ok := sim.ParseDirection(cmd.Direction)
		if !ok {
			return Command{}, fmt.Errorf("ws: tilt direction %q must be left or right", cmd.Direction)
		}
		cmd.dir = dir
	case CmdStabilize, CmdPause, CmdResume, CmdRestart:
	default:
		return Command{}, fmt.Errorf("ws: unknown command %q", cmd.Type)
	}
	return cmd, nil
}

// LevelSummary is the catalog entry served by GET /levels.
type LevelSummary struct {
	level.Level
	Unlocked  *bool `json:"unlocked,omitempty"`
	Completed *bool `json:"completed,omitempty"`
}

func encode(msgType string, payload any) ([]byte, error) {
	data, err := json.Marshal(Message{Type: msgType, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("ws: encode %s: %w", msgType, err)
	}
	return data, nil
}
