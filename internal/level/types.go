// Package level describes the 30 hand-authored drop levels and produces them
// for a given viewport.
package level

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vovakirdan/axiom-drop/internal/core"
)

// Count is the number of levels in the catalog.
const Count = 30

// ErrGeometryMismatch is returned for a level whose node positions and node
// types are not parallel. It is a data defect, not a retryable condition.
var ErrGeometryMismatch = errors.New("level: node positions and node types differ in length")

// Difficulty groups levels into tiers of ten.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists the tiers in play order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// Valid reports whether d names one of the tiers.
func (d Difficulty) Valid() bool {
	return slices.Contains(Difficulties, d)
}

// DisplayName returns the capitalized tier name.
func (d Difficulty) DisplayName() string {
	switch d {
	case Easy:
		return "Easy"
	case Medium:
		return "Medium"
	case Hard:
		return "Hard"
	default:
		return "Unknown"
	}
}

// LevelIDs returns the ten level ids belonging to the tier.
func (d Difficulty) LevelIDs() []int {
	start := 0
	switch d {
	case Easy:
		start = 1
	case Medium:
		start = 11
	case Hard:
		start = 21
	default:
		return nil
	}
	ids := make([]int, 10)
	for i := range ids {
		ids[i] = start + i
	}
	return ids
}

// DifficultyOf returns the tier a level id belongs to.
func DifficultyOf(id int) (Difficulty, bool) {
	switch {
	case id >= 1 && id <= 10:
		return Easy, true
	case id >= 11 && id <= 20:
		return Medium, true
	case id >= 21 && id <= Count:
		return Hard, true
	default:
		return "", false
	}
}

// NodeType determines what hitting a node does.
type NodeType string

const (
	NodeStabilizer     NodeType = "stabilizer"
	NodePatternTrigger NodeType = "patternTrigger"
	NodeSpeedBoost     NodeType = "speedBoost"
	NodeSlowZone       NodeType = "slowZone"
	NodeNeutral        NodeType = "neutral"
)

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	switch t {
	case NodeStabilizer, NodePatternTrigger, NodeSpeedBoost, NodeSlowZone, NodeNeutral:
		return true
	}
	return false
}

// Level is an immutable level description. Values returned by the catalog
// are shared; callers must not modify the slices.
type Level struct {
	ID          int        `json:"id" yaml:"id"`
	Difficulty  Difficulty `json:"difficulty" yaml:"difficulty"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`

	DescentSpeed  float64      `json:"descentSpeed" yaml:"descent_speed"` // pixels per second
	PathWidth     float64      `json:"pathWidth" yaml:"path_width"`
	NodePositions []core.Point `json:"nodePositions" yaml:"node_positions"`
	NodeTypes     []NodeType   `json:"nodeTypes" yaml:"node_types"`
	TargetZones   []core.Zone  `json:"targetZones" yaml:"target_zones"`
	Destabilizers []core.Zone  `json:"destabilizers" yaml:"destabilizers"`
}

// Validate checks the invariants the simulation relies on.
func (l *Level) Validate() error {
	if len(l.NodePositions) != len(l.NodeTypes) {
		return fmt.Errorf("%w: level %d has %d positions, %d types",
			ErrGeometryMismatch, l.ID, len(l.NodePositions), len(l.NodeTypes))
	}
	return nil
}
