package sim

import (
	"github.com/vovakirdan/axiom-drop/internal/core"
	"github.com/vovakirdan/axiom-drop/internal/level"
)

// degenerateSegment is the squared travel length below which the swept test
// is skipped.
const degenerateSegment = 0.0001

// nodeEffect is what collecting a node of a given type does.
// A zero glow leaves the glow unchanged.
type nodeEffect struct {
	points int
	glow   float64
}

// speedBoost and slowZone only score; descent speed is not modified.
var nodeEffects = map[level.NodeType]nodeEffect{
	level.NodeStabilizer:     {points: 10, glow: 1.3},
	level.NodePatternTrigger: {points: 20, glow: 1.4},
	level.NodeSpeedBoost:     {points: 5},
	level.NodeSlowZone:       {points: 15},
	level.NodeNeutral:        {},
}

// resolveCollisions checks destabilizers, then targets, then nodes.
// The first two short-circuit, so entering both kinds of zone at once fails.
func (s *Simulation) resolveCollisions(res *StepResult) {
	if s.state != StatePlaying {
		return
	}
	lvl := s.level

	for _, z := range lvl.Destabilizers {
		if z.Contains(s.position) {
			s.finish(res, StateFailed, CauseDestabilizer)
			return
		}
	}
	for _, z := range lvl.TargetZones {
		if z.Contains(s.position) {
			s.finish(res, StateCompleted, CauseTarget)
			return
		}
	}

	for i, node := range lvl.NodePositions {
		if _, hit := s.hitNodes[i]; hit {
			continue
		}
		if !touches(s.previous, s.position, node, s.cfg.NodeRadius) {
			continue
		}
		s.hitNodes[i] = struct{}{}
		s.applyNode(res, i, lvl.NodeTypes[i], node)
	}
}

// touches reports whether a core moving from prev to curr came within radius
// of node: at either end, or anywhere along the swept segment.
func touches(prev, curr, node core.Point, radius float64) bool {
	if curr.Dist(node) < radius || prev.Dist(node) < radius {
		return true
	}
	d, ok := core.SegmentDistance(prev, curr, node, degenerateSegment)
	return ok && d < radius
}

func (s *Simulation) applyNode(res *StepResult, i int, t level.NodeType, at core.Point) {
	eff := nodeEffects[t]
	s.score += eff.points
	if eff.glow > 0 {
		s.glow = eff.glow
	}
	s.scale = pulseScale

	res.Hits = append(res.Hits, NodeHit{Index: i, Type: t, Points: eff.points, At: at})
	res.Pulse = &PulseEvent{RevertAfter: s.cfg.PulseDuration}
}
