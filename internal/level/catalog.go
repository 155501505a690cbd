package level

import (
	"fmt"
	"math"
	"sync"

	"github.com/vovakirdan/axiom-drop/internal/core"
)

// tier holds the generation rules shared by the ten levels of a difficulty.
// Node j of level i sits at y = firstY + j*spacingY; x cycles through
// center, center-offset(i) and center+offset(i), kept margin away from the edges.
type tier struct {
	difficulty  Difficulty
	firstID     int
	baseNodes   int // level i has baseNodes+i nodes
	firstY      float64
	spacingY    float64
	margin      float64
	offset      func(i int) float64
	speedBase   float64
	speedStep   float64
	pathWidth   float64
	description string
	nodeType    func(j int) NodeType

	targets       func(vp core.Viewport) []core.Zone
	destabilizers func(vp core.Viewport) []core.Zone
}

var tiers = []tier{
	{
		difficulty:  Easy,
		firstID:     1,
		baseNodes:   5,
		firstY:      180,
		spacingY:    100,
		margin:      80,
		offset:      func(i int) float64 { return 80 + float64(i*5) },
		speedBase:   80,
		speedStep:   5,
		pathWidth:   120,
		description: "Navigate through the pattern",
		nodeType: func(j int) NodeType {
			if j%3 == 0 {
				return NodeStabilizer
			}
			return NodeNeutral
		},
		targets: func(vp core.Viewport) []core.Zone {
			return []core.Zone{core.NewZone(vp.W/2-80, vp.H-150, 160, 80)}
		},
		destabilizers: func(core.Viewport) []core.Zone { return nil },
	},
	{
		difficulty:  Medium,
		firstID:     11,
		baseNodes:   8,
		firstY:      160,
		spacingY:    85,
		margin:      60,
		offset:      func(int) float64 { return 100 },
		speedBase:   120,
		speedStep:   8,
		pathWidth:   100,
		description: "Watch for obstacles",
		nodeType: func(j int) NodeType {
			switch {
			case j%4 == 0:
				return NodeStabilizer
			case j%3 == 0:
				return NodePatternTrigger
			default:
				return NodeNeutral
			}
		},
		targets: func(vp core.Viewport) []core.Zone {
			return []core.Zone{core.NewZone(vp.W/2-60, vp.H-150, 120, 60)}
		},
		// Off to one side so staying central avoids it.
		destabilizers: func(vp core.Viewport) []core.Zone {
			return []core.Zone{core.NewZone(vp.W/4-20, vp.H-220, 100, 50)}
		},
	},
	{
		difficulty:  Hard,
		firstID:     21,
		baseNodes:   12,
		firstY:      140,
		spacingY:    70,
		margin:      55,
		offset:      func(int) float64 { return 70 },
		speedBase:   150,
		speedStep:   10,
		pathWidth:   80,
		description: "Master the sequence",
		nodeType: func(j int) NodeType {
			switch {
			case j%5 == 0:
				return NodeStabilizer
			case j%4 == 0:
				return NodePatternTrigger
			case j%3 == 0:
				return NodeSpeedBoost
			default:
				return NodeNeutral
			}
		},
		targets: func(vp core.Viewport) []core.Zone {
			return []core.Zone{core.NewZone(vp.W/2-50, vp.H-120, 100, 50)}
		},
		// Two obstacles leaving a gap in the middle.
		destabilizers: func(vp core.Viewport) []core.Zone {
			return []core.Zone{
				core.NewZone(vp.W/4-30, vp.H-200, 90, 40),
				core.NewZone(vp.W*3/4-60, vp.H-280, 90, 40),
			}
		},
	},
}

// build produces level i (1-based within the tier).
func (t tier) build(vp core.Viewport, i int) Level {
	count := t.baseNodes + i
	centerX := vp.CenterX()
	positions := make([]core.Point, 0, count)
	types := make([]NodeType, 0, count)

	for j := 0; j < count; j++ {
		var x float64
		switch j % 3 {
		case 0:
			x = centerX
		case 1:
			x = math.Max(t.margin, centerX-t.offset(i))
		default:
			x = math.Min(vp.W-t.margin, centerX+t.offset(i))
		}
		positions = append(positions, core.Pt(x, t.firstY+float64(j)*t.spacingY))
		types = append(types, t.nodeType(j))
	}

	id := t.firstID + i - 1
	return Level{
		ID:            id,
		Difficulty:    t.difficulty,
		Name:          fmt.Sprintf("Level %d", id),
		Description:   t.description,
		DescentSpeed:  t.speedBase + t.speedStep*float64(i),
		PathWidth:     t.pathWidth,
		NodePositions: positions,
		NodeTypes:     types,
		TargetZones:   t.targets(vp),
		Destabilizers: t.destabilizers(vp),
	}
}

// Generate produces all levels for the viewport, ordered by id.
// The viewport is raised to the documented floor first. Generate panics if a
// level breaks the node geometry invariant, which is a programming error.
func Generate(vp core.Viewport) []Level {
	vp = vp.Normalize()
	levels := make([]Level, 0, Count)
	for _, t := range tiers {
		for i := 1; i <= 10; i++ {
			lvl := t.build(vp, i)
			if err := lvl.Validate(); err != nil {
				panic(err)
			}
			levels = append(levels, lvl)
		}
	}
	return levels
}

// Catalog caches the generated levels for one viewport.
// It is safe for concurrent use; the levels themselves are shared and must
// be treated as read-only.
type Catalog struct {
	mu       sync.RWMutex
	viewport core.Viewport
	levels   []Level
}

// NewCatalog creates a catalog for the given viewport. Generation is
// deferred until the first lookup.
func NewCatalog(vp core.Viewport) *Catalog {
	return &Catalog{viewport: vp.Normalize()}
}

// Viewport returns the normalized viewport the catalog generates for.
func (c *Catalog) Viewport() core.Viewport {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewport
}

// Levels returns all levels, generating them on first use.
func (c *Catalog) Levels() []Level {
	c.mu.RLock()
	levels := c.levels
	c.mu.RUnlock()
	if levels != nil {
		return levels
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.levels == nil {
		c.levels = Generate(c.viewport)
	}
	return c.levels
}

// ByID returns the level with the given id.
func (c *Catalog) ByID(id int) (Level, bool) {
	if id < 1 || id > Count {
		return Level{}, false
	}
	return c.Levels()[id-1], true
}

// ByDifficulty returns the ten levels of a tier. Appending to the result
// never writes into the cached catalog.
func (c *Catalog) ByDifficulty(d Difficulty) []Level {
	ids := d.LevelIDs()
	if len(ids) == 0 {
		return nil
	}
	lo, hi := ids[0]-1, ids[len(ids)-1]
	return c.Levels()[lo:hi:hi]
}

// Invalidate drops the cached levels so the next lookup regenerates them.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.levels = nil
}

// Resize switches the catalog to a new viewport, invalidating the cache when
// the normalized size actually changes.
func (c *Catalog) Resize(vp core.Viewport) {
	vp = vp.Normalize()
	c.mu.Lock()
	defer c.mu.Unlock()
	if vp == c.viewport {
		return
	}
	c.viewport = vp
	c.levels = nil
}
