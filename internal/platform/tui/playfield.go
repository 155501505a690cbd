package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/vovakirdan/axiom-drop/internal/core"
	"github.com/vovakirdan/axiom-drop/internal/level"
	"github.com/vovakirdan/axiom-drop/internal/sim"
)

// Terminal cells are roughly twice as tall as they are wide.
const cellAspect = 2.0

// Glyphs used on the play field.
const (
	glyphTarget       = '░'
	glyphDestabilizer = '▓'
	glyphSpent        = '○'
	glyphCore         = '●'
	glyphCorePulse    = '◉'
)

var nodeGlyphs = map[level.NodeType]struct {
	r rune
	c core.Color
}{
	level.NodeStabilizer:     {'◆', core.ColorGold},
	level.NodePatternTrigger: {'✦', core.ColorCyan},
	level.NodeSpeedBoost:     {'»', core.ColorOrange},
	level.NodeSlowZone:       {'~', core.ColorMagenta},
	level.NodeNeutral:        {'·', core.ColorWhite},
}

var spinner = []rune{'|', '/', '-', '\\'}

// projector maps viewport coordinates onto the cells inside the play-field box.
type projector struct {
	vp    core.Viewport
	inner core.Rect // cells available for the field, excluding the border
}

// newProjector lays the field out in a screen of w×h cells. Row 0 holds the
// HUD, the last row holds help, and the boxed field is centered between them
// with the viewport's aspect ratio.
func newProjector(vp core.Viewport, w, h int) projector {
	innerH := max(h-4, 1)
	innerW := int(math.Round(float64(innerH) * vp.W / vp.H * cellAspect))
	innerW = core.Clamp(innerW, 1, max(w-2, 1))
	left := max((w-innerW-2)/2, 0)
	return projector{
		vp:    vp,
		inner: core.NewRect(left+1, 2, innerW, innerH),
	}
}

// box returns the border rectangle around the field.
func (p projector) box() core.Rect {
	return core.NewRect(p.inner.X-1, p.inner.Y-1, p.inner.W+2, p.inner.H+2)
}

// cell returns the screen cell for a viewport point. Points outside the
// viewport are clamped onto the edge cells.
func (p projector) cell(pt core.Point) (x, y int) {
	cx := int(pt.X / p.vp.W * float64(p.inner.W))
	cy := int(pt.Y / p.vp.H * float64(p.inner.H))
	return p.inner.X + core.Clamp(cx, 0, p.inner.W-1),
		p.inner.Y + core.Clamp(cy, 0, p.inner.H-1)
}

// zone returns the cell rectangle covered by a viewport zone. Every zone
// covers at least one cell.
func (p projector) zone(z core.Zone) core.Rect {
	x0, y0 := p.cell(core.Pt(z.X, z.Y))
	x1, y1 := p.cell(core.Pt(z.Right(), z.Bottom()))
	return core.NewRect(x0, y0, max(x1-x0, 1), max(y1-y0, 1))
}

// drawPlayfield renders the level, the core and the HUD into screen.
func drawPlayfield(screen *core.Screen, s *sim.Simulation, bestScore int) {
	screen.Clear()
	lvl := s.Level()
	if lvl == nil {
		screen.DrawTextCentered(screen.Height()/2, "No level loaded")
		return
	}

	p := newProjector(s.Viewport(), screen.Width(), screen.Height())
	screen.DrawBox(p.box())

	for _, z := range lvl.TargetZones {
		screen.DrawRect(p.zone(z), glyphTarget, core.ColorGreen)
	}
	for _, z := range lvl.Destabilizers {
		screen.DrawRect(p.zone(z), glyphDestabilizer, core.ColorRed)
	}
	for i, pos := range lvl.NodePositions {
		x, y := p.cell(pos)
		if s.NodeHit(i) {
			screen.SetColored(x, y, glyphSpent, core.ColorGray)
			continue
		}
		g, ok := nodeGlyphs[lvl.NodeTypes[i]]
		if !ok {
			g = nodeGlyphs[level.NodeNeutral]
		}
		screen.SetColored(x, y, g.r, g.c)
	}

	drawCore(screen, p, s)
	drawHUD(screen, s, lvl, bestScore)
}

func drawCore(screen *core.Screen, p projector, s *sim.Simulation) {
	x, y := p.cell(s.Position())

	color := core.ColorGold
	switch {
	case s.StabilizerActive():
		color = core.ColorCyan
	case s.Glow() < 1:
		color = core.ColorGray
	case s.Glow() > 1:
		color = core.ColorBrightWhite
	}

	glyph := glyphCore
	if s.Scale() > 1 {
		glyph = glyphCorePulse
	}

	if s.State() == sim.StatePlaying && y > p.inner.Y {
		turn := int(s.Rotation()/(math.Pi/2)) % len(spinner)
		screen.SetColored(x, y-1, spinner[turn], core.ColorGray)
	}
	screen.SetColored(x, y, glyph, color)
}

func drawHUD(screen *core.Screen, s *sim.Simulation, lvl *level.Level, bestScore int) {
	left := fmt.Sprintf(" L%02d %s ", lvl.ID, lvl.Name)
	screen.DrawTextColored(0, 0, left, core.ColorBlue)

	charges := strings.Repeat("◆", s.Stabilizers()) + strings.Repeat("◇", max(3-s.Stabilizers(), 0))
	right := fmt.Sprintf(" Score %d  Best %d  %s ", s.Score(), bestScore, charges)
	screen.DrawTextColored(screen.Width()-len([]rune(right)), 0, right, core.ColorGold)

	help := "←/→ tilt  space stabilize  p pause  b menu  q quit"
	screen.DrawTextColored(0, screen.Height()-1, centerText(help, screen.Width()), core.ColorGray)
}

// drawOverlay writes a centered message box over the field.
func drawOverlay(screen *core.Screen, color core.Color, lines ...string) {
	width := 0
	for _, l := range lines {
		width = max(width, len([]rune(l)))
	}
	width += 4
	height := len(lines) + 2
	x := max((screen.Width()-width)/2, 0)
	y := max((screen.Height()-height)/2, 0)

	r := core.NewRect(x, y, width, height)
	screen.DrawRect(r, ' ', core.ColorDefault)
	screen.DrawBox(r)
	for i, l := range lines {
		pad := (width - 2 - len([]rune(l))) / 2
		screen.DrawTextColored(x+1+pad, y+1+i, l, color)
	}
}
