// Package core provides fundamental types and utilities shared by the
// simulation, the level catalog and the hosts. It contains no external
// dependencies (especially no Bubble Tea) to keep game logic pure and testable.
package core

import "math"

// Minimum viewport dimensions. Smaller screens produce degenerate geometry
// (zig-zag offsets overlapping the clamp margins), so they are raised to this floor.
const (
	MinViewportW = 375.0
	MinViewportH = 667.0
)

// Point is a position in viewport space (pixels, y grows downward).
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Pt is shorthand for constructing a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dist returns the Euclidean distance between two points.
func (p Point) Dist(q Point) float64 {
	d := p.Sub(q)
	return math.Sqrt(d.X*d.X + d.Y*d.Y)
}

// Zone is an axis-aligned rectangle in viewport space.
type Zone struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// NewZone creates a zone with the given origin and size.
func NewZone(x, y, w, h float64) Zone {
	return Zone{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (z Zone) Right() float64 {
	return z.X + z.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (z Zone) Bottom() float64 {
	return z.Y + z.H
}

// Contains reports whether p lies inside the zone.
// The left and top edges are inclusive, the right and bottom edges exclusive.
func (z Zone) Contains(p Point) bool {
	return p.X >= z.X && p.X < z.Right() && p.Y >= z.Y && p.Y < z.Bottom()
}

// Viewport is the logical play-field size the catalog and simulation agree on.
type Viewport struct {
	W float64 `json:"w" yaml:"width"`
	H float64 `json:"h" yaml:"height"`
}

// Normalize raises both dimensions to the documented floor.
func (v Viewport) Normalize() Viewport {
	return Viewport{
		W: math.Max(v.W, MinViewportW),
		H: math.Max(v.H, MinViewportH),
	}
}

// CenterX returns the horizontal center of the viewport.
func (v Viewport) CenterX() float64 {
	return v.W / 2
}

// SegmentDistance returns the distance from p to the closest point of the
// segment a→b. ok is false when the segment is degenerate (squared length at
// or below eps), in which case the distance is not computed.
func SegmentDistance(a, b, p Point, eps float64) (dist float64, ok bool) {
	seg := b.Sub(a)
	lenSq := seg.X*seg.X + seg.Y*seg.Y
	if lenSq <= eps {
		return 0, false
	}
	t := ((p.X-a.X)*seg.X + (p.Y-a.Y)*seg.Y) / lenSq
	t = ClampF(t, 0, 1)
	closest := Point{X: a.X + t*seg.X, Y: a.Y + t*seg.Y}
	return p.Dist(closest), true
}

// Rect represents an axis-aligned box in screen cells, used when drawing.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
