package core

// Color represents a foreground color for a screen cell.
// The platform maps each value to an ANSI 256-color code.
type Color uint8

// Palette used by the play-field renderer.
const (
	ColorDefault     Color = iota
	ColorGold              // core, stabilizer nodes
	ColorGreen             // target zones
	ColorRed               // destabilizers
	ColorCyan              // pattern triggers
	ColorMagenta           // slow zones
	ColorOrange            // speed boosts
	ColorBlue              // HUD accents
	ColorWhite             // neutral nodes
	ColorBrightWhite       // highlighted core
	ColorGray              // spent nodes, locked levels
)
