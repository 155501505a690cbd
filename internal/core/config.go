package core

// RuntimeConfig contains the host-side configuration a play session starts with.
// Screen dimensions are terminal cells; the Viewport is the logical play field
// that the catalog and the simulation work in.
type RuntimeConfig struct {
	ScreenW  int      // Screen width in characters
	ScreenH  int      // Screen height in characters
	TickRate int      // Simulation ticks per second (default 60)
	Viewport Viewport // Logical play-field size in pixels
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Viewport: Viewport{W: 390, H: 844},
	}
}
