package render

import "github.com/gdamore/tcell/v2"

// Gauge and scene palette.
var (
	ColorGaugeTitle = tcell.ColorPlum
	ColorGaugeFill  = tcell.ColorPurple
	ColorGaugeEmpty = tcell.ColorDimGray
	ColorGround     = tcell.ColorGreen
)

// Player glyphs. Emoji are rendered by the terminal with their own colors,
// so state is shown by glyph, not tint.
const (
	GlyphGrounded = "🧙"
	GlyphFlying   = "🪽"
)

// FlightAltitude is how many rows above the ground a flying player is drawn.
const FlightAltitude = 4
