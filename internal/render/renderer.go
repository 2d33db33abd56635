// Package render draws a player's view: the mysticism gauge, the sky with
// every online player, and the HUD.
package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// HUDRows is the number of bottom rows reserved for the HUD.
const HUDRows = 5

// Gauge is the gauge state to draw.
type Gauge struct {
	Visible  bool
	Progress float64
	Title    string
}

// Player is one figure in the sky.
type Player struct {
	Name   string
	Color  tcell.Color
	Flying bool
	Self   bool
}

// Frame is everything one screen needs.
type Frame struct {
	Name        string
	Mode        string
	Level       float64
	Flying      bool
	AllowFlight bool
	Gauge       Gauge
	Players     []Player
	Messages    []string
}

// Renderer draws frames onto a tcell screen.
type Renderer struct {
	screen tcell.Screen
}

// NewRenderer creates a Renderer for the given screen.
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

// DrawFrame renders the gauge, the sky and the HUD. It does not call Show.
func (r *Renderer) DrawFrame(f Frame) {
	r.screen.Clear()
	r.DrawGauge(f.Gauge)
	r.drawSky(f.Players)
	r.DrawHUD(f)
}

// drawSky places every player on a ground line, flying players a few rows
// above it. Players are spaced evenly left to right.
func (r *Renderer) drawSky(players []Player) {
	w, h := r.screen.Size()
	ground := h - HUDRows - 1
	if ground < GaugeRows+2 {
		return
	}
	groundStyle := tcell.StyleDefault.Foreground(ColorGround)
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, ground, '▔', nil, groundStyle)
	}
	if len(players) == 0 {
		return
	}
	slot := w / len(players)
	altitude := min(FlightAltitude, ground-GaugeRows-1)
	for i, p := range players {
		x := i*slot + slot/2 - 1
		y := ground - 1
		glyph := GlyphGrounded
		if p.Flying {
			y -= altitude
			glyph = GlyphFlying
		}
		r.putGlyph(x, y, glyph, tcell.StyleDefault)
		style := tcell.StyleDefault.Foreground(p.Color)
		if p.Self {
			style = style.Bold(true)
		}
		name := truncate(p.Name, max(slot-1, 1))
		r.drawText(x+1-runewidth.StringWidth(name)/2, y+1, name, style)
	}
}

// putGlyph draws a single glyph (ASCII or multi-rune emoji) at screen position (x, y).
func (r *Renderer) putGlyph(x, y int, glyph string, style tcell.Style) {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return
	}
	r.screen.SetContent(x, y, runes[0], runes[1:], style)
	if runewidth.StringWidth(glyph) == 2 {
		// Fill the second column to avoid rendering artifacts.
		r.screen.SetContent(x+1, y, ' ', nil, style)
	}
}

// truncate shortens s to at most width columns.
func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "~")
}
