package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// DrawHUD renders the status bar and message log at the bottom of the screen.
func (r *Renderer) DrawHUD(f Frame) {
	_, screenH := r.screen.Size()
	hudY := screenH - HUDRows

	// Separator line.
	r.drawHLine(hudY, tcell.ColorGray)

	flight := "grounded"
	switch {
	case f.Flying:
		flight = "flying"
	case f.AllowFlight:
		flight = "can fly"
	}
	status := fmt.Sprintf("%s  [%s]  Mysticism: %.1f%%  %s", f.Name, f.Mode, f.Level*100, flight)
	r.drawText(0, hudY+1, status, tcell.StyleDefault.Foreground(tcell.ColorWhite))

	// Message log (last 3 messages).
	start := max(len(f.Messages)-3, 0)
	for i, msg := range f.Messages[start:] {
		r.drawText(0, hudY+2+i, msg, tcell.StyleDefault.Foreground(tcell.ColorLightYellow))
	}
}

// DrawPrompt renders an input line on the bottom row, over the message log.
func (r *Renderer) DrawPrompt(label string, buf []rune) {
	w, h := r.screen.Size()
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, h-1, ' ', nil, tcell.StyleDefault)
	}
	r.drawText(0, h-1, label+string(buf)+"_", tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true))
}

func (r *Renderer) drawHLine(y int, color tcell.Color) {
	w, _ := r.screen.Size()
	style := tcell.StyleDefault.Foreground(color)
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, y, '─', nil, style)
	}
}

// drawText writes text from (x, y), advancing by each rune's display width
// and stopping at the right edge.
func (r *Renderer) drawText(x, y int, text string, style tcell.Style) {
	w, _ := r.screen.Size()
	col := x
	for _, ch := range text {
		if col >= w {
			break
		}
		if col >= 0 {
			r.screen.SetContent(col, y, ch, nil, style)
		}
		col += max(runewidth.RuneWidth(ch), 1)
	}
}
