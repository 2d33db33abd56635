package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// GaugeRows is the height of the gauge: a title row and a bar row.
const GaugeRows = 2

// DrawGauge draws the gauge across the top of the screen, boss-bar style.
// Nothing is drawn while it is hidden.
func (r *Renderer) DrawGauge(g Gauge) {
	if !g.Visible {
		return
	}
	w, _ := r.screen.Size()
	barW := min(w-4, 60)
	if barW <= 0 {
		return
	}
	x0 := (w - barW) / 2

	title := truncate(g.Title, barW)
	r.drawText((w-runewidth.StringWidth(title))/2, 0, title,
		tcell.StyleDefault.Foreground(ColorGaugeTitle).Bold(true))

	filled := FilledCells(g.Progress, barW)
	full := tcell.StyleDefault.Foreground(ColorGaugeFill)
	empty := tcell.StyleDefault.Foreground(ColorGaugeEmpty)
	for i := range barW {
		if i < filled {
			r.screen.SetContent(x0+i, 1, '█', nil, full)
		} else {
			r.screen.SetContent(x0+i, 1, '░', nil, empty)
		}
	}
}

// FilledCells returns how many of width cells a progress in [0, 1] fills.
func FilledCells(progress float64, width int) int {
	if !(progress > 0) || width <= 0 {
		return 0
	}
	if progress >= 1 {
		return width
	}
	return int(progress*float64(width) + 0.5)
}
