package mud

import (
	"fmt"
	"mysticism-mud/internal/mysticism"
	"sync"
)

// GaugeView is one player's gauge as the renderer sees it.
type GaugeView struct {
	Visible  bool
	Progress float64
	Title    string
}

// GaugeTitle formats the gauge label, e.g. "Mysticism: 42.0%".
func GaugeTitle(progress float64) string {
	return fmt.Sprintf("Mysticism: %.1f%%", mysticism.Clamp(progress)*100)
}

// GaugeBoard holds the per-player gauges. It implements
// mysticism.GaugeDisplay. Show, Hide and SetProgress are idempotent.
type GaugeBoard struct {
	mu      sync.Mutex
	gauges  map[mysticism.EntityID]*GaugeView
	changed func(id mysticism.EntityID)
}

// NewGaugeBoard creates a board. changed, if non-nil, runs after a gauge
// changed, outside the board's lock.
func NewGaugeBoard(changed func(id mysticism.EntityID)) *GaugeBoard {
	return &GaugeBoard{gauges: make(map[mysticism.EntityID]*GaugeView), changed: changed}
}

// gauge returns the gauge of id, creating a hidden empty one. Caller holds mu.
func (b *GaugeBoard) gauge(id mysticism.EntityID) *GaugeView {
	g, ok := b.gauges[id]
	if !ok {
		g = &GaugeView{Title: GaugeTitle(0)}
		b.gauges[id] = g
	}
	return g
}

func (b *GaugeBoard) update(id mysticism.EntityID, fn func(g *GaugeView) bool) {
	b.mu.Lock()
	dirty := fn(b.gauge(id))
	b.mu.Unlock()
	if dirty && b.changed != nil {
		b.changed(id)
	}
}

// Show makes the gauge of id visible.
func (b *GaugeBoard) Show(id mysticism.EntityID) {
	b.update(id, func(g *GaugeView) bool {
		if g.Visible {
			return false
		}
		g.Visible = true
		return true
	})
}

// Hide hides the gauge of id.
func (b *GaugeBoard) Hide(id mysticism.EntityID) {
	b.update(id, func(g *GaugeView) bool {
		if !g.Visible {
			return false
		}
		g.Visible = false
		return true
	})
}

// SetProgress sets the fill of id's gauge. Values are clamped to [0, 1].
func (b *GaugeBoard) SetProgress(id mysticism.EntityID, progress float64) {
	progress = mysticism.Clamp(progress)
	b.update(id, func(g *GaugeView) bool {
		if g.Progress == progress {
			return false
		}
		g.Progress = progress
		g.Title = GaugeTitle(progress)
		return true
	})
}

// View returns a copy of id's gauge. Unknown players have a hidden one.
func (b *GaugeBoard) View(id mysticism.EntityID) GaugeView {
	b.mu.Lock()
	defer b.mu.Unlock()
	if g, ok := b.gauges[id]; ok {
		return *g
	}
	return GaugeView{Title: GaugeTitle(0)}
}

// Forget drops the gauge of a departed player.
func (b *GaugeBoard) Forget(id mysticism.EntityID) {
	b.mu.Lock()
	delete(b.gauges, id)
	b.mu.Unlock()
}

// HideAll hides and drops every gauge.
func (b *GaugeBoard) HideAll() {
	b.mu.Lock()
	ids := make([]mysticism.EntityID, 0, len(b.gauges))
	for id, g := range b.gauges {
		if g.Visible {
			ids = append(ids, id)
		}
	}
	clear(b.gauges)
	b.mu.Unlock()
	if b.changed != nil {
		for _, id := range ids {
			b.changed(id)
		}
	}
}

// Len returns the number of tracked gauges.
func (b *GaugeBoard) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.gauges)
}
