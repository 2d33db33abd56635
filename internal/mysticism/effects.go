package mysticism

import (
	"log/slog"
	"sync"
)

// Thresholds gate the derived effects. A level exactly at a threshold
// counts as above it.
type Thresholds struct {
	Gauge      float64 // gauge shown at or above
	Capability float64 // capability granted at or above
}

// EffectDispatcher is the Tracker's observer. Every notification recomputes
// both derived states, not only threshold crossings, so a missed update
// heals on the next change.
type EffectDispatcher struct {
	gauge     GaugeDisplay
	messenger Messenger
	logger    *slog.Logger

	mu         sync.RWMutex
	thresholds Thresholds
	capability CapabilityController
}

// NewEffectDispatcher creates a dispatcher. The capability controller is
// bound later with BindCapability because it is usually built after the
// dispatcher.
func NewEffectDispatcher(th Thresholds, gauge GaugeDisplay, messenger Messenger, logger *slog.Logger) *EffectDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &EffectDispatcher{
		gauge:      gauge,
		messenger:  messenger,
		logger:     logger,
		thresholds: th,
	}
}

// BindCapability sets the controller that receives grant and revoke calls.
func (d *EffectDispatcher) BindCapability(c CapabilityController) {
	d.mu.Lock()
	d.capability = c
	d.mu.Unlock()
	d.logger.Info("capability controller bound")
}

// SetThresholds swaps the thresholds, e.g. after a configuration reload.
func (d *EffectDispatcher) SetThresholds(th Thresholds) {
	d.mu.Lock()
	d.thresholds = th
	d.mu.Unlock()
}

// Thresholds returns the active thresholds.
func (d *EffectDispatcher) Thresholds() Thresholds {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.thresholds
}

// OnLevelChange implements Observer.
func (d *EffectDispatcher) OnLevelChange(id EntityID, level float64) {
	d.mu.RLock()
	th, capability := d.thresholds, d.capability
	d.mu.RUnlock()

	d.logger.Debug("level changed", "entity", id, "level", level,
		"gauge_threshold", th.Gauge, "capability_threshold", th.Capability)

	if d.gauge != nil {
		d.gauge.SetProgress(id, level)
		if level >= th.Gauge {
			d.gauge.Show(id)
		} else {
			d.gauge.Hide(id)
		}
	}

	if capability == nil {
		d.logger.Warn("no capability controller bound", "entity", id)
		return
	}
	if level >= th.Capability {
		capability.Grant(id)
		return
	}
	inUse := capability.InUse(id)
	capability.Revoke(id)
	if inUse && d.messenger != nil {
		d.messenger.Notify(id, MessageRanOut, level)
	}
}
