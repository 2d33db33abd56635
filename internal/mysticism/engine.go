package mysticism

import (
	"log/slog"
	"time"
)

// Options configures New.
type Options struct {
	Thresholds   Thresholds
	TickInterval time.Duration
	Clock        Clock
	Reachability Reachability
	Gauge        GaugeDisplay
	Messenger    Messenger
	Logger       *slog.Logger
}

// Engine groups the services of one process. Build it with New, construct
// the capability controller against it, then call Bind.
type Engine struct {
	Tracker *Tracker
	Drain   *DrainScheduler
	Effects *EffectDispatcher
	Gain    *GainService
	Admin   *Admin
}

// New builds every service without wiring the observer chain.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracker := NewTracker(opts.Reachability, logger.With("component", "tracker"))
	return &Engine{
		Tracker: tracker,
		Drain:   NewDrainScheduler(tracker, opts.Reachability, opts.Clock, opts.TickInterval, logger.With("component", "drain")),
		Effects: NewEffectDispatcher(opts.Thresholds, opts.Gauge, opts.Messenger, logger.With("component", "effects")),
		Gain:    NewGainService(tracker, opts.Messenger, logger.With("component", "gain")),
		Admin:   NewAdmin(tracker),
	}
}

// Bind is the second construction pass: it hands the capability controller
// to the dispatcher and registers the dispatcher as the Tracker's observer.
func (e *Engine) Bind(capability CapabilityController) {
	e.Effects.BindCapability(capability)
	e.Tracker.SetObserver(e.Effects)
}

// Shutdown stops every drain task.
func (e *Engine) Shutdown() { e.Drain.StopAll() }
