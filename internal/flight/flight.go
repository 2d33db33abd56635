// Package flight grants and revokes the flight capability of players and
// drives the "flight" drain source while they are aloft.
package flight

import (
	"log/slog"
	"mysticism-mud/internal/mysticism"
	"sync"
)

// SourceName is the drain source registered while a player flies.
const SourceName = "flight"

// Mode is a player's game mode.
type Mode uint8

const (
	Survival Mode = iota
	Adventure
	Creative
)

var modeNames = [...]string{"survival", "adventure", "creative"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// Next cycles survival → adventure → creative → survival.
func (m Mode) Next() Mode { return (m + 1) % Mode(len(modeNames)) }

// Metered reports whether flight in this mode costs mysticism.
func (m Mode) Metered() bool { return m == Survival || m == Adventure }

// Pilot is the host-owned flight state of one player. Implementations must
// be safe for concurrent use.
type Pilot interface {
	Mode() Mode
	AllowFlight() bool
	SetAllowFlight(bool)
	Flying() bool
	SetFlying(bool)
}

// Pilots looks up online players.
type Pilots interface {
	Pilot(id mysticism.EntityID) (Pilot, bool)
}

// LevelReader reads mysticism levels.
type LevelReader interface {
	Get(id mysticism.EntityID) float64
}

// DrainSources is the part of the drain scheduler the manager drives.
type DrainSources interface {
	AddSource(id mysticism.EntityID, name string, rate float64) error
	RemoveSource(id mysticism.EntityID, name string)
}

// Settings are the reloadable flight parameters.
type Settings struct {
	DrainRate float64 // per tick while flying
	Threshold float64 // level needed to take off
}

// Manager implements mysticism.CapabilityController for flight.
type Manager struct {
	pilots    Pilots
	levels    LevelReader
	drain     DrainSources
	messenger mysticism.Messenger
	logger    *slog.Logger

	mu       sync.RWMutex
	settings Settings
}

// NewManager creates a Manager.
func NewManager(pilots Pilots, levels LevelReader, drain DrainSources, messenger mysticism.Messenger, settings Settings, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		pilots:    pilots,
		levels:    levels,
		drain:     drain,
		messenger: messenger,
		logger:    logger,
		settings:  settings,
	}
}

// SetConfig swaps the flight parameters. Players already aloft keep the
// drain rate they took off with until they land.
func (m *Manager) SetConfig(s Settings) {
	m.mu.Lock()
	m.settings = s
	m.mu.Unlock()
	m.logger.Info("flight settings updated", "drain_rate", s.DrainRate, "threshold", s.Threshold)
}

// Config returns the active parameters.
func (m *Manager) Config() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// pilot returns the metered pilot for id, or false when id is offline or
// flies freely.
func (m *Manager) pilot(id mysticism.EntityID) (Pilot, bool) {
	p, ok := m.pilots.Pilot(id)
	if !ok || !p.Mode().Metered() {
		return nil, false
	}
	return p, true
}

// Grant allows id to fly.
func (m *Manager) Grant(id mysticism.EntityID) {
	p, ok := m.pilot(id)
	if !ok || p.AllowFlight() {
		return
	}
	p.SetAllowFlight(true)
	m.logger.Info("flight granted", "entity", id)
}

// Revoke disallows flight, lands id and removes the flight drain.
func (m *Manager) Revoke(id mysticism.EntityID) {
	p, ok := m.pilot(id)
	if !ok || !p.AllowFlight() {
		return
	}
	p.SetAllowFlight(false)
	p.SetFlying(false)
	m.drain.RemoveSource(id, SourceName)
	m.logger.Info("flight revoked", "entity", id)
}

// InUse reports whether id is currently flying.
func (m *Manager) InUse(id mysticism.EntityID) bool {
	p, ok := m.pilots.Pilot(id)
	return ok && p.Flying()
}

// ToggleFlight handles a player's attempt to take off (wantFlying) or land.
// It returns whether the player is flying afterwards.
func (m *Manager) ToggleFlight(id mysticism.EntityID, wantFlying bool) bool {
	p, ok := m.pilots.Pilot(id)
	if !ok {
		return false
	}
	if !p.Mode().Metered() {
		p.SetFlying(wantFlying)
		return wantFlying
	}

	if !wantFlying {
		m.drain.RemoveSource(id, SourceName)
		p.SetFlying(false)
		m.notify(id, mysticism.MessageFlightDisabled, m.levels.Get(id))
		m.logger.Info("landed", "entity", id)
		return false
	}

	s := m.Config()
	level := m.levels.Get(id)
	switch {
	case level < s.Threshold:
		p.SetFlying(false)
		m.notify(id, mysticism.MessageNotEnough, s.Threshold)
		m.logger.Info("take-off refused", "entity", id, "level", level, "reason", "not enough mysticism")
		return false
	case !p.AllowFlight():
		p.SetFlying(false)
		m.notify(id, mysticism.MessageFlightLocked, level)
		m.logger.Info("take-off refused", "entity", id, "level", level, "reason", "flight not granted")
		return false
	}

	p.SetFlying(true)
	if err := m.drain.AddSource(id, SourceName, s.DrainRate); err != nil {
		p.SetFlying(false)
		m.logger.Error("take-off failed", "entity", id, "error", err)
		return false
	}
	m.notify(id, mysticism.MessageFlightEnabled, level)
	m.logger.Info("took off", "entity", id, "level", level, "drain_rate", s.DrainRate)
	return true
}

// ModeChanged re-evaluates flight after the host switched id from one mode
// to another.
func (m *Manager) ModeChanged(id mysticism.EntityID, from, to Mode) {
	p, ok := m.pilots.Pilot(id)
	if !ok {
		return
	}
	m.logger.Info("game mode changed", "entity", id, "from", from, "to", to)
	if !to.Metered() {
		m.drain.RemoveSource(id, SourceName)
		return
	}
	if !from.Metered() && p.Flying() {
		// Free flight does not carry over.
		p.SetFlying(false)
	}
	level := m.levels.Get(id)
	if level >= m.Config().Threshold {
		m.Grant(id)
		m.notify(id, mysticism.MessageReevaluated, level)
		return
	}
	m.Revoke(id)
}

func (m *Manager) notify(id mysticism.EntityID, kind mysticism.MessageKind, v float64) {
	if m.messenger != nil {
		m.messenger.Notify(id, kind, v)
	}
}
