package mysticism

import (
	"log/slog"
	"math"
)

// GainService adds capped increments to a level.
type GainService struct {
	tracker   *Tracker
	messenger Messenger
	logger    *slog.Logger
}

// NewGainService creates a GainService writing through tracker.
func NewGainService(tracker *Tracker, messenger Messenger, logger *slog.Logger) *GainService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GainService{tracker: tracker, messenger: messenger, logger: logger}
}

// Gain raises the level of id by amount, never past limit, and sends the
// surge message. The result is also clamped to [0, MaxLevel], so a limit
// above MaxLevel has no effect. It returns the stored level.
func (g *GainService) Gain(id EntityID, amount, limit float64) float64 {
	level := g.tracker.Update(id, func(current float64) float64 {
		return math.Min(current+amount, limit)
	})
	g.logger.Debug("mysticism gained", "entity", id, "amount", amount, "cap", limit, "level", level)
	if g.messenger != nil {
		g.messenger.Notify(id, MessageSurge, level)
	}
	return level
}

// GainDefault is Gain with the limit at MaxLevel.
func (g *GainService) GainDefault(id EntityID, amount float64) float64 {
	return g.Gain(id, amount, MaxLevel)
}
