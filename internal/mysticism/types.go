// Package mysticism tracks a bounded, decaying per-entity resource.
//
// A Tracker stores one level in [0,1] per entity. A DrainScheduler runs at
// most one periodic task per entity that subtracts the summed rate of every
// active drain source. An EffectDispatcher observes every level change and
// recomputes the gauge and capability state the level implies.
package mysticism

import "github.com/google/uuid"

// EntityID identifies the entity a level, drain source or effect belongs to.
type EntityID = uuid.UUID

// MaxLevel is the upper bound of every level. The lower bound is zero.
const MaxLevel = 1.0

// Observer receives every committed level change.
type Observer interface {
	OnLevelChange(id EntityID, level float64)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(id EntityID, level float64)

// OnLevelChange calls f(id, level).
func (f ObserverFunc) OnLevelChange(id EntityID, level float64) { f(id, level) }

// Reachability reports whether an entity is still present and should
// receive side effects.
type Reachability interface {
	IsReachable(id EntityID) bool
}

// ReachabilityFunc adapts a plain function to Reachability.
type ReachabilityFunc func(id EntityID) bool

// IsReachable calls f(id).
func (f ReachabilityFunc) IsReachable(id EntityID) bool { return f(id) }

// CapabilityController applies the derived capability. Grant and Revoke must
// be idempotent: they are called on every level change, not only on
// threshold crossings.
type CapabilityController interface {
	Grant(id EntityID)
	Revoke(id EntityID)
	// InUse reports whether the entity is actively using the capability.
	InUse(id EntityID) bool
}

// GaugeDisplay mirrors the level on a visual gauge. All methods must be
// idempotent.
type GaugeDisplay interface {
	Show(id EntityID)
	Hide(id EntityID)
	SetProgress(id EntityID, value float64)
}

// MessageKind selects a user-facing message.
type MessageKind uint8

const (
	MessageSurge MessageKind = iota
	MessageRanOut
	MessageFlightEnabled
	MessageFlightDisabled
	MessageNotEnough
	MessageFlightLocked
	MessageReevaluated
	MessageLevelSet
)

var messageKindNames = [...]string{
	MessageSurge:          "surge",
	MessageRanOut:         "ran_out",
	MessageFlightEnabled:  "flight_enabled",
	MessageFlightDisabled: "flight_disabled",
	MessageNotEnough:      "not_enough",
	MessageFlightLocked:   "flight_locked",
	MessageReevaluated:    "reevaluated",
	MessageLevelSet:       "level_set",
}

func (k MessageKind) String() string {
	if int(k) < len(messageKindNames) {
		return messageKindNames[k]
	}
	return "unknown"
}

// Messenger delivers user-facing feedback. Delivery failures must never
// affect core state, so Notify has no error result.
type Messenger interface {
	Notify(id EntityID, kind MessageKind, value float64)
}

// clamp bounds v to [0, MaxLevel]. NaN clamps to zero.
func clamp(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > MaxLevel {
		return MaxLevel
	}
	return v
}

// Clamp is the bounds rule every Set applies.
func Clamp(v float64) float64 { return clamp(v) }
