package mysticism

import (
	"log/slog"
	"sync"
)

// levelCell is the per-entity state owned by the Tracker.
//
// outbox holds committed levels whose notification has not been delivered
// yet. Exactly one goroutine delivers a cell's outbox at a time (flushing),
// so notifications for one entity arrive in commit order.
type levelCell struct {
	level    float64
	stored   bool
	outbox   []float64
	flushing bool
}

// enqueue records level for delivery and reports whether the caller has to
// start flushing.
func (c *levelCell) enqueue(level float64) bool {
	c.outbox = append(c.outbox, level)
	if c.flushing {
		return false
	}
	c.flushing = true
	return true
}

func (c *levelCell) idle() bool {
	return !c.stored && !c.flushing && len(c.outbox) == 0
}

// Tracker is the authoritative store of per-entity levels.
//
// Mutations commit under the entity's lock and queue the observer
// notification in the same critical section. Delivery happens after the lock
// is released, which lets an observer mutate the same entity again (the
// revoke → remove drain source chain) without deadlocking: the nested
// mutation is queued and delivered by the outer flush loop.
type Tracker struct {
	cells  *table[levelCell]
	reach  Reachability
	logger *slog.Logger

	obsMu    sync.RWMutex
	observer Observer
}

// NewTracker creates an empty Tracker. A nil reach treats every entity as
// reachable.
func NewTracker(reach Reachability, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		cells:  newTable[levelCell](),
		reach:  reach,
		logger: logger,
	}
}

// SetObserver registers the single change observer, replacing any previous
// one. A nil observer disables notification.
func (t *Tracker) SetObserver(o Observer) {
	t.obsMu.Lock()
	t.observer = o
	t.obsMu.Unlock()
}

func (t *Tracker) currentObserver() Observer {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	return t.observer
}

func (t *Tracker) reachable(id EntityID) bool {
	return t.reach == nil || t.reach.IsReachable(id)
}

// Get returns the stored level for id, or 0 when none is stored.
func (t *Tracker) Get(id EntityID) float64 {
	var level float64
	t.cells.with(id, false, func(c *levelCell) bool {
		if c.stored {
			level = c.level
		}
		return false
	})
	return level
}

// Has reports whether a level is stored for id.
func (t *Tracker) Has(id EntityID) bool {
	var stored bool
	t.cells.with(id, false, func(c *levelCell) bool {
		stored = c.stored
		return false
	})
	return stored
}

// Len returns the number of entities with a cell, stored or still flushing.
func (t *Tracker) Len() int { return t.cells.len() }

// Set stores v clamped to [0, MaxLevel] and returns the stored value.
func (t *Tracker) Set(id EntityID, v float64) float64 {
	return t.Update(id, func(float64) float64 { return v })
}

// Add applies delta to the current level. Negative deltas drain.
func (t *Tracker) Add(id EntityID, delta float64) float64 {
	return t.Update(id, func(current float64) float64 { return current + delta })
}

// Update atomically replaces the level with fn(current), clamped, and
// returns the stored value. fn runs under the entity lock and must not call
// back into the Tracker.
//
// The level is stored even when the entity is unreachable; only the
// notification is skipped.
func (t *Tracker) Update(id EntityID, fn func(current float64) float64) float64 {
	return t.apply(id, false, fn)
}

// Drain subtracts amount from a stored level and returns the result. An
// entity without a stored level is left alone and no cell is created for it,
// so a drain that races Remove cannot bring the entity back.
func (t *Tracker) Drain(id EntityID, amount float64) float64 {
	return t.apply(id, true, func(current float64) float64 { return current - amount })
}

// apply commits fn under the entity lock. With storedOnly set, entities
// without a stored level are skipped and 0 is returned.
func (t *Tracker) apply(id EntityID, storedOnly bool, fn func(current float64) float64) float64 {
	notify := t.reachable(id)
	var level float64
	var flush bool
	t.cells.with(id, !storedOnly, func(c *levelCell) bool {
		if storedOnly && !c.stored {
			return false
		}
		var current float64
		if c.stored {
			current = c.level
		}
		level = clamp(fn(current))
		c.level, c.stored = level, true
		if notify {
			flush = c.enqueue(level)
		}
		return false
	})
	if flush {
		t.flush(id)
	}
	return level
}

// Remove deletes the stored level. A reachable entity is notified with 0 so
// derived state is cleaned up.
func (t *Tracker) Remove(id EntityID) {
	notify := t.reachable(id)
	var flush bool
	t.cells.with(id, notify, func(c *levelCell) bool {
		c.level, c.stored = 0, false
		if notify {
			flush = c.enqueue(0)
		}
		return c.idle()
	})
	if flush {
		t.flush(id)
	}
}

// flush delivers queued notifications for id until the outbox is empty.
func (t *Tracker) flush(id EntityID) {
	defer func() {
		if r := recover(); r != nil {
			t.cells.with(id, false, func(c *levelCell) bool {
				c.outbox, c.flushing = nil, false
				return c.idle()
			})
			t.logger.Error("level observer panicked", "entity", id, "panic", r)
			panic(r)
		}
	}()
	for {
		var level float64
		var more bool
		t.cells.with(id, false, func(c *levelCell) bool {
			if len(c.outbox) == 0 {
				c.flushing = false
				return c.idle()
			}
			level = c.outbox[0]
			c.outbox = c.outbox[1:]
			more = true
			return false
		})
		if !more {
			return
		}
		if o := t.currentObserver(); o != nil {
			o.OnLevelChange(id, level)
		}
	}
}
