package mysticism

import "sync"

// table holds one lockable slot per entity. The table lock is only taken to
// find, create or drop a slot; per-entity work runs under the slot's own
// mutex so different entities never contend.
//
// Lock order is slot then table. lookup never holds the table lock while
// waiting on a slot.
type table[V any] struct {
	mu    sync.RWMutex
	slots map[EntityID]*slot[V]
}

type slot[V any] struct {
	mu   sync.Mutex
	dead bool // dropped from the table; holders of a stale pointer must retry
	val  V
}

func newTable[V any]() *table[V] {
	return &table[V]{slots: make(map[EntityID]*slot[V])}
}

func (t *table[V]) lookup(id EntityID, create bool) *slot[V] {
	t.mu.RLock()
	s := t.slots[id]
	t.mu.RUnlock()
	if s != nil || !create {
		return s
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if s = t.slots[id]; s == nil {
		s = &slot[V]{}
		t.slots[id] = s
	}
	return s
}

// with runs fn on the value for id while holding the slot lock. A missing
// slot is created when create is set; otherwise with returns false without
// calling fn. When fn returns true the slot is dropped from the table.
//
// fn must not call back into the same table for the same id.
func (t *table[V]) with(id EntityID, create bool, fn func(v *V) (drop bool)) bool {
	for {
		s := t.lookup(id, create)
		if s == nil {
			return false
		}
		s.mu.Lock()
		if s.dead {
			s.mu.Unlock()
			continue
		}
		if fn(&s.val) {
			s.dead = true
			t.mu.Lock()
			if t.slots[id] == s {
				delete(t.slots, id)
			}
			t.mu.Unlock()
		}
		s.mu.Unlock()
		return true
	}
}

// ids returns a snapshot of the ids that currently own a slot.
func (t *table[V]) ids() []EntityID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]EntityID, 0, len(t.slots))
	for id := range t.slots {
		out = append(out, id)
	}
	return out
}

func (t *table[V]) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.slots)
}
