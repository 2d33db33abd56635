package mysticism

import (
	"errors"
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTickInterval is the period between drain ticks.
const DefaultTickInterval = time.Second

// LevelDrainer is the part of the Tracker the scheduler drains through.
type LevelDrainer interface {
	Drain(id EntityID, amount float64) float64
}

// drainState is the per-entity state owned by the DrainScheduler.
// task is non-nil exactly when sources is non-empty.
type drainState struct {
	sources map[string]float64
	task    *drainTask
}

type drainTask struct {
	ticker Ticker
	stop   chan struct{}
	once   sync.Once
}

// cancel stops the task immediately. Safe to call more than once and from
// the task's own goroutine.
func (t *drainTask) cancel() {
	t.once.Do(func() {
		close(t.stop)
		t.ticker.Stop()
	})
}

// DrainScheduler aggregates named drain sources per entity into a single
// periodic task that subtracts the summed rate on every tick.
type DrainScheduler struct {
	entities *table[drainState]
	levels   LevelDrainer
	reach    Reachability
	clock    Clock
	interval atomic.Int64
	stopped  atomic.Bool
	logger   *slog.Logger
	wg       sync.WaitGroup

	tickDone func(id EntityID) // test hook, runs after every tick
}

// NewDrainScheduler creates a scheduler that drains through levels. A nil
// clock uses SystemClock; a non-positive interval uses DefaultTickInterval.
func NewDrainScheduler(levels LevelDrainer, reach Reachability, clock Clock, interval time.Duration, logger *slog.Logger) *DrainScheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &DrainScheduler{
		entities: newTable[drainState](),
		levels:   levels,
		reach:    reach,
		clock:    clock,
		logger:   logger,
	}
	s.SetInterval(interval)
	return s
}

// SetInterval changes the tick period of tasks started afterwards.
func (s *DrainScheduler) SetInterval(d time.Duration) {
	if d <= 0 {
		d = DefaultTickInterval
	}
	s.interval.Store(int64(d))
}

// Interval returns the tick period for new tasks.
func (s *DrainScheduler) Interval() time.Duration { return time.Duration(s.interval.Load()) }

// AddSource registers or updates the named drain source for id. The first
// source of an entity starts its drain task; later sources only change the
// summed rate. Negative rates count as zero.
//
// When the task cannot be started the source is not kept, the error is
// returned, and the next AddSource tries again. A stopped scheduler refuses
// every new task.
func (s *DrainScheduler) AddSource(id EntityID, name string, rate float64) error {
	if !(rate > 0) {
		rate = 0
	}
	var err error
	var started bool
	var count int
	s.entities.with(id, true, func(st *drainState) bool {
		prev, existed := st.sources[name]
		if st.sources == nil {
			st.sources = make(map[string]float64)
		}
		st.sources[name] = rate
		if st.task == nil {
			st.task, err = s.start(id)
			if err != nil {
				if existed {
					st.sources[name] = prev
				} else {
					delete(st.sources, name)
				}
				return len(st.sources) == 0
			}
			started = true
		}
		count = len(st.sources)
		return false
	})
	if errors.Is(err, ErrStopped) {
		s.logger.Debug("drain source refused", "entity", id, "source", name, "reason", "scheduler stopped")
		return wrapError(CodeSchedule, "start drain task", err)
	}
	if err != nil {
		s.logger.Error("drain task not started", "entity", id, "source", name, "error", err)
		return wrapError(CodeSchedule, "start drain task", err)
	}
	if started {
		s.logger.Info("drain task started", "entity", id, "interval", s.Interval())
	}
	s.logger.Debug("drain source added", "entity", id, "source", name, "rate", rate, "sources", count)
	return nil
}

// RemoveSource removes the named drain source. Removing the last source
// stops the task and forgets the entity.
func (s *DrainScheduler) RemoveSource(id EntityID, name string) {
	var stopped bool
	s.entities.with(id, false, func(st *drainState) bool {
		if _, ok := st.sources[name]; !ok {
			return false
		}
		delete(st.sources, name)
		if len(st.sources) > 0 {
			return false
		}
		st.stopTask()
		stopped = true
		return true
	})
	if stopped {
		s.logger.Info("drain task stopped", "entity", id, "reason", "last source removed")
	}
}

// ClearAll drops every drain source of id and stops its task.
func (s *DrainScheduler) ClearAll(id EntityID) {
	var stopped bool
	s.entities.with(id, false, func(st *drainState) bool {
		stopped = st.task != nil
		st.stopTask()
		return true
	})
	if stopped {
		s.logger.Info("drain task stopped", "entity", id, "reason", "sources cleared")
	}
}

// StopAll stops every task, clears every source map and waits for all task
// goroutines to exit. The scheduler stays stopped: later AddSource calls
// fail. It must not be called from inside an Observer.
func (s *DrainScheduler) StopAll() {
	s.stopped.Store(true)
	ids := s.entities.ids()
	for _, id := range ids {
		s.entities.with(id, false, func(st *drainState) bool {
			st.stopTask()
			return true
		})
	}
	s.wg.Wait()
	s.logger.Info("all drain tasks stopped", "entities", len(ids))
}

// Stopped reports whether StopAll has been called.
func (s *DrainScheduler) Stopped() bool { return s.stopped.Load() }

// Running reports whether a drain task exists for id.
func (s *DrainScheduler) Running(id EntityID) bool {
	var running bool
	s.entities.with(id, false, func(st *drainState) bool {
		running = st.task != nil
		return false
	})
	return running
}

// Sources returns a copy of the active drain sources of id.
func (s *DrainScheduler) Sources(id EntityID) map[string]float64 {
	var out map[string]float64
	s.entities.with(id, false, func(st *drainState) bool {
		out = maps.Clone(st.sources)
		return false
	})
	return out
}

// DrainRate returns the summed per-tick rate of id.
func (s *DrainScheduler) DrainRate(id EntityID) float64 {
	var total float64
	s.entities.with(id, false, func(st *drainState) bool {
		total = st.total()
		return false
	})
	return total
}

// Len returns the number of entities with at least one drain source.
func (s *DrainScheduler) Len() int { return s.entities.len() }

func (st *drainState) total() float64 {
	var total float64
	for _, r := range st.sources {
		total += r
	}
	return total
}

func (st *drainState) stopTask() {
	if st.task != nil {
		st.task.cancel()
		st.task = nil
	}
	st.sources = nil
}

// start creates the ticker and goroutine of a new task. Caller holds the
// entity's slot lock, so StopAll either sees the new task in its snapshot or
// the task sees stopped.
func (s *DrainScheduler) start(id EntityID) (*drainTask, error) {
	if s.stopped.Load() {
		return nil, ErrStopped
	}
	ticker, err := s.clock.NewTicker(s.Interval())
	if err != nil {
		return nil, err
	}
	task := &drainTask{ticker: ticker, stop: make(chan struct{})}
	s.wg.Add(1)
	go s.run(id, task)
	return task, nil
}

func (s *DrainScheduler) run(id EntityID, task *drainTask) {
	defer s.wg.Done()
	for {
		select {
		case <-task.stop:
			return
		case <-task.ticker.C():
			select {
			case <-task.stop:
				return
			default:
			}
			if !s.tick(id, task) {
				return
			}
		}
	}
}

// tick applies one drain step and reports whether the task keeps running.
// The Tracker is called without holding the entity lock: its observer may
// remove drain sources of the same entity. A departure between the two steps
// is harmless because Drain never creates a level.
func (s *DrainScheduler) tick(id EntityID, task *drainTask) bool {
	if s.tickDone != nil {
		defer s.tickDone(id)
	}
	reachable := s.reach == nil || s.reach.IsReachable(id)
	var total float64
	var current bool
	var reason string
	s.entities.with(id, false, func(st *drainState) bool {
		if st.task != task {
			return false
		}
		current = true
		if !reachable {
			reason = "entity unreachable"
			st.stopTask()
			return true
		}
		total = st.total()
		if total == 0 {
			reason = "zero drain rate"
			st.stopTask()
			return true
		}
		return false
	})
	if !current {
		task.cancel()
		return false
	}
	if reason != "" {
		s.logger.Info("drain task stopped", "entity", id, "reason", reason)
		return false
	}
	level := s.levels.Drain(id, total)
	s.logger.Debug("drain tick", "entity", id, "drained", total, "level", level)
	return true
}
