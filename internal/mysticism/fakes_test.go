package mysticism

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

// ─── helpers ──────────────────────────────────────────────────────────────────

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// reachSet is a mutable Reachability. Unknown ids are reachable.
type reachSet struct {
	mu   sync.Mutex
	gone map[EntityID]bool
}

func (r *reachSet) IsReachable(id EntityID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.gone[id]
}

func (r *reachSet) leave(id EntityID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gone == nil {
		r.gone = make(map[EntityID]bool)
	}
	r.gone[id] = true
}

// recorder collects notifications in delivery order.
type recorder struct {
	mu     sync.Mutex
	levels map[EntityID][]float64
}

func (r *recorder) OnLevelChange(id EntityID, level float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.levels == nil {
		r.levels = make(map[EntityID][]float64)
	}
	r.levels[id] = append(r.levels[id], level)
}

func (r *recorder) get(id EntityID) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.levels[id]...)
}

// ─── manual clock ─────────────────────────────────────────────────────────────

type manualTicker struct {
	c       chan time.Time
	stopped atomic.Bool
}

func (t *manualTicker) C() <-chan time.Time { return t.c }
func (t *manualTicker) Stop()               { t.stopped.Store(true) }

type manualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
	fail    error
}

func (c *manualClock) NewTicker(time.Duration) (Ticker, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return nil, c.fail
	}
	t := &manualTicker{c: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t, nil
}

func (c *manualClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

// live counts tickers that were handed out and not stopped.
func (c *manualClock) live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tickers {
		if !t.stopped.Load() {
			n++
		}
	}
	return n
}

func (c *manualClock) ticker(i int) *manualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickers[i]
}

func (c *manualClock) setFail(err error) {
	c.mu.Lock()
	c.fail = err
	c.mu.Unlock()
}

var errNoTicker = errors.New("no ticker available")

// departingDrainer runs depart right before a drain reaches the Tracker,
// the window in which a player can leave mid-tick.
type departingDrainer struct {
	tr     *Tracker
	depart func(id EntityID)
}

func (d *departingDrainer) Drain(id EntityID, amount float64) float64 {
	if d.depart != nil {
		d.depart(id)
	}
	return d.tr.Drain(id, amount)
}

// drainHarness couples a scheduler to a manual clock and waits for each
// fired tick to finish.
type drainHarness struct {
	clock *manualClock
	done  chan EntityID
	s     *DrainScheduler
}

func newDrainHarness(levels LevelDrainer, reach Reachability) *drainHarness {
	h := &drainHarness{clock: &manualClock{}, done: make(chan EntityID, 64)}
	h.s = NewDrainScheduler(levels, reach, h.clock, time.Second, quietLogger())
	h.s.tickDone = func(id EntityID) { h.done <- id }
	return h
}

// fire delivers one tick to ticker i and blocks until it was processed.
func (h *drainHarness) fire(t *testing.T, i int) {
	t.Helper()
	select {
	case h.clock.ticker(i).c <- time.Now():
	case <-time.After(2 * time.Second):
		t.Fatalf("drain task %d did not accept a tick", i)
	}
	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("drain task %d did not finish its tick", i)
	}
}

// ─── collaborator fakes ───────────────────────────────────────────────────────

type fakeGauge struct {
	mu       sync.Mutex
	visible  map[EntityID]bool
	progress map[EntityID]float64
	calls    int
}

func newFakeGauge() *fakeGauge {
	return &fakeGauge{visible: map[EntityID]bool{}, progress: map[EntityID]float64{}}
}

func (g *fakeGauge) Show(id EntityID) {
	g.mu.Lock()
	g.visible[id] = true
	g.calls++
	g.mu.Unlock()
}

func (g *fakeGauge) Hide(id EntityID) {
	g.mu.Lock()
	g.visible[id] = false
	g.calls++
	g.mu.Unlock()
}

func (g *fakeGauge) SetProgress(id EntityID, v float64) {
	g.mu.Lock()
	g.progress[id] = v
	g.mu.Unlock()
}

func (g *fakeGauge) isVisible(id EntityID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.visible[id]
}

func (g *fakeGauge) progressOf(id EntityID) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.progress[id]
}

// fakeCapability records grants. onRevoke runs inside Revoke, which lets a
// test close the revoke → drain-source feedback loop.
type fakeCapability struct {
	mu       sync.Mutex
	granted  map[EntityID]bool
	inUse    map[EntityID]bool
	grants   int
	revokes  int
	onRevoke func(id EntityID)
}

func newFakeCapability() *fakeCapability {
	return &fakeCapability{granted: map[EntityID]bool{}, inUse: map[EntityID]bool{}}
}

func (c *fakeCapability) Grant(id EntityID) {
	c.mu.Lock()
	c.granted[id] = true
	c.grants++
	c.mu.Unlock()
}

func (c *fakeCapability) Revoke(id EntityID) {
	c.mu.Lock()
	c.granted[id] = false
	c.inUse[id] = false
	c.revokes++
	hook := c.onRevoke
	c.mu.Unlock()
	if hook != nil {
		hook(id)
	}
}

func (c *fakeCapability) InUse(id EntityID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inUse[id]
}

func (c *fakeCapability) setInUse(id EntityID) {
	c.mu.Lock()
	c.inUse[id] = true
	c.mu.Unlock()
}

func (c *fakeCapability) isGranted(id EntityID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.granted[id]
}

type sentMessage struct {
	id    EntityID
	kind  MessageKind
	value float64
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (m *fakeMessenger) Notify(id EntityID, kind MessageKind, value float64) {
	m.mu.Lock()
	m.sent = append(m.sent, sentMessage{id, kind, value})
	m.mu.Unlock()
}

func (m *fakeMessenger) count(kind MessageKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sent {
		if s.kind == kind {
			n++
		}
	}
	return n
}

func newID() EntityID { return uuid.New() }
