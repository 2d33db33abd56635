package mysticism

import "testing"

type engineHarness struct {
	*drainHarness
	e     *Engine
	gauge *fakeGauge
	ctl   *fakeCapability
	msg   *fakeMessenger
	reach *reachSet
}

func newEngineHarness() *engineHarness {
	h := &engineHarness{
		drainHarness: &drainHarness{clock: &manualClock{}, done: make(chan EntityID, 64)},
		gauge:        newFakeGauge(),
		ctl:          newFakeCapability(),
		msg:          &fakeMessenger{},
		reach:        &reachSet{},
	}
	h.e = New(Options{
		Thresholds:   Thresholds{Gauge: 0.05, Capability: 0.05},
		Clock:        h.clock,
		Reachability: h.reach,
		Gauge:        h.gauge,
		Messenger:    h.msg,
		Logger:       quietLogger(),
	})
	h.e.Bind(h.ctl)
	h.s = h.e.Drain
	h.s.tickDone = func(id EntityID) { h.done <- id }
	return h
}

func TestScenarioPotionGrantsFlight(t *testing.T) {
	h := newEngineHarness()
	id := newID()

	h.e.Gain.GainDefault(id, 0.5)

	if got := h.e.Admin.Level(id); got != 0.5 {
		t.Errorf("level = %v, want 0.5", got)
	}
	if !h.ctl.isGranted(id) {
		t.Error("expected capability granted")
	}
	if !h.gauge.isVisible(id) {
		t.Error("expected gauge shown")
	}
	if h.msg.count(MessageSurge) != 1 {
		t.Error("expected one surge message")
	}
}

func TestScenarioFlightDrainsToZero(t *testing.T) {
	h := newEngineHarness()
	id := newID()
	h.e.Gain.GainDefault(id, 0.5)
	if err := h.e.Drain.AddSource(id, "flight", 0.05); err != nil {
		t.Fatalf("AddSource: %v", err)
	}

	for range 10 {
		h.fire(t, 0)
	}

	if got := h.e.Tracker.Get(id); !approx(got, 0) {
		t.Errorf("level after 10 ticks = %v, want 0", got)
	}
	if h.ctl.isGranted(id) {
		t.Error("expected capability revoked")
	}
	if h.gauge.isVisible(id) {
		t.Error("expected gauge hidden")
	}
	// Nothing removed the source, so the task keeps ticking at zero.
	if !h.e.Drain.Running(id) {
		t.Fatal("task must keep running until its source is removed")
	}
	h.fire(t, 0)
	if got := h.e.Tracker.Get(id); got != 0 {
		t.Errorf("level = %v, want 0 (clamped)", got)
	}

	h.e.Drain.RemoveSource(id, "flight")
	if h.e.Drain.Running(id) {
		t.Error("expected task stopped after RemoveSource")
	}
	h.e.Shutdown()
}

func TestScenarioRevokeRemovesDrainSource(t *testing.T) {
	h := newEngineHarness()
	id := newID()
	h.ctl.onRevoke = func(id EntityID) { h.e.Drain.RemoveSource(id, "flight") }

	h.e.Tracker.Set(id, 0.1)
	h.ctl.setInUse(id)
	_ = h.e.Drain.AddSource(id, "flight", 0.05)

	h.fire(t, 0) // 0.05, still granted
	if !h.e.Drain.Running(id) {
		t.Fatal("task stopped too early")
	}
	h.fire(t, 0) // below threshold, revoke removes the source from inside the tick

	if h.e.Drain.Running(id) {
		t.Error("expected the revoke to stop the drain task")
	}
	if n := h.msg.count(MessageRanOut); n != 1 {
		t.Errorf("ran-out messages = %d, want 1", n)
	}
	h.s.wg.Wait()
}

func TestScenarioDeparture(t *testing.T) {
	h := newEngineHarness()
	id := newID()
	h.e.Gain.GainDefault(id, 0.5)
	_ = h.e.Drain.AddSource(id, "flight", 0.05)

	h.reach.leave(id)
	h.e.Drain.ClearAll(id)
	h.e.Tracker.Remove(id)

	if h.e.Drain.Len() != 0 || h.e.Tracker.Len() != 0 {
		t.Errorf("state left after departure: drain=%d tracker=%d", h.e.Drain.Len(), h.e.Tracker.Len())
	}
	h.s.wg.Wait()
}
