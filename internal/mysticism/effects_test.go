package mysticism

import "testing"

func newTestDispatcher() (*EffectDispatcher, *fakeGauge, *fakeCapability, *fakeMessenger) {
	g := newFakeGauge()
	c := newFakeCapability()
	m := &fakeMessenger{}
	d := NewEffectDispatcher(Thresholds{Gauge: 0.05, Capability: 0.05}, g, m, quietLogger())
	d.BindCapability(c)
	return d, g, c, m
}

func TestEffectsThresholdBoundaries(t *testing.T) {
	cases := []struct {
		level       float64
		wantVisible bool
		wantGranted bool
	}{
		{0, false, false},
		{0.049, false, false},
		{0.05, true, true},
		{0.5, true, true},
		{1, true, true},
	}
	for _, tc := range cases {
		d, g, c, _ := newTestDispatcher()
		id := newID()
		d.OnLevelChange(id, tc.level)
		if got := g.isVisible(id); got != tc.wantVisible {
			t.Errorf("level %v: gauge visible = %v, want %v", tc.level, got, tc.wantVisible)
		}
		if got := c.isGranted(id); got != tc.wantGranted {
			t.Errorf("level %v: granted = %v, want %v", tc.level, got, tc.wantGranted)
		}
		if got := g.progressOf(id); got != tc.level {
			t.Errorf("level %v: progress = %v", tc.level, got)
		}
	}
}

func TestEffectsSeparateThresholds(t *testing.T) {
	d, g, c, _ := newTestDispatcher()
	d.SetThresholds(Thresholds{Gauge: 0.1, Capability: 0.3})
	id := newID()

	d.OnLevelChange(id, 0.2)

	if !g.isVisible(id) {
		t.Error("gauge should be visible at 0.2 with gauge threshold 0.1")
	}
	if c.isGranted(id) {
		t.Error("capability should not be granted at 0.2 with threshold 0.3")
	}
	if got := d.Thresholds(); got.Capability != 0.3 {
		t.Errorf("Thresholds = %+v, want capability 0.3", got)
	}
}

func TestEffectsRanOutOnlyWhenInUse(t *testing.T) {
	d, _, c, m := newTestDispatcher()
	idle, flying := newID(), newID()
	c.setInUse(flying)

	d.OnLevelChange(idle, 0)
	d.OnLevelChange(flying, 0)

	if n := m.count(MessageRanOut); n != 1 {
		t.Fatalf("ran-out messages = %d, want 1", n)
	}
	m.mu.Lock()
	to := m.sent[0].id
	m.mu.Unlock()
	if to != flying {
		t.Error("ran-out message went to the idle entity")
	}

	// Revoke cleared in-use, so a repeated low level stays quiet.
	d.OnLevelChange(flying, 0)
	if n := m.count(MessageRanOut); n != 1 {
		t.Errorf("ran-out messages after second low level = %d, want 1", n)
	}
}

func TestEffectsRecomputeEveryNotification(t *testing.T) {
	d, g, c, _ := newTestDispatcher()
	id := newID()

	d.OnLevelChange(id, 0.5)
	d.OnLevelChange(id, 0.6)
	d.OnLevelChange(id, 0.7)

	if c.grants != 3 {
		t.Errorf("grants = %d, want 3 (one per notification)", c.grants)
	}
	if g.calls != 3 {
		t.Errorf("gauge visibility calls = %d, want 3", g.calls)
	}
}

func TestEffectsWithoutCapability(t *testing.T) {
	g := newFakeGauge()
	d := NewEffectDispatcher(Thresholds{Gauge: 0.05, Capability: 0.05}, g, nil, quietLogger())
	id := newID()

	d.OnLevelChange(id, 0.5)

	if !g.isVisible(id) {
		t.Error("gauge must still update with no capability bound")
	}
}
