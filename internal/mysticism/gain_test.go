package mysticism

import "testing"

func TestGainCaps(t *testing.T) {
	cases := []struct {
		name   string
		start  float64
		amount float64
		limit  float64
		want   float64
	}{
		{"plain", 0, 0.5, 1, 0.5},
		{"stacks", 0.3, 0.5, 1, 0.8},
		{"capped at max", 0.8, 0.5, 1, 1},
		{"custom limit", 0.1, 0.5, 0.4, 0.4},
		{"limit above max", 0.9, 0.5, 3, 1},
		{"negative amount", 0.5, -0.2, 1, 0.3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := NewTracker(nil, quietLogger())
			g := NewGainService(tr, nil, quietLogger())
			id := newID()
			tr.Set(id, tc.start)
			if got := g.Gain(id, tc.amount, tc.limit); !approx(got, tc.want) {
				t.Errorf("Gain(%v, %v) from %v = %v, want %v", tc.amount, tc.limit, tc.start, got, tc.want)
			}
			if got := tr.Get(id); !approx(got, tc.want) {
				t.Errorf("stored level = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGainSendsSurgeMessage(t *testing.T) {
	tr := NewTracker(nil, quietLogger())
	m := &fakeMessenger{}
	g := NewGainService(tr, m, quietLogger())
	id := newID()

	g.GainDefault(id, 0.5)

	if n := m.count(MessageSurge); n != 1 {
		t.Fatalf("surge messages = %d, want 1", n)
	}
	if m.sent[0].value != 0.5 {
		t.Errorf("surge value = %v, want 0.5", m.sent[0].value)
	}
}
