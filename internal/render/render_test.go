package render

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

// ─── helpers ──────────────────────────────────────────────────────────────────

func newSimScreen(t *testing.T) tcell.Screen {
	t.Helper()
	ss := tcell.NewSimulationScreen("UTF-8")
	ss.SetSize(80, 24)
	if err := ss.Init(); err != nil {
		t.Fatalf("SimulationScreen.Init: %v", err)
	}
	t.Cleanup(ss.Fini)
	return ss
}

// row reads one screen row as a string.
func row(scr tcell.Screen, y int) string {
	w, _ := scr.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := scr.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

// ─── gauge ────────────────────────────────────────────────────────────────────

func TestFilledCells(t *testing.T) {
	cases := []struct {
		progress float64
		width    int
		want     int
	}{
		{0, 60, 0},
		{-1, 60, 0},
		{0.5, 60, 30},
		{0.05, 60, 3},
		{1, 60, 60},
		{2, 60, 60},
		{0.5, 0, 0},
	}
	for _, tc := range cases {
		if got := FilledCells(tc.progress, tc.width); got != tc.want {
			t.Errorf("FilledCells(%v, %d) = %d, want %d", tc.progress, tc.width, got, tc.want)
		}
	}
}

func TestDrawGaugeHidden(t *testing.T) {
	scr := newSimScreen(t)
	r := NewRenderer(scr)
	r.DrawGauge(Gauge{Visible: false, Progress: 0.5, Title: "Mysticism: 50.0%"})
	if strings.ContainsAny(row(scr, 1), "█░") {
		t.Error("hidden gauge drew a bar")
	}
}

func TestDrawGaugeVisible(t *testing.T) {
	scr := newSimScreen(t)
	r := NewRenderer(scr)
	r.DrawGauge(Gauge{Visible: true, Progress: 0.5, Title: "Mysticism: 50.0%"})

	if !strings.Contains(row(scr, 0), "Mysticism: 50.0%") {
		t.Errorf("title row = %q", row(scr, 0))
	}
	bar := row(scr, 1)
	full, empty := strings.Count(bar, "█"), strings.Count(bar, "░")
	if full == 0 || full != empty {
		t.Errorf("bar at 50%%: %d full, %d empty, want equal halves", full, empty)
	}
}

// ─── frame ────────────────────────────────────────────────────────────────────

func TestDrawFrameShowsStatusAndMessages(t *testing.T) {
	scr := newSimScreen(t)
	r := NewRenderer(scr)
	_, h := scr.Size()

	r.DrawFrame(Frame{
		Name:        "alice",
		Mode:        "survival",
		Level:       0.42,
		AllowFlight: true,
		Players:     []Player{{Name: "alice", Self: true}},
		Messages:    []string{"one", "two", "three", "four"},
	})

	status := row(scr, h-HUDRows+1)
	for _, want := range []string{"alice", "[survival]", "Mysticism: 42.0%", "can fly"} {
		if !strings.Contains(status, want) {
			t.Errorf("status %q missing %q", status, want)
		}
	}
	if strings.Contains(row(scr, h-HUDRows+2), "one") {
		t.Error("only the last three messages should be shown")
	}
	if !strings.Contains(row(scr, h-1), "four") {
		t.Errorf("last row = %q, want newest message", row(scr, h-1))
	}
}

func TestDrawPrompt(t *testing.T) {
	scr := newSimScreen(t)
	r := NewRenderer(scr)
	_, h := scr.Size()
	r.DrawPrompt("> ", []rune("/mysticism"))
	if got := row(scr, h-1); !strings.HasPrefix(got, "> /mysticism_") {
		t.Errorf("prompt row = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("averyverylongname", 6); got != "avery~" {
		t.Errorf("truncate(long) = %q, want %q", got, "avery~")
	}
}
