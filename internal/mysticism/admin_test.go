package mysticism

import (
	"errors"
	"math"
	"testing"
)

func TestAdminSetLevel(t *testing.T) {
	cases := []struct {
		in      float64
		wantErr bool
	}{
		{0, false},
		{0.42, false},
		{1, false},
		{-0.01, true},
		{1.01, true},
		{math.NaN(), true},
	}
	for _, tc := range cases {
		tr := NewTracker(nil, quietLogger())
		a := NewAdmin(tr)
		id := newID()
		tr.Set(id, 0.3)

		err := a.SetLevel(id, tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrOutOfRange) {
				t.Errorf("SetLevel(%v) error = %v, want out of range", tc.in, err)
			}
			if a.Level(id) != 0.3 {
				t.Errorf("SetLevel(%v) changed level to %v", tc.in, a.Level(id))
			}
			continue
		}
		if err != nil {
			t.Errorf("SetLevel(%v) = %v", tc.in, err)
		}
		if a.Level(id) != tc.in {
			t.Errorf("Level after SetLevel(%v) = %v", tc.in, a.Level(id))
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"0.5", 0.5, false},
		{" 1 ", 1, false},
		{"2.5", 2.5, false},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if tc.wantErr {
			if CodeOf(err) != CodeMalformed {
				t.Errorf("ParseLevel(%q) error = %v, want malformed", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, %v, want %v", tc.in, got, err, tc.want)
		}
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if got := CodeOf(errors.New("x")); got != CodeUnknown {
		t.Errorf("CodeOf(plain) = %v, want %v", got, CodeUnknown)
	}
	if got := CodeOf(nil); got != CodeUnknown {
		t.Errorf("CodeOf(nil) = %v, want %v", got, CodeUnknown)
	}
}
