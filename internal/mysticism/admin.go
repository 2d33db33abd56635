package mysticism

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Admin is the query/override surface used by commands.
type Admin struct {
	tracker *Tracker
}

// NewAdmin creates an Admin over tracker.
func NewAdmin(tracker *Tracker) *Admin { return &Admin{tracker: tracker} }

// Level returns the level of id.
func (a *Admin) Level(id EntityID) float64 { return a.tracker.Get(id) }

// SetLevel overrides the level of id. Unlike Tracker.Set it rejects values
// outside [0, MaxLevel] with a CodeOutOfRange error instead of clamping.
func (a *Admin) SetLevel(id EntityID, v float64) error {
	if math.IsNaN(v) || v < 0 || v > MaxLevel {
		return newError(CodeOutOfRange, fmt.Sprintf("level %v must be between 0.0 and %.1f", v, MaxLevel))
	}
	a.tracker.Set(id, v)
	return nil
}

// ParseLevel parses command text into a level. It only checks the number
// format; the range is checked by SetLevel.
func ParseLevel(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, wrapError(CodeMalformed, fmt.Sprintf("invalid number %q", text), err)
	}
	return v, nil
}
