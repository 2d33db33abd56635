package mysticism

import (
	"fmt"
	"time"
)

// Ticker delivers drain ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock hands out tickers to drain tasks.
type Clock interface {
	NewTicker(d time.Duration) (Ticker, error)
}

// SystemClock is the wall clock.
type SystemClock struct{}

// NewTicker wraps time.NewTicker. It refuses non-positive intervals instead
// of panicking.
func (SystemClock) NewTicker(d time.Duration) (Ticker, error) {
	if d <= 0 {
		return nil, fmt.Errorf("non-positive tick interval %v", d)
	}
	return systemTicker{time.NewTicker(d)}, nil
}

type systemTicker struct{ t *time.Ticker }

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }
