package mud

import (
	"mysticism-mud/internal/flight"
	"mysticism-mud/internal/mysticism"
	"mysticism-mud/internal/render"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
)

// MaxMessages caps a session's message log.
const MaxMessages = 50

// playerColors is the round-robin palette for distinguishing players visually.
var playerColors = []tcell.Color{
	tcell.ColorYellow,
	tcell.ColorFuchsia,
	tcell.ColorAqua,
	tcell.ColorLime,
	tcell.ColorOrange,
	tcell.ColorRed,
	tcell.ColorSilver,
	tcell.ColorWhite,
}

// Session holds all per-player state for one connection. It implements
// flight.Pilot; every accessor is safe for concurrent use because the drain
// goroutines land players through it.
type Session struct {
	ID    mysticism.EntityID
	Name  string // display name (SSH username or "Player N")
	Color tcell.Color

	// I/O
	Screen   tcell.Screen
	Renderer *render.Renderer

	// Render trigger: state changes send here; the session goroutine drains
	// and renders.
	RenderCh chan struct{}

	mu          sync.Mutex
	mode        flight.Mode
	allowFlight bool
	flying      bool
	takeoff     time.Time
	messages    []string
	log         FlightLog
	now         func() time.Time
}

// NewSession allocates a Session for a newly-connected player.
func NewSession(name string, color tcell.Color, screen tcell.Screen) *Session {
	return &Session{
		ID:       uuid.New(),
		Name:     name,
		Color:    color,
		Screen:   screen,
		RenderCh: make(chan struct{}, 1),
		log:      FlightLog{Player: name},
		now:      time.Now,
	}
}

// Mode returns the player's game mode.
func (s *Session) Mode() flight.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) setMode(m flight.Mode) {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
}

// AllowFlight reports whether the player may take off.
func (s *Session) AllowFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allowFlight
}

// SetAllowFlight grants or removes the ability to fly.
func (s *Session) SetAllowFlight(v bool) {
	s.mu.Lock()
	changed := s.allowFlight != v
	s.allowFlight = v
	s.mu.Unlock()
	if changed {
		s.signalRender()
	}
}

// Flying reports whether the player is aloft.
func (s *Session) Flying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flying
}

// SetFlying takes off or lands, keeping the flight log current.
func (s *Session) SetFlying(v bool) {
	s.mu.Lock()
	if s.flying == v {
		s.mu.Unlock()
		return
	}
	now := s.now()
	if v {
		s.takeoff = now
		s.log.Flights++
	} else if !s.takeoff.IsZero() {
		s.log.SecondsAloft += now.Sub(s.takeoff).Seconds()
		s.takeoff = time.Time{}
	}
	s.flying = v
	s.mu.Unlock()
	s.signalRender()
}

// AddMessage appends a message to the session's log, capping at MaxMessages
// entries.
func (s *Session) AddMessage(msg string) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	if len(s.messages) > MaxMessages {
		s.messages = s.messages[len(s.messages)-MaxMessages:]
	}
	s.mu.Unlock()
	s.signalRender()
}

// Messages returns a copy of the message log.
func (s *Session) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

// recordPotion counts a charge potion and the level it reached.
func (s *Session) recordPotion(level float64) {
	s.mu.Lock()
	s.log.Potions++
	s.log.PeakLevel = max(s.log.PeakLevel, level)
	s.mu.Unlock()
}

// recordLevel tracks the peak level seen.
func (s *Session) recordLevel(level float64) {
	s.mu.Lock()
	s.log.PeakLevel = max(s.log.PeakLevel, level)
	s.mu.Unlock()
}

// finishLog closes an open flight and returns the completed log.
func (s *Session) finishLog() FlightLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flying && !s.takeoff.IsZero() {
		s.log.SecondsAloft += s.now().Sub(s.takeoff).Seconds()
		s.takeoff = s.now()
	}
	l := s.log
	l.Timestamp = s.now()
	l.Mode = s.mode.String()
	return l
}

// signalRender sends a non-blocking render request.
func (s *Session) signalRender() {
	select {
	case s.RenderCh <- struct{}{}:
	default:
	}
}
