// Package mud hosts the mysticism game for N connected players. Each
// connection gets a Session; the Server owns the roster and wires the
// mysticism engine, the flight manager, the per-player gauges and the
// messenger together. Rendering happens in each session's own goroutine,
// triggered through its RenderCh.
package mud

import (
	"errors"
	"log/slog"
	"mysticism-mud/internal/config"
	"mysticism-mud/internal/flight"
	"mysticism-mud/internal/mysticism"
	"mysticism-mud/internal/render"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "mysticism-mud/internal/mud"

// Options configures NewServer.
type Options struct {
	Config     config.Config
	ConfigPath string // file re-read by /mysticism reload
	Clock      mysticism.Clock
	Logger     *slog.Logger
	Tracer     trace.Tracer
}

// Server manages the roster and the game services for the MUD.
type Server struct {
	mu       sync.Mutex
	sessions []*Session // join order
	nextID   int
	cfg      config.Config
	cfgPath  string

	engine    *mysticism.Engine
	flight    *flight.Manager
	gauges    *GaugeBoard
	messenger *Messenger
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewServer builds the services and binds the flight manager as the
// engine's capability controller.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	cfg := opts.Config.Normalize()
	s := &Server{
		cfg:     cfg,
		cfgPath: opts.ConfigPath,
		logger:  logger,
		tracer:  tracer,
	}
	s.gauges = NewGaugeBoard(s.signal)
	s.messenger = NewMessenger(s.deliver)
	s.engine = mysticism.New(mysticism.Options{
		Thresholds:   thresholds(cfg),
		TickInterval: cfg.TickInterval,
		Clock:        opts.Clock,
		Reachability: s,
		Gauge:        s.gauges,
		Messenger:    s.messenger,
		Logger:       logger,
	})
	s.flight = flight.NewManager(s, s.engine.Tracker, s.engine.Drain, s.messenger,
		flightSettings(cfg), logger.With("component", "flight"))
	s.engine.Bind(s.flight)
	return s
}

func thresholds(cfg config.Config) mysticism.Thresholds {
	return mysticism.Thresholds{Gauge: cfg.MinForBar, Capability: cfg.FlightThreshold}
}

func flightSettings(cfg config.Config) flight.Settings {
	return flight.Settings{DrainRate: cfg.DrainRateFlight, Threshold: cfg.FlightThreshold}
}

// Engine exposes the mysticism services.
func (s *Server) Engine() *mysticism.Engine { return s.engine }

// Gauges exposes the gauge board.
func (s *Server) Gauges() *GaugeBoard { return s.gauges }

// Config returns the active settings.
func (s *Server) Config() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// NextPlayer returns a fresh player number and an assigned color.
// Safe to call concurrently.
func (s *Server) NextPlayer() (int, tcell.Color) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.mu.Unlock()
	return id, playerColors[id%len(playerColors)]
}

// ─── Roster ───────────────────────────────────────────────────────────────────

// IsReachable implements mysticism.Reachability: a player is reachable
// while connected.
func (s *Server) IsReachable(id mysticism.EntityID) bool {
	return s.session(id) != nil
}

// Pilot implements flight.Pilots.
func (s *Server) Pilot(id mysticism.EntityID) (flight.Pilot, bool) {
	sess := s.session(id)
	if sess == nil {
		return nil, false
	}
	return sess, true
}

func (s *Server) session(id mysticism.EntityID) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

// FindPlayer returns the online player with the given name, ignoring case.
func (s *Server) FindPlayer(name string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if strings.EqualFold(sess.Name, name) {
			return sess
		}
	}
	return nil
}

// Sessions returns the online sessions in join order.
func (s *Server) Sessions() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Session(nil), s.sessions...)
}

// AddSession registers a newly connected player.
func (s *Server) AddSession(sess *Session) {
	if sess.Renderer == nil && sess.Screen != nil {
		sess.Renderer = render.NewRenderer(sess.Screen)
	}
	s.mu.Lock()
	s.sessions = append(s.sessions, sess)
	s.mu.Unlock()
	s.logger.Info("player joined", "player", sess.Name, "entity", sess.ID)
	s.broadcast(s.messenger.Sprintf(KeyArrived, sess.Name))
}

// RemoveSession deregisters a departing player. The player becomes
// unreachable first, then its drain sources and level are dropped and its
// flight log is saved.
func (s *Server) RemoveSession(sess *Session) {
	s.mu.Lock()
	found := false
	for i, other := range s.sessions {
		if other == sess {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return
	}

	s.engine.Drain.ClearAll(sess.ID)
	s.engine.Tracker.Remove(sess.ID)
	s.gauges.Forget(sess.ID)
	saveFlightLog(sess.finishLog(), s.logger)

	s.logger.Info("player left", "player", sess.Name, "entity", sess.ID)
	s.broadcast(s.messenger.Sprintf(KeyLeft, sess.Name))
}

// Shutdown stops every drain task and hides every gauge.
func (s *Server) Shutdown() {
	s.engine.Shutdown()
	s.gauges.HideAll()
	s.logger.Info("server shut down")
}

// Reload applies new settings. Gauges are hidden and then recomputed from
// the current levels against the new thresholds.
func (s *Server) Reload(cfg config.Config) {
	cfg = cfg.Normalize()
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()

	s.gauges.HideAll()
	s.engine.Effects.SetThresholds(thresholds(cfg))
	s.engine.Drain.SetInterval(cfg.TickInterval)
	s.flight.SetConfig(flightSettings(cfg))

	for _, sess := range s.Sessions() {
		s.engine.Effects.OnLevelChange(sess.ID, s.engine.Tracker.Get(sess.ID))
	}
	s.logger.Info("configuration reloaded",
		"drain_rate_flight", cfg.DrainRateFlight,
		"charge_amount_potion", cfg.ChargeAmountPotion,
		"flight_threshold", cfg.FlightThreshold,
		"tick_interval", cfg.TickInterval,
		"min_for_bar", cfg.MinForBar)
}

// ReloadFile re-reads the settings file the server was started with.
func (s *Server) ReloadFile() error {
	s.mu.Lock()
	path := s.cfgPath
	s.mu.Unlock()
	if path == "" {
		return errors.New("mud: no configuration file")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	s.Reload(cfg)
	return nil
}

// ─── Player actions ───────────────────────────────────────────────────────────

// DrinkPotion applies one charge potion to sess and returns the new level.
func (s *Server) DrinkPotion(sess *Session) float64 {
	level := s.engine.Gain.GainDefault(sess.ID, s.Config().ChargeAmountPotion)
	sess.recordPotion(level)
	return level
}

// SplashPotion charges every online player, thrower included, and returns
// how many were hit.
func (s *Server) SplashPotion(thrower *Session) int {
	amount := s.Config().ChargeAmountPotion
	s.broadcast(s.messenger.Sprintf(KeySplash, thrower.Name))
	hit := s.Sessions()
	for _, sess := range hit {
		level := s.engine.Gain.GainDefault(sess.ID, amount)
		sess.recordPotion(level)
	}
	s.logger.Info("splash potion", "thrower", thrower.Name, "hit", len(hit), "amount", amount)
	return len(hit)
}

// ToggleFlight takes off or lands and reports whether sess is flying.
func (s *Server) ToggleFlight(sess *Session) bool {
	want := !sess.Flying()
	flying := s.flight.ToggleFlight(sess.ID, want)
	if !sess.Mode().Metered() {
		state := "off"
		if flying {
			state = "on"
		}
		sess.AddMessage(s.messenger.Sprintf(KeyFlightFreeToggle, state))
	}
	return flying
}

// CycleMode switches sess to the next game mode.
func (s *Server) CycleMode(sess *Session) flight.Mode {
	from := sess.Mode()
	to := from.Next()
	sess.setMode(to)
	s.flight.ModeChanged(sess.ID, from, to)
	sess.AddMessage(s.messenger.Sprintf(KeyModeChanged, to))
	return to
}

// ─── Delivery ─────────────────────────────────────────────────────────────────

// deliver routes a messenger line to an online player.
func (s *Server) deliver(id mysticism.EntityID, text string) {
	if sess := s.session(id); sess != nil {
		sess.AddMessage(text)
	}
}

// signal asks the player's session to redraw.
func (s *Server) signal(id mysticism.EntityID) {
	if sess := s.session(id); sess != nil {
		sess.signalRender()
	}
}

// broadcast sends a line to every online player.
func (s *Server) broadcast(text string) {
	for _, sess := range s.Sessions() {
		sess.AddMessage(text)
	}
}

// ─── Rendering ────────────────────────────────────────────────────────────────

// Frame snapshots everything sess needs to draw.
func (s *Server) Frame(sess *Session) render.Frame {
	g := s.gauges.View(sess.ID)
	f := render.Frame{
		Name:        sess.Name,
		Mode:        sess.Mode().String(),
		Level:       s.engine.Tracker.Get(sess.ID),
		Flying:      sess.Flying(),
		AllowFlight: sess.AllowFlight(),
		Gauge:       render.Gauge{Visible: g.Visible, Progress: g.Progress, Title: g.Title},
		Messages:    sess.Messages(),
	}
	for _, other := range s.Sessions() {
		f.Players = append(f.Players, render.Player{
			Name:   other.Name,
			Color:  other.Color,
			Flying: other.Flying(),
			Self:   other == sess,
		})
	}
	return f
}

// RenderSession draws the session's frame. The caller calls Screen.Show.
func (s *Server) RenderSession(sess *Session) {
	if sess.Renderer == nil {
		return
	}
	sess.Renderer.DrawFrame(s.Frame(sess))
}
