// Package ssh adapts gliderlabs SSH sessions to tcell screens.
package ssh

import (
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
)

// DefaultTerm is used when the client sends no TERM or one that is not
// allowed.
const DefaultTerm = "xterm-256color"

// AllowedTerms are the terminal types a client may select. The value is
// passed to terminfo lookup, so arbitrary strings are refused.
var AllowedTerms = map[string]bool{
	"xterm":                 true,
	"xterm-color":           true,
	"xterm-256color":        true,
	"screen":                true,
	"screen-256color":       true,
	"tmux":                  true,
	"tmux-256color":         true,
	"linux":                 true,
	"vt100":                 true,
	"vt220":                 true,
	"rxvt-unicode":          true,
	"rxvt-unicode-256color": true,
}

// ErrNoPTY is returned by NewScreen for sessions without a PTY.
var ErrNoPTY = errors.New("ssh: session has no PTY")

// SessionTty implements tcell.Tty backed by a gliderlabs/ssh session.
// Each connected SSH client gets its own SessionTty → tcell.Screen pair.
type SessionTty struct {
	session gossh.Session
	mu      sync.Mutex
	window  gossh.Window
	winCh   <-chan gossh.Window
	cb      func() // resize callback registered by tcell
	watch   sync.Once
}

// NewSessionTty wraps a gliderlabs SSH session as a tcell Tty.
// pty holds the initial window size; winCh delivers subsequent resize events.
func NewSessionTty(s gossh.Session, pty gossh.Pty, winCh <-chan gossh.Window) *SessionTty {
	return &SessionTty{
		session: s,
		window:  pty.Window,
		winCh:   winCh,
	}
}

func (t *SessionTty) Read(b []byte) (int, error)  { return t.session.Read(b) }
func (t *SessionTty) Write(b []byte) (int, error) { return t.session.Write(b) }
func (t *SessionTty) Close() error                { return t.session.Close() }

// Start, Stop and Drain are no-ops: the channel is owned by the handler
// goroutine and writes are not buffered.
func (t *SessionTty) Start() error { return nil }
func (t *SessionTty) Stop() error  { return nil }
func (t *SessionTty) Drain() error { return nil }

// WindowSize returns the current terminal dimensions.
func (t *SessionTty) WindowSize() (tcell.WindowSize, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tcell.WindowSize{Width: t.window.Width, Height: t.window.Height}, nil
}

// NotifyResize registers the resize callback. The window-change channel is
// drained by one goroutine for the lifetime of the session, even when tcell
// registers callbacks more than once.
func (t *SessionTty) NotifyResize(cb func()) {
	t.mu.Lock()
	t.cb = cb
	t.mu.Unlock()

	t.watch.Do(func() {
		go func() {
			for win := range t.winCh {
				t.mu.Lock()
				t.window = win
				localCb := t.cb
				t.mu.Unlock()
				if localCb != nil {
					localCb()
				}
			}
		}()
	})
}

// TermFromEnv returns the allowed TERM value from an environment list, or
// DefaultTerm.
func TermFromEnv(environ []string) string {
	for _, env := range environ {
		if term, ok := strings.CutPrefix(env, "TERM="); ok {
			if AllowedTerms[term] {
				return term
			}
			break
		}
	}
	return DefaultTerm
}

// termMu protects os.Setenv("TERM") around screen creation.
var termMu sync.Mutex

// NewScreen creates and initializes a tcell screen for the session.
func NewScreen(s gossh.Session) (tcell.Screen, error) {
	pty, winCh, ok := s.Pty()
	if !ok {
		return nil, ErrNoPTY
	}
	term := pty.Term
	if !AllowedTerms[term] {
		term = TermFromEnv(s.Environ())
	}

	// TERM must be set in the process environment before
	// NewTerminfoScreenFromTty.
	tty := NewSessionTty(s, pty, winCh)
	termMu.Lock()
	_ = os.Setenv("TERM", term)
	screen, err := tcell.NewTerminfoScreenFromTty(tty)
	termMu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return screen, nil
}
