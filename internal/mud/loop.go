package mud

import (
	"context"

	"github.com/gdamore/tcell/v2"
)

// RunLoop is the per-session goroutine. It reads input, applies actions,
// triggers renders and handles modal screens (prompt, help). Blocks until
// the player disconnects or ctx is done.
func (s *Server) RunLoop(ctx context.Context, sess *Session) {
	// Start an async input reader goroutine.
	eventCh := make(chan tcell.Event, 32)
	go func() {
		for {
			ev := sess.Screen.PollEvent()
			if ev == nil {
				close(eventCh)
				return
			}
			eventCh <- ev
		}
	}()

	sess.signalRender()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-eventCh:
			if !ok {
				return // screen closed / disconnected
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				sess.Screen.Sync()
				sess.signalRender()
			case *tcell.EventKey:
				if s.handleKey(ctx, sess, ev, eventCh) {
					return
				}
			}

		case <-sess.RenderCh:
			s.RenderSession(sess)
			sess.Screen.Show()
		}
	}
}

// handleKey applies one key press. It returns true when the player quits.
func (s *Server) handleKey(ctx context.Context, sess *Session, ev *tcell.EventKey, eventCh <-chan tcell.Event) bool {
	switch keyToAction(ev) {
	case ActionQuit:
		if confirmQuit(sess, eventCh) {
			return true
		}
	case ActionPotion:
		s.DrinkPotion(sess)
	case ActionSplash:
		s.SplashPotion(sess)
	case ActionFlight:
		s.ToggleFlight(sess)
	case ActionMode:
		s.CycleMode(sess)
	case ActionPrompt:
		var initial []rune
		if ev.Rune() == '/' {
			initial = []rune{'/'}
		}
		if line, ok := s.RunPrompt(sess, eventCh, initial); ok {
			s.Exec(ctx, sess, line)
		}
	case ActionHelp:
		runHelp(sess, eventCh)
	default:
		return false
	}
	// Re-render after the action or modal.
	sess.signalRender()
	return false
}

// runHelp shows a keybinding reference overlay. Any key dismisses it.
func runHelp(sess *Session, eventCh <-chan tcell.Event) {
	lines := []string{
		"── Mysticism ─────────────────────────",
		"  p                   Drink charge potion",
		"  P                   Throw splash potion (everyone)",
		"  f / Space           Take off / land",
		"  m                   Cycle game mode",
		"",
		"── Prompt ────────────────────────────",
		"  /                   Command",
		"  t / Enter           Say something",
		"  /mysticism          Command help",
		"",
		"── Game ──────────────────────────────",
		"  q / Esc             Disconnect",
		"  ?                   This help",
		"",
		"  [any key to close]",
	}
	drawBox(sess.Screen, " Controls ", lines, 42)

	for {
		ev, ok := <-eventCh
		if !ok {
			return
		}
		switch ev.(type) {
		case *tcell.EventResize:
			sess.Screen.Sync()
			drawBox(sess.Screen, " Controls ", lines, 42)
		case *tcell.EventKey:
			return
		}
	}
}

// confirmQuit shows a "Really disconnect? (y/n)" prompt. Returns true if
// confirmed.
func confirmQuit(sess *Session, eventCh <-chan tcell.Event) bool {
	prompt := " Really disconnect? (y/n) "
	draw := func() { drawBox(sess.Screen, "", []string{prompt}, len([]rune(prompt))+4) }
	draw()

	for {
		ev, ok := <-eventCh
		if !ok {
			return true // disconnected
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			sess.Screen.Sync()
			draw()
		case *tcell.EventKey:
			switch ev.Rune() {
			case 'y', 'Y':
				return true
			default:
				return false
			}
		}
	}
}

// drawBox clears the screen and draws a centered bordered box with an
// optional header and one body line per row.
func drawBox(scr tcell.Screen, header string, lines []string, width int) {
	hdrStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	bodyStyle := tcell.StyleDefault.Foreground(tcell.ColorSilver)
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	if header == "" {
		bodyStyle = hdrStyle
	}

	scr.Clear()
	sw, sh := scr.Size()
	boxH := len(lines) + 2
	if header != "" {
		boxH++
	}
	x0 := (sw - width) / 2
	y0 := (sh - boxH) / 2

	for col := x0; col < x0+width; col++ {
		scr.SetContent(col, y0, '─', nil, borderStyle)
		scr.SetContent(col, y0+boxH-1, '─', nil, borderStyle)
	}
	for row := y0; row < y0+boxH; row++ {
		scr.SetContent(x0, row, '│', nil, borderStyle)
		scr.SetContent(x0+width-1, row, '│', nil, borderStyle)
	}
	scr.SetContent(x0, y0, '┌', nil, borderStyle)
	scr.SetContent(x0+width-1, y0, '┐', nil, borderStyle)
	scr.SetContent(x0, y0+boxH-1, '└', nil, borderStyle)
	scr.SetContent(x0+width-1, y0+boxH-1, '┘', nil, borderStyle)

	hx := x0 + (width-len([]rune(header)))/2
	for i, r := range []rune(header) {
		scr.SetContent(hx+i, y0, r, nil, hdrStyle)
	}
	for i, line := range lines {
		x := x0 + 2
		for _, r := range line {
			scr.SetContent(x, y0+1+i, r, nil, bodyStyle)
			x++
		}
	}
	scr.Show()
}
