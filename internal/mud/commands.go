package mud

import (
	"context"
	"errors"
	"mysticism-mud/internal/mysticism"
	"strings"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Prompt constants.
const (
	MaxPromptLength = 80 // max runes a player can type
	PromptLabel     = "> "
)

// Command usage lines.
const (
	usageSetMyst   = "/mysticism setmyst <player> <amount (0.0 - 1.0)>"
	usageCheckMyst = "/mysticism checkmyst [player]"
	usageSay       = "/say <text>"
)

// errUsage marks a command rejected for its arguments.
var errUsage = errors.New("usage")

// Exec runs one prompt line for sender. Lines starting with '/' are
// commands; anything else is said aloud. Replies go to sender's message
// log. Each command runs in its own span.
func (s *Server) Exec(ctx context.Context, sender *Session, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if !strings.HasPrefix(line, "/") {
		s.say(ctx, sender, line)
		return
	}
	fields := strings.Fields(strings.TrimPrefix(line, "/"))
	if len(fields) == 0 {
		return
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	switch name {
	case "mysticism", "myst":
		s.mysticismCommand(ctx, sender, args)
	case "say":
		s.say(ctx, sender, strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, "/"), fields[0])))
	default:
		s.reply(sender, s.messenger.Sprintf(KeyUnknownCommand, fields[0]))
	}
}

// startCommand opens the span for a command.
func (s *Server) startCommand(ctx context.Context, sender *Session, name string, args []string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("mud.command", name),
		attribute.Int("mud.command.args", len(args)),
	}
	if sender != nil {
		attrs = append(attrs, attribute.String("mud.player", sender.Name))
	}
	return s.tracer.Start(ctx, "mud."+name, trace.WithAttributes(attrs...))
}

// endCommand records the outcome of a command on its span and in the log.
func (s *Server) endCommand(span trace.Span, name string, err error) {
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		s.logger.Debug("command handled", "command", name)
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.Info("command rejected", "command", name, "error", err)
}

func (s *Server) mysticismCommand(ctx context.Context, sender *Session, args []string) {
	if len(args) == 0 {
		s.replyHelp(sender)
		return
	}
	sub, rest := strings.ToLower(args[0]), args[1:]
	switch sub {
	case "setmyst":
		_, span := s.startCommand(ctx, sender, "setmyst", rest)
		s.endCommand(span, sub, s.setMyst(sender, rest))
	case "checkmyst":
		_, span := s.startCommand(ctx, sender, "checkmyst", rest)
		s.endCommand(span, sub, s.checkMyst(sender, rest))
	case "reload":
		_, span := s.startCommand(ctx, sender, "reload", rest)
		s.endCommand(span, sub, s.reload(sender))
	default:
		s.reply(sender, s.messenger.Sprintf(KeyUnknownSub, args[0]))
		s.replyHelp(sender)
	}
}

func (s *Server) setMyst(sender *Session, args []string) error {
	if len(args) != 2 {
		s.reply(sender, s.messenger.Sprintf(KeyUsage, usageSetMyst))
		return errUsage
	}
	target := s.FindPlayer(args[0])
	if target == nil {
		s.reply(sender, s.messenger.Sprintf(KeyPlayerNotFound))
		return errors.New("player not found")
	}
	v, err := mysticism.ParseLevel(args[1])
	if err != nil {
		s.reply(sender, s.messenger.Sprintf(KeyInvalidNumber, args[1]))
		return err
	}
	if err := s.engine.Admin.SetLevel(target.ID, v); err != nil {
		s.reply(sender, s.messenger.Sprintf(KeyOutOfRange))
		return err
	}
	target.recordLevel(v)
	s.reply(sender, s.messenger.Sprintf(KeySetSuccess, target.Name, v))
	s.messenger.Notify(target.ID, mysticism.MessageLevelSet, v)
	s.logger.Info("mysticism set", "target", target.Name, "entity", target.ID, "level", v)
	return nil
}

func (s *Server) checkMyst(sender *Session, args []string) error {
	var target *Session
	switch {
	case len(args) == 1:
		target = s.FindPlayer(args[0])
		if target == nil {
			s.reply(sender, s.messenger.Sprintf(KeyPlayerNotFound))
			return errors.New("player not found")
		}
	case len(args) == 0 && sender != nil:
		target = sender
	default:
		s.reply(sender, s.messenger.Sprintf(KeyUsage, usageCheckMyst))
		return errUsage
	}
	s.reply(sender, s.messenger.Sprintf(KeyCheck, target.Name, s.engine.Admin.Level(target.ID)))
	return nil
}

func (s *Server) reload(sender *Session) error {
	if err := s.ReloadFile(); err != nil {
		s.reply(sender, s.messenger.Sprintf(KeyReloadFailed, err.Error()))
		return err
	}
	s.reply(sender, s.messenger.Sprintf(KeyReloaded))
	return nil
}

func (s *Server) say(ctx context.Context, sender *Session, text string) {
	_, span := s.startCommand(ctx, sender, "say", nil)
	if text == "" || sender == nil {
		s.reply(sender, s.messenger.Sprintf(KeyUsage, usageSay))
		s.endCommand(span, "say", errUsage)
		return
	}
	sender.AddMessage(s.messenger.Sprintf(KeySay, text))
	for _, sess := range s.Sessions() {
		if sess != sender {
			sess.AddMessage(s.messenger.Sprintf(KeySaid, sender.Name, text))
		}
	}
	s.endCommand(span, "say", nil)
}

func (s *Server) replyHelp(sender *Session) {
	for _, key := range []string{KeyHelpHeader, KeyHelpSetMyst, KeyHelpCheckMyst, KeyHelpReload, KeyHelpFooter} {
		s.reply(sender, s.messenger.Sprintf(key))
	}
}

// reply sends text to sender, or logs it when the command came from the
// console.
func (s *Server) reply(sender *Session, text string) {
	if sender == nil {
		s.logger.Info("command reply", "text", text)
		return
	}
	sender.AddMessage(text)
}

// ─── Prompt modal ─────────────────────────────────────────────────────────────

// RunPrompt handles the input line. Drain ticks keep re-rendering the frame
// while the player types. Returns the typed line and true, or empty and
// false if cancelled.
func (s *Server) RunPrompt(sess *Session, eventCh <-chan tcell.Event, initial []rune) (string, bool) {
	buf := append([]rune(nil), initial...)

	draw := func() {
		s.RenderSession(sess)
		if sess.Renderer != nil {
			sess.Renderer.DrawPrompt(PromptLabel, buf)
		}
		sess.Screen.Show()
	}

	for {
		draw()
		select {
		case ev, ok := <-eventCh:
			if !ok {
				return "", false
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				sess.Screen.Sync()
			case *tcell.EventKey:
				switch ev.Key() {
				case tcell.KeyEnter:
					if len(buf) == 0 {
						return "", false // empty line = cancel
					}
					return string(buf), true
				case tcell.KeyEscape:
					return "", false
				case tcell.KeyBackspace, tcell.KeyBackspace2:
					if len(buf) > 0 {
						buf = buf[:len(buf)-1]
					}
				case tcell.KeyRune:
					if len(buf) < MaxPromptLength {
						buf = append(buf, ev.Rune())
					}
				}
			}
		case <-sess.RenderCh:
			// State changed; the loop redraws.
		}
	}
}
