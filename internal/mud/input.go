package mud

import "github.com/gdamore/tcell/v2"

// Action represents a player-requested action.
type Action uint8

const (
	ActionNone Action = iota
	ActionPotion
	ActionSplash
	ActionFlight
	ActionMode
	ActionPrompt
	ActionHelp
	ActionQuit
)

// keyToAction maps a tcell key event to an action.
func keyToAction(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyEscape:
		return ActionQuit
	case tcell.KeyEnter:
		return ActionPrompt
	}
	switch ev.Rune() {
	case 'p':
		return ActionPotion
	case 'P':
		return ActionSplash
	case 'f', 'F', ' ':
		return ActionFlight
	case 'm', 'M':
		return ActionMode
	case '/', 't', 'T':
		return ActionPrompt
	case '?':
		return ActionHelp
	case 'q', 'Q':
		return ActionQuit
	}
	return ActionNone
}
