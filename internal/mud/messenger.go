package mud

import (
	"mysticism-mud/internal/mysticism"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// kindKeys maps core message kinds to catalog keys.
var kindKeys = map[mysticism.MessageKind]string{
	mysticism.MessageSurge:          KeySurge,
	mysticism.MessageRanOut:         KeyRanOut,
	mysticism.MessageFlightEnabled:  KeyFlightEnabled,
	mysticism.MessageFlightDisabled: KeyFlightDisabled,
	mysticism.MessageNotEnough:      KeyNotEnough,
	mysticism.MessageFlightLocked:   KeyFlightLocked,
	mysticism.MessageReevaluated:    KeyReevaluated,
	mysticism.MessageLevelSet:       KeyLevelSet,
}

// Messenger renders core messages through an x/text printer and hands the
// text to deliver.
type Messenger struct {
	printer *message.Printer
	deliver func(id mysticism.EntityID, text string)
}

// NewMessenger creates an English Messenger.
func NewMessenger(deliver func(id mysticism.EntityID, text string)) *Messenger {
	return &Messenger{printer: message.NewPrinter(language.English), deliver: deliver}
}

// Notify implements mysticism.Messenger.
func (m *Messenger) Notify(id mysticism.EntityID, kind mysticism.MessageKind, value float64) {
	m.deliver(id, m.Text(kind, value))
}

// Text formats kind with value.
func (m *Messenger) Text(kind mysticism.MessageKind, value float64) string {
	key, ok := kindKeys[kind]
	if !ok {
		return kind.String()
	}
	switch kind {
	case mysticism.MessageNotEnough:
		return m.printer.Sprintf(key, value*100)
	case mysticism.MessageLevelSet:
		return m.printer.Sprintf(key, value)
	default:
		return m.printer.Sprintf(key)
	}
}

// Sprintf formats a catalog key.
func (m *Messenger) Sprintf(key string, args ...any) string {
	return m.printer.Sprintf(key, args...)
}
