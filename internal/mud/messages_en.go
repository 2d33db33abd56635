package mud

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. Values are looked up in the x/text catalog.
const (
	KeySurge            = "mysticism.surge"
	KeyRanOut           = "mysticism.ran_out"
	KeyFlightEnabled    = "flight.enabled"
	KeyFlightDisabled   = "flight.disabled"
	KeyNotEnough        = "flight.not_enough"
	KeyFlightLocked     = "flight.locked"
	KeyReevaluated      = "flight.reevaluated"
	KeyLevelSet         = "mysticism.level_set"
	KeySetSuccess       = "command.set_success"
	KeyCheck            = "command.check"
	KeyUsage            = "command.usage"
	KeyPlayerNotFound   = "command.player_not_found"
	KeyInvalidNumber    = "command.invalid_number"
	KeyOutOfRange       = "command.out_of_range"
	KeyUnknownSub       = "command.unknown_subcommand"
	KeyUnknownCommand   = "command.unknown"
	KeyReloaded         = "command.reloaded"
	KeyReloadFailed     = "command.reload_failed"
	KeyHelpHeader       = "command.help_header"
	KeyHelpSetMyst      = "command.help_setmyst"
	KeyHelpCheckMyst    = "command.help_checkmyst"
	KeyHelpReload       = "command.help_reload"
	KeyHelpFooter       = "command.help_footer"
	KeySay              = "chat.say"
	KeySaid             = "chat.said"
	KeyArrived          = "roster.arrived"
	KeyLeft             = "roster.left"
	KeyModeChanged      = "mode.changed"
	KeySplash           = "potion.splash"
	KeyFlightFreeToggle = "flight.free_toggle"
)

func init() {
	lang := language.English

	message.SetString(lang, KeySurge, "You feel a surge of mysticism...")
	message.SetString(lang, KeyRanOut, "You have run out of mysticism and can no longer fly!")
	message.SetString(lang, KeyFlightEnabled, "Flight enabled! Soar through the skies.")
	message.SetString(lang, KeyFlightDisabled, "Flight disabled! Welcome back to solid ground.")
	message.SetString(lang, KeyNotEnough, "You do not have enough mysticism to fly! (Requires at least %.0f%%)")
	message.SetString(lang, KeyFlightLocked, "Your flight ability is currently disabled!")
	message.SetString(lang, KeyReevaluated, "Your mysticism flight ability has been re-evaluated.")
	message.SetString(lang, KeyLevelSet, "Your mysticism level has been set to %v")
	message.SetString(lang, KeySetSuccess, "Mysticism for %s set to %v")
	message.SetString(lang, KeyCheck, "Mysticism for %s: %.2f")
	message.SetString(lang, KeyUsage, "Usage: %s")
	message.SetString(lang, KeyPlayerNotFound, "Player not found or offline.")
	message.SetString(lang, KeyInvalidNumber, "Invalid number: %s")
	message.SetString(lang, KeyOutOfRange, "Value must be between 0.0 and 1.0.")
	message.SetString(lang, KeyUnknownSub, "Unknown subcommand: '%s'.")
	message.SetString(lang, KeyUnknownCommand, "Unknown command: %s")
	message.SetString(lang, KeyReloaded, "Mysticism configuration reloaded successfully!")
	message.SetString(lang, KeyReloadFailed, "Reload failed: %s")
	message.SetString(lang, KeyHelpHeader, "--- Mysticism Commands ---")
	message.SetString(lang, KeyHelpSetMyst, "/mysticism setmyst <player> <amount> - Set a player's mysticism level.")
	message.SetString(lang, KeyHelpCheckMyst, "/mysticism checkmyst [player] - Check a player's mysticism level.")
	message.SetString(lang, KeyHelpReload, "/mysticism reload - Reload the configuration file.")
	message.SetString(lang, KeyHelpFooter, "------------------------")
	message.SetString(lang, KeySay, "You say: \"%s\"")
	message.SetString(lang, KeySaid, "%s says: \"%s\"")
	message.SetString(lang, KeyArrived, "%s has arrived.")
	message.SetString(lang, KeyLeft, "%s has left.")
	message.SetString(lang, KeyModeChanged, "Game mode set to %s.")
	message.SetString(lang, KeySplash, "%s threw a splash potion of charge!")
	message.SetString(lang, KeyFlightFreeToggle, "Creative flight: %s")
}
