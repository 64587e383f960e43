package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/conorfennell/orgdrill/internal/config"
	"github.com/conorfennell/orgdrill/internal/session"
)

// KeyMap binds keys to session choices.
type KeyMap struct {
	Reveal  key.Binding
	Skip    key.Binding
	Quit    key.Binding
	Success key.Binding
	Failure key.Binding
}

// NewKeyMap builds bindings from the configured keys.
func NewKeyMap(k config.Keys) KeyMap {
	return KeyMap{
		Reveal:  binding(k.Reveal, "reveal"),
		Skip:    binding(k.Skip, "skip"),
		Quit:    binding(k.Quit, "quit"),
		Success: binding(k.Success, "recalled"),
		Failure: binding(k.Failure, "forgot"),
	}
}

func binding(keys []string, desc string) key.Binding {
	keys = slices.Clone(keys)
	for i, k := range keys {
		keys[i] = keyValue(k)
	}
	helpKey := ""
	if len(keys) > 0 {
		helpKey = keyName(keys[0])
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc))
}

// keyValue maps a configured key to what bubbletea reports for it. The
// space bar arrives as " ", so "space" in config means " ".
func keyValue(k string) string {
	if strings.EqualFold(k, "space") {
		return " "
	}
	return k
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

// For returns the binding of a choice.
func (km KeyMap) For(c session.Choice) key.Binding {
	switch c {
	case session.Reveal:
		return km.Reveal
	case session.Skip:
		return km.Skip
	case session.Quit:
		return km.Quit
	case session.Success:
		return km.Success
	default:
		return km.Failure
	}
}

// Bindings returns the bindings of choices, in order.
func (km KeyMap) Bindings(choices []session.Choice) []key.Binding {
	out := make([]key.Binding, 0, len(choices))
	for _, c := range choices {
		out = append(out, km.For(c))
	}
	return out
}
