package input

import (
	"fmt"
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// Rune aliases for keys that can't be bare single-char config keys
var runeAliases = map[string]rune{
	"space": ' ',
}

// Special key names accepted in keymap config
var specialKeyNames = map[string]tcell.Key{
	"up":     tcell.KeyUp,
	"down":   tcell.KeyDown,
	"left":   tcell.KeyLeft,
	"right":  tcell.KeyRight,
	"escape": tcell.KeyEscape,
	"ctrl+c": tcell.KeyCtrlC,
	"ctrl+q": tcell.KeyCtrlQ,
	"tab":    tcell.KeyTab,
	"enter":  tcell.KeyEnter,
}

// KeyTable maps terminal keys to actions
type KeyTable struct {
	// Special keys (Ctrl+*, arrows, escape)
	Keys map[tcell.Key]Action
	// Printable keys, matched case-insensitively
	Runes map[rune]Action
}

// DefaultKeyTable returns WASD movement, arrow look, q/Esc quit and c camera toggle
func DefaultKeyTable() *KeyTable {
	return &KeyTable{
		Keys: map[tcell.Key]Action{
			tcell.KeyCtrlC:  ActionQuit,
			tcell.KeyCtrlQ:  ActionQuit,
			tcell.KeyEscape: ActionQuit,
			tcell.KeyUp:     ActionLookUp,
			tcell.KeyDown:   ActionLookDown,
			tcell.KeyLeft:   ActionLookLeft,
			tcell.KeyRight:  ActionLookRight,
		},
		Runes: map[rune]Action{
			'w': ActionForward,
			's': ActionBack,
			'a': ActionLeft,
			'd': ActionRight,
			'q': ActionQuit,
			'c': ActionToggleCamera,
		},
	}
}

// Lookup returns the action bound to a tcell key event
func (kt *KeyTable) Lookup(ev *tcell.EventKey) Action {
	if ev.Key() == tcell.KeyRune {
		return kt.Runes[unicode.ToLower(ev.Rune())]
	}
	return kt.Keys[ev.Key()]
}

// Bind overrides a binding by key name and action name
// Key names are single characters, rune aliases, or special key names
func (kt *KeyTable) Bind(key, action string) error {
	a, err := ParseAction(action)
	if err != nil {
		return fmt.Errorf("key %q: %w", key, err)
	}
	if k, ok := specialKeyNames[key]; ok {
		kt.Keys[k] = a
		return nil
	}
	if r, ok := runeAliases[key]; ok {
		kt.Runes[r] = a
		return nil
	}
	runes := []rune(key)
	if len(runes) != 1 {
		return fmt.Errorf("invalid key name %q", key)
	}
	kt.Runes[unicode.ToLower(runes[0])] = a
	return nil
}

// Apply binds every entry of a keymap, stopping at the first invalid one
func (kt *KeyTable) Apply(keymap map[string]string) error {
	for key, action := range keymap {
		if err := kt.Bind(key, action); err != nil {
			return err
		}
	}
	return nil
}
