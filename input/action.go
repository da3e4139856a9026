package input

import "fmt"

// Action is the semantic meaning of a key
type Action uint8

const (
	ActionNone Action = iota

	// Held movement keys
	ActionForward
	ActionBack
	ActionLeft
	ActionRight

	// Keyboard look, nudges the virtual cursor
	ActionLookUp
	ActionLookDown
	ActionLookLeft
	ActionLookRight

	// System
	ActionQuit
	ActionToggleCamera
)

// actionRegistry maps canonical action names to actions
// Used by the keymap loader to resolve config strings
var actionRegistry = map[string]Action{
	"none":          ActionNone,
	"forward":       ActionForward,
	"back":          ActionBack,
	"left":          ActionLeft,
	"right":         ActionRight,
	"look_up":       ActionLookUp,
	"look_down":     ActionLookDown,
	"look_left":     ActionLookLeft,
	"look_right":    ActionLookRight,
	"quit":          ActionQuit,
	"toggle_camera": ActionToggleCamera,
}

// ParseAction resolves a canonical action name
func ParseAction(name string) (Action, error) {
	a, ok := actionRegistry[name]
	if !ok {
		return ActionNone, fmt.Errorf("unknown action %q", name)
	}
	return a, nil
}

func (a Action) String() string {
	for name, v := range actionRegistry {
		if v == a {
			return name
		}
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// held reports whether the action is a movement key tracked while pressed
func (a Action) held() bool {
	return a >= ActionForward && a <= ActionRight
}

// look returns the cursor step for keyboard look actions
func (a Action) look() (dx, dy float32, ok bool) {
	switch a {
	case ActionLookUp:
		return 0, -1, true
	case ActionLookDown:
		return 0, 1, true
	case ActionLookLeft:
		return -1, 0, true
	case ActionLookRight:
		return 1, 0, true
	}
	return 0, 0, false
}
