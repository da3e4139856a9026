package input

import "github.com/gdamore/tcell/v2"

// FromTcell translates a terminal event through the key table
// Returns false for events with no input meaning (resize, unbound keys).
func FromTcell(ev tcell.Event, kt *KeyTable) (Event, bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		a := kt.Lookup(ev)
		switch a {
		case ActionNone:
			return Event{}, false
		case ActionQuit:
			return Event{Kind: EventQuit, Action: a, At: ev.When()}, true
		}
		return Event{Kind: EventKeyPress, Action: a, At: ev.When()}, true

	case *tcell.EventMouse:
		x, y := ev.Position()
		return Event{Kind: EventCursor, X: float32(x), Y: float32(y), At: ev.When()}, true
	}
	return Event{}, false
}
