package input

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

var t0 = time.Unix(1000, 0)

func press(a Action, at time.Time) Event {
	return Event{Kind: EventKeyPress, Action: a, At: at}
}

func TestMovementFolding(t *testing.T) {
	tests := []struct {
		name       string
		keys       []Action
		wantNil    bool
		fwd, right float32
	}{
		{"none", nil, true, 0, 0},
		{"forward", []Action{ActionForward}, false, 1, 0},
		{"back", []Action{ActionBack}, false, -1, 0},
		{"right", []Action{ActionRight}, false, 0, 1},
		{"left", []Action{ActionLeft}, false, 0, -1},
		{"diagonal", []Action{ActionForward, ActionLeft}, false, 1, -1},
		{"opposing forward cancels", []Action{ActionForward, ActionBack}, true, 0, 0},
		{"opposing keeps other axis", []Action{ActionForward, ActionBack, ActionRight}, false, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(0, 0)
			for _, k := range tt.keys {
				h.Handle(press(k, t0))
			}
			s := h.InputState(t0)
			if tt.wantNil {
				if s.Movement != nil {
					t.Fatalf("Expected no movement, got %+v", *s.Movement)
				}
				return
			}
			if s.Movement == nil {
				t.Fatal("Expected movement")
			}
			if s.Movement.Forward != tt.fwd || s.Movement.Right != tt.right {
				t.Errorf("Got (%v,%v), want (%v,%v)", s.Movement.Forward, s.Movement.Right, tt.fwd, tt.right)
			}
		})
	}
}

func TestKeyRelease(t *testing.T) {
	h := NewHandler(0, 0)
	h.Handle(press(ActionForward, t0))
	h.Handle(Event{Kind: EventKeyRelease, Action: ActionForward, At: t0})
	if s := h.InputState(t0); s.Movement != nil {
		t.Error("Released key still held")
	}
}

func TestKeyHoldWindow(t *testing.T) {
	h := NewHandler(100*time.Millisecond, 0)
	h.Handle(press(ActionForward, t0))

	if s := h.InputState(t0.Add(50 * time.Millisecond)); s.Movement == nil {
		t.Fatal("Key should be held inside the window")
	}

	// Auto-repeat refreshes the window
	h.Handle(press(ActionForward, t0.Add(90*time.Millisecond)))
	if s := h.InputState(t0.Add(150 * time.Millisecond)); s.Movement == nil {
		t.Fatal("Repeat should extend the hold")
	}

	if s := h.InputState(t0.Add(190 * time.Millisecond)); s.Movement != nil {
		t.Error("Key should expire after the hold window")
	}
}

func TestOrientationNeedsTwoSamples(t *testing.T) {
	h := NewHandler(0, 0.25)

	if s := h.InputState(t0); s.OrientationChange != nil {
		t.Fatal("No cursor yet, expected no orientation")
	}

	h.Handle(Event{Kind: EventCursor, X: 10, Y: 20})
	if s := h.InputState(t0); s.OrientationChange != nil {
		t.Fatal("First sample has no previous, expected no orientation")
	}

	h.Handle(Event{Kind: EventCursor, X: 30, Y: 10})
	s := h.InputState(t0)
	if s.OrientationChange == nil {
		t.Fatal("Expected orientation change")
	}
	// pitch = dy*s, yaw = -dx*s
	if s.OrientationChange.Pitch != -2.5 || s.OrientationChange.Yaw != -5 {
		t.Errorf("Got %+v", *s.OrientationChange)
	}

	// No movement since last sample: present but zero
	s = h.InputState(t0)
	if s.OrientationChange == nil || s.OrientationChange.Pitch != 0 || s.OrientationChange.Yaw != 0 {
		t.Errorf("Expected zero orientation change, got %+v", s.OrientationChange)
	}
}

func TestKeyboardLook(t *testing.T) {
	h := NewHandler(0, 0.5)
	h.Handle(press(ActionLookRight, t0))
	h.Handle(press(ActionLookRight, t0))
	h.Handle(press(ActionLookUp, t0))

	s := h.InputState(t0)
	if s.OrientationChange == nil {
		t.Fatal("Expected orientation change from keyboard look")
	}
	if s.OrientationChange.Yaw != -1 || s.OrientationChange.Pitch != -0.5 {
		t.Errorf("Got %+v", *s.OrientationChange)
	}
	if s.Movement != nil {
		t.Error("Look keys must not produce movement")
	}
}

func TestQuitAndCameraToggle(t *testing.T) {
	h := NewHandler(0, 0)
	h.HandleAll([]Event{
		press(ActionToggleCamera, t0),
		press(ActionToggleCamera, t0),
		press(ActionToggleCamera, t0),
	})
	if h.Quit() {
		t.Error("Unexpected quit")
	}
	if n := h.CameraToggled(); n != 3 {
		t.Errorf("CameraToggled = %d, want 3", n)
	}
	if n := h.CameraToggled(); n != 0 {
		t.Errorf("Counter not reset, got %d", n)
	}

	h.Handle(Event{Kind: EventQuit})
	if !h.Quit() {
		t.Error("Expected quit")
	}
}

func TestQueueDrainOrder(t *testing.T) {
	q := NewQueue()
	q.Push(press(ActionForward, t0))
	q.Push(Event{Kind: EventCursor, X: 1})
	q.Push(press(ActionQuit, t0))

	got := q.Drain()
	if len(got) != 3 || got[0].Action != ActionForward || got[1].Kind != EventCursor || got[2].Action != ActionQuit {
		t.Errorf("Drain order wrong: %+v", got)
	}
	if q.Len() != 0 || len(q.Drain()) != 0 {
		t.Error("Queue not empty after drain")
	}
}

func TestFromTcellKeys(t *testing.T) {
	kt := DefaultKeyTable()
	tests := []struct {
		name     string
		ev       *tcell.EventKey
		wantOK   bool
		wantKind EventKind
		want     Action
	}{
		{"w", tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone), true, EventKeyPress, ActionForward},
		{"upper W", tcell.NewEventKey(tcell.KeyRune, 'W', tcell.ModShift), true, EventKeyPress, ActionForward},
		{"a", tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone), true, EventKeyPress, ActionLeft},
		{"c", tcell.NewEventKey(tcell.KeyRune, 'c', tcell.ModNone), true, EventKeyPress, ActionToggleCamera},
		{"q", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), true, EventQuit, ActionQuit},
		{"ctrl+c", tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), true, EventQuit, ActionQuit},
		{"arrow", tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), true, EventKeyPress, ActionLookLeft},
		{"unbound", tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone), false, 0, ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := FromTcell(tt.ev, kt)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if ev.Kind != tt.wantKind || ev.Action != tt.want {
				t.Errorf("Got kind=%d action=%v, want kind=%d action=%v", ev.Kind, ev.Action, tt.wantKind, tt.want)
			}
		})
	}
}

func TestFromTcellMouse(t *testing.T) {
	ev, ok := FromTcell(tcell.NewEventMouse(12, 7, tcell.ButtonNone, tcell.ModNone), DefaultKeyTable())
	if !ok || ev.Kind != EventCursor || ev.X != 12 || ev.Y != 7 {
		t.Errorf("Got %+v ok=%v", ev, ok)
	}

	if _, ok := FromTcell(tcell.NewEventResize(80, 24), DefaultKeyTable()); ok {
		t.Error("Resize should not translate to input")
	}
}

func TestKeyTableBind(t *testing.T) {
	kt := DefaultKeyTable()
	err := kt.Apply(map[string]string{
		"i":     "forward",
		"space": "toggle_camera",
		"up":    "forward",
		"w":     "none",
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if kt.Runes['i'] != ActionForward || kt.Runes[' '] != ActionToggleCamera {
		t.Error("Rune bindings not applied")
	}
	if kt.Keys[tcell.KeyUp] != ActionForward {
		t.Error("Special key binding not applied")
	}
	if kt.Lookup(tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone)) != ActionNone {
		t.Error("Unbind did not take effect")
	}

	if err := kt.Bind("x", "jump"); err == nil {
		t.Error("Expected error for unknown action")
	}
	if err := kt.Bind("ab", "forward"); err == nil {
		t.Error("Expected error for invalid key name")
	}
}

func TestParseActionNames(t *testing.T) {
	for name, want := range actionRegistry {
		got, err := ParseAction(name)
		if err != nil || got != want {
			t.Errorf("ParseAction(%q) = %v, %v", name, got, err)
		}
		if got.String() != name {
			t.Errorf("String() = %q, want %q", got.String(), name)
		}
	}
}
