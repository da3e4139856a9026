package input

import (
	"time"

	"github.com/lixenwraith/lockstep/command"
)

const (
	DefaultKeyHold     = 150 * time.Millisecond
	DefaultSensitivity = float32(0.05)
)

// Handler folds raw events into the per-frame input state
type Handler struct {
	// Terminals report presses but not releases, so a press counts as held
	// for hold after its last repeat. Zero means held until released.
	hold        time.Duration
	sensitivity float32

	pressed map[Action]time.Time

	cursor, lastCursor [2]float32
	hasCursor, hasLast bool

	quit    bool
	toggles uint32
}

// NewHandler creates a handler; non-positive sensitivity uses the default
func NewHandler(hold time.Duration, sensitivity float32) *Handler {
	if sensitivity <= 0 {
		sensitivity = DefaultSensitivity
	}
	if hold < 0 {
		hold = 0
	}
	return &Handler{
		hold:        hold,
		sensitivity: sensitivity,
		pressed:     make(map[Action]time.Time),
	}
}

// Handle applies one event
func (h *Handler) Handle(ev Event) {
	switch ev.Kind {
	case EventKeyPress:
		switch {
		case ev.Action == ActionQuit:
			h.quit = true
		case ev.Action == ActionToggleCamera:
			h.toggles++
		case ev.Action.held():
			h.pressed[ev.Action] = ev.At
		default:
			if dx, dy, ok := ev.Action.look(); ok {
				h.nudge(dx, dy)
			}
		}
	case EventKeyRelease:
		delete(h.pressed, ev.Action)
	case EventCursor:
		h.cursor = [2]float32{ev.X, ev.Y}
		h.hasCursor = true
	case EventLook:
		h.nudge(ev.X, ev.Y)
	case EventQuit:
		h.quit = true
	}
}

// HandleAll applies events in order
func (h *Handler) HandleAll(events []Event) {
	for _, ev := range events {
		h.Handle(ev)
	}
}

// nudge moves the virtual cursor; a first nudge anchors it at the origin
func (h *Handler) nudge(dx, dy float32) {
	if !h.hasCursor {
		h.hasCursor, h.hasLast = true, true
	}
	h.cursor[0] += dx
	h.cursor[1] += dy
}

func (h *Handler) down(a Action, now time.Time) bool {
	at, ok := h.pressed[a]
	if !ok {
		return false
	}
	if h.hold > 0 && now.Sub(at) >= h.hold {
		delete(h.pressed, a)
		return false
	}
	return true
}

// axis folds an opposing key pair into +1, -1 or no input
func axis(pos, neg bool) (float32, bool) {
	switch {
	case pos && !neg:
		return 1, true
	case neg && !pos:
		return -1, true
	}
	return 0, false
}

// InputState returns the input for the current frame and consumes the cursor delta
// Movement is nil when no movement key is held. Orientation is present once
// two cursor samples exist, even when the cursor has not moved.
func (h *Handler) InputState(now time.Time) command.InputState {
	var state command.InputState

	forward, okF := axis(h.down(ActionForward, now), h.down(ActionBack, now))
	right, okR := axis(h.down(ActionRight, now), h.down(ActionLeft, now))
	if okF || okR {
		state.Movement = &command.Movement{Forward: forward, Right: right}
	}

	if h.hasCursor && h.hasLast {
		dx := h.cursor[0] - h.lastCursor[0]
		dy := h.cursor[1] - h.lastCursor[1]
		state.OrientationChange = &command.OrientationChange{
			Pitch: dy * h.sensitivity,
			Yaw:   -dx * h.sensitivity,
		}
	}
	if h.hasCursor {
		h.lastCursor = h.cursor
		h.hasLast = true
	}

	return state
}

// Quit reports whether a quit was requested
func (h *Handler) Quit() bool {
	return h.quit
}

// CameraToggled returns the toggle presses since the last call and resets the count
func (h *Handler) CameraToggled() uint32 {
	n := h.toggles
	h.toggles = 0
	return n
}
