// Package commandqueue turns sporadic input into exactly one run of commands
// per simulation frame, with no gaps between calls.
package commandqueue

import (
	"github.com/rs/zerolog"

	"github.com/lixenwraith/lockstep/command"
)

// Queue tracks the last frame it produced commands for
type Queue struct {
	lastFrame uint64
	hasLast   bool
	log       zerolog.Logger
}

// New creates a queue that has not produced any frame yet
func New() *Queue {
	return &Queue{log: zerolog.Nop()}
}

// WithLogger sets the logger used for frame regression warnings
func (q *Queue) WithLogger(log zerolog.Logger) *Queue {
	q.log = log
	return q
}

// LastFrame returns the frame of the previous call, if any
func (q *Queue) LastFrame() (uint64, bool) {
	return q.lastFrame, q.hasLast
}

// InputToCommands emits the commands covering every frame since the previous call
//
// The first frame after the previous call (or currentFrame on the first call)
// receives the full input state, orientation delta included. Every frame from
// there through currentFrame then receives a movement-only command.
func (q *Queue) InputToCommands(state command.InputState, currentFrame uint64) []command.FrameCommand {
	start := currentFrame
	if q.hasLast {
		start = q.lastFrame + 1
	}

	if currentFrame < start {
		q.log.Warn().
			Uint64("current_frame", currentFrame).
			Uint64("start_frame", start).
			Msg("frame counter regressed, backfill skipped")
	}

	commands := seamCommands(state, start, currentFrame)

	q.lastFrame = currentFrame
	q.hasLast = true
	return commands
}

// seamCommands builds the full command at start followed by movement-only
// commands for start..=end. The frame at start therefore carries two commands;
// downstream consumers fold every command of a batch, so both are applied.
func seamCommands(state command.InputState, start, end uint64) []command.FrameCommand {
	n := 1
	if end >= start {
		n += int(end-start) + 1
	}
	commands := make([]command.FrameCommand, 0, n)

	commands = append(commands, command.FrameCommand{
		Command: state.Clone(),
		Frame:   start,
	})

	if end < start {
		return commands
	}
	for frame := start; ; frame++ {
		commands = append(commands, command.FrameCommand{
			Command: command.MovementOnly(state),
			Frame:   frame,
		})
		if frame == end {
			break
		}
	}
	return commands
}
