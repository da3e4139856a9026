package recording

import (
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/lockstep/command"
	"github.com/lixenwraith/lockstep/network"
	"github.com/lixenwraith/lockstep/packet"
)

// Replayer reconstructs a recorded command stream for deterministic replay
type Replayer struct {
	r       io.Reader
	log     zerolog.Logger
	pending []command.FrameCommand
	ended   bool
	batches uint64
}

// NewReplayer reads packets from r on demand
func NewReplayer(r io.Reader, opts ...Option) *Replayer {
	o := applyOptions(opts)
	return &Replayer{r: r, log: o.log}
}

// Receive implements network.Receiver
//
// Packets are pulled until the read-ahead holds a command at or past frame
// toFrame-1, then commands below toFrame are returned and the rest stay
// buffered. When the stream ends everything still buffered is returned
// regardless of frame, and every later call returns nothing.
func (p *Replayer) Receive(toFrame uint64) []command.FrameCommand {
	if p.ended {
		return nil
	}

	lookahead := toFrame
	if lookahead > 0 {
		lookahead--
	}

	for {
		cmds, err := network.ReadBatch(p.r)
		if err != nil {
			p.end(err)
			out := p.pending
			p.pending = nil
			return out
		}
		p.batches++
		p.pending = append(p.pending, cmds...)

		if reaches(p.pending, lookahead) {
			ready, rest := command.Below(p.pending, toFrame)
			p.pending = rest
			return ready
		}
	}
}

// Finished reports whether the underlying stream has ended
func (p *Replayer) Finished() bool {
	return p.ended
}

// Batches returns the number of packets read so far
func (p *Replayer) Batches() uint64 {
	return p.batches
}

func (p *Replayer) end(err error) {
	p.ended = true
	ev := p.log.Debug()
	msg := "replay stream finished"
	switch {
	case errors.Is(err, io.EOF):
	case packet.Truncated(err):
		ev = p.log.Warn()
		msg = "replay stream truncated"
	default:
		ev = p.log.Error()
		msg = "replay stream unreadable, replay stopped"
	}
	ev.Err(err).
		Uint64("batches", p.batches).
		Int("flushed", len(p.pending)).
		Msg(msg)
}

func reaches(cmds []command.FrameCommand, frame uint64) bool {
	for _, c := range cmds {
		if c.Frame >= frame {
			return true
		}
	}
	return false
}
