package recording

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/lockstep/command"
	"github.com/lixenwraith/lockstep/network"
)

type flusher interface {
	Flush() error
}

// Recorder writes every batch it is sent as one packet on the underlying sink
// It buffers nothing itself; a failed write can leave a partial packet behind
type Recorder struct {
	w       io.Writer
	log     zerolog.Logger
	batches uint64
}

// NewRecorder wraps w; if w has a Flush method it is called after every packet
func NewRecorder(w io.Writer, opts ...Option) *Recorder {
	o := applyOptions(opts)
	return &Recorder{w: w, log: o.log}
}

// Send implements network.Sender
func (r *Recorder) Send(cmds []command.FrameCommand) error {
	if err := network.WriteBatch(r.w, cmds); err != nil {
		r.log.Error().Err(err).Uint64("batch", r.batches).Msg("recording write failed")
		return err
	}
	if f, ok := r.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return err
		}
	}
	r.batches++
	return nil
}

// Batches returns the number of packets written so far
func (r *Recorder) Batches() uint64 {
	return r.batches
}
