// Package session advances the whole pipeline by one tick: frame counter,
// input or replay, transport, recording and simulation.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/lockstep/audio"
	"github.com/lixenwraith/lockstep/clock"
	"github.com/lixenwraith/lockstep/command"
	"github.com/lixenwraith/lockstep/commandqueue"
	"github.com/lixenwraith/lockstep/network"
	"github.com/lixenwraith/lockstep/sim"
)

// InputSource yields the input state for the frame being produced
type InputSource interface {
	InputState(now time.Time) command.InputState
}

// Notifier plays audible cues; nil disables cues
type Notifier interface {
	Play(c audio.Cue) bool
}

// finisher is implemented by receivers that can run dry, such as a replayer
type finisher interface {
	Finished() bool
}

// pender is implemented by clients that buffer commands ahead of the watermark
type pender interface {
	Pending() int
}

// Config wires the collaborators of a session
// Replayer nil means live input from Input.
type Config struct {
	Time     clock.TimeProvider
	Counter  *clock.FrameCounter
	Queue    *commandqueue.Queue
	Input    InputSource
	Client   network.Client
	Recorder network.Sender
	Replayer network.Receiver
	Sim      *sim.Simulation
	Cameras  *sim.Cameras
	Notifier Notifier
	Log      zerolog.Logger
}

// Tick is the outcome of one pipeline step
type Tick struct {
	Delta    time.Duration
	Frame    uint64
	Sent     int
	Received int
	Groups   int
	Hash     uint64
}

// Stats accumulates totals over the session
type Stats struct {
	Ticks    uint64
	Sent     uint64
	Received uint64
	Frame    uint64
	Hash     uint64
}

// Session runs the per-tick pipeline on one goroutine
type Session struct {
	cfg Config
	log zerolog.Logger

	stats          Stats
	replayFinished bool
}

// ErrMissingComponent reports a nil required collaborator
var ErrMissingComponent = errors.New("session: missing component")

// New validates cfg and fills optional collaborators with inert defaults
func New(cfg Config) (*Session, error) {
	switch {
	case cfg.Time == nil:
		return nil, fmt.Errorf("%w: time provider", ErrMissingComponent)
	case cfg.Counter == nil:
		return nil, fmt.Errorf("%w: frame counter", ErrMissingComponent)
	case cfg.Client == nil:
		return nil, fmt.Errorf("%w: client", ErrMissingComponent)
	case cfg.Sim == nil:
		return nil, fmt.Errorf("%w: simulation", ErrMissingComponent)
	case cfg.Replayer == nil && cfg.Input == nil:
		return nil, fmt.Errorf("%w: input source or replayer", ErrMissingComponent)
	}
	if cfg.Queue == nil {
		cfg.Queue = commandqueue.New().WithLogger(cfg.Log)
	}
	if cfg.Recorder == nil {
		cfg.Recorder = network.NewNullSender()
	}
	if cfg.Cameras == nil {
		cfg.Cameras = sim.NewCameras()
	}
	s := &Session{cfg: cfg, log: cfg.Log}
	s.stats.Hash = cfg.Sim.StateHash()
	return s, nil
}

// Replaying reports whether commands come from a replay stream
func (s *Session) Replaying() bool {
	return s.cfg.Replayer != nil
}

// Tick advances the pipeline to the current frame
//
// Live: input state → command queue → client. Replay: replayer → client.
// Either way the client's batch below the watermark is recorded, grouped by
// frame and applied to the simulation.
func (s *Session) Tick() (Tick, error) {
	delta, _, frame := s.cfg.Counter.Run()
	t := Tick{Delta: delta, Frame: frame}

	var cmds []command.FrameCommand
	if s.cfg.Replayer != nil {
		cmds = s.cfg.Replayer.Receive(frame)
	} else {
		state := s.cfg.Input.InputState(s.cfg.Time.Now())
		cmds = s.cfg.Queue.InputToCommands(state, frame)
	}
	if err := s.cfg.Client.Send(cmds); err != nil {
		return t, fmt.Errorf("send frame %d: %w", frame, err)
	}
	t.Sent = len(cmds)

	received := s.cfg.Client.Receive(frame)
	if err := s.cfg.Recorder.Send(received); err != nil {
		return t, fmt.Errorf("record frame %d: %w", frame, err)
	}
	t.Received = len(received)

	groups := command.GroupByFrame(received)
	t.Groups = len(groups)
	t.Hash = s.cfg.Sim.HandleFrames(groups, s.cfg.Cameras.Selected())

	s.stats.Ticks++
	s.stats.Sent += uint64(t.Sent)
	s.stats.Received += uint64(t.Received)
	s.stats.Frame = frame
	s.stats.Hash = t.Hash

	if len(received) > 0 {
		s.log.Trace().
			Uint64("frame", frame).
			Int("received", t.Received).
			Int("groups", t.Groups).
			Msg("tick")
	}

	s.checkReplayFinished(t)
	return t, nil
}

// checkReplayFinished fires once when the replay stream has ended and the
// client holds nothing more from it
func (s *Session) checkReplayFinished(t Tick) {
	if s.replayFinished || s.cfg.Replayer == nil {
		return
	}
	f, ok := s.cfg.Replayer.(finisher)
	if !ok || !f.Finished() || t.Received > 0 {
		return
	}
	if p, ok := s.cfg.Client.(pender); ok && p.Pending() > 0 {
		return
	}
	s.replayFinished = true
	s.log.Info().
		Uint64("frame", t.Frame).
		Uint64("hash", t.Hash).
		Uint64("commands", s.stats.Received).
		Msg("replay finished")
	s.notify(audio.CueReplayEnd)
}

// ReplayFinished reports whether a replay has been fully applied
func (s *Session) ReplayFinished() bool {
	return s.replayFinished
}

// ToggleCamera advances the camera selection by n presses
// Selection is host state and is not recorded.
func (s *Session) ToggleCamera(n uint32) {
	if n == 0 {
		return
	}
	s.cfg.Cameras.Toggle(int(n))
	s.log.Debug().Stringer("camera", s.cfg.Cameras.Selected()).Msg("camera toggled")
	s.notify(audio.CueCameraToggle)
}

// Camera returns the active camera mode
func (s *Session) Camera() sim.CameraMode {
	return s.cfg.Cameras.Selected()
}

// View returns the active camera view
func (s *Session) View() sim.View {
	return s.cfg.Sim.View(s.cfg.Cameras.Selected())
}

// Stats returns running totals
func (s *Session) Stats() Stats {
	return s.stats
}

// Simulation exposes the world state for display
func (s *Session) Simulation() *sim.Simulation {
	return s.cfg.Sim
}

func (s *Session) notify(c audio.Cue) {
	if s.cfg.Notifier != nil {
		s.cfg.Notifier.Play(c)
	}
}
