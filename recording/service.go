package recording

import (
	"errors"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/lockstep/network"
)

// Paths selects the files a session records to and replays from
// Empty fields disable the corresponding side
type Paths struct {
	Recording string
	Replay    string
	Compress  bool
}

// Service owns the recording and replay file handles for a session
type Service struct {
	log   zerolog.Logger
	paths Paths

	mu       sync.Mutex
	recorder network.Sender
	replayer network.Receiver
	closers  []io.Closer
}

// NewService creates a service with recording and replay disabled
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log:      log,
		recorder: network.NewNullSender(),
		replayer: network.NewNullReceiver(),
	}
}

// Name implements service.Service
func (s *Service) Name() string {
	return "recording"
}

// Dependencies implements service.Service
func (s *Service) Dependencies() []string {
	return nil
}

// Init implements service.Service
// args[0]: Paths
func (s *Service) Init(args ...any) error {
	if len(args) > 0 {
		if p, ok := args[0].(Paths); ok {
			s.paths = p
		}
	}
	return nil
}

// Start opens the configured files; failures are fatal to the session
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, recCloser, err := TryCreateRecorder(s.paths.Recording, s.paths.Compress, s.log)
	if err != nil {
		return err
	}

	rep, repCloser, err := TryCreateReplayer(s.paths.Replay, s.log)
	if err != nil {
		recCloser.Close()
		return err
	}

	s.recorder, s.replayer = rec, rep
	s.closers = append(s.closers, recCloser, repCloser)
	return nil
}

// Stop flushes the recording and closes both files
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	s.closers = nil
	s.recorder = network.NewNullSender()
	s.replayer = network.NewNullReceiver()
	return errors.Join(errs...)
}

// Recorder returns the active recording sink (NullSender when disabled)
func (s *Service) Recorder() network.Sender {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorder
}

// Replayer returns the active replay source (NullReceiver when disabled)
func (s *Service) Replayer() network.Receiver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replayer
}

// Replaying reports whether input comes from a replay file
func (s *Service) Replaying() bool {
	return s.paths.Replay != ""
}
