package audio

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Service wraps Player as a service.Service
// Handles graceful degradation when no audio device is available
type Service struct {
	log      zerolog.Logger
	player   *Player
	disabled atomic.Bool
}

// NewService creates a new audio service
func NewService(log zerolog.Logger) *Service {
	return &Service{log: log}
}

// Name implements service.Service
func (s *Service) Name() string {
	return "audio"
}

// Dependencies implements service.Service
func (s *Service) Dependencies() []string {
	return nil
}

// Init implements service.Service
// args[0]: Settings (default DefaultSettings)
// args[1]: bool - force mute
func (s *Service) Init(args ...any) error {
	settings := DefaultSettings()
	if len(args) > 0 {
		if v, ok := args[0].(Settings); ok {
			settings = v
		}
	}
	if len(args) > 1 {
		if muted, ok := args[1].(bool); ok && muted {
			settings.Enabled = false
		}
	}
	s.player = NewPlayer(settings)
	return nil
}

// Start implements service.Service
// Opens the speaker; on failure audio is disabled and no error is returned
func (s *Service) Start() error {
	if s.player == nil {
		s.disabled.Store(true)
		return nil
	}
	if s.player.IsMuted() {
		// No device needed until unmuted, and headless runs stay silent
		s.disabled.Store(true)
		s.log.Debug().Msg("audio muted, speaker not opened")
		return nil
	}
	if err := s.player.Initialize(); err != nil {
		s.disabled.Store(true)
		s.log.Warn().Err(err).Msg("audio unavailable, continuing without sound")
		return nil
	}
	return nil
}

// Stop implements service.Service
func (s *Service) Stop() error {
	if s.player != nil {
		s.player.Cleanup()
	}
	return nil
}

// IsDisabled returns true if audio is unavailable
func (s *Service) IsDisabled() bool {
	return s.disabled.Load()
}

// Play queues a cue if audio is available
func (s *Service) Play(c Cue) bool {
	if s.disabled.Load() || s.player == nil {
		return false
	}
	return s.player.Play(c)
}

// Player returns the underlying player (nil before Init)
func (s *Service) Player() *Player {
	return s.player
}
