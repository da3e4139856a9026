package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Settings configures cue playback
type Settings struct {
	Enabled      bool
	MasterVolume float64 // 0.0 to 1.0
	SampleRate   int
}

// DefaultSettings returns unmuted playback at half volume
func DefaultSettings() Settings {
	return Settings{Enabled: true, MasterVolume: 0.5, SampleRate: 44100}
}

// Player mixes cues into the speaker
// Every method is safe to call before Initialize or after Cleanup.
type Player struct {
	mu          sync.Mutex
	settings    Settings
	mixer       *beep.Mixer
	ctrl        *beep.Ctrl
	initialized bool
	played      [cueCount]uint64
}

// NewPlayer creates a player; muted when settings.Enabled is false
func NewPlayer(settings Settings) *Player {
	if settings.SampleRate <= 0 {
		settings.SampleRate = DefaultSettings().SampleRate
	}
	mixer := &beep.Mixer{}
	return &Player{
		settings: settings,
		mixer:    mixer,
		ctrl:     &beep.Ctrl{Streamer: mixer, Paused: !settings.Enabled},
	}
}

// Initialize opens the speaker with a 100ms buffer
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	rate := beep.SampleRate(p.settings.SampleRate)
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.ctrl)
	p.initialized = true
	return nil
}

// Cleanup stops playback and releases the speaker
func (p *Player) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.mixer.Clear()
	p.initialized = false
}

// Play queues a cue; returns false when it was not queued
func (p *Player) Play(c Cue) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized || p.ctrl.Paused {
		return false
	}
	s := CueStreamer(c, beep.SampleRate(p.settings.SampleRate), p.settings.MasterVolume)
	if s == nil {
		return false
	}

	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
	p.played[c]++
	return true
}

// ToggleMute flips the mute state and returns the new state
func (p *Player) ToggleMute() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		speaker.Lock()
		defer speaker.Unlock()
	}
	p.ctrl.Paused = !p.ctrl.Paused
	return p.ctrl.Paused
}

// IsMuted reports whether cues are suppressed
func (p *Player) IsMuted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctrl.Paused
}

// IsRunning reports whether the speaker is open
func (p *Player) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// Played returns how many times a cue was queued
func (p *Player) Played(c Cue) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c < 0 || c >= cueCount {
		return 0
	}
	return p.played[c]
}
