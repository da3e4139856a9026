package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/lockstep/input"
	"github.com/lixenwraith/lockstep/sim"
)

// DefaultPath is read when no --config flag is given
const DefaultPath = "lockstep.toml"

// Config is the game configuration file
type Config struct {
	FPS              uint32            `toml:"fps"`
	MoveSpeed        float32           `toml:"move_speed"`
	MouseSensitivity float32           `toml:"mouse_sensitivity"`
	KeyHoldMs        int               `toml:"key_hold_ms"`
	Player           PlayerConfig      `toml:"player"`
	Cameras          []CameraConfig    `toml:"cameras"`
	Keys             map[string]string `toml:"keys"`
	Audio            AudioConfig       `toml:"audio"`
}

// PlayerConfig places the follow-mode avatar
type PlayerConfig struct {
	StartPosition [3]float32 `toml:"start_position"`
	MaxVelocity   float32    `toml:"max_velocity"`
}

// CameraConfig is one entry of the camera cycle
// Position and direction only apply to free-look cameras
type CameraConfig struct {
	Kind      string     `toml:"kind"`
	Position  [3]float32 `toml:"position"`
	Direction [3]float32 `toml:"direction"`
}

// AudioConfig holds cue playback settings
type AudioConfig struct {
	Enabled      bool    `toml:"enabled"`
	MasterVolume float64 `toml:"master_volume"` // 0.0 to 1.0
	SampleRate   int     `toml:"sample_rate"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		FPS:              60,
		MoveSpeed:        sim.DefaultMoveSpeed,
		MouseSensitivity: input.DefaultSensitivity,
		KeyHoldMs:        int(input.DefaultKeyHold / time.Millisecond),
		Player: PlayerConfig{
			MaxVelocity: sim.DefaultMaxVelocity,
		},
		Cameras: []CameraConfig{
			{Kind: "free_look", Position: [3]float32{0, 0, 2}, Direction: [3]float32{0, 0, -1}},
			{Kind: "follow"},
		},
		Audio: AudioConfig{
			Enabled:      true,
			MasterVolume: 0.5,
			SampleRate:   44100,
		},
	}
}

// Load reads path over the defaults
// A missing file yields defaults silently. An unparsable or invalid file
// yields defaults with a warning; configuration never stops the game.
func Load(path string, log zerolog.Logger) *Config {
	cfg, err := Parse(path)
	switch {
	case err == nil:
		log.Info().Str("path", path).Msg("config loaded")
		return cfg
	case errors.Is(err, os.ErrNotExist):
		log.Debug().Str("path", path).Msg("no config file, using defaults")
	default:
		log.Warn().Err(err).Str("path", path).Msg("config rejected, using defaults")
	}
	return Default()
}

// Parse decodes and validates a config file without falling back
func Parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(string(data))
}

// Decode parses TOML text over the defaults and validates the result
// Keys present in the text replace the defaults; a [[cameras]] list replaces
// the whole default camera list.
func Decode(data string) (*Config, error) {
	cfg := Default()
	cfg.Cameras = nil
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if !md.IsDefined("cameras") {
		cfg.Cameras = Default().Cameras
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and names
func (c *Config) Validate() error {
	if c.FPS == 0 || c.FPS > 1000 {
		return fmt.Errorf("fps must be in 1..1000, got %d", c.FPS)
	}
	if c.MoveSpeed < 0 {
		return fmt.Errorf("move_speed must not be negative, got %v", c.MoveSpeed)
	}
	if c.MouseSensitivity <= 0 {
		return fmt.Errorf("mouse_sensitivity must be positive, got %v", c.MouseSensitivity)
	}
	if c.KeyHoldMs < 0 {
		return fmt.Errorf("key_hold_ms must not be negative, got %d", c.KeyHoldMs)
	}
	if c.Player.MaxVelocity < 0 {
		return fmt.Errorf("player.max_velocity must not be negative, got %v", c.Player.MaxVelocity)
	}
	if len(c.Cameras) == 0 {
		return errors.New("at least one camera is required")
	}
	for i, cam := range c.Cameras {
		mode, err := sim.ParseCameraMode(cam.Kind)
		if err != nil {
			return fmt.Errorf("cameras[%d]: %w", i, err)
		}
		if mode == sim.CameraFreeLook && vec(cam.Direction).Len() == 0 {
			return fmt.Errorf("cameras[%d]: free_look direction must be non-zero", i)
		}
	}
	if err := input.DefaultKeyTable().Apply(c.Keys); err != nil {
		return fmt.Errorf("keys: %w", err)
	}
	if c.Audio.MasterVolume < 0 || c.Audio.MasterVolume > 1 {
		return fmt.Errorf("audio.master_volume must be in 0..1, got %v", c.Audio.MasterVolume)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	return nil
}

// ApplyEnv overrides selected settings from LOCKSTEP_* environment variables
// Unparsable values are ignored.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LOCKSTEP_FPS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil && n > 0 && n <= 1000 {
			c.FPS = uint32(n)
		}
	}
	if v := os.Getenv("LOCKSTEP_AUDIO_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Audio.Enabled = b
		}
	}
	if v := os.Getenv("LOCKSTEP_MASTER_VOLUME"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Audio.MasterVolume = min(max(float64(n)/100.0, 0), 1)
		}
	}
}

// KeyHold returns the key hold window
func (c *Config) KeyHold() time.Duration {
	return time.Duration(c.KeyHoldMs) * time.Millisecond
}

// KeyTable returns the default bindings with the [keys] overrides applied
func (c *Config) KeyTable() *input.KeyTable {
	kt := input.DefaultKeyTable()
	// Validated on load
	_ = kt.Apply(c.Keys)
	return kt
}

// CameraModes returns the camera cycle in file order
func (c *Config) CameraModes() []sim.CameraMode {
	modes := make([]sim.CameraMode, 0, len(c.Cameras))
	for _, cam := range c.Cameras {
		if m, err := sim.ParseCameraMode(cam.Kind); err == nil {
			modes = append(modes, m)
		}
	}
	return modes
}

// Simulation builds the initial world: the first free-look camera seeds the
// camera pose and the player starts at its configured position
func (c *Config) Simulation(frameTime float32) *sim.Simulation {
	s := sim.New(frameTime)
	s.MoveSpeed = c.MoveSpeed
	s.Player.Position = vec(c.Player.StartPosition)
	s.Player.MaxVelocity = c.Player.MaxVelocity
	for _, cam := range c.Cameras {
		if m, err := sim.ParseCameraMode(cam.Kind); err == nil && m == sim.CameraFreeLook {
			s.Camera = sim.NewFreeLook(vec(cam.Position), vec(cam.Direction))
			break
		}
	}
	return s
}

func vec(a [3]float32) mgl32.Vec3 {
	return mgl32.Vec3(a)
}
