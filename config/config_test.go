package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/lockstep/input"
	"github.com/lixenwraith/lockstep/sim"
)

// TestDefaultConfig verifies the built-in configuration is valid
func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}
	if cfg.FPS != 60 {
		t.Errorf("Expected default fps 60, got %d", cfg.FPS)
	}
	modes := cfg.CameraModes()
	if len(modes) != 2 || modes[0] != sim.CameraFreeLook || modes[1] != sim.CameraFollow {
		t.Errorf("Unexpected default cameras: %v", modes)
	}
	if cfg.KeyHold() != input.DefaultKeyHold {
		t.Errorf("Expected key hold %v, got %v", input.DefaultKeyHold, cfg.KeyHold())
	}
}

func TestDecodeOverridesDefaults(t *testing.T) {
	cfg, err := Decode(`
fps = 30
mouse_sensitivity = 0.1

[player]
start_position = [1.0, 0.0, -3.0]
max_velocity = 8.0

[[cameras]]
kind = "follow"

[[cameras]]
kind = "free_look"
position = [0.0, 5.0, 0.0]
direction = [0.0, -1.0, -1.0]

[keys]
i = "forward"
k = "back"

[audio]
enabled = false
`)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if cfg.FPS != 30 {
		t.Errorf("fps = %d, want 30", cfg.FPS)
	}
	// Untouched keys keep defaults
	if cfg.MoveSpeed != sim.DefaultMoveSpeed {
		t.Errorf("move_speed = %v, want default", cfg.MoveSpeed)
	}
	if cfg.Audio.SampleRate != 44100 || cfg.Audio.Enabled {
		t.Errorf("Audio = %+v", cfg.Audio)
	}
	modes := cfg.CameraModes()
	if len(modes) != 2 || modes[0] != sim.CameraFollow {
		t.Errorf("Camera list not replaced: %v", modes)
	}

	kt := cfg.KeyTable()
	if kt.Runes['i'] != input.ActionForward || kt.Runes['w'] != input.ActionForward {
		t.Error("Key overrides should extend the default table")
	}

	s := cfg.Simulation(1.0 / 30)
	if s.Player.Position != (mgl32.Vec3{1, 0, -3}) || s.Player.MaxVelocity != 8 {
		t.Errorf("Player = %+v", s.Player)
	}
	if s.Camera.Position != (mgl32.Vec3{0, 5, 0}) {
		t.Errorf("Camera position = %v", s.Camera.Position)
	}
	if l := s.Camera.Direction.Len(); l < 0.999 || l > 1.001 {
		t.Errorf("Camera direction not normalized: %v", s.Camera.Direction)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "fps = "},
		{"zero fps", "fps = 0"},
		{"negative speed", "move_speed = -1.0"},
		{"zero sensitivity", "mouse_sensitivity = 0.0"},
		{"unknown key", "frames_per_second = 60"},
		{"bad camera kind", "[[cameras]]\nkind = \"orbit\""},
		{"zero direction", "[[cameras]]\nkind = \"free_look\"\nposition = [0.0, 0.0, 0.0]\ndirection = [0.0, 0.0, 0.0]"},
		{"bad action", "[keys]\nw = \"jump\""},
		{"volume", "[audio]\nmaster_volume = 1.5"},
		{"wrong type", "fps = \"fast\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestLoadFallsBack(t *testing.T) {
	dir := t.TempDir()

	missing := Load(filepath.Join(dir, "missing.toml"), zerolog.Nop())
	if missing.FPS != Default().FPS {
		t.Error("Missing file should yield defaults")
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("fps = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if cfg := Load(bad, zerolog.Nop()); cfg.FPS != 60 {
		t.Errorf("Invalid file should yield defaults, got fps %d", cfg.FPS)
	}

	good := filepath.Join(dir, "good.toml")
	if err := os.WriteFile(good, []byte("fps = 120\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if cfg := Load(good, zerolog.Nop()); cfg.FPS != 120 {
		t.Errorf("Expected fps 120, got %d", cfg.FPS)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LOCKSTEP_FPS", "144")
	t.Setenv("LOCKSTEP_AUDIO_ENABLED", "false")
	t.Setenv("LOCKSTEP_MASTER_VOLUME", "150")

	cfg := Default()
	cfg.ApplyEnv()
	if cfg.FPS != 144 {
		t.Errorf("fps = %d, want 144", cfg.FPS)
	}
	if cfg.Audio.Enabled {
		t.Error("Expected audio disabled")
	}
	if cfg.Audio.MasterVolume != 1 {
		t.Errorf("Volume should clamp to 1, got %v", cfg.Audio.MasterVolume)
	}

	t.Setenv("LOCKSTEP_FPS", "garbage")
	cfg = Default()
	cfg.ApplyEnv()
	if cfg.FPS != 60 {
		t.Errorf("Invalid env value should be ignored, got %d", cfg.FPS)
	}
}
