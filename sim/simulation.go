package sim

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lixenwraith/lockstep/command"
)

const (
	DefaultMoveSpeed   float32 = 0.1
	DefaultMaxVelocity float32 = 5
)

// Simulation is the deterministic world state advanced by frame commands
type Simulation struct {
	Camera    FreeLook
	Player    Player
	FrameTime float32
	// Free-look distance per unit of movement input
	MoveSpeed float32

	applied   uint64
	lastFrame uint64
}

// New creates a simulation with the camera at (0,0,2) looking down -Z and
// the player at the origin
func New(frameTime float32) *Simulation {
	return &Simulation{
		Camera:    NewFreeLook(mgl32.Vec3{0, 0, 2}, localForward),
		Player:    Player{Pose: NewPose(mgl32.Vec3{}), MaxVelocity: DefaultMaxVelocity},
		FrameTime: frameTime,
		MoveSpeed: DefaultMoveSpeed,
	}
}

// target returns the Posable steered in the given mode
func (s *Simulation) target(mode CameraMode) Posable {
	if mode == CameraFollow {
		return PlayerController{Player: &s.Player, FrameTime: s.FrameTime}
	}
	return Scaled{Posable: &s.Camera, K: s.MoveSpeed}
}

// HandleFrame applies each command of the group in order: orientation change
// first, then movement. Commands are applied unconditionally, duplicates included.
func (s *Simulation) HandleFrame(group command.FrameGroup, mode CameraMode) {
	t := s.target(mode)
	for _, c := range group.Commands {
		if oc := c.Command.OrientationChange; oc != nil {
			t.Rotate(oc.Pitch, oc.Yaw)
		}
		if m := c.Command.Movement; m != nil {
			t.Translate(m.Forward, m.Right)
		}
		s.applied++
	}
	if len(group.Commands) > 0 {
		s.lastFrame = group.Frame
	}
}

// HandleFrames applies groups in order and returns the resulting state hash
// Groups are not scaled by how many frames they span.
func (s *Simulation) HandleFrames(groups []command.FrameGroup, mode CameraMode) uint64 {
	for _, g := range groups {
		s.HandleFrame(g, mode)
	}
	return s.StateHash()
}

// Applied returns the number of commands applied so far
func (s *Simulation) Applied() uint64 {
	return s.applied
}

// LastFrame returns the frame number of the most recent non-empty group
func (s *Simulation) LastFrame() uint64 {
	return s.lastFrame
}

// View returns the eye and target for the given camera mode
func (s *Simulation) View(mode CameraMode) View {
	if mode == CameraFollow {
		return FollowView(s.Player.Pose)
	}
	return FreeLookView(s.Camera)
}

// StateHash digests the exact float bits of the world state
// Two runs fed the same groups produce the same hash.
func (s *Simulation) StateHash() uint64 {
	buf := make([]byte, 0, 4*14)
	put := func(vs ...float32) {
		for _, v := range vs {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
		}
	}
	put(s.Camera.Position[:]...)
	put(s.Camera.Direction[:]...)
	put(s.Player.Position[:]...)
	put(s.Player.Orientation.W)
	put(s.Player.Orientation.V[:]...)
	put(s.Player.MaxVelocity)
	return xxhash.Sum64(buf)
}
