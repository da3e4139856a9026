package sim

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// CameraMode selects which entity frame commands steer
type CameraMode int

const (
	CameraFreeLook CameraMode = iota
	CameraFollow
)

func (m CameraMode) String() string {
	switch m {
	case CameraFreeLook:
		return "free_look"
	case CameraFollow:
		return "follow"
	default:
		return fmt.Sprintf("camera(%d)", int(m))
	}
}

// ParseCameraMode maps a config kind to a CameraMode
func ParseCameraMode(kind string) (CameraMode, error) {
	switch kind {
	case "free_look", "freelook":
		return CameraFreeLook, nil
	case "follow":
		return CameraFollow, nil
	}
	return 0, fmt.Errorf("unknown camera kind %q", kind)
}

// Cameras is the ordered camera list the host cycles through
// Selection is host-local state and never part of the command stream
type Cameras struct {
	modes    []CameraMode
	selected int
}

// NewCameras creates a camera list; an empty list falls back to a single free-look camera
func NewCameras(modes ...CameraMode) *Cameras {
	if len(modes) == 0 {
		modes = []CameraMode{CameraFreeLook}
	}
	return &Cameras{modes: append([]CameraMode(nil), modes...)}
}

// Toggle advances the selection by n, wrapping around
func (c *Cameras) Toggle(n int) {
	if n <= 0 {
		return
	}
	c.selected = (c.selected + n) % len(c.modes)
}

// Selected returns the active camera mode
func (c *Cameras) Selected() CameraMode {
	return c.modes[c.selected]
}

// Index returns the position of the active camera in the list
func (c *Cameras) Index() int {
	return c.selected
}

// Len returns the number of cameras
func (c *Cameras) Len() int {
	return len(c.modes)
}

// View is an eye position looking at a target, with world up
type View struct {
	Eye    mgl32.Vec3
	Target mgl32.Vec3
}

// Matrix returns the look-at view matrix
func (v View) Matrix() mgl32.Mat4 {
	return mgl32.LookAtV(v.Eye, v.Target, worldUp)
}

// Offset of a follow camera in the player's local frame
var followOffset = mgl32.Vec3{0, -1.5, -4}

// FollowView places the eye behind and above the player, looking at it
func FollowView(p Pose) View {
	back := p.Orientation.Rotate(followOffset)
	return View{Eye: p.Position.Sub(back), Target: p.Position}
}

// FreeLookView looks from the camera position along its direction
func FreeLookView(f FreeLook) View {
	return View{Eye: f.Position, Target: f.Position.Add(f.Direction)}
}
