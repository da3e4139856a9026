package sim

import "github.com/go-gl/mathgl/mgl32"

var (
	worldUp = mgl32.Vec3{0, 1, 0}
	// Local axes of a posed entity: -Z is forward, +X is right
	localForward = mgl32.Vec3{0, 0, -1}
	localRight   = mgl32.Vec3{1, 0, 0}
)

// Posable is anything the simulation can steer with frame commands
type Posable interface {
	Translate(forward, right float32)
	Rotate(pitch, yaw float32)
}

// Pose is a position and orientation in world space
type Pose struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat
}

// NewPose places an unrotated pose at position
func NewPose(position mgl32.Vec3) Pose {
	return Pose{Position: position, Orientation: mgl32.QuatIdent()}
}

// Forward returns the pose's local forward axis in world space
func (p Pose) Forward() mgl32.Vec3 {
	return p.Orientation.Rotate(localForward)
}

// Player is the avatar steered in follow mode
type Player struct {
	Pose
	MaxVelocity float32
}

// PlayerController moves a player by velocity-scaled steps of one frame
type PlayerController struct {
	Player    *Player
	FrameTime float32
}

// Translate moves along the player's local axes by FrameTime*MaxVelocity per unit of input
func (c PlayerController) Translate(forward, right float32) {
	step := c.FrameTime * c.Player.MaxVelocity
	local := localRight.Mul(right * step).Add(localForward.Mul(forward * step))
	c.Player.Position = c.Player.Position.Add(c.Player.Orientation.Rotate(local))
}

// Rotate turns the player around its local Y axis; pitch is ignored so the
// avatar stays upright
func (c PlayerController) Rotate(_, yaw float32) {
	turn := mgl32.QuatRotate(yaw, worldUp)
	c.Player.Orientation = c.Player.Orientation.Mul(turn).Normalize()
}

// FreeLook is a detached camera flying along its view direction
type FreeLook struct {
	Position  mgl32.Vec3
	Direction mgl32.Vec3
}

// NewFreeLook creates a camera; a zero direction defaults to looking down -Z
func NewFreeLook(position, direction mgl32.Vec3) FreeLook {
	if direction.Len() == 0 {
		direction = localForward
	}
	return FreeLook{Position: position, Direction: direction.Normalize()}
}

func (f *FreeLook) right() mgl32.Vec3 {
	return f.Direction.Cross(worldUp)
}

// Translate moves forward along the view direction and sideways along its right vector
func (f *FreeLook) Translate(forward, right float32) {
	f.Position = f.Position.Add(f.Direction.Mul(forward)).Add(f.right().Mul(right))
}

// Rotate applies yaw around world up, then pitch around the camera's right vector
// Pitch is skipped while looking straight up or down, where right is undefined
func (f *FreeLook) Rotate(pitch, yaw float32) {
	axis := f.right()
	turned := mgl32.QuatRotate(yaw, worldUp).Rotate(f.Direction).Normalize()
	if axis.Len() < 1e-6 {
		f.Direction = turned
		return
	}
	f.Direction = mgl32.QuatRotate(pitch, axis.Normalize()).Rotate(turned).Normalize()
}

// Scaled wraps a Posable so translation inputs are multiplied by k
type Scaled struct {
	Posable
	K float32
}

// Translate implements Posable
func (s Scaled) Translate(forward, right float32) {
	s.Posable.Translate(forward*s.K, right*s.K)
}
