package command

// Movement is the held-key direction for one frame
// Both axes are in [-1, 1]
type Movement struct {
	Forward float32 `cbor:"forward"`
	Right   float32 `cbor:"right"`
}

// OrientationChange is a rotation delta, not an absolute angle
type OrientationChange struct {
	Pitch float32 `cbor:"pitch"`
	Yaw   float32 `cbor:"yaw"`
}

// InputState is the player input captured for a frame
// Nil fields mean "no input of that kind"
type InputState struct {
	Movement          *Movement          `cbor:"movement"`
	OrientationChange *OrientationChange `cbor:"orientation_change"`
}

// FrameCommand binds an input state to the simulation frame it applies to
type FrameCommand struct {
	Command InputState `cbor:"command"`
	Frame   uint64     `cbor:"frame"`
}

// FrameGroup is a run of commands sharing one frame number
type FrameGroup struct {
	Frame    uint64
	Commands []FrameCommand
}

// MovementOnly returns a copy of s with the orientation change cleared
func MovementOnly(s InputState) InputState {
	return InputState{Movement: cloneMovement(s.Movement)}
}

// Clone deep-copies the optional fields so the result shares no pointers with s
func (s InputState) Clone() InputState {
	out := InputState{Movement: cloneMovement(s.Movement)}
	if s.OrientationChange != nil {
		oc := *s.OrientationChange
		out.OrientationChange = &oc
	}
	return out
}

func cloneMovement(m *Movement) *Movement {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

// GroupByFrame splits cmds into consecutive runs of equal frame numbers
// Concatenating the groups' commands reproduces cmds in the original order;
// a frame number that reappears later starts a new group
func GroupByFrame(cmds []FrameCommand) []FrameGroup {
	if len(cmds) == 0 {
		return nil
	}

	groups := make([]FrameGroup, 0, 4)
	start := 0
	for i := 1; i <= len(cmds); i++ {
		if i < len(cmds) && cmds[i].Frame == cmds[start].Frame {
			continue
		}
		groups = append(groups, FrameGroup{
			Frame:    cmds[start].Frame,
			Commands: cmds[start:i:i],
		})
		start = i
	}
	return groups
}

// Flatten concatenates the commands of all groups in order
func Flatten(groups []FrameGroup) []FrameCommand {
	n := 0
	for _, g := range groups {
		n += len(g.Commands)
	}
	out := make([]FrameCommand, 0, n)
	for _, g := range groups {
		out = append(out, g.Commands...)
	}
	return out
}

// Below partitions cmds around the exclusive watermark toFrame
// Both results keep the relative order of cmds
func Below(cmds []FrameCommand, toFrame uint64) (below, rest []FrameCommand) {
	for _, c := range cmds {
		if c.Frame < toFrame {
			below = append(below, c)
		} else {
			rest = append(rest, c)
		}
	}
	return below, rest
}
