package clock

import "time"

// DefaultFPS is the simulation tick rate when none is configured
const DefaultFPS = 60

// FrameCounter derives the simulation frame number from elapsed real time
// The count is floor(elapsed * fps); it advances by however many ticks real
// time covers, so a slow host skips frame numbers rather than slowing down
type FrameCounter struct {
	time  TimeProvider
	start time.Time
	fps   uint64

	count       uint64
	lastElapsed time.Duration
}

// NewFrameCounter starts counting from the provider's current time
func NewFrameCounter(tp TimeProvider, fps uint64) *FrameCounter {
	if fps == 0 {
		fps = DefaultFPS
	}
	return &FrameCounter{
		time:  tp,
		start: tp.Now(),
		fps:   fps,
	}
}

// FPS returns the configured tick rate
func (c *FrameCounter) FPS() uint64 {
	return c.fps
}

// FrameTime returns the simulated duration of one frame in seconds
func (c *FrameCounter) FrameTime() float32 {
	return 1.0 / float32(c.fps)
}

// Run samples the clock and returns the time since the previous Run together
// with the half-open range [begin, end) of frames that elapsed in between
func (c *FrameCounter) Run() (delta time.Duration, begin, end uint64) {
	elapsed := c.time.Now().Sub(c.start)
	if elapsed < 0 {
		elapsed = 0
	}
	delta = elapsed - c.lastElapsed
	c.lastElapsed = elapsed

	begin = c.count
	end = uint64(elapsed.Seconds() * float64(c.fps))
	c.count = end
	return delta, begin, end
}

// Count returns the frame number computed by the last Run
func (c *FrameCounter) Count() uint64 {
	return c.count
}
