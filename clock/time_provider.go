package clock

import (
	"sync/atomic"
	"time"
)

// TimeProvider is the source of wall-clock time for frame counting
type TimeProvider interface {
	Now() time.Time
}

// MonotonicTimeProvider provides the real system time with monotonic clock readings
type MonotonicTimeProvider struct{}

// NewMonotonicTimeProvider creates a new monotonic time provider
func NewMonotonicTimeProvider() *MonotonicTimeProvider {
	return &MonotonicTimeProvider{}
}

// Now returns the current time with monotonic clock reading
func (p *MonotonicTimeProvider) Now() time.Time {
	return time.Now()
}

// ManualTimeProvider is a clock that only moves when told to
// It drives tests and headless runs, where frame numbers must not depend on
// how fast the host executes. Time is kept as an offset from a fixed origin.
type ManualTimeProvider struct {
	origin time.Time
	offset atomic.Int64 // nanoseconds since origin, may be negative
}

// NewManualTimeProvider creates a clock stopped at origin
func NewManualTimeProvider(origin time.Time) *ManualTimeProvider {
	return &ManualTimeProvider{origin: origin}
}

// Now implements TimeProvider
func (m *ManualTimeProvider) Now() time.Time {
	return m.origin.Add(m.Elapsed())
}

// Elapsed returns the distance from the origin
func (m *ManualTimeProvider) Elapsed() time.Duration {
	return time.Duration(m.offset.Load())
}

// SetTime jumps to t, which may lie before the origin
func (m *ManualTimeProvider) SetTime(t time.Time) {
	m.offset.Store(int64(t.Sub(m.origin)))
}

// Advance moves the clock by d
func (m *ManualTimeProvider) Advance(d time.Duration) {
	m.offset.Add(int64(d))
}

// SeekFrame places the clock in the middle of frame at the given rate, so a
// FrameCounter started at the origin reads exactly frame
func (m *ManualTimeProvider) SeekFrame(frame, fps uint64) {
	if fps == 0 {
		fps = DefaultFPS
	}
	mid := (2*frame + 1) * uint64(time.Second) / (2 * fps)
	m.offset.Store(int64(mid))
}
