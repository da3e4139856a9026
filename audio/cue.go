package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// Cue is a short notification sound
type Cue int

const (
	CueRecordStart Cue = iota // Recording file opened
	CueReplayStart            // Replay file opened
	CueReplayEnd              // Replay stream exhausted
	CueCameraToggle           // Camera cycled
	cueCount
)

const (
	noteDuration = 90 * time.Millisecond
	tickDuration = 40 * time.Millisecond
	attack       = 5 * time.Millisecond
	release      = 30 * time.Millisecond
)

// envelope fades a stream in over attack and out over release, ending after total samples
type envelope struct {
	streamer beep.Streamer
	pos      int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	if e.pos >= e.total {
		return 0, false
	}
	if left := e.total - e.pos; len(samples) > left {
		samples = samples[:left]
	}
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.pos < e.attack {
			vol = float64(e.pos) / float64(e.attack)
		}
		if rem := e.total - e.pos; rem < e.release {
			vol = math.Min(vol, float64(rem)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales linearly; zero or negative volume is silent
// math.Log2(0) is -Inf, hence the Silent flag
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// note is a shaped sine tone of the given frequency and length
func note(rate beep.SampleRate, freq float64, d time.Duration) (beep.Streamer, error) {
	tone, err := generators.SineTone(rate, freq)
	if err != nil {
		return nil, err
	}
	return newEnvelope(beep.Take(rate.N(d), tone), d, rate), nil
}

func notes(rate beep.SampleRate, d time.Duration, freqs ...float64) (beep.Streamer, error) {
	seq := make([]beep.Streamer, 0, len(freqs))
	for _, f := range freqs {
		s, err := note(rate, f, d)
		if err != nil {
			return nil, err
		}
		seq = append(seq, s)
	}
	return beep.Seq(seq...), nil
}

// CueStreamer builds the finite stream for a cue at the given volume
// Returns nil for unknown cues or frequencies the sample rate cannot carry.
func CueStreamer(c Cue, rate beep.SampleRate, vol float64) beep.Streamer {
	var (
		s   beep.Streamer
		err error
	)
	switch c {
	case CueRecordStart:
		// A5 up to E6
		s, err = notes(rate, noteDuration, 880, 1318.51)
	case CueReplayStart:
		// A5 with its octave
		var fund, over beep.Streamer
		if fund, err = note(rate, 880, 2*noteDuration); err == nil {
			if over, err = note(rate, 1760, 2*noteDuration); err == nil {
				s = beep.Mix(newVolume(fund, 0.7), newVolume(over, 0.3))
			}
		}
	case CueReplayEnd:
		// E6 down to A5 down to E5
		s, err = notes(rate, noteDuration, 1318.51, 880, 659.25)
	case CueCameraToggle:
		s, err = note(rate, 1200, tickDuration)
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	return newVolume(s, vol)
}
