package recording

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/lockstep/command"
	"github.com/lixenwraith/lockstep/network"
)

func move(frame uint64, forward float32) command.FrameCommand {
	return command.FrameCommand{
		Frame:   frame,
		Command: command.InputState{Movement: &command.Movement{Forward: forward}},
	}
}

func frames(cmds []command.FrameCommand) []uint64 {
	out := make([]uint64, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, c.Frame)
	}
	return out
}

// recordSession runs the loopback pipeline for the given watermarks and
// records every received batch, returning the batches in order
func recordSession(t *testing.T, rec network.Sender, watermarks []uint64) [][]command.FrameCommand {
	t.Helper()
	client := network.NewLocalClient()
	var sent [][]command.FrameCommand
	prev := uint64(0)
	for _, w := range watermarks {
		var cmds []command.FrameCommand
		for f := prev; f <= w; f++ {
			cmds = append(cmds, move(f, float32(f%3)-1))
		}
		prev = w + 1
		client.Send(cmds)

		received := client.Receive(w)
		if err := rec.Send(received); err != nil {
			t.Fatalf("Recorder.Send failed: %v", err)
		}
		sent = append(sent, received)
	}
	return sent
}

func TestRecordReplayEquivalence(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	watermarks := []uint64{3, 4, 9, 10, 15}
	sent := recordSession(t, rec, watermarks)

	if rec.Batches() != uint64(len(watermarks)) {
		t.Fatalf("Recorder wrote %d packets, want %d", rec.Batches(), len(watermarks))
	}

	rep := NewReplayer(bytes.NewReader(buf.Bytes()))
	for i, w := range watermarks {
		got := rep.Receive(w)
		if !reflect.DeepEqual(got, sent[i]) {
			t.Errorf("Watermark %d: replayed %v, recorded %v", w, frames(got), frames(sent[i]))
		}
	}
}

func TestReplayerEOFIdempotence(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	rec.Send([]command.FrameCommand{move(1, 1), move(2, 1)})
	rec.Send([]command.FrameCommand{move(8, 1), move(9, 1)})

	rep := NewReplayer(&buf)

	// Lookahead satisfied by the first packet
	if got := rep.Receive(3); !reflect.DeepEqual(frames(got), []uint64{1, 2}) {
		t.Fatalf("Receive(3) = %v", frames(got))
	}
	if rep.Finished() {
		t.Fatal("Stream should not be finished yet")
	}

	// Needs frame >= 99, stream runs dry: flush everything regardless of frame
	tail := rep.Receive(100)
	if !reflect.DeepEqual(frames(tail), []uint64{8, 9}) {
		t.Fatalf("Tail flush = %v, want [8 9]", frames(tail))
	}
	if !rep.Finished() {
		t.Fatal("Expected Finished after stream end")
	}

	for _, w := range []uint64{0, 1, 100, 1 << 40} {
		if got := rep.Receive(w); len(got) != 0 {
			t.Errorf("Receive(%d) after end = %v, want empty", w, frames(got))
		}
	}
}

func TestReplayerFlushIgnoresWatermark(t *testing.T) {
	var buf bytes.Buffer
	NewRecorder(&buf).Send([]command.FrameCommand{move(50, 1)})

	rep := NewReplayer(&buf)
	// 50 < 100-1 so the lookahead is never met; EOF flushes frame 50 anyway
	got := rep.Receive(100)
	if !reflect.DeepEqual(frames(got), []uint64{50}) {
		t.Errorf("Receive(100) = %v, want [50]", frames(got))
	}
}

func TestReplayerRetainsLookahead(t *testing.T) {
	var buf bytes.Buffer
	NewRecorder(&buf).Send([]command.FrameCommand{move(4, 1), move(5, 1), move(7, 1)})

	rep := NewReplayer(&buf)
	if got := rep.Receive(6); !reflect.DeepEqual(frames(got), []uint64{4, 5}) {
		t.Fatalf("Receive(6) = %v", frames(got))
	}
	// Frame 7 stays buffered until the stream ends
	if got := rep.Receive(8); !reflect.DeepEqual(frames(got), []uint64{7}) {
		t.Errorf("Receive(8) = %v, want [7]", frames(got))
	}
}

func TestReplayerWatermarkZero(t *testing.T) {
	var buf bytes.Buffer
	NewRecorder(&buf).Send([]command.FrameCommand{move(0, 1)})
	NewRecorder(&buf).Send([]command.FrameCommand{move(1, 1)})

	rep := NewReplayer(&buf)
	// Lookahead saturates at 0: first packet satisfies it, nothing is below 0
	if got := rep.Receive(0); len(got) != 0 {
		t.Errorf("Receive(0) = %v, want empty", frames(got))
	}
	if got := rep.Receive(1); !reflect.DeepEqual(frames(got), []uint64{0}) {
		t.Errorf("Receive(1) = %v, want [0]", frames(got))
	}
}

func TestReplayerEmptyStream(t *testing.T) {
	rep := NewReplayer(bytes.NewReader(nil))
	if got := rep.Receive(10); len(got) != 0 {
		t.Errorf("Expected empty result, got %v", frames(got))
	}
	if !rep.Finished() {
		t.Error("Expected Finished on empty stream")
	}
}

func TestReplayerTruncatedRecording(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	rec.Send([]command.FrameCommand{move(1, 1)})
	rec.Send([]command.FrameCommand{move(2, 1), move(3, 1)})

	// Cut the second packet in half
	data := buf.Bytes()
	data = data[:len(data)-3]

	rep := NewReplayer(bytes.NewReader(data))
	got := rep.Receive(10)
	if !reflect.DeepEqual(frames(got), []uint64{1}) {
		t.Errorf("Receive(10) = %v, want [1]", frames(got))
	}
	if !rep.Finished() {
		t.Error("Truncation must end the stream")
	}
	if got := rep.Receive(20); len(got) != 0 {
		t.Errorf("Expected empty after truncation, got %v", frames(got))
	}
}

func TestReplayerCorruptPayloadStopsReplay(t *testing.T) {
	var buf bytes.Buffer
	NewRecorder(&buf).Send([]command.FrameCommand{move(1, 1)})
	buf.Write([]byte{0, 0, 0, 3, 0xff, 0xfe, 0xfd})
	NewRecorder(&buf).Send([]command.FrameCommand{move(2, 1)})

	rep := NewReplayer(&buf)
	got := rep.Receive(10)
	if !reflect.DeepEqual(frames(got), []uint64{1}) {
		t.Errorf("Receive(10) = %v, want [1]", frames(got))
	}
	if !rep.Finished() {
		t.Error("Corrupt payload must end the stream")
	}
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRecorderPropagatesWriteError(t *testing.T) {
	rec := NewRecorder(brokenWriter{})
	if err := rec.Send([]command.FrameCommand{move(1, 1)}); err == nil {
		t.Error("Expected write error")
	}
	if rec.Batches() != 0 {
		t.Errorf("Failed write must not count, got %d", rec.Batches())
	}
}

func TestFileRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		name := "plain"
		if compress {
			name = "zstd"
		}
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "session.rec")

			rec, recCloser, err := TryCreateRecorder(path, compress, zerolog.Nop())
			if err != nil {
				t.Fatalf("TryCreateRecorder failed: %v", err)
			}
			watermarks := []uint64{2, 6, 7, 12}
			sent := recordSession(t, rec, watermarks)
			if err := recCloser.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			head := make([]byte, 4)
			f, _ := os.Open(path)
			f.Read(head)
			f.Close()
			if got := bytes.Equal(head, zstdMagic); got != compress {
				t.Errorf("zstd magic present = %v, want %v", got, compress)
			}

			rep, repCloser, err := TryCreateReplayer(path, zerolog.Nop())
			if err != nil {
				t.Fatalf("TryCreateReplayer failed: %v", err)
			}
			defer repCloser.Close()

			for i, w := range watermarks {
				got := rep.Receive(w)
				if !reflect.DeepEqual(got, sent[i]) {
					t.Errorf("Watermark %d: replayed %v, recorded %v", w, frames(got), frames(sent[i]))
				}
			}
			if got := rep.Receive(100); len(got) != 0 {
				t.Errorf("Expected empty at end, got %v", frames(got))
			}
		})
	}
}

func TestRecorderTruncatesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.rec")
	if err := os.WriteFile(path, bytes.Repeat([]byte{0xaa}, 1024), 0o644); err != nil {
		t.Fatal(err)
	}

	rec, closer, err := TryCreateRecorder(path, false, zerolog.Nop())
	if err != nil {
		t.Fatalf("TryCreateRecorder failed: %v", err)
	}
	rec.Send([]command.FrameCommand{move(0, 1)})
	closer.Close()

	rep, repCloser, _ := TryCreateReplayer(path, zerolog.Nop())
	defer repCloser.Close()
	if got := rep.Receive(5); !reflect.DeepEqual(frames(got), []uint64{0}) {
		t.Errorf("Receive(5) = %v, want [0] with no trailing garbage", frames(got))
	}
}

func TestEmptyPathsYieldNullTransports(t *testing.T) {
	rec, recCloser, err := TryCreateRecorder("", true, zerolog.Nop())
	if err != nil {
		t.Fatalf("TryCreateRecorder failed: %v", err)
	}
	if _, ok := rec.(*network.NullSender); !ok {
		t.Errorf("Expected NullSender, got %T", rec)
	}
	recCloser.Close()

	rep, repCloser, err := TryCreateReplayer("", zerolog.Nop())
	if err != nil {
		t.Fatalf("TryCreateReplayer failed: %v", err)
	}
	if _, ok := rep.(*network.NullReceiver); !ok {
		t.Errorf("Expected NullReceiver, got %T", rep)
	}
	repCloser.Close()
}

func TestMissingReplayFileFails(t *testing.T) {
	_, _, err := TryCreateReplayer(filepath.Join(t.TempDir(), "missing.rec"), zerolog.Nop())
	if err == nil {
		t.Fatal("Expected error for missing replay file")
	}
}

func TestServiceLifecycle(t *testing.T) {
	dir := t.TempDir()
	recPath := filepath.Join(dir, "out.rec")

	svc := NewService(zerolog.Nop())
	if err := svc.Init(Paths{Recording: recPath}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if svc.Replaying() {
		t.Error("Replaying without a replay path")
	}
	if err := svc.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := svc.Recorder().Send([]command.FrameCommand{move(3, 1)}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := svc.Stop(); err != nil {
		t.Errorf("Second Stop must be a no-op, got %v", err)
	}

	replay := NewService(zerolog.Nop())
	replay.Init(Paths{Replay: recPath})
	if !replay.Replaying() {
		t.Error("Expected Replaying with a replay path")
	}
	if err := replay.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer replay.Stop()

	if got := replay.Replayer().Receive(4); !reflect.DeepEqual(frames(got), []uint64{3}) {
		t.Errorf("Replayed %v, want [3]", frames(got))
	}
}

func TestServiceStartFailsOnBadPath(t *testing.T) {
	svc := NewService(zerolog.Nop())
	svc.Init(Paths{Replay: filepath.Join(t.TempDir(), "nope", "missing.rec")})
	if err := svc.Start(); err == nil {
		t.Error("Expected Start to fail for missing replay file")
	}
}
