package recording

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/lockstep/network"
)

// zstd frame magic number, little-endian 0xFD2FB528
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var nopCloser = closerFunc(func() error { return nil })

// TryCreateRecorder opens path for recording, truncating any previous content
// An empty path yields a NullSender. With compress the packet stream is
// wrapped in a single zstd stream that is flushed after every batch.
// The returned closer must be called to flush and release the file.
func TryCreateRecorder(path string, compress bool, log zerolog.Logger) (network.Sender, io.Closer, error) {
	if path == "" {
		return network.NewNullSender(), nopCloser, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open file for recording: %w", err)
	}

	if compress {
		enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("zstd encoder: %w", err)
		}
		closer := closerFunc(func() error {
			return errors.Join(enc.Close(), f.Close())
		})
		log.Info().Str("path", path).Bool("compressed", true).Msg("recording started")
		return NewRecorder(enc, WithLogger(log)), closer, nil
	}

	bw := bufio.NewWriter(f)
	closer := closerFunc(func() error {
		return errors.Join(bw.Flush(), f.Close())
	})
	log.Info().Str("path", path).Bool("compressed", false).Msg("recording started")
	return NewRecorder(bw, WithLogger(log)), closer, nil
}

// TryCreateReplayer opens path for replay
// An empty path yields a NullReceiver. zstd-compressed recordings are
// detected by their magic number.
func TryCreateReplayer(path string, log zerolog.Logger) (network.Receiver, io.Closer, error) {
	if path == "" {
		return network.NewNullReceiver(), nopCloser, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open file for replay: %w", err)
	}

	br := bufio.NewReader(f)
	if compressed(br) {
		dec, err := zstd.NewReader(br)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("zstd decoder: %w", err)
		}
		closer := closerFunc(func() error {
			dec.Close()
			return f.Close()
		})
		log.Info().Str("path", path).Bool("compressed", true).Msg("replay started")
		return NewReplayer(dec, WithLogger(log)), closer, nil
	}

	log.Info().Str("path", path).Bool("compressed", false).Msg("replay started")
	return NewReplayer(br, WithLogger(log)), closerFunc(f.Close), nil
}

// compressed peeks at the stream head without consuming it
// A plain recording starts with a length prefix, which would have to claim
// a ~680MB first packet to collide with the magic
func compressed(br *bufio.Reader) bool {
	head, err := br.Peek(len(zstdMagic))
	if err != nil {
		return false
	}
	return bytes.Equal(head, zstdMagic)
}
