package packet

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// Wire format: [Len:4 big-endian][Payload:Len]
const HeaderSize = 4

// MaxPayloadSize is the largest payload a 4-byte length prefix can describe
const MaxPayloadSize = math.MaxUint32

// ErrPayloadTooLarge is returned by Write when the payload length does not fit the prefix
var ErrPayloadTooLarge = errors.New("packet: payload exceeds maximum size")

// Write emits exactly one framed packet: length prefix, then payload
// Two sequential writes; callers must not interleave writers on the same stream
func Write(w io.Writer, payload []byte) error {
	if uint64(len(payload)) > MaxPayloadSize {
		return ErrPayloadTooLarge
	}

	var header [HeaderSize]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}

	return nil
}

// Read consumes exactly one framed packet
// Returns io.EOF when the stream ends cleanly before a length prefix,
// io.ErrUnexpectedEOF when the prefix or payload is truncated
func Read(r io.Reader) ([]byte, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	payloadLen := binary.BigEndian.Uint32(header[:])
	payload := make([]byte, payloadLen)
	if payloadLen > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if err == io.EOF {
				// Prefix promised bytes that never arrived
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
	}

	return payload, nil
}

// Truncated reports whether err came from a packet cut off mid-frame
// A clean io.EOF between packets is not truncation
func Truncated(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF)
}
