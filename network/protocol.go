package network

import (
	"fmt"
	"io"

	"github.com/lixenwraith/lockstep/command"
	"github.com/lixenwraith/lockstep/packet"
)

// WriteBatch serializes cmds and emits them as exactly one packet
// The same encoding is used for recordings and for relay messages
func WriteBatch(w io.Writer, cmds []command.FrameCommand) error {
	payload, err := command.MarshalBatch(cmds)
	if err != nil {
		return err
	}
	if err := packet.Write(w, payload); err != nil {
		return fmt.Errorf("write batch packet: %w", err)
	}
	return nil
}

// ReadBatch reads one packet and decodes it as a command batch
// Framing errors are returned unwrapped so callers can test for io.EOF
func ReadBatch(r io.Reader) ([]command.FrameCommand, error) {
	payload, err := packet.Read(r)
	if err != nil {
		return nil, err
	}
	return command.UnmarshalBatch(payload)
}
