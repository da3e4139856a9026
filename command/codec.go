package command

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	// Canonical map ordering keeps recordings byte-stable across runs
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("command: cbor encoder: %v", err))
	}
	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("command: cbor decoder: %v", err))
	}
}

// MarshalBatch serializes a command batch as a CBOR array of field-tagged maps
func MarshalBatch(cmds []FrameCommand) ([]byte, error) {
	if cmds == nil {
		cmds = []FrameCommand{}
	}
	data, err := encMode.Marshal(cmds)
	if err != nil {
		return nil, fmt.Errorf("marshal command batch: %w", err)
	}
	return data, nil
}

// UnmarshalBatch decodes a batch produced by MarshalBatch
func UnmarshalBatch(data []byte) ([]FrameCommand, error) {
	var cmds []FrameCommand
	if err := decMode.Unmarshal(data, &cmds); err != nil {
		return nil, fmt.Errorf("unmarshal command batch: %w", err)
	}
	return cmds, nil
}
