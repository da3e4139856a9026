package network

import "github.com/lixenwraith/lockstep/command"

// Sender forwards a batch of frame commands somewhere
type Sender interface {
	Send(cmds []command.FrameCommand) error
}

// Receiver hands back every buffered command with Frame < toFrame
// Returned commands are removed from the receiver; later frames stay buffered
type Receiver interface {
	Receive(toFrame uint64) []command.FrameCommand
}

// Client is a transport that both sends and receives
type Client interface {
	Sender
	Receiver
}

// NullSender discards everything
type NullSender struct{}

// NewNullSender creates a sender that drops all batches
func NewNullSender() *NullSender {
	return &NullSender{}
}

// Send implements Sender
func (NullSender) Send([]command.FrameCommand) error {
	return nil
}

// NullReceiver never yields commands
type NullReceiver struct{}

// NewNullReceiver creates a receiver that is always empty
func NewNullReceiver() *NullReceiver {
	return &NullReceiver{}
}

// Receive implements Receiver
func (NullReceiver) Receive(uint64) []command.FrameCommand {
	return nil
}
