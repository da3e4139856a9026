package network

import "github.com/lixenwraith/lockstep/command"

// LocalClient is client and server in one process (loopback mode)
// Everything sent is echoed back once the watermark passes its frame
type LocalClient struct {
	serverQueue []command.FrameCommand
}

// NewLocalClient creates an empty loopback client
func NewLocalClient() *LocalClient {
	return &LocalClient{}
}

// Send implements Sender
func (c *LocalClient) Send(cmds []command.FrameCommand) error {
	c.serverQueue = append(c.serverQueue, cmds...)
	return nil
}

// Receive implements Receiver
func (c *LocalClient) Receive(toFrame uint64) []command.FrameCommand {
	ready, rest := command.Below(c.serverQueue, toFrame)
	c.serverQueue = rest
	return ready
}

// Pending returns the number of buffered commands
func (c *LocalClient) Pending() int {
	return len(c.serverQueue)
}
