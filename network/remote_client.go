package network

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/lockstep/command"
)

// ErrClientClosed is returned by Send after Close or after the relay went away
var ErrClientClosed = errors.New("network: client closed")

// RemoteClient sends batches to a relay and buffers what the relay returns
// Receive has the same watermark semantics as LocalClient; commands that have
// not arrived yet are simply not returned
type RemoteClient struct {
	cfg  *Config
	conn *websocket.Conn
	log  zerolog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending []command.FrameCommand
	readErr error

	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to the relay at cfg.Address
func Dial(ctx context.Context, cfg *Config, log zerolog.Logger) (*RemoteClient, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.ConnectTimeout,
		ReadBufferSize:   cfg.ReadBufferSize,
		WriteBufferSize:  cfg.WriteBufferSize,
	}

	conn, _, err := dialer.DialContext(ctx, cfg.Address, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", cfg.Address, err)
	}

	c := &RemoteClient{
		cfg:  cfg,
		conn: conn,
		log:  log,
		done: make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Send implements Sender
func (c *RemoteClient) Send(cmds []command.FrameCommand) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	w, err := c.conn.NextWriter(websocket.BinaryMessage)
	if err != nil {
		return fmt.Errorf("relay writer: %w", err)
	}
	if err := WriteBatch(w, cmds); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Receive implements Receiver
func (c *RemoteClient) Receive(toFrame uint64) []command.FrameCommand {
	c.mu.Lock()
	defer c.mu.Unlock()

	ready, rest := command.Below(c.pending, toFrame)
	c.pending = rest
	return ready
}

// Pending returns the number of received but undelivered commands
func (c *RemoteClient) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Err returns the error that stopped the read loop, if any
func (c *RemoteClient) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readErr
}

// Done is closed once the connection is gone
func (c *RemoteClient) Done() <-chan struct{} {
	return c.done
}

// Close sends a close frame and tears down the connection
func (c *RemoteClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(c.cfg.WriteTimeout)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, deadline)
		err = c.conn.Close()
	})
	<-c.done
	return err
}

func (c *RemoteClient) readLoop() {
	defer close(c.done)

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	for {
		msgType, r, err := c.conn.NextReader()
		if err != nil {
			c.stop(err)
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		cmds, err := ReadBatch(r)
		if err != nil {
			c.log.Warn().Err(err).Msg("malformed batch from relay")
			c.stop(err)
			c.conn.Close()
			return
		}

		c.mu.Lock()
		c.pending = append(c.pending, cmds...)
		c.mu.Unlock()
	}
}

func (c *RemoteClient) stop(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr == nil {
		c.readErr = err
	}
}
