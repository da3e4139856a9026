package network

import (
	"bytes"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/lockstep/command"
	"github.com/lixenwraith/lockstep/packet"
)

// PeerID uniquely identifies a connected peer
type PeerID uint32

// Peer is one relay-side websocket connection
type Peer struct {
	ID   PeerID
	Addr string

	conn *websocket.Conn
	cfg  *Config
	log  zerolog.Logger

	// Send queue of encoded packets
	sendCh chan []byte

	// Lifecycle
	closeCh   chan struct{}
	closeOnce sync.Once
}

// newPeer wraps an upgraded connection
func newPeer(id PeerID, conn *websocket.Conn, cfg *Config, log zerolog.Logger) *Peer {
	return &Peer{
		ID:      id,
		Addr:    conn.RemoteAddr().String(),
		conn:    conn,
		cfg:     cfg,
		log:     log.With().Uint32("peer", uint32(id)).Logger(),
		sendCh:  make(chan []byte, cfg.SendQueueSize),
		closeCh: make(chan struct{}),
	}
}

// Send queues an encoded packet for transmission
// Returns false if the peer is closed or its queue is full
func (p *Peer) Send(pkt []byte) bool {
	select {
	case <-p.closeCh:
		return false
	default:
	}

	select {
	case p.sendCh <- pkt:
		return true
	default:
		return false // Queue full
	}
}

// Close initiates shutdown; safe to call more than once
func (p *Peer) Close() {
	p.closeOnce.Do(func() {
		close(p.closeCh)
		p.conn.Close()
	})
}

// readLoop decodes one command batch per websocket message
// Returns when the connection fails or a message is malformed
func (p *Peer) readLoop(handler func(PeerID, []command.FrameCommand)) {
	defer p.Close()

	p.conn.SetReadLimit(p.cfg.MaxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(p.cfg.PongTimeout))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(p.cfg.PongTimeout))
	})

	for {
		msgType, r, err := p.conn.NextReader()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				p.log.Debug().Err(err).Msg("peer read failed")
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		cmds, err := ReadBatch(r)
		if err != nil {
			p.log.Warn().Err(err).Msg("malformed batch, dropping peer")
			return
		}
		handler(p.ID, cmds)
	}
}

// writeLoop drains the send queue and keeps the connection alive with pings
func (p *Peer) writeLoop() {
	ticker := time.NewTicker(p.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		p.Close()
	}()

	for {
		select {
		case <-p.closeCh:
			return
		case pkt := <-p.sendCh:
			p.conn.SetWriteDeadline(time.Now().Add(p.cfg.WriteTimeout))
			if err := p.conn.WriteMessage(websocket.BinaryMessage, pkt); err != nil {
				p.log.Debug().Err(err).Msg("peer write failed")
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(p.cfg.WriteTimeout)
			if err := p.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

// encodePacket renders cmds as the bytes of one framed packet
func encodePacket(cmds []command.FrameCommand) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(packet.HeaderSize + 64*len(cmds))
	if err := WriteBatch(&buf, cmds); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
