package network

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/lockstep/command"
)

// Relay is the networked stand-in for the lockstep server
// Every batch received from any peer is forwarded to all connected peers,
// the sender included, so each client sees the merged command stream
type Relay struct {
	cfg      *Config
	upgrader websocket.Upgrader
	log      zerolog.Logger

	mu       sync.RWMutex
	peers    map[PeerID]*Peer
	reserved int // Slots held by handshakes in flight
	nextID   atomic.Uint32

	batches atomic.Uint64
	wg      sync.WaitGroup
}

// NewRelay creates a relay handler; mount it with http.Handle
func NewRelay(cfg *Config, log zerolog.Logger) *Relay {
	return &Relay{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			// Clients are native binaries, not browsers
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log:   log,
		peers: make(map[PeerID]*Peer),
	}
}

// ServeHTTP upgrades the request and runs the peer until it disconnects
func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if !r.reserve() {
		http.Error(w, "max peers reached", http.StatusServiceUnavailable)
		return
	}

	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.release()
		// Upgrade already replied to the client
		r.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	id := PeerID(r.nextID.Add(1))
	peer := newPeer(id, conn, r.cfg, r.log)

	r.mu.Lock()
	r.reserved--
	r.peers[id] = peer
	r.mu.Unlock()
	r.log.Info().Uint32("peer", uint32(id)).Str("addr", peer.Addr).Msg("peer connected")

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		peer.writeLoop()
	}()

	peer.readLoop(r.handleBatch)

	r.mu.Lock()
	delete(r.peers, id)
	r.mu.Unlock()
	r.log.Info().Uint32("peer", uint32(id)).Msg("peer disconnected")
}

// reserve claims a peer slot before the handshake; connected peers and
// pending handshakes together never exceed MaxPeers
func (r *Relay) reserve() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.peers)+r.reserved >= r.cfg.MaxPeers {
		return false
	}
	r.reserved++
	return true
}

func (r *Relay) release() {
	r.mu.Lock()
	r.reserved--
	r.mu.Unlock()
}

// handleBatch re-encodes a validated batch once and queues it to every peer
func (r *Relay) handleBatch(from PeerID, cmds []command.FrameCommand) {
	pkt, err := encodePacket(cmds)
	if err != nil {
		r.log.Error().Err(err).Uint32("peer", uint32(from)).Msg("re-encode batch failed")
		return
	}
	r.batches.Add(1)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, peer := range r.peers {
		if !peer.Send(pkt) {
			r.log.Warn().Uint32("peer", uint32(id)).Msg("send queue full, batch dropped")
		}
	}
}

// PeerCount returns current connected peer count
func (r *Relay) PeerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

// Batches returns the number of batches relayed so far
func (r *Relay) Batches() uint64 {
	return r.batches.Load()
}

// Close disconnects all peers and waits for their writers to exit
func (r *Relay) Close() {
	r.mu.Lock()
	for _, peer := range r.peers {
		peer.Close()
	}
	r.mu.Unlock()
	r.wg.Wait()
}
