package network

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
)

// RelayService runs the relay behind an HTTP listener as a hub-managed service
type RelayService struct {
	config *Config
	log    zerolog.Logger

	relay    *Relay
	server   *http.Server
	listener net.Listener

	mu      sync.Mutex
	serveWg sync.WaitGroup
}

// NewRelayService creates a relay service with default configuration
func NewRelayService(log zerolog.Logger) *RelayService {
	return &RelayService{
		config: ServerConfig(DefaultConfig().Address),
		log:    log,
	}
}

// Name implements service.Service
func (s *RelayService) Name() string {
	return "relay"
}

// Dependencies implements service.Service
func (s *RelayService) Dependencies() []string {
	return nil
}

// Init implements service.Service
// args[0]: *Config (optional, overrides default)
func (s *RelayService) Init(args ...any) error {
	if len(args) > 0 {
		if cfg, ok := args[0].(*Config); ok && cfg != nil {
			s.config = cfg
		}
	}

	s.relay = NewRelay(s.config, s.log)
	mux := http.NewServeMux()
	mux.Handle(s.config.Path, s.relay)
	s.server = &http.Server{Handler: mux}
	return nil
}

// Start implements service.Service
func (s *RelayService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return errors.New("relay service not initialized")
	}
	if s.listener != nil {
		return nil // Already running
	}

	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	s.listener = ln
	s.log.Info().Str("addr", ln.Addr().String()).Str("path", s.config.Path).Msg("relay listening")

	s.serveWg.Add(1)
	go func() {
		defer s.serveWg.Done()
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("relay server stopped")
		}
	}()
	return nil
}

// Stop implements service.Service
func (s *RelayService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	err := s.server.Shutdown(ctx)

	// Shutdown does not track hijacked websocket connections
	s.relay.Close()
	s.serveWg.Wait()
	s.listener = nil
	return err
}

// Addr returns the bound listener address, or nil before Start
func (s *RelayService) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Relay returns the underlying relay, or nil before Init
func (s *RelayService) Relay() *Relay {
	return s.relay
}
