package network

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ClientService provides the session transport: a LocalClient for loopback,
// a RemoteClient for a relay
type ClientService struct {
	config *Config
	log    zerolog.Logger

	mu     sync.Mutex
	client Client
	remote *RemoteClient
}

// NewClientService creates a loopback client service
func NewClientService(log zerolog.Logger) *ClientService {
	return &ClientService{config: DefaultConfig(), log: log}
}

// Name implements service.Service
func (s *ClientService) Name() string {
	return "client"
}

// Dependencies implements service.Service
func (s *ClientService) Dependencies() []string {
	return nil
}

// Init implements service.Service
// args[0]: *Config (Role selects loopback or relay client)
func (s *ClientService) Init(args ...any) error {
	if len(args) > 0 {
		if cfg, ok := args[0].(*Config); ok && cfg != nil {
			s.config = cfg
		}
	}
	if s.config.Role == RoleServer {
		return errors.New("client service cannot take the server role")
	}
	return nil
}

// Start implements service.Service
func (s *ClientService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return nil
	}
	if s.config.Role == RoleLoopback {
		s.client = NewLocalClient()
		s.log.Debug().Msg("loopback transport")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ConnectTimeout)
	defer cancel()
	remote, err := Dial(ctx, s.config, s.log)
	if err != nil {
		return err
	}
	s.remote = remote
	s.client = remote
	s.log.Info().Str("url", s.config.Address).Msg("connected to relay")
	return nil
}

// Stop implements service.Service
func (s *ClientService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.remote != nil {
		err = s.remote.Close()
		s.remote = nil
	}
	s.client = nil
	return err
}

// Client returns the active transport, nil before Start
func (s *ClientService) Client() Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

// Remote returns the relay connection, nil in loopback mode
func (s *ClientService) Remote() *RemoteClient {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remote
}
