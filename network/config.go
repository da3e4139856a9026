package network

import "time"

// Role defines which transport the session uses
type Role uint8

const (
	RoleLoopback Role = iota // In-process LocalClient
	RoleClient               // Connects to a relay
	RoleServer               // Runs the relay
)

// Config holds network configuration
type Config struct {
	// Role determines connection behavior
	Role Role

	// Address to bind (server) or URL to dial (client, ws://host:port/path)
	Address string

	// Path the relay serves the websocket endpoint on
	Path string

	// Connection limits
	MaxPeers int

	// Timing
	ConnectTimeout  time.Duration
	WriteTimeout    time.Duration
	PingInterval    time.Duration
	PongTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Buffer sizes
	ReadBufferSize  int
	WriteBufferSize int
	SendQueueSize   int
	MaxMessageSize  int64
}

// DefaultConfig returns loopback with relay defaults filled in
func DefaultConfig() *Config {
	return &Config{
		Role:            RoleLoopback,
		Address:         ":7777",
		Path:            "/lockstep",
		MaxPeers:        16,
		ConnectTimeout:  5 * time.Second,
		WriteTimeout:    5 * time.Second,
		PingInterval:    10 * time.Second,
		PongTimeout:     30 * time.Second,
		ShutdownTimeout: 2 * time.Second,
		ReadBufferSize:  64 * 1024,
		WriteBufferSize: 64 * 1024,
		SendQueueSize:   256,
		MaxMessageSize:  4 * 1024 * 1024,
	}
}

// ClientConfig returns defaults for dialing the relay at url
func ClientConfig(url string) *Config {
	cfg := DefaultConfig()
	cfg.Role = RoleClient
	cfg.Address = url
	return cfg
}

// ServerConfig returns defaults for serving the relay on addr
func ServerConfig(addr string) *Config {
	cfg := DefaultConfig()
	cfg.Role = RoleServer
	cfg.Address = addr
	return cfg
}
