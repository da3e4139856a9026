package service

// Service defines the lifecycle interface for infrastructure around the pipeline
// Services own long-lived resources: recording files, the relay listener, audio
//
// Lifecycle:
//  1. Construction
//  2. Init(args...) - configuration from parsed flags
//  3. Start() - open resources, launch goroutines
//  4. [runtime operation]
//  5. Stop() - halt goroutines, flush and release resources
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must Init before this one
	// Return nil or empty slice if no dependencies
	Dependencies() []string

	// Init configures the service from optional args
	Init(args ...any) error

	// Start begins service operation
	// Called after all services have initialized
	Start() error

	// Stop halts service operation and releases resources
	// Must be idempotent - safe to call multiple times
	Stop() error
}
