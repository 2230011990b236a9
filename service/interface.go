// Package service runs the host's long-lived backends: audio cues and span export
package service

// Service defines the lifecycle interface for infrastructure backends
// Services own resources that outlive a single narration session
//
// Lifecycle:
//  1. Construction (via factory)
//  2. Init(args...) - configuration from the loaded config
//  3. Start() - open devices, connect exporters
//  4. [runtime operation]
//  5. Stop() - release resources
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must start before this one
	// Return nil or empty slice if no dependencies
	Dependencies() []string

	// Init configures the service from optional args
	// Args are service-specific (enabled flag, logger, exporter config)
	Init(args ...any) error

	// Start begins service operation
	// Called after all services have initialized
	Start() error

	// Stop halts service operation and releases resources
	// Must be idempotent - safe to call multiple times
	Stop() error
}
