// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown is implemented by components with an orderly stop
// sequence.
type GracefulShutdown interface {
	// Shutdown releases resources and stops background work. Returns an
	// error if the shutdown sequence failed partway through.
	Shutdown() error
}
