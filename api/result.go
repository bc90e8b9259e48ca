// Package api
// Author: momentics@gmail.com
//
// Generic result and error propagation. The runtime deliberately has no
// Cancelable/cancellation-token type: cancellation is reactive only,
// expressed as a timeout attached to a registration, never a separate
// abort signal.

package api

// Result wraps any payload or error.
type Result[T any] struct {
	Value T
	Err   error
}
