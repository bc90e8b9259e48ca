//go:build !linux
// +build !linux

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stub Reactor for platforms without an epoll/timerfd backend, so the
// build fails gracefully at runtime instead of at compile time.

package reactor

import (
	"time"

	"github.com/momentics/fiberloop/api"
	"github.com/momentics/fiberloop/fiber"
)

// stubReactor satisfies the Reactor interface without ever succeeding.
type stubReactor struct{}

// New constructs the unsupported-platform stub. Linux builds shadow this
// with the EpollReactor constructor of the same name.
func New(Enqueuer) (*stubReactor, error) {
	return &stubReactor{}, api.ErrNotSupported
}

func (*stubReactor) RegisterIO(*fiber.Fiber, int, InterestMask) error {
	return api.ErrNotSupported
}

func (*stubReactor) RegisterIOTimeout(*fiber.Fiber, int, InterestMask, time.Duration) error {
	return api.ErrNotSupported
}

func (*stubReactor) RegisterTimeout(*fiber.Fiber, time.Time) error {
	return api.ErrNotSupported
}

func (*stubReactor) WaiterCount() int { return 0 }

func (*stubReactor) Poll(int) error { return api.ErrNotSupported }

func (*stubReactor) WakeUp() error { return api.ErrNotSupported }

func (*stubReactor) Close() error { return nil }
