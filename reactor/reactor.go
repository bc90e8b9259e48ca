// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package reactor owns the kernel readiness multiplexer and maps readiness
// events onto fiber wakeups: per-descriptor interests, paired I/O+timer
// registrations, and a small resume-reason enum handed back to the
// scheduler instead of a raw epoll event.
package reactor

import (
	"fmt"
	"time"

	"github.com/momentics/fiberloop/fiber"
)

// ResumeReason explains why a fiber is being resumed.
type ResumeReason int

const (
	// Normal resumption: spawn, or a plain re-enqueue (yield_now, polling
	// style awaits).
	Normal ResumeReason = iota
	// IOReady: the registered descriptor became readable/writable.
	IOReady
	// IOTimeout: the registration's timer fired before the descriptor did.
	IOTimeout
	// IOError: the descriptor reported an error condition.
	IOError
	// IOHup: the descriptor (or its peer) hung up.
	IOHup
)

func (r ResumeReason) String() string {
	switch r {
	case Normal:
		return "normal"
	case IOReady:
		return "io_ready"
	case IOTimeout:
		return "io_timeout"
	case IOError:
		return "io_error"
	case IOHup:
		return "io_hup"
	default:
		return "unknown"
	}
}

// InterestMask selects which readiness conditions a registration cares
// about. Error and hangup conditions are always implicitly monitored.
type InterestMask uint8

const (
	Read InterestMask = 1 << iota
	Write
)

const ReadWrite = Read | Write

// Enqueuer is the narrow slice of the scheduler the reactor needs: the
// ability to place a woken fiber back onto the ready queue with a resume
// reason. Expressing it as an interface (rather than importing the
// scheduler package directly) keeps reactor a leaf with no dependency on
// its own caller, avoiding an import cycle.
type Enqueuer interface {
	Enqueue(f *fiber.Fiber, reason ResumeReason)
}

// Reactor is the public contract consumed by awaitables.
type Reactor interface {
	// RegisterIO associates the currently running fiber with fd under the
	// given interest, with no timeout.
	RegisterIO(f *fiber.Fiber, fd int, interest InterestMask) error

	// RegisterIOTimeout is as RegisterIO, but additionally arms a timer
	// descriptor for the given relative timeout; its expiry resumes the
	// fiber with IOTimeout before fd itself becomes ready.
	RegisterIOTimeout(f *fiber.Fiber, fd int, interest InterestMask, timeout time.Duration) error

	// RegisterTimeout registers f for a pure timeout, no I/O descriptor
	// involved: implemented as a timer descriptor registered as if it were
	// the I/O descriptor itself.
	RegisterTimeout(f *fiber.Fiber, deadline time.Time) error

	// WaiterCount returns the number of outstanding waiters.
	WaiterCount() int

	// Poll drains one batch of ready events, dispatching each to the
	// Enqueuer. timeoutMs < 0 blocks indefinitely; 0 polls opportunistically.
	Poll(timeoutMs int) error

	// WakeUp interrupts a Poll currently blocked on an infinite timeout.
	// Safe to call from a signal handler or any goroutine other than the
	// loop thread — the one operation in this package that is.
	WakeUp() error

	// Close releases the underlying kernel multiplexer.
	Close() error
}

// ErrDescriptorTooLarge is panicked when a descriptor's value has its top
// bit set, the bit the payload encoding reserves as the is-timer tag.
var ErrDescriptorTooLarge = fmt.Errorf("reactor: descriptor exceeds 31-bit encoding bound")

// ErrAlreadyRegistered is a programmer error: a descriptor was registered
// while already present in the waiter table.
type ErrAlreadyRegistered struct{ FD int }

func (e *ErrAlreadyRegistered) Error() string {
	return fmt.Sprintf("reactor: descriptor %d is already registered", e.FD)
}

// ErrUnknownDescriptor is a programmer error surfaced when the kernel
// reports an event for a descriptor the waiter table has no record of.
type ErrUnknownDescriptor struct{ FD int }

func (e *ErrUnknownDescriptor) Error() string {
	return fmt.Sprintf("reactor: dispatch for unknown descriptor %d", e.FD)
}
