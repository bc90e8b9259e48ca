// File: future/future.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package future implements the awaitable protocol: a typed
// Await(scheduler) T contract with two implementation shapes — polling
// style (IsDone/Value, generic retry loop) and direct style (single
// registration + yield, used by timers and I/O). The scheduler handle is
// passed explicitly rather than read from a package-level singleton, so
// multiple runtimes can coexist in one process without shared state.
package future

import "github.com/momentics/fiberloop/scheduler"

// Void is the unit type returned by awaitables with no meaningful value,
// such as Timeout.
type Void = struct{}

// Awaitable is a typed future: Await blocks the calling fiber (via
// yield/resume) until a value is available.
type Awaitable[T any] interface {
	Await(sched *scheduler.Scheduler) T
}

// Poller is the polling-style half of the contract: IsDone reports
// whether a cached value is ready, Value returns it once it is.
type Poller[T any] interface {
	IsDone() bool
	Value() T
}

// AwaitPoll implements the generic polling-style retry loop: while not
// done, re-enqueue the current fiber and yield, then retry. Termination
// depends entirely on side effects the reactor (or whatever mutates p's
// backing state) performs on fibers in the ready queue; AwaitPoll itself
// never registers anything with the reactor.
func AwaitPoll[T any](sched *scheduler.Scheduler, p Poller[T]) T {
	for !p.IsDone() {
		sched.YieldNow()
	}
	return p.Value()
}

// Await is a free-function spelling of a.Await(sched), useful when a's
// static type is inferred from context rather than named explicitly.
func Await[T any](sched *scheduler.Scheduler, a Awaitable[T]) T {
	return a.Await(sched)
}

// AwaitAll runs each of ops in sequence on the current fiber, discarding
// results. Each op is expected to close over an Awaitable and call its
// Await; wrapping in a plain closure lets callers combine awaitables of
// differing result types, since Go generics cannot hold a slice of
// Awaitable[T] for differing T without type erasure.
func AwaitAll(ops ...func()) {
	for _, op := range ops {
		op()
	}
}

// CaptureAll awaits each of aws in sequence on the current fiber and
// collects their results in order. Unlike AwaitAll, this requires a
// single element type T since the result slice is homogeneous.
func CaptureAll[T any](sched *scheduler.Scheduler, aws ...Awaitable[T]) []T {
	out := make([]T, 0, len(aws))
	for _, a := range aws {
		out = append(out, a.Await(sched))
	}
	return out
}
