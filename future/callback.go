// File: future/callback.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Callback futures are polling style: they wrap a user-supplied callback
// that signals readiness by returning (value, true). DoAsync/DoAsyncVoid
// build one around a plain function whose call is deferred to the
// future's first poll, which runs on whichever fiber reaches it — not at
// construction time, unlike Timeout.
package future

import "github.com/momentics/fiberloop/scheduler"

// Callback is a polling-style future around a user callback.
type Callback[T any] struct {
	poll func() (T, bool)
	done bool
	val  T
}

// NewCallback wraps poll: each IsDone call invokes it until it reports
// ready, after which the value is latched and poll is never called
// again.
func NewCallback[T any](poll func() (T, bool)) *Callback[T] {
	return &Callback[T]{poll: poll}
}

// IsDone implements Poller.
func (c *Callback[T]) IsDone() bool {
	if c.done {
		return true
	}
	v, ok := c.poll()
	if ok {
		c.val = v
		c.done = true
	}
	return c.done
}

// Value implements Poller. Calling it before IsDone reports true returns
// the zero value of T.
func (c *Callback[T]) Value() T { return c.val }

// Await implements Awaitable via the shared polling retry loop.
func (c *Callback[T]) Await(sched *scheduler.Scheduler) T {
	return AwaitPoll[T](sched, c)
}

// DoAsync wraps fn so its call is deferred to the first poll rather than
// happening at construction time: the result is not parallelism, it is
// deferral to whenever the scheduler actually reaches the awaiting fiber.
func DoAsync[T any](fn func() T) *Callback[T] {
	return NewCallback(func() (T, bool) {
		return fn(), true
	})
}

// CallbackVoid is the void-returning counterpart of Callback: its
// backing callback reports readiness via a plain bool instead of
// (value, bool).
type CallbackVoid struct {
	poll func() bool
	done bool
}

// NewCallbackVoid wraps poll analogously to NewCallback.
func NewCallbackVoid(poll func() bool) *CallbackVoid {
	return &CallbackVoid{poll: poll}
}

// IsDone implements Poller[Void].
func (c *CallbackVoid) IsDone() bool {
	if c.done {
		return true
	}
	c.done = c.poll()
	return c.done
}

// Value implements Poller[Void].
func (c *CallbackVoid) Value() Void { return Void{} }

// Await implements Awaitable[Void].
func (c *CallbackVoid) Await(sched *scheduler.Scheduler) Void {
	return AwaitPoll[Void](sched, c)
}

// DoAsyncVoid wraps a thunk so its call is deferred to the first poll,
// the void counterpart of DoAsync.
func DoAsyncVoid(thunk func()) *CallbackVoid {
	return NewCallbackVoid(func() bool {
		thunk()
		return true
	})
}
