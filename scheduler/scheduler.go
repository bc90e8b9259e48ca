// File: scheduler/scheduler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package scheduler owns the ready queue and main loop binding fibers to
// the reactor: pop a ready task, resume its fiber, recycle it on
// termination, then poll the reactor with a timeout chosen by whether
// there is more ready work or any waiters left.
package scheduler

import (
	"fmt"
	"sync/atomic"

	"github.com/eapache/queue"
	"github.com/momentics/fiberloop/fiber"
	"github.com/momentics/fiberloop/reactor"
	"github.com/sirupsen/logrus"
)

// task pairs a ready fiber with the reason it is being resumed for.
type task struct {
	f      *fiber.Fiber
	reason reactor.ResumeReason
}

// Scheduler is the single-threaded loop owner: ready queue, fiber pool,
// and reactor, all touched only from the loop thread (or from fiber bodies
// running synchronously inside a Resume call on that same thread).
type Scheduler struct {
	ready   *queue.Queue
	pool    *fiber.Pool
	reactor reactor.Reactor
	log     *logrus.Logger

	current       *fiber.Fiber
	currentReason reactor.ResumeReason

	shutdown atomic.Bool
}

// New constructs a Scheduler bound to react. log may be nil, in which case
// the standard logrus logger is used.
func New(react reactor.Reactor, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{
		ready:   queue.New(),
		pool:    fiber.NewPool(),
		reactor: react,
		log:     log,
	}
}

// Spawn acquires a fiber (recycled or new) bound to entry and enqueues it
// with reason Normal.
func (s *Scheduler) Spawn(entry func()) *fiber.Fiber {
	if entry == nil {
		panic("scheduler: spawn of nil entry function")
	}
	f := s.pool.Acquire(entry, fiber.DefaultStackSize64)
	s.Enqueue(f, reactor.Normal)
	return f
}

// Enqueue appends f to the ready queue with reason. It implements
// reactor.Enqueuer so the reactor can hand woken fibers straight back to
// the scheduler, and is also used internally by YieldNow.
func (s *Scheduler) Enqueue(f *fiber.Fiber, reason reactor.ResumeReason) {
	s.ready.Add(&task{f: f, reason: reason})
}

// Current returns the fiber currently executing on the loop thread, or nil
// if called outside of a fiber body.
func (s *Scheduler) Current() *fiber.Fiber {
	return s.current
}

// CurrentResumeReason returns the reason that caused the currently running
// fiber's latest resumption. Reading it after that fiber has yielded is
// undefined.
func (s *Scheduler) CurrentResumeReason() reactor.ResumeReason {
	return s.currentReason
}

// Reactor exposes the bound reactor so awaitables can register themselves
// directly.
func (s *Scheduler) Reactor() reactor.Reactor {
	return s.reactor
}

// RequestShutdown sets the shutdown flag and wakes a Poll blocked on an
// infinite timeout, so the loop exits after at most one more poll-wait
// quantum rather than waiting out whatever deadline the longest-lived
// waiter happens to be holding. This is the one call safe to make from
// outside the loop thread (e.g. a signal handler): the flag is a single
// atomic store, and WakeUp's eventfd write is safe to race against a
// concurrent Poll.
func (s *Scheduler) RequestShutdown() {
	s.shutdown.Store(true)
	_ = s.reactor.WakeUp()
}

// Active reports whether the loop would keep running: shutdown has not
// been requested, and there is either ready work or an outstanding
// waiter.
func (s *Scheduler) Active() bool {
	if s.shutdown.Load() {
		return false
	}
	return s.ready.Length() > 0 || s.reactor.WaiterCount() > 0
}

// YieldNow self-enqueues the current fiber with reason Normal, then
// yields, guaranteeing it is resumed only after every fiber already in
// the queue and after one round of I/O polling.
func (s *Scheduler) YieldNow() {
	f := s.current
	if f == nil {
		panic("scheduler: yield_now called outside a fiber")
	}
	s.Enqueue(f, reactor.Normal)
	f.Yield()
}

// Run executes the main loop until shutdown is requested or the ready
// queue and waiter table have both drained; a shutdown exits without
// draining the remaining ready fibers or waiters. A fiber that escapes its
// entry with an uncaught panic crashes the loop: Run does not recover it,
// it propagates to Run's own caller.
func (s *Scheduler) Run() {
	s.shutdown.Store(false)
	for {
		if s.ready.Length() > 0 {
			t := s.ready.Remove().(*task)
			if !t.f.Terminated() {
				s.current = t.f
				s.currentReason = t.reason
				t.f.Resume()
				s.current = nil
			}
			if t.f.Terminated() {
				s.pool.Release(t.f)
			}
		}
		if s.shutdown.Load() {
			break
		}
		if s.ready.Length() == 0 && s.reactor.WaiterCount() == 0 {
			break
		}
		timeoutMs := 0
		if s.ready.Length() == 0 {
			timeoutMs = -1
		}
		if err := s.reactor.Poll(timeoutMs); err != nil {
			s.log.WithError(err).Error("scheduler: fatal reactor poll error")
			panic(fmt.Sprintf("scheduler: reactor poll failed: %v", err))
		}
	}
}
