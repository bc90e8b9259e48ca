// File: fiber/fiber.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package fiber implements the user-mode, cooperatively scheduled
// execution unit described by the runtime's scheduler/reactor pair: a
// private stack, resume/yield transfer of control, a small terminal-state
// machine, and reset-for-reuse so a terminated fiber's stack can be handed
// to a new entry function.
//
// Go exposes no public stack-switching primitive, so the private stack is
// realized as a goroutine parked between resumes on a pair of unbuffered
// handoff channels (it exits once its entry function returns): Resume and Yield rendezvous on them so that at most
// one of {the fiber body, its resumer} ever runs at a time, which is the
// invariant the scheduler actually depends on, not the literal memory
// layout of a manually managed stack.
package fiber

import "fmt"

// State is the lifecycle state of a Fiber.
type State int32

const (
	Runnable State = iota
	Running
	Suspended
	Terminated
)

func (s State) String() string {
	switch s {
	case Runnable:
		return "runnable"
	case Running:
		return "running"
	case Suspended:
		return "suspended"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Default stack sizes, retained as sizing metadata only: Go goroutine
// stacks grow on demand and are never allocated up front, but callers that
// care about the budget a fiber is expected to fit in can still read it
// back via StackSize.
const (
	DefaultStackSize64 = 16 << 20 // 16 MiB on 64-bit targets
	DefaultStackSize32 = 512 << 10 // 512 KiB on 32-bit targets
)

// Fiber is a cooperatively scheduled unit of execution with its own
// (logical) stack.
type Fiber struct {
	id        uint64
	entry     func()
	stackSize int

	state   State
	started bool

	resumeCh chan struct{}
	yieldCh  chan struct{}
	panicVal any
}

// New allocates a Fiber bound to entry, with the given stack size used only
// for bookkeeping (see package doc).
func New(id uint64, entry func(), stackSize int) *Fiber {
	if entry == nil {
		panic("fiber: nil entry function")
	}
	if stackSize <= 0 {
		stackSize = DefaultStackSize64
	}
	return &Fiber{
		id:        id,
		entry:     entry,
		stackSize: stackSize,
		state:     Runnable,
		resumeCh:  make(chan struct{}),
		yieldCh:   make(chan struct{}),
	}
}

// ID returns the fiber's identity, stable across Reset.
func (f *Fiber) ID() uint64 { return f.id }

// StackSize returns the bookkeeping stack size passed to New; Reset keeps
// it unchanged.
func (f *Fiber) StackSize() int { return f.stackSize }

// State reports the fiber's current lifecycle state.
func (f *Fiber) State() State { return f.state }

// Terminated reports whether the fiber's entry function has returned.
func (f *Fiber) Terminated() bool { return f.state == Terminated }

// Resume transfers control into the fiber and blocks until it yields or
// terminates. Resuming a terminated fiber is a programmer error.
func (f *Fiber) Resume() {
	if f.state == Terminated {
		panic(fmt.Sprintf("fiber: resume of terminated fiber %d", f.id))
	}
	if !f.started {
		f.started = true
		go f.bootstrap()
	}
	f.state = Running
	f.resumeCh <- struct{}{}
	<-f.yieldCh
	if p := f.panicVal; p != nil {
		f.panicVal = nil
		panic(p)
	}
}

// Yield returns control to the fiber's resumer. It must be called from
// inside the fiber's own entry function (directly or transitively).
func (f *Fiber) Yield() {
	f.state = Suspended
	f.yieldCh <- struct{}{}
	<-f.resumeCh
	f.state = Running
}

// Reset rebinds a terminated fiber to a fresh entry function, permitting
// reuse of the Fiber value via a recycle list. The next Resume starts a new
// goroutine for the new entry.
func (f *Fiber) Reset(entry func()) {
	if f.state != Terminated {
		panic(fmt.Sprintf("fiber: reset of non-terminated fiber %d (state=%s)", f.id, f.state))
	}
	if entry == nil {
		panic("fiber: nil entry function")
	}
	f.entry = entry
	f.started = false
	f.state = Runnable
}

// bootstrap runs the fiber's entry function on its own goroutine. A panic
// escaping entry is captured and re-raised on the scheduler's loop thread
// by the Resume call that is waiting for the fiber, so a misbehaving fiber crashes the loop rather
// than killing the whole process out from under the loop thread.
func (f *Fiber) bootstrap() {
	<-f.resumeCh
	defer func() {
		if r := recover(); r != nil {
			f.panicVal = r
		}
		f.state = Terminated
		f.yieldCh <- struct{}{}
	}()
	f.entry()
}
