// File: fiber/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pool is the scheduler's recycle list: terminated fibers are parked here
// so a later Spawn can Reset them onto a new entry function instead of
// allocating a fresh Fiber. The Fiber value (identity, handoff channels) is
// reused; its next Resume still starts a new goroutine for the new entry,
// since the previous one exits when its entry returns. Built as an explicit slice owned by the
// loop thread rather than sync.Pool, which is free to drop entries under
// GC pressure and can't guarantee a "recycle or allocate new" contract.
package fiber

// Pool owns a set of fibers, allocating new ones and recycling terminated
// ones. It is not safe for concurrent use; the scheduler owns it exclusively
// from the loop thread, matching every other piece of scheduler state.
type Pool struct {
	nextID  uint64
	free    []*Fiber
	created int
}

// NewPool returns an empty fiber pool.
func NewPool() *Pool {
	return &Pool{}
}

// Acquire returns a fiber bound to entry: a recycled fiber's stack is
// reused via Reset when one is available, otherwise a new Fiber is
// allocated.
func (p *Pool) Acquire(entry func(), stackSize int) *Fiber {
	if n := len(p.free); n > 0 {
		f := p.free[n-1]
		p.free = p.free[:n-1]
		f.Reset(entry)
		return f
	}
	p.nextID++
	p.created++
	return New(p.nextID, entry, stackSize)
}

// Release returns a terminated fiber to the recycle list. Releasing a
// non-terminated fiber is a programmer error.
func (p *Pool) Release(f *Fiber) {
	if !f.Terminated() {
		panic("fiber: release of non-terminated fiber")
	}
	p.free = append(p.free, f)
}

// Created returns the total number of distinct fibers ever allocated by
// this pool (recycled reuses are not counted again), useful for asserting
// recycling actually happened in tests.
func (p *Pool) Created() int { return p.created }

// Outstanding returns how many fibers are currently parked in the recycle
// list, waiting to be reused.
func (p *Pool) Outstanding() int { return len(p.free) }
