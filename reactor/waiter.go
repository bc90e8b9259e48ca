// File: reactor/waiter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// waiterTable is the descriptor -> (fiber, paired timer) map, factored out
// of the platform-specific pollers so both the Linux epoll backend and any
// future backend share one implementation of the uniqueness/removal
// invariants.
package reactor

import "github.com/momentics/fiberloop/fiber"

type waiterEntry struct {
	f          *fiber.Fiber
	isTimer    bool // whether this table row's own descriptor is a timer
	pairFD     int  // sibling descriptor, or -1 if unpaired
	pairIsTimer bool
}

type waiterTable struct {
	entries map[int]*waiterEntry
}

func newWaiterTable() *waiterTable {
	return &waiterTable{entries: make(map[int]*waiterEntry)}
}

// insert registers fd, enforcing a single waiter per descriptor.
func (t *waiterTable) insert(fd int, e *waiterEntry) {
	if _, exists := t.entries[fd]; exists {
		panic(&ErrAlreadyRegistered{FD: fd})
	}
	t.entries[fd] = e
}

func (t *waiterTable) lookup(fd int) (*waiterEntry, bool) {
	e, ok := t.entries[fd]
	return e, ok
}

func (t *waiterTable) remove(fd int) {
	delete(t.entries, fd)
}

func (t *waiterTable) count() int {
	return len(t.entries)
}
