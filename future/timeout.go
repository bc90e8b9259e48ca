// File: future/timeout.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Timeout is a direct-style awaitable: its deadline is computed at
// construction time, not at the first Await, so a Timeout built well
// before it is awaited still measures from construction.
package future

import (
	"time"

	"github.com/momentics/fiberloop/internal/clock"
	"github.com/momentics/fiberloop/scheduler"
)

// Timeout resolves to Void once its deadline has passed.
type Timeout struct {
	deadline time.Time
}

// NewTimeout constructs a Timeout whose deadline is clock.Now()+d,
// evaluated immediately.
func NewTimeout(d time.Duration) *Timeout {
	return &Timeout{deadline: clock.Now().Add(d)}
}

// Await registers a timer descriptor for the deadline and yields. There
// is no alternate readiness to distinguish: whatever resume reason wakes
// the fiber, the timeout is by definition complete.
func (t *Timeout) Await(sched *scheduler.Scheduler) Void {
	f := sched.Current()
	if f == nil {
		panic("future: Timeout.Await called outside a fiber")
	}
	if err := sched.Reactor().RegisterTimeout(f, t.deadline); err != nil {
		panic(err)
	}
	f.Yield()
	return Void{}
}
