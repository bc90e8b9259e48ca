//go:build linux
// +build linux

package future

import (
	"testing"
	"time"

	"github.com/momentics/fiberloop/fiber"
	"github.com/momentics/fiberloop/reactor"
	"github.com/momentics/fiberloop/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enqueuerFunc func(f *fiber.Fiber, reason reactor.ResumeReason)

func (fn enqueuerFunc) Enqueue(f *fiber.Fiber, reason reactor.ResumeReason) { fn(f, reason) }

func newTestScheduler(t *testing.T) *scheduler.Scheduler {
	var sched *scheduler.Scheduler
	react, err := reactor.New(enqueuerFunc(func(f *fiber.Fiber, reason reactor.ResumeReason) {
		sched.Enqueue(f, reason)
	}))
	require.NoError(t, err)
	sched = scheduler.New(react, nil)
	return sched
}

func TestTimeoutAwaitBlocksUntilDeadline(t *testing.T) {
	sched := newTestScheduler(t)
	defer sched.Reactor().Close()

	start := time.Now()
	var elapsed time.Duration
	sched.Spawn(func() {
		NewTimeout(30 * time.Millisecond).Await(sched)
		elapsed = time.Since(start)
	})
	sched.Run()
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
}

func TestDoAsyncDefersCallUntilFirstPoll(t *testing.T) {
	sched := newTestScheduler(t)
	defer sched.Reactor().Close()

	called := false
	var result int
	sched.Spawn(func() {
		cb := DoAsync(func() int {
			called = true
			return 42
		})
		assert.False(t, called)
		result = cb.Await(sched)
	})
	sched.Run()
	assert.True(t, called)
	assert.Equal(t, 42, result)
}

func TestCallbackPollsUntilReady(t *testing.T) {
	sched := newTestScheduler(t)
	defer sched.Reactor().Close()

	polls := 0
	var got string
	sched.Spawn(func() {
		cb := NewCallback(func() (string, bool) {
			polls++
			if polls < 3 {
				return "", false
			}
			return "ready", true
		})
		got = cb.Await(sched)
	})
	sched.Run()
	assert.Equal(t, 3, polls)
	assert.Equal(t, "ready", got)
}

func TestCaptureAllCollectsInOrder(t *testing.T) {
	sched := newTestScheduler(t)
	defer sched.Reactor().Close()

	var out []int
	sched.Spawn(func() {
		a := DoAsync(func() int { return 1 })
		b := DoAsync(func() int { return 2 })
		c := DoAsync(func() int { return 3 })
		out = CaptureAll[int](sched, a, b, c)
	})
	sched.Run()
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestAwaitAllRunsEachInSequence(t *testing.T) {
	sched := newTestScheduler(t)
	defer sched.Reactor().Close()

	var order []string
	sched.Spawn(func() {
		t1 := NewTimeout(5 * time.Millisecond)
		cb := DoAsyncVoid(func() { order = append(order, "cb") })
		AwaitAll(
			func() { t1.Await(sched); order = append(order, "t1") },
			func() { cb.Await(sched) },
		)
	})
	sched.Run()
	assert.Equal(t, []string{"t1", "cb"}, order)
}
