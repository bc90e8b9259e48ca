package fiber_test

import (
	"testing"

	"github.com/momentics/fiberloop/fiber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiberRunsToCompletionWithoutYield(t *testing.T) {
	var ran bool
	f := fiber.New(1, func() { ran = true }, 0)
	f.Resume()
	assert.True(t, ran)
	assert.Equal(t, fiber.Terminated, f.State())
}

func TestFiberResumeYieldSequence(t *testing.T) {
	var steps []string
	var fb *fiber.Fiber
	fb = fiber.New(1, func() {
		steps = append(steps, "start")
		fb.Yield()
		steps = append(steps, "resumed")
	}, 0)

	fb.Resume()
	assert.Equal(t, []string{"start"}, steps)
	assert.Equal(t, fiber.Suspended, fb.State())

	fb.Resume()
	assert.Equal(t, []string{"start", "resumed"}, steps)
	assert.Equal(t, fiber.Terminated, fb.State())
}

func TestFiberResumeOfTerminatedPanics(t *testing.T) {
	fb := fiber.New(1, func() {}, 0)
	fb.Resume()
	require.Equal(t, fiber.Terminated, fb.State())
	assert.Panics(t, func() { fb.Resume() })
}

func TestFiberResetReusesStackAfterTermination(t *testing.T) {
	fb := fiber.New(1, func() {}, 0)
	fb.Resume()
	require.Equal(t, fiber.Terminated, fb.State())

	var ran bool
	fb.Reset(func() { ran = true })
	assert.Equal(t, fiber.Runnable, fb.State())
	fb.Resume()
	assert.True(t, ran)
	assert.Equal(t, fiber.Terminated, fb.State())
}

func TestFiberPanicPropagatesToResumer(t *testing.T) {
	fb := fiber.New(1, func() { panic("boom") }, 0)
	assert.PanicsWithValue(t, "boom", func() { fb.Resume() })
}

func TestPoolRecyclesTerminatedFibers(t *testing.T) {
	p := fiber.NewPool()

	var order []int
	for i := 0; i < 10; i++ {
		i := i
		f := p.Acquire(func() { order = append(order, i) }, 0)
		f.Resume()
		p.Release(f)
	}
	assert.Equal(t, 10, len(order))
	assert.Less(t, p.Created(), 10, "recycling should avoid allocating 10 distinct fibers")
	assert.Equal(t, 1, p.Outstanding(), "each iteration recycles the same single fiber back onto the free list")
}
