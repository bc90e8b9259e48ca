//go:build linux
// +build linux

package fiberloop

import (
	"testing"
	"time"

	"github.com/momentics/fiberloop/future"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeSpawnAndRun(t *testing.T) {
	rt, err := New(DefaultConfig())
	require.NoError(t, err)

	var ran bool
	rt.Spawn(func() { ran = true })
	rt.Run()

	assert.True(t, ran)
	assert.NoError(t, rt.react.Close())
}

func TestRuntimeShutdownInterruptsSleepingFiber(t *testing.T) {
	rt, err := New(DefaultConfig())
	require.NoError(t, err)

	resumed := false
	rt.Spawn(func() {
		future.NewTimeout(2 * time.Second).Await(rt.Scheduler())
		resumed = true
	})

	go func() {
		time.Sleep(50 * time.Millisecond)
		rt.RequestShutdown()
	}()

	done := make(chan struct{})
	go func() {
		rt.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("runtime did not shut down promptly")
	}
	assert.False(t, resumed)
	assert.NoError(t, rt.react.Close())
}

func TestRuntimeMetricsAndDebugProbes(t *testing.T) {
	rt, err := New(DefaultConfig())
	require.NoError(t, err)
	defer rt.react.Close()

	rt.Spawn(func() {})
	rt.Run()

	require.NotNil(t, rt.Metrics())
	snap := rt.Metrics().GetSnapshot()
	assert.Contains(t, snap, "runtime.started_at")

	require.NotNil(t, rt.Debug())
	dump := rt.Debug().DumpState()
	assert.Contains(t, dump, "platform.cpus")
}
