//go:build linux
// +build linux

package reactor

import (
	"testing"
	"time"

	"github.com/momentics/fiberloop/fiber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

type recordingEnqueuer struct {
	fibers  []*fiber.Fiber
	reasons []ResumeReason
}

func (e *recordingEnqueuer) Enqueue(f *fiber.Fiber, reason ResumeReason) {
	e.fibers = append(e.fibers, f)
	e.reasons = append(e.reasons, reason)
}

func newTestPipe(t *testing.T) (r, w int) {
	fds := make([]int, 2)
	require.NoError(t, unix.Pipe(fds))
	return fds[0], fds[1]
}

func TestEpollReactorResolvesIOReady(t *testing.T) {
	enq := &recordingEnqueuer{}
	reactor, err := New(enq)
	require.NoError(t, err)
	defer reactor.Close()

	rfd, wfd := newTestPipe(t)
	defer unix.Close(wfd)

	f := fiber.New(1, func() {}, fiber.DefaultStackSize64)
	require.NoError(t, reactor.RegisterIO(f, rfd, Read))
	assert.Equal(t, 1, reactor.WaiterCount())

	_, err = unix.Write(wfd, []byte("x"))
	require.NoError(t, err)

	require.NoError(t, reactor.Poll(1000))
	require.Len(t, enq.fibers, 1)
	assert.Same(t, f, enq.fibers[0])
	assert.Equal(t, IOReady, enq.reasons[0])
	assert.Equal(t, 0, reactor.WaiterCount())

	unix.Close(rfd)
}

func TestEpollReactorIOTimeoutFiresBeforeData(t *testing.T) {
	enq := &recordingEnqueuer{}
	reactor, err := New(enq)
	require.NoError(t, err)
	defer reactor.Close()

	rfd, wfd := newTestPipe(t)
	defer unix.Close(wfd)
	defer unix.Close(rfd)

	f := fiber.New(1, func() {}, fiber.DefaultStackSize64)
	require.NoError(t, reactor.RegisterIOTimeout(f, rfd, Read, 10*time.Millisecond))
	assert.Equal(t, 2, reactor.WaiterCount())

	require.NoError(t, reactor.Poll(1000))
	require.Len(t, enq.fibers, 1)
	assert.Equal(t, IOTimeout, enq.reasons[0])
	assert.Equal(t, 0, reactor.WaiterCount())
}

func TestEpollReactorPureTimeout(t *testing.T) {
	enq := &recordingEnqueuer{}
	reactor, err := New(enq)
	require.NoError(t, err)
	defer reactor.Close()

	f := fiber.New(1, func() {}, fiber.DefaultStackSize64)
	require.NoError(t, reactor.RegisterTimeout(f, time.Now().Add(5*time.Millisecond)))

	require.NoError(t, reactor.Poll(1000))
	require.Len(t, enq.fibers, 1)
	assert.Equal(t, IOTimeout, enq.reasons[0])
}

func TestEpollReactorHangupClassification(t *testing.T) {
	enq := &recordingEnqueuer{}
	reactor, err := New(enq)
	require.NoError(t, err)
	defer reactor.Close()

	rfd, wfd := newTestPipe(t)
	defer unix.Close(rfd)

	f := fiber.New(1, func() {}, fiber.DefaultStackSize64)
	require.NoError(t, reactor.RegisterIO(f, rfd, Read))

	unix.Close(wfd)

	require.NoError(t, reactor.Poll(1000))
	require.Len(t, enq.fibers, 1)
	assert.Equal(t, IOHup, enq.reasons[0])
}

func TestEpollReactorDuplicateRegistrationRejected(t *testing.T) {
	enq := &recordingEnqueuer{}
	reactor, err := New(enq)
	require.NoError(t, err)
	defer reactor.Close()

	rfd, wfd := newTestPipe(t)
	defer unix.Close(rfd)
	defer unix.Close(wfd)

	f := fiber.New(1, func() {}, fiber.DefaultStackSize64)
	require.NoError(t, reactor.RegisterIO(f, rfd, Read))

	err = reactor.RegisterIO(f, rfd, Read)
	var dup *ErrAlreadyRegistered
	assert.ErrorAs(t, err, &dup)
}
