//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux epoll(7)-based reactor implementation: EpollCreate1/EpollCtl/
// EpollWait driving a waiter table with paired I/O+timer registrations
// and resume-reason dispatch.
package reactor

import (
	"encoding/binary"
	"time"

	"github.com/momentics/fiberloop/fiber"
	"golang.org/x/sys/unix"
)

const maxBatchEvents = 128

// EpollReactor is the Linux epoll-backed Reactor.
type EpollReactor struct {
	epfd    int
	wakeFD  int
	waiters *waiterTable
	enqueue Enqueuer
	events  []unix.EpollEvent
}

// New constructs an EpollReactor that hands woken fibers to enq. A private
// eventfd is registered alongside the waiter table purely so WakeUp can
// interrupt a Poll blocked on an infinite timeout, following the
// self-pipe/eventfd wakeup idiom used by other event-loop implementations.
func New(enq Enqueuer) (*EpollReactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	wakeFD, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, err
	}
	r := &EpollReactor{
		epfd:    epfd,
		wakeFD:  wakeFD,
		waiters: newWaiterTable(),
		enqueue: enq,
		events:  make([]unix.EpollEvent, maxBatchEvents),
	}
	wakePayload := encodePayload(int32(wakeFD), true, int32(wakeFD), true)
	if err := r.addEpoll(wakeFD, unix.EPOLLIN, wakePayload); err != nil {
		unix.Close(wakeFD)
		unix.Close(epfd)
		return nil, err
	}
	return r, nil
}

func toEpollEvents(interest InterestMask) uint32 {
	var ev uint32 = unix.EPOLLERR | unix.EPOLLHUP | unix.EPOLLRDHUP
	if interest&Read != 0 {
		ev |= unix.EPOLLIN
	}
	if interest&Write != 0 {
		ev |= unix.EPOLLOUT
	}
	return ev
}

// addEpoll registers fd with the kernel, storing payload in its user-data
// slot.
func (r *EpollReactor) addEpoll(fd int, epollMask uint32, payload uint64) error {
	ev := unix.EpollEvent{
		Events: epollMask,
		Fd:     int32(payload),
		Pad:    int32(payload >> 32),
	}
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (r *EpollReactor) delEpoll(fd int) {
	_ = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// RegisterIO implements Reactor.
func (r *EpollReactor) RegisterIO(f *fiber.Fiber, fd int, interest InterestMask) error {
	if _, exists := r.waiters.lookup(fd); exists {
		return &ErrAlreadyRegistered{FD: fd}
	}
	payload := encodePayload(int32(fd), false, int32(fd), false)
	if err := r.addEpoll(fd, toEpollEvents(interest), payload); err != nil {
		return err
	}
	r.waiters.insert(fd, &waiterEntry{f: f, isTimer: false, pairFD: -1})
	return nil
}

// RegisterIOTimeout implements Reactor.
func (r *EpollReactor) RegisterIOTimeout(f *fiber.Fiber, fd int, interest InterestMask, timeout time.Duration) error {
	if _, exists := r.waiters.lookup(fd); exists {
		return &ErrAlreadyRegistered{FD: fd}
	}
	timerFD, err := newTimerFD(timeout)
	if err != nil {
		return err
	}

	ioPayload := encodePayload(int32(fd), false, int32(timerFD), true)
	if err := r.addEpoll(fd, toEpollEvents(interest), ioPayload); err != nil {
		unix.Close(timerFD)
		return err
	}
	timerPayload := encodePayload(int32(timerFD), true, int32(fd), false)
	if err := r.addEpoll(timerFD, unix.EPOLLIN, timerPayload); err != nil {
		r.delEpoll(fd)
		unix.Close(timerFD)
		return err
	}

	r.waiters.insert(fd, &waiterEntry{f: f, isTimer: false, pairFD: timerFD, pairIsTimer: true})
	r.waiters.insert(timerFD, &waiterEntry{f: f, isTimer: true, pairFD: fd, pairIsTimer: false})
	return nil
}

// RegisterTimeout implements Reactor.
func (r *EpollReactor) RegisterTimeout(f *fiber.Fiber, deadline time.Time) error {
	timerFD, err := newTimerFD(time.Until(deadline))
	if err != nil {
		return err
	}
	payload := encodePayload(int32(timerFD), true, int32(timerFD), true)
	if err := r.addEpoll(timerFD, unix.EPOLLIN, payload); err != nil {
		unix.Close(timerFD)
		return err
	}
	r.waiters.insert(timerFD, &waiterEntry{f: f, isTimer: true, pairFD: -1})
	return nil
}

// WaiterCount implements Reactor. It counts waiter-table rows, not
// suspended fibers: a paired I/O+timer registration occupies two rows
// (one per descriptor) for a single waiting fiber.
func (r *EpollReactor) WaiterCount() int {
	return r.waiters.count()
}

// Poll implements Reactor. EINTR is treated as spurious.
//
// A paired I/O+timer registration can have both halves ready in the same
// batch (e.g. a socket becomes readable right as its timeout expires).
// Dispatching the first half cancels the second via cancelPaired before
// the loop ever reaches its still-pending event in r.events, so cancelled
// is threaded through the batch to let dispatch recognize and skip that
// stale event instead of treating it as an unknown descriptor.
func (r *EpollReactor) Poll(timeoutMs int) error {
	n, err := unix.EpollWait(r.epfd, r.events, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return err
	}
	cancelled := make(map[int]bool)
	for i := 0; i < n; i++ {
		r.dispatch(r.events[i], cancelled)
	}
	return nil
}

func (r *EpollReactor) dispatch(ev unix.EpollEvent, cancelled map[int]bool) {
	payload := uint64(uint32(ev.Fd)) | uint64(uint32(ev.Pad))<<32
	p := decodePayload(payload)

	primaryFD := int(p.primaryFD)
	if primaryFD == r.wakeFD {
		r.drainWake()
		return
	}
	if cancelled[primaryFD] {
		return
	}

	entry, ok := r.waiters.lookup(primaryFD)
	if !ok {
		panic(&ErrUnknownDescriptor{FD: primaryFD})
	}

	if p.hasPair() {
		extraFD := int(p.extraFD)
		r.cancelPaired(extraFD)
		cancelled[extraFD] = true
	}

	reason := classify(ev.Events, p.primaryTimer)

	if entry.isTimer {
		drainTimerFD(primaryFD)
	}
	r.delEpoll(primaryFD)
	r.waiters.remove(primaryFD)
	if entry.isTimer {
		unix.Close(primaryFD)
	}

	r.enqueue.Enqueue(entry.f, reason)
}

// cancelPaired removes the sibling of a fired descriptor: its kernel
// registration and waiter-table row are dropped in the same dispatch step,
// since a paired I/O+timer registration resolves as a single event.
func (r *EpollReactor) cancelPaired(fd int) {
	entry, ok := r.waiters.lookup(fd)
	if !ok {
		return
	}
	r.delEpoll(fd)
	r.waiters.remove(fd)
	if entry.isTimer {
		unix.Close(fd)
	}
}

// classify turns raw epoll flags into a ResumeReason: hangup and error
// conditions take priority over plain readiness, and a readable timer
// descriptor is reported as a timeout rather than ordinary readiness.
func classify(events uint32, firedIsTimer bool) ResumeReason {
	switch {
	case events&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0:
		return IOHup
	case events&unix.EPOLLERR != 0:
		return IOError
	case events&unix.EPOLLIN != 0:
		if firedIsTimer {
			return IOTimeout
		}
		return IOReady
	case events&unix.EPOLLOUT != 0:
		return IOReady
	default:
		return IOReady
	}
}

// drainWake consumes the eventfd counter so it does not stay perpetually
// readable after a WakeUp.
func (r *EpollReactor) drainWake() {
	var buf [8]byte
	_, _ = unix.Read(r.wakeFD, buf[:])
}

// WakeUp implements Reactor. Writing 1 to an eventfd is the documented way
// to make it readable; EAGAIN (buffer already signaled, or a concurrent
// writer beat us to it) is not an error — the point is merely that the
// blocked Poll sees the descriptor as readable at least once.
func (r *EpollReactor) WakeUp() error {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(r.wakeFD, buf[:])
	if err == unix.EAGAIN {
		return nil
	}
	return err
}

// Close implements Reactor.
func (r *EpollReactor) Close() error {
	unix.Close(r.wakeFD)
	return unix.Close(r.epfd)
}
