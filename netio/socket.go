//go:build linux
// +build linux

// File: netio/socket.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Socket futures: direct-style awaitables, each a plain function taking
// the scheduler handle explicitly (the function itself is the
// "awaitable" — there is no separate future object to construct before
// awaiting, since each already performs exactly the single registration
// + yield the direct style calls for). Built directly on
// golang.org/x/sys/unix non-blocking socket syscalls.
package netio

import (
	"time"

	"github.com/momentics/fiberloop/api"
	"github.com/momentics/fiberloop/reactor"
	"github.com/momentics/fiberloop/scheduler"
	"golang.org/x/sys/unix"
)

func currentFiberOrPanic(sched *scheduler.Scheduler) {
	if sched.Current() == nil {
		panic("netio: called outside a fiber")
	}
}

// resumeToError maps a non-ready resume reason to its typed error;
// IOReady and Normal (a spurious re-enqueue) return nil to tell the
// caller to retry its syscall.
func resumeToError(reason reactor.ResumeReason, timeoutErr error) error {
	switch reason {
	case reactor.IOTimeout:
		return timeoutErr
	case reactor.IOHup:
		return api.ErrIOHangup
	case reactor.IOError:
		return api.ErrIOFailure
	default:
		return nil
	}
}

// Accept registers the listening descriptor for read-readiness, yields,
// then accepts a single connection with NONBLOCK|CLOEXEC set atomically.
func Accept(sched *scheduler.Scheduler, listenFD int) (connFD int, peer unix.Sockaddr, err error) {
	currentFiberOrPanic(sched)
	f := sched.Current()
	if err := sched.Reactor().RegisterIO(f, listenFD, reactor.Read); err != nil {
		return -1, nil, err
	}
	f.Yield()
	if err := resumeToError(sched.CurrentResumeReason(), api.ErrIOTimeout); err != nil {
		return -1, nil, err
	}
	return unix.Accept4(listenFD, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
}

// Recv reads at most len(buf) bytes, retrying across EAGAIN. On IOTimeout
// it returns (0, nil) unless strict is set, in which case it returns
// (0, api.ErrIOTimeout); IOError/IOHup raise their typed errors. Returns
// the count of the first successful read.
func Recv(sched *scheduler.Scheduler, fd int, buf []byte, timeout time.Duration, strict bool) (int, error) {
	currentFiberOrPanic(sched)
	f := sched.Current()
	for {
		n, err := unix.Read(fd, buf)
		if err == nil {
			return n, nil
		}
		if err != unix.EAGAIN && err != unix.EWOULDBLOCK {
			return 0, err
		}
		if err := sched.Reactor().RegisterIOTimeout(f, fd, reactor.Read, timeout); err != nil {
			return 0, err
		}
		f.Yield()
		reason := sched.CurrentResumeReason()
		if reason == reactor.IOTimeout && !strict {
			return 0, nil
		}
		if rerr := resumeToError(reason, api.ErrIOTimeout); rerr != nil {
			return 0, rerr
		}
	}
}

// Send writes all of data, retrying across EAGAIN and partial writes.
// Any non-IOReady resume reason always raises, including IOTimeout —
// unlike Recv, send has no non-strict timeout behavior.
func Send(sched *scheduler.Scheduler, fd int, data []byte, timeout time.Duration) error {
	currentFiberOrPanic(sched)
	f := sched.Current()
	remaining := data
	for len(remaining) > 0 {
		n, err := unix.Write(fd, remaining)
		if err == nil {
			remaining = remaining[n:]
			continue
		}
		if err != unix.EAGAIN && err != unix.EWOULDBLOCK {
			return err
		}
		if err := sched.Reactor().RegisterIOTimeout(f, fd, reactor.Write, timeout); err != nil {
			return err
		}
		f.Yield()
		if rerr := resumeToError(sched.CurrentResumeReason(), api.ErrIOTimeout); rerr != nil {
			return rerr
		}
	}
	return nil
}

// WaitForActivity short-circuits via a FIONREAD peek of the receive
// queue; otherwise it registers for read with timeout and maps the
// resume reason to ready (true) or timed-out/hung-up (false). Errors
// raise.
func WaitForActivity(sched *scheduler.Scheduler, fd int, timeout time.Duration) (bool, error) {
	currentFiberOrPanic(sched)
	n, err := unix.IoctlGetInt(fd, unix.SIOCINQ)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	f := sched.Current()
	if err := sched.Reactor().RegisterIOTimeout(f, fd, reactor.Read, timeout); err != nil {
		return false, err
	}
	f.Yield()
	switch sched.CurrentResumeReason() {
	case reactor.IOReady:
		return true, nil
	case reactor.IOTimeout, reactor.IOHup:
		return false, nil
	case reactor.IOError:
		return false, api.ErrIOFailure
	default:
		return false, nil
	}
}

// Shutdown releases the socket's read and/or write half.
func Shutdown(fd int, how int) error {
	return unix.Shutdown(fd, how)
}
