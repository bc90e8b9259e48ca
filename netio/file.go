//go:build linux
// +build linux

// File: netio/file.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Non-blocking file read/write. Files have no hangup/peer-hangup
// condition, so only IOReady and IOError are meaningful resume reasons
// here — RegisterIO is used with no timeout, matching the unbounded
// nature of file I/O.
package netio

import (
	"github.com/momentics/fiberloop/api"
	"github.com/momentics/fiberloop/reactor"
	"github.com/momentics/fiberloop/scheduler"
	"golang.org/x/sys/unix"
)

// ReadFile reads at most len(buf) bytes from fd, suspending on EAGAIN
// until the descriptor reports read-readiness.
func ReadFile(sched *scheduler.Scheduler, fd int, buf []byte) (int, error) {
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
		if err := sched.Reactor().RegisterIO(f, fd, reactor.Read); err != nil {
			return 0, err
		}
		f.Yield()
		switch sched.CurrentResumeReason() {
		case reactor.IOReady:
			continue
		case reactor.IOError:
			return 0, api.ErrIOFailure
		default:
			return 0, nil
		}
	}
}

// WriteFile writes all of data to fd, suspending on EAGAIN until the
// descriptor reports write-readiness.
func WriteFile(sched *scheduler.Scheduler, fd int, data []byte) error {
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
		if err := sched.Reactor().RegisterIO(f, fd, reactor.Write); err != nil {
			return err
		}
		f.Yield()
		if sched.CurrentResumeReason() == reactor.IOError {
			return api.ErrIOFailure
		}
	}
	return nil
}

// FileReadinessSize returns the number of bytes immediately readable
// from fd via the FIONREAD ioctl, used to size a buffer before ReadFile.
func FileReadinessSize(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.SIOCINQ)
}
