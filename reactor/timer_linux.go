//go:build linux
// +build linux

// File: reactor/timer_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Timer descriptor facility backed by Linux timerfd: a descriptor whose
// readiness fires once a monotonic deadline has passed.
package reactor

import (
	"time"

	"golang.org/x/sys/unix"
)

// newTimerFD creates a non-blocking, close-on-exec timer descriptor armed
// to fire once after d (clamped to a minimum of 1ns so an already-elapsed
// deadline still fires promptly rather than disarming the timer).
func newTimerFD(d time.Duration) (int, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	if err != nil {
		return -1, err
	}
	if d <= 0 {
		d = time.Nanosecond
	}
	spec := unix.ItimerSpec{
		Value: unix.NsecToTimespec(d.Nanoseconds()),
	}
	if err := unix.TimerfdSettime(fd, 0, &spec, nil); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// drainTimerFD consumes the 8-byte expiration counter so the descriptor
// does not remain perpetually readable.
func drainTimerFD(fd int) {
	var buf [8]byte
	_, _ = unix.Read(fd, buf[:])
}
