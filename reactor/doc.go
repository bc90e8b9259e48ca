// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor owns the kernel readiness multiplexer: registering fibers
// against descriptors and timers, and turning kernel wakeups into
// ResumeReason-tagged scheduler enqueues. Linux builds use epoll and
// timerfd; other platforms fall back to a stub that reports
// ErrNotSupported.
package reactor
