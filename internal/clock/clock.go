// File: internal/clock/clock.go
// Author: momentics <momentics@gmail.com>
//
// Monotonic clock wrapper. Kept as a thin seam so the future package's
// Timeout never calls time.Now directly, wrapping the ambient OS clock behind a
// package boundary the way other OS-facing facilities in this codebase do.

package clock

import "time"

// Now returns the current monotonic instant. time.Now already carries a
// monotonic reading on every supported platform, so no extra syscall is
// needed here; the wrapper exists purely to keep callers decoupled from
// the stdlib clock source.
func Now() time.Time {
	return time.Now()
}
