package stream

import (
	"fmt"
	"time"
)

// Defaults used by Timed and by New when the caller does not override them.
const (
	DefaultDeadline     = 30 * time.Second
	DefaultPollInterval = time.Second
)

// Fuse is checked before every poll iteration to decide whether consumption
// may continue. A nil result means go on; a tripped fuse returns
// *DeadlineExceededError on that check and every later one.
type Fuse func() error

// DeadlineExceededError terminates bounded consumption. It is the intended
// stop signal, not an anomaly, and carries the deadline the fuse was built
// with.
type DeadlineExceededError struct {
	Deadline time.Duration
}

func (e *DeadlineExceededError) Error() string {
	return fmt.Sprintf("stream: deadline exceeded after %s", e.Deadline)
}

// AlwaysOn returns a fuse that never trips. Streams guarded by it run until
// the caller stops pulling or cancels the context.
func AlwaysOn() Fuse {
	return func() error { return nil }
}

// WithDeadline returns a fuse whose expiry is fixed at construction time,
// not at first check. Once the wall clock reaches the expiry the fuse stays
// tripped.
func WithDeadline(d time.Duration) Fuse {
	expiry := time.Now().Add(d)
	return func() error {
		if time.Now().Before(expiry) {
			return nil
		}
		return &DeadlineExceededError{Deadline: d}
	}
}
