// Package kafka is the collaborator boundary: driver construction from a
// configuration map, topic subscription, blocking poll, and asynchronous
// send. The stream core pulls from it through the Consumer interface.
package kafka

import (
	"context"
	"time"

	"kafkatap/record"
)

// Consumer is an owned handle over one client-side consumer. It is not safe
// for concurrent use: one consumer feeds one stream at a time, and that
// exclusive-use discipline is the caller's obligation.
type Consumer interface {
	// Subscribe attaches the consumer to the named topics.
	Subscribe(topics ...string) error
	// SeekToEnd moves every assigned partition to its newest offset.
	// Callers typically follow with a zero-timeout Poll to flush records
	// arriving during the turnover.
	SeekToEnd() error
	// Poll blocks up to timeout and returns whatever records are
	// available, already projected into the plain record shape. An empty
	// batch on timeout is normal.
	Poll(ctx context.Context, timeout time.Duration) ([]record.Record, error)
	Close() error
}

// Producer sends records asynchronously. A supplied callback is invoked
// exactly once per send, with either populated metadata and a nil error or
// zero metadata and the failure.
type Producer interface {
	SendAsync(ctx context.Context, rec record.Record, cb record.Callback) error
	Close() error
}
