// Package stream turns the client's blocking poll primitive into a lazy,
// demand-driven record sequence bounded by a deadline fuse.
package stream

import (
	"context"
	"fmt"
	"time"

	"kafkatap/record"
)

type Option func(*Stream)

// WithInterval sets the per-poll timeout handed to the client.
func WithInterval(d time.Duration) Option {
	return func(s *Stream) { s.interval = d }
}

// WithFuse guards every poll iteration with f.
func WithFuse(f Fuse) Option {
	return func(s *Stream) { s.fuse = f }
}

// Stream is an unbounded, pull-driven sequence of records. It performs no
// polling until Next is called, buffers nothing beyond the batch currently
// being drained, and is meant for a single consumer; it provides no
// locking.
type Stream struct {
	poller   Poller
	interval time.Duration
	fuse     Fuse

	batch []record.Record
	err   error
}

// New builds a lazy stream over p. Constructing the stream performs zero
// polls. A non-positive interval is rejected: with the client's own poll
// timeout at zero the retry loop would spin hot against the broker.
func New(p Poller, opts ...Option) (*Stream, error) {
	s := &Stream{poller: p, interval: DefaultPollInterval, fuse: AlwaysOn()}
	for _, o := range opts {
		o(s)
	}
	if s.interval <= 0 {
		return nil, fmt.Errorf("stream: polling interval must be positive, got %s", s.interval)
	}
	if s.fuse == nil {
		s.fuse = AlwaysOn()
	}
	return s, nil
}

// Timed builds a bounded stream, intended for NextPair consumption: a
// deadline fuse (deadline <= 0 means DefaultDeadline) over the default
// polling interval.
func Timed(p Poller, deadline time.Duration) (*Stream, error) {
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	return New(p, WithFuse(WithDeadline(deadline)))
}

// Next yields the next record, draining the current batch before pulling a
// new one. Realizing one element may take arbitrarily many polls; empty
// batches are skipped transparently. Errors are sticky: the stream is not
// restartable, and a tripped fuse surfaces here as *DeadlineExceededError.
func (s *Stream) Next(ctx context.Context) (record.Record, error) {
	if s.err != nil {
		return record.Record{}, s.err
	}
	if len(s.batch) == 0 {
		batch, err := NextBatch(ctx, s.poller, s.interval, s.fuse)
		if err != nil {
			s.err = err
			return record.Record{}, err
		}
		s.batch = batch
	}
	r := s.batch[0]
	s.batch = s.batch[1:]
	return r, nil
}

// NextPair is Next projected to the record's key/value pair.
func (s *Stream) NextPair(ctx context.Context) (record.Pair, error) {
	r, err := s.Next(ctx)
	if err != nil {
		return record.Pair{}, err
	}
	return r.Pair(), nil
}
