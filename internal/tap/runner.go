// Package tap wires config, the kafka driver, and the stream core into one
// runnable consumption session.
package tap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kafkatap/client/kafka"
	"kafkatap/internal/config"
	"kafkatap/internal/logging"
	"kafkatap/internal/telemetry"
	"kafkatap/record"
	"kafkatap/stream"
)

// OutputFn receives each key/value pair as it is pulled from the stream.
type OutputFn func(record.Pair) error

type Runner struct {
	spec config.TapSpec
	cons kafka.Consumer
	out  OutputFn
}

func NewRunner(spec config.TapSpec, cons kafka.Consumer, out OutputFn) *Runner {
	return &Runner{spec: spec, cons: cons, out: out}
}

// Bootstrap loads the tap spec and the kafka config, builds the driver,
// subscribes it, and exposes metrics when configured.
func Bootstrap(specPath string, out OutputFn) (*Runner, error) {
	spec, kcfgPath, err := config.LoadTapSpec(specPath)
	if err != nil {
		return nil, fmt.Errorf("tap spec: %w", err)
	}
	kcfg, err := kafka.LoadConfig(kcfgPath)
	if err != nil {
		return nil, fmt.Errorf("kafka config: %w", err)
	}
	if len(spec.Topics) > 0 {
		kcfg.Topics = spec.Topics
	}
	if len(kcfg.Topics) == 0 {
		return nil, errors.New("tap: no topics configured")
	}

	cons, err := kafka.NewConsumer(spec.Driver, kcfg)
	if err != nil {
		return nil, err
	}
	if err := cons.Subscribe(kcfg.Topics...); err != nil {
		_ = cons.Close()
		return nil, err
	}

	if spec.MetricsPort > 0 {
		telemetry.Expose(spec.MetricsPort)
	}
	return NewRunner(spec, cons, out), nil
}

// Run consumes the stream until the fuse trips (returned as nil: the
// deadline is the intended stop signal), the context is cancelled, or an
// error surfaces from the client or the output.
func (r *Runner) Run(ctx context.Context) error {
	defer func() { _ = r.cons.Close() }()
	log := logging.Component("tap")

	if r.spec.FromEnd {
		if err := r.cons.SeekToEnd(); err != nil {
			return err
		}
		// zero-timeout poll materializes the seek
		if _, err := r.cons.Poll(ctx, 0); err != nil {
			return err
		}
		log.Debug("seeked to end")
	}

	fuse := stream.AlwaysOn()
	if r.spec.DeadlineMS > 0 {
		fuse = stream.WithDeadline(time.Duration(r.spec.DeadlineMS) * time.Millisecond)
	}
	opts := []stream.Option{stream.WithFuse(fuse)}
	if r.spec.PollIntervalMS > 0 {
		opts = append(opts, stream.WithInterval(time.Duration(r.spec.PollIntervalMS)*time.Millisecond))
	}
	s, err := stream.New(r.cons, opts...)
	if err != nil {
		return err
	}

	var served int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		pair, err := s.NextPair(ctx)
		if err != nil {
			var de *stream.DeadlineExceededError
			if errors.As(err, &de) {
				log.Info("deadline reached", "deadline", de.Deadline, "records", served)
				return nil
			}
			return err
		}
		if err := r.out(pair); err != nil {
			return err
		}
		served++
	}
}
