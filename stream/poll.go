package stream

import (
	"context"
	"time"

	"kafkatap/internal/telemetry"
	"kafkatap/record"
)

// Poller is the one operation the core needs from the collaborator client:
// a blocking poll bounded by a per-call timeout. An empty batch on timeout
// is normal; the stream never ends on its own.
type Poller interface {
	Poll(ctx context.Context, timeout time.Duration) ([]record.Record, error)
}

// NextBatch polls until a non-empty batch arrives. The fuse is checked
// before every poll and tripping it is the only way the loop stops;
// collaborator errors pass through unchanged. A zero timeout is valid and
// only drains what is immediately available, which is how a seek is
// flushed.
func NextBatch(ctx context.Context, p Poller, timeout time.Duration, fuse Fuse) ([]record.Record, error) {
	for {
		if err := fuse(); err != nil {
			telemetry.FuseTrips.Inc()
			return nil, err
		}
		batch, err := p.Poll(ctx, timeout)
		if err != nil {
			return nil, err
		}
		if len(batch) > 0 {
			return batch, nil
		}
	}
}
