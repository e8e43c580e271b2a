package stream

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"kafkatap/record"
)

func TestNew_RejectsNonPositiveInterval(t *testing.T) {
	if _, err := New(&scriptedPoller{}, WithInterval(0)); err == nil {
		t.Fatal("zero interval accepted; would busy-loop against the broker")
	}
	if _, err := New(&scriptedPoller{}, WithInterval(-time.Second)); err == nil {
		t.Fatal("negative interval accepted")
	}
}

func TestStream_ConstructionPollsNothing(t *testing.T) {
	p := &scriptedPoller{batches: [][]record.Record{{rec("a")}}}
	if _, err := New(p); err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.calls != 0 {
		t.Fatalf("construction performed %d polls", p.calls)
	}
}

func TestStream_FirstElementUsesMinimalPolls(t *testing.T) {
	p := &scriptedPoller{batches: [][]record.Record{nil, {rec("a"), rec("b")}}}
	s, err := New(p, WithInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := s.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if p.calls != 2 {
		t.Fatalf("first element needed 2 polls, got %d", p.calls)
	}

	// second element comes from the drained batch, no further poll
	if _, err := s.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if p.calls != 2 {
		t.Fatalf("draining the batch polled again: %d calls", p.calls)
	}
}

func TestStream_OrderIsDeterministic(t *testing.T) {
	script := func() *scriptedPoller {
		return &scriptedPoller{batches: [][]record.Record{
			{rec("a")}, nil, {rec("b"), rec("c")},
		}}
	}

	read := func(p Poller) []string {
		s, err := New(p, WithInterval(time.Millisecond))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		var got []string
		for i := 0; i < 3; i++ {
			r, err := s.Next(context.Background())
			if err != nil {
				t.Fatalf("Next %d: %v", i, err)
			}
			got = append(got, string(r.Key))
		}
		return got
	}

	first, second := read(script()), read(script())
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("run order diverged at %d: %v vs %v", i, first, second)
		}
	}
}

func TestStream_EndToEndScenario(t *testing.T) {
	// mock poll sequence [[], [A,B], [], [C]]
	p := &scriptedPoller{batches: [][]record.Record{
		nil, {rec("A"), rec("B")}, nil, {rec("C")},
	}}
	s, err := New(p, WithInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var keys []string
	for i := 0; i < 3; i++ {
		r, err := s.Next(context.Background())
		if err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
		keys = append(keys, string(r.Key))
	}
	if keys[0] != "A" || keys[1] != "B" || keys[2] != "C" {
		t.Fatalf("want [A B C], got %v", keys)
	}
	if p.calls != 4 {
		t.Fatalf("want exactly 4 polls, got %d", p.calls)
	}
}

func TestStream_DeadlineSurfacesAtConsumption(t *testing.T) {
	p := &sleepyPoller{}
	s, err := New(p,
		WithInterval(20*time.Millisecond),
		WithFuse(WithDeadline(50*time.Millisecond)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	start := time.Now()
	_, err = s.Next(context.Background())
	elapsed := time.Since(start)

	var de *DeadlineExceededError
	if !errors.As(err, &de) {
		t.Fatalf("want DeadlineExceededError, got %v", err)
	}
	if elapsed < 50*time.Millisecond {
		t.Fatalf("tripped too early: %s", elapsed)
	}
	// one in-flight poll may overshoot the deadline by its own timeout
	if elapsed > 200*time.Millisecond {
		t.Fatalf("tripped too late: %s", elapsed)
	}
}

func TestStream_ErrorIsSticky(t *testing.T) {
	p := &scriptedPoller{}
	s, err := New(p,
		WithInterval(time.Millisecond),
		WithFuse(tripAfter(1, time.Second)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := s.Next(context.Background()); err == nil {
		t.Fatal("expected deadline failure")
	}
	polled := p.calls
	if _, err := s.Next(context.Background()); err == nil {
		t.Fatal("stream restarted after failure")
	}
	if p.calls != polled {
		t.Fatalf("failed stream polled again: %d -> %d", polled, p.calls)
	}
}

func TestStream_NextPairRoundTrip(t *testing.T) {
	p := &scriptedPoller{batches: [][]record.Record{{
		{Key: []byte("k"), Value: []byte("v")},
	}}}
	s, err := New(p, WithInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pair, err := s.NextPair(context.Background())
	if err != nil {
		t.Fatalf("NextPair: %v", err)
	}
	if !bytes.Equal(pair.Key, []byte("k")) || !bytes.Equal(pair.Value, []byte("v")) {
		t.Fatalf("want (k, v), got (%q, %q)", pair.Key, pair.Value)
	}
}

func TestTimed_UsesDefaultsWhenUnset(t *testing.T) {
	s, err := Timed(&scriptedPoller{}, 0)
	if err != nil {
		t.Fatalf("Timed: %v", err)
	}
	if s.interval != DefaultPollInterval {
		t.Fatalf("want default interval %s, got %s", DefaultPollInterval, s.interval)
	}
}

func TestTimed_DeadlineBoundsConsumption(t *testing.T) {
	s, err := Timed(&scriptedPoller{}, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Timed: %v", err)
	}
	s.interval = time.Millisecond // keep the test fast
	time.Sleep(15 * time.Millisecond)

	_, err = s.NextPair(context.Background())
	var de *DeadlineExceededError
	if !errors.As(err, &de) {
		t.Fatalf("want DeadlineExceededError, got %v", err)
	}
	if de.Deadline != 10*time.Millisecond {
		t.Fatalf("error carries deadline %s", de.Deadline)
	}
}
