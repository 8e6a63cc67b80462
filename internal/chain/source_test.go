package chain

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestSourceRefetch(t *testing.T) {
	var n atomic.Int64
	s := NewSource("counter", time.Hour, func(ctx context.Context) (int64, error) {
		return n.Add(1), nil
	}, zap.NewNop())

	if err := s.Refetch(context.Background()); err != nil {
		t.Fatalf("Refetch: %v", err)
	}
	if v, err := s.Get(); err != nil || v != 1 {
		t.Fatalf("Get() = (%d, %v), want (1, nil)", v, err)
	}

	_ = s.Refetch(context.Background())
	if v, _ := s.Get(); v != 2 {
		t.Fatalf("Get() after second refetch = %d, want 2", v)
	}
}

func TestSourceKeepsLastGoodValueOnError(t *testing.T) {
	fail := atomic.Bool{}
	s := NewSource("flaky", time.Hour, func(ctx context.Context) (string, error) {
		if fail.Load() {
			return "", errors.New("rpc down")
		}
		return "good", nil
	}, zap.NewNop())

	_ = s.Refetch(context.Background())
	fail.Store(true)
	if err := s.Refetch(context.Background()); err == nil {
		t.Fatal("expected refetch error")
	}

	v, err := s.Get()
	if err == nil {
		t.Fatal("read failure must be surfaced to callers")
	}
	if v != "good" {
		t.Fatalf("last good value lost, got %q", v)
	}
}

func TestSourceSuspendBlocksPollingAndResumesWithRefetch(t *testing.T) {
	var fetches atomic.Int64
	s := NewSource("polled", 5*time.Millisecond, func(ctx context.Context) (int64, error) {
		return fetches.Add(1), nil
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	// Let the initial fetch land, then suspend.
	deadline := time.Now().Add(time.Second)
	for fetches.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("initial fetch never happened")
		}
		time.Sleep(time.Millisecond)
	}
	resume := s.Suspend()

	before := fetches.Load()
	time.Sleep(30 * time.Millisecond)
	if got := fetches.Load(); got != before {
		t.Fatalf("polling continued while suspended: %d -> %d", before, got)
	}

	resume(context.Background())
	if got := fetches.Load(); got != before+1 {
		t.Fatalf("resume must refetch exactly once immediately, got %d fetches (had %d)", got, before)
	}
}

func TestSourceNestedSuspend(t *testing.T) {
	var fetches atomic.Int64
	s := NewSource("nested", time.Hour, func(ctx context.Context) (int64, error) {
		return fetches.Add(1), nil
	}, zap.NewNop())

	r1 := s.Suspend()
	r2 := s.Suspend()

	r1(context.Background())
	if !s.isSuspended() {
		t.Fatal("source must stay suspended while any writer is in flight")
	}
	if fetches.Load() != 0 {
		t.Fatal("inner resume must not refetch")
	}

	r2(context.Background())
	if s.isSuspended() {
		t.Fatal("source must resume after the last writer finishes")
	}
	if fetches.Load() != 1 {
		t.Fatalf("outermost resume should trigger one refetch, got %d", fetches.Load())
	}

	// Calling a resume twice is a no-op.
	r2(context.Background())
	if fetches.Load() != 1 {
		t.Fatal("double resume must not refetch again")
	}
}
