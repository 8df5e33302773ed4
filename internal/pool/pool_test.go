package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestRun_PreservesOrder(t *testing.T) {
	jobs := make([]Job[int], 20)
	for i := 0; i < 20; i++ {
		i := i
		jobs[i] = func(ctx context.Context) (int, error) {
			return i * i, nil
		}
	}

	results := Run(context.Background(), jobs, 4)
	if len(results) != 20 {
		t.Fatalf("expected 20 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d has Index %d", i, r.Index)
		}
		if r.Value != i*i {
			t.Errorf("result %d: got %d, want %d", i, r.Value, i*i)
		}
	}
}

func TestRun_BoundsConcurrency(t *testing.T) {
	var inFlight int32
	var maxSeen int32
	jobs := make([]Job[struct{}], 10)
	for i := range jobs {
		jobs[i] = func(ctx context.Context) (struct{}, error) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			atomic.AddInt32(&inFlight, -1)
			return struct{}{}, nil
		}
	}

	Run(context.Background(), jobs, 3)

	if maxSeen > 3 {
		t.Errorf("observed %d concurrent jobs, want <= 3", maxSeen)
	}
}

func TestRun_ContainsPerJobErrors(t *testing.T) {
	failing := errors.New("boom")
	jobs := []Job[int]{
		func(ctx context.Context) (int, error) { return 1, nil },
		func(ctx context.Context) (int, error) { return 0, failing },
		func(ctx context.Context) (int, error) { return 3, nil },
	}

	results := Run(context.Background(), jobs, 2)

	if results[0].Err != nil || results[0].Value != 1 {
		t.Errorf("job 0: %+v", results[0])
	}
	if !errors.Is(results[1].Err, failing) {
		t.Errorf("job 1: expected failing error, got %v", results[1].Err)
	}
	if results[2].Err != nil || results[2].Value != 3 {
		t.Errorf("job 2: %+v", results[2])
	}
}

func TestRun_Empty(t *testing.T) {
	results := Run[int](context.Background(), nil, 4)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}
