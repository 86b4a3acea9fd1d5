package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// mockResult implements Result
type mockResult struct {
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

// mockJob implements Job
type mockJob struct {
	duration  time.Duration
	shouldErr bool
	executed  *int32 // atomic counter
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{err: errors.New("job error")}
	}
	return &mockResult{err: nil}
}

func TestNewPool(t *testing.T) {
	p1 := NewPool(5)
	if p1.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p1.workers)
	}

	p2 := NewPool(0)
	if p2.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p2.workers)
	}

	p3 := NewPool(-1)
	if p3.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p3.workers)
	}
}

func TestPool_Execution(t *testing.T) {
	ctx := context.Background()
	pool := NewPool(2)
	pool.Start(ctx)

	var executed int32
	count := 10

	for i := 0; i < count; i++ {
		if !pool.Submit(ctx, &mockJob{executed: &executed}) {
			t.Fatal("submit rejected with live context")
		}
	}

	results := pool.Wait()

	if len(results) != count {
		t.Errorf("expected %d results, got %d", count, len(results))
	}

	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
}

// concurrencyJob tracks max concurrent executions
type concurrencyJob struct {
	start    func()
	end      func()
	duration time.Duration
}

func (j *concurrencyJob) Execute(ctx context.Context) Result {
	if j.start != nil {
		j.start()
	}
	time.Sleep(j.duration)
	if j.end != nil {
		j.end()
	}
	return &mockResult{}
}

func TestPool_Concurrency(t *testing.T) {
	ctx := context.Background()
	workers := 10
	pool := NewPool(workers)
	pool.Start(ctx)

	var current int32
	var maxConcurrent int32
	var completed int32
	var mu sync.Mutex

	totalJobs := 50

	for i := 0; i < totalJobs; i++ {
		pool.Submit(ctx, &concurrencyJob{
			start: func() {
				curr := atomic.AddInt32(&current, 1)
				mu.Lock()
				if curr > maxConcurrent {
					maxConcurrent = curr
				}
				mu.Unlock()
			},
			end: func() {
				atomic.AddInt32(&current, -1)
				atomic.AddInt32(&completed, 1)
			},
			duration: 10 * time.Millisecond,
		})
	}

	pool.Wait()

	if atomic.LoadInt32(&completed) != int32(totalJobs) {
		t.Errorf("expected %d completed jobs, got %d", totalJobs, completed)
	}

	mu.Lock()
	max := maxConcurrent
	mu.Unlock()

	if max > int32(workers) {
		t.Errorf("max concurrency %d exceeded workers %d", max, workers)
	}

	if max <= 1 {
		t.Logf("Warning: max concurrency was %d, expected > 1", max)
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	ctx := context.Background()
	pool := NewPool(2)
	pool.Start(ctx)

	pool.Submit(ctx, &mockJob{shouldErr: true})
	pool.Submit(ctx, &mockJob{shouldErr: false})

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	errCount := 0
	for _, res := range results {
		if res.GetError() != nil {
			errCount++
		}
	}

	if errCount != 1 {
		t.Errorf("expected 1 error, got %d", errCount)
	}
}

func TestPool_SubmitBacklogDoesNotStall(t *testing.T) {
	ctx := context.Background()
	pool := NewPool(2)
	pool.Start(ctx)

	// Far more jobs than the channel buffers hold; every submit happens
	// before Wait, so results must be drained while submission is still
	// in progress.
	total := 30
	var executed int32

	done := make(chan []Result, 1)
	go func() {
		for i := 0; i < total; i++ {
			if !pool.Submit(ctx, &mockJob{executed: &executed}) {
				t.Error("submit rejected with live context")
			}
		}
		done <- pool.Wait()
	}()

	select {
	case results := <-done:
		if len(results) != total {
			t.Errorf("expected %d results, got %d", total, len(results))
		}
		if atomic.LoadInt32(&executed) != int32(total) {
			t.Errorf("expected %d executed jobs, got %d", total, executed)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("submits stalled: results were not drained during submission")
	}
}

func TestPool_SubmitAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(1)
	pool.Start(ctx)

	cancel()

	// A cancelled context must not block Submit; it reports rejection.
	done := make(chan bool, 1)
	go func() {
		done <- pool.Submit(ctx, &mockJob{})
	}()

	select {
	case accepted := <-done:
		if accepted {
			t.Error("Submit accepted a job after cancellation")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Submit after cancel blocked")
	}
}
