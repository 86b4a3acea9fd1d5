// Package worker provides the bounded-concurrency machinery for task
// dispatch: a job pool and a per-endpoint rate limiter. Jobs are independent
// (deal, checkpoint, task) units; a collector drains results while jobs are
// still being submitted, and the caller merges them single-threaded after
// Wait, so no two jobs ever write the same checkpoint's score concurrently.
package worker

import (
	"context"
	"sync"
)

// Job is a unit of work executed by the pool.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of a job execution.
type Result interface {
	GetError() error
}

// Pool runs jobs with a fixed number of workers. Cancelling the context
// passed to Start stops new job pickup immediately; jobs already executing
// finish (or time out) on their own.
type Pool struct {
	workers   int
	jobs      chan Job
	results   chan Result
	collected []Result
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewPool creates a pool with the given worker count.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		workers: workers,
		jobs:    make(chan Job, workers*2),
		results: make(chan Result, workers*2),
		done:    make(chan struct{}),
	}
}

// Start launches the workers and the result collector.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	go p.collect()
}

// collect drains results as workers produce them. Submits made before Wait
// would otherwise stall once in-flight results exceed the channel buffer.
func (p *Pool) collect() {
	for result := range p.results {
		p.collected = append(p.collected, result)
	}
	close(p.done)
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			result := job.Execute(ctx)
			select {
			case p.results <- result:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. Returns false if the pool was cancelled before the
// job could be queued.
func (p *Pool) Submit(ctx context.Context, job Job) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case p.jobs <- job:
		return true
	}
}

// Wait closes the queue, lets the workers drain, and returns every collected
// result. Call exactly once, after all Submits.
func (p *Pool) Wait() []Result {
	close(p.jobs)
	p.wg.Wait()
	close(p.results)
	<-p.done
	return p.collected
}
