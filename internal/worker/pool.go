package worker

import (
	"context"
	"sort"
	"sync"
)

// Job represents a unit of work to be executed. Execute must return
// promptly once ctx is done.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

type queuedJob struct {
	seq int
	job Job
}

type queuedResult struct {
	seq    int
	result Result
}

// Pool runs jobs on a fixed number of workers. Results are collected as they
// complete, so Submit never waits on the caller draining them.
type Pool struct {
	workers    int
	jobQueue   chan queuedJob
	results    chan queuedResult
	collected  []queuedResult
	collectWG  sync.WaitGroup
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	next       int
	closeOnce  sync.Once
}

// NewPool creates a new worker pool bound to ctx
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan queuedJob, workers*2),
		results:    make(chan queuedResult, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the workers and the result collector
func (p *Pool) Start() {
	p.collectWG.Add(1)
	go func() {
		defer p.collectWG.Done()
		for r := range p.results {
			p.collected = append(p.collected, r)
		}
	}()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// worker drains the queue even after cancellation so every submitted job
// yields a result; jobs see the cancelled context and return early.
func (p *Pool) worker() {
	defer p.wg.Done()

	for qj := range p.jobQueue {
		p.results <- queuedResult{seq: qj.seq, result: qj.job.Execute(p.ctx)}
	}
}

// Submit queues a job. It must not be called concurrently or after Wait.
func (p *Pool) Submit(job Job) {
	p.jobQueue <- queuedJob{seq: p.next, job: job}
	p.next++
}

// Wait waits for all submitted jobs and returns their results in submission
// order
func (p *Pool) Wait() []Result {
	p.closeOnce.Do(func() { close(p.jobQueue) })
	p.wg.Wait()
	close(p.results)
	p.collectWG.Wait()
	p.cancelFunc()

	sort.Slice(p.collected, func(i, j int) bool { return p.collected[i].seq < p.collected[j].seq })

	results := make([]Result, len(p.collected))
	for i, r := range p.collected {
		results[i] = r.result
	}
	return results
}

// Shutdown cancels the pool context. Running and queued jobs still produce
// results, typically ctx.Err().
func (p *Pool) Shutdown() {
	p.cancelFunc()
}
