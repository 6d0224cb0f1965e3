// Package jobs provides the background worker pool that runs scan work.
package jobs

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool manages a fixed set of workers executing queued units of work.
// Execution is at-least-once from the caller's perspective: a submitted job
// either runs to completion or the pool was stopped first.
type Pool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	running   atomic.Bool
	submitted atomic.Uint64
	completed atomic.Uint64
}

// NewPool creates a pool with the specified number of workers.
// If workers is 0, it defaults to runtime.NumCPU().
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		workers:   workers,
		taskQueue: make(chan func(), workers*16),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start starts the workers.
func (p *Pool) Start() {
	if p.running.Swap(true) {
		return // Already running
	}

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-p.taskQueue:
			if !ok {
				return
			}
			task()
			p.completed.Add(1)
		}
	}
}

// Submit queues a unit of work. It returns false if the pool is not running
// or the queue is full.
func (p *Pool) Submit(task func()) bool {
	if !p.running.Load() {
		return false
	}

	select {
	case p.taskQueue <- task:
		p.submitted.Add(1)
		return true
	default:
		return false // Queue full
	}
}

// Stop stops the pool and waits for in-flight work to finish.
func (p *Pool) Stop() {
	if !p.running.Swap(false) {
		return // Not running
	}

	p.cancel()
	close(p.taskQueue)
	p.wg.Wait()
}

// Stats returns counters for submitted and completed jobs.
func (p *Pool) Stats() (submitted, completed uint64) {
	return p.submitted.Load(), p.completed.Load()
}
