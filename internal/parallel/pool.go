// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package parallel runs batches of independent jobs on a fixed set of
// goroutines. It is used to shape many runs at once before they are
// inserted into an atlas.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of worker goroutines.
//
// Each worker owns a queue and steals from the others when its own queue is
// empty, so a batch with a few slow jobs still spreads across all workers.
//
// Pool is safe for concurrent use.
type Pool struct {
	workers int
	queues  []chan func()

	// mu is held shared while a batch is queued and exclusively by Close,
	// so no job is queued after the workers start exiting.
	mu      sync.RWMutex
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	queueSize := max(workers*4, 8)

	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]

	for {
		select {
		case <-p.done:
			drain(own)
			return
		case job := <-own:
			job()
			continue
		default:
		}

		if job := p.steal(id); job != nil {
			job()
			continue
		}

		select {
		case <-p.done:
			drain(own)
			return
		case job := <-own:
			job()
		}
	}
}

func drain(queue chan func()) {
	for {
		select {
		case job := <-queue:
			job()
		default:
			return
		}
	}
}

// steal takes one job from another worker's queue, or returns nil.
func (p *Pool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case job := <-p.queues[i]:
			return job
		default:
		}
	}
	return nil
}

// Run distributes jobs round-robin across the workers and waits for all of
// them. On a closed pool it runs nothing and reports false.
func (p *Pool) Run(jobs []func()) bool {
	p.mu.RLock()
	if !p.running.Load() {
		p.mu.RUnlock()
		return false
	}

	var wg sync.WaitGroup
	wg.Add(len(jobs))
	for i, job := range jobs {
		p.queues[i%p.workers] <- func() {
			defer wg.Done()
			job()
		}
	}
	p.mu.RUnlock()

	wg.Wait()
	return true
}

// Map applies fn to every element of in on the pool and returns the results
// in input order. On a closed pool the results are zero values and ok is
// false.
func Map[T, R any](p *Pool, in []T, fn func(T) R) (out []R, ok bool) {
	out = make([]R, len(in))
	jobs := make([]func(), len(in))
	for i := range in {
		jobs[i] = func() { out[i] = fn(in[i]) }
	}
	ok = p.Run(jobs)
	return out, ok
}

// Close stops accepting work, lets queued jobs finish and stops the
// workers. Close is safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		return
	}
	close(p.done)
	p.mu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of workers.
func (p *Pool) Workers() int {
	return p.workers
}

// Running reports whether the pool still accepts work.
func (p *Pool) Running() bool {
	return p.running.Load()
}
