// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import "sync"

// workerPool is the fixed-size goroutine pool the daemon hands to
// blockchain.Config.Scheduler, standing in for the reference
// implementation's core.workers thread pool (original_source/src/main.cpp
// sizes one from the same config key). No pack dependency offers a
// worker-pool type, so this is a small hand-rolled one: a buffered job
// channel drained by workers-many goroutines.
type workerPool struct {
	jobs chan func()
	wg   sync.WaitGroup
}

// newWorkerPool starts n workers pulling off a shared job queue.
func newWorkerPool(n int) *workerPool {
	p := &workerPool{jobs: make(chan func(), 256)}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.run()
	}
	return p
}

func (p *workerPool) run() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// Enqueue implements blockchain.TaskScheduler.
func (p *workerPool) Enqueue(f func()) {
	p.jobs <- f
}

// Stop closes the job queue and waits for every worker to drain it.
func (p *workerPool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}
