// Package workerpool runs tasks on a fixed set of goroutines. pkg/event uses
// it to dispatch async listeners so a burst of sign-ups cannot fan out into
// unbounded goroutines.
//
//	pool := workerpool.New("events", 4)
//	defer pool.Shutdown()
//
//	if err := pool.Submit(task); errors.Is(err, workerpool.ErrPoolFull) {
//	    // drop or run inline
//	}
package workerpool

import (
	"errors"
	"sync"

	"github.com/shashiranjanraj/authflow/pkg/logger"
)

var (
	ErrPoolFull   = errors.New("workerpool: pool is full")
	ErrPoolClosed = errors.New("workerpool: pool is closed")
)

// Pool is a bounded goroutine pool. The queue holds twice as many tasks as
// there are workers.
type Pool struct {
	name     string
	tasks    chan func()
	workers  sync.WaitGroup
	inflight sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// New starts size workers. size below 1 means 1.
func New(name string, size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{name: name, tasks: make(chan func(), size*2)}
	for i := 0; i < size; i++ {
		p.workers.Add(1)
		go p.work()
	}
	return p
}

// Submit queues task without blocking.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	p.inflight.Add(1)
	select {
	case p.tasks <- task:
		return nil
	default:
		p.inflight.Done()
		return ErrPoolFull
	}
}

// SubmitWait queues task, blocking while the queue is full.
func (p *Pool) SubmitWait(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	p.inflight.Add(1)
	p.tasks <- task
	return nil
}

// Wait blocks until every queued task has run.
func (p *Pool) Wait() {
	p.inflight.Wait()
}

// Shutdown stops accepting tasks, drains the queue and stops the workers.
// Safe to call more than once.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.workers.Wait()
}

func (p *Pool) work() {
	defer p.workers.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task func()) {
	defer p.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool: task panicked", "pool", p.name, "panic", r)
		}
	}()
	task()
}
