package dispatch

import (
	"sync"

	"github.com/sharvesh-debug/face-recognizing-locker/internal/logger"
)

// Pool runs dispatched side effects on a fixed set of workers with a bounded
// queue. The decision loop never waits for a task; when the queue is full
// under an unknown-face burst, the task is dropped rather than piling up.
type Pool struct {
	tasks chan func()

	mu     sync.Mutex
	closed bool
}

func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}

	p := &Pool{tasks: make(chan func(), queueSize)}

	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	for task := range p.tasks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("dispatched task panicked", "panic", r)
				}
			}()
			task()
		}()
	}
}

// Submit enqueues a task without blocking. Returns false when the task was
// dropped because the queue is full or the pool is closed.
func (p *Pool) Submit(task func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		logger.Warn("task dropped, dispatch pool closed")
		return false
	}

	select {
	case p.tasks <- task:
		return true
	default:
		logger.Warn("task dropped, dispatch queue full")
		return false
	}
}

// Close stops accepting tasks. In-flight tasks finish on their own; nothing
// waits for them.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.closed = true
	close(p.tasks)
}
