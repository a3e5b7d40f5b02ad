package async

import (
	stderrors "errors"
	"sync"
)

// Executor runs submitted tasks asynchronously. A non-nil error from
// Execute means the task was rejected and will never run.
type Executor interface {
	Execute(task func()) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(task func()) error

// Execute calls f(task).
func (f ExecutorFunc) Execute(task func()) error {
	return f(task)
}

// GoExecutor runs every task on its own goroutine.
type GoExecutor struct{}

// Execute starts task on a new goroutine.
func (GoExecutor) Execute(task func()) error {
	go task()
	return nil
}

// Pool rejection reasons.
var (
	ErrPoolClosed = stderrors.New("pool closed")
	ErrQueueFull  = stderrors.New("pool queue full")
)

// Pool is a fixed set of worker goroutines fed from a bounded queue.
// Execute never blocks: a full queue or a closed pool rejects the task.
type Pool struct {
	tasks  chan func()
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewPool starts workers goroutines with room for queue pending tasks.
// Values below one are raised to one worker and an unbuffered queue.
func NewPool(workers, queue int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queue < 0 {
		queue = 0
	}
	p := &Pool{tasks: make(chan func(), queue)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Execute queues task for a worker.
func (p *Pool) Execute(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting tasks, lets the workers drain the queue and waits
// for them to exit. It is safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
