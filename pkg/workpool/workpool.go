package workpool

import (
	"context"
	"sync"

	"rangekv/pkg/kverrors"
)

// Task is a deferred computation executed on the pool.
type Task func() (string, error)

// Result carries the task outcome to the submitter.
type Result struct {
	Value string
	Err   error
}

type job struct {
	task Task
	out  chan Result
}

// Pool runs submitted tasks on a fixed set of workers with a bounded queue.
// The remote side of routing submits one task per incoming hop; when the
// queue is full Submit rejects instead of spawning, so a misbehaving peer
// cannot fan out unbounded work here.
type Pool struct {
	jobs   chan job
	wg     sync.WaitGroup
	cancel func()

	mu      sync.RWMutex
	stopped bool

	workers int
}

func New(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers
	}
	return &Pool{
		jobs:    make(chan job, queueSize),
		cancel:  func() {},
		workers: workers,
	}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(ctx)
		}()
	}
}

func (p *Pool) run(ctx context.Context) {
	for {
		select {
		case j := <-p.jobs:
			v, err := j.task()
			j.out <- Result{Value: v, Err: err}
		case <-ctx.Done():
			return
		}
	}
}

// Submit queues the task and returns the channel its result will land on.
// The channel is buffered: an abandoned submitter never blocks a worker.
// Fails with ErrSaturated when the queue is full and ErrClosed after Stop.
func (p *Pool) Submit(task Task) (<-chan Result, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return nil, kverrors.ErrClosed
	}

	out := make(chan Result, 1)
	select {
	case p.jobs <- job{task: task, out: out}:
		return out, nil
	default:
		return nil, kverrors.ErrSaturated
	}
}

// Stop cancels the workers, waits them out, and fails every task still
// sitting in the queue so no submitter is left waiting forever.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()

	for {
		select {
		case j := <-p.jobs:
			j.out <- Result{Err: kverrors.ErrClosed}
		default:
			return
		}
	}
}
