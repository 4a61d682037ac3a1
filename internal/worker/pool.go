package worker

import (
	"errors"
	"log/slog"
	"sync"
)

var (
	// ErrPoolClosed is returned by Dispatch once the pool was closed or every
	// worker has terminated.
	ErrPoolClosed = errors.New("worker pool closed")

	// ErrWorkerLost is reported for a job whose worker died before publishing
	// a result, or which was still queued when the pool shut down.
	ErrWorkerLost = errors.New("worker lost before publishing result")
)

// Pool owns a fixed set of workers draining one shared FIFO queue.
type Pool[K comparable, In, Out any] struct {
	name   string
	size   int
	logger *slog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Job[K, In, Out]
	alive  int
	closed bool

	wg sync.WaitGroup
}

// NewPool starts size workers. factory is invoked once per worker to build its
// generation function.
func NewPool[K comparable, In, Out any](name string, size int, factory Factory[K, In, Out], logger *slog.Logger) *Pool[K, In, Out] {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	p := &Pool[K, In, Out]{
		name:   name,
		size:   size,
		logger: logger,
		alive:  size,
	}
	p.cond = sync.NewCond(&p.mu)

	for id := range size {
		w := &Worker[K, In, Out]{
			id:       id,
			pool:     p,
			generate: factory(id),
		}
		p.wg.Add(1)
		go w.run()
	}

	workersAlive.WithLabelValues(name).Set(float64(size))
	queueDepth.WithLabelValues(name).Set(0)
	return p
}

// Dispatch enqueues a job. It only contends on the queue mutex and never waits
// for a free worker.
func (p *Pool[K, In, Out]) Dispatch(job Job[K, In, Out]) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.alive == 0 {
		return ErrPoolClosed
	}
	p.queue = append(p.queue, job)
	queueDepth.WithLabelValues(p.name).Set(float64(len(p.queue)))
	p.cond.Signal()
	return nil
}

// next blocks until a job is available. ok is false once the pool is closed.
func (p *Pool[K, In, Out]) next() (job Job[K, In, Out], ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.queue) == 0 && !p.closed {
		p.cond.Wait()
	}
	if p.closed {
		return job, false
	}

	job = p.queue[0]
	p.queue[0] = Job[K, In, Out]{}
	p.queue = p.queue[1:]
	queueDepth.WithLabelValues(p.name).Set(float64(len(p.queue)))
	return job, true
}

// retire records a worker exit. When the last worker is gone the remaining
// queue can never be served, so its jobs are failed.
func (p *Pool[K, In, Out]) retire() {
	p.mu.Lock()
	p.alive--
	alive := p.alive
	var stranded []Job[K, In, Out]
	if alive == 0 {
		stranded = p.queue
		p.queue = nil
	}
	p.mu.Unlock()

	workersAlive.WithLabelValues(p.name).Set(float64(alive))
	for _, job := range stranded {
		job.Abandon()
	}
	if alive == 0 && len(stranded) > 0 {
		p.logger.Warn("no workers left, failing queued jobs", "pool", p.name, "jobs", len(stranded))
	}
}

// Close stops the pool and waits for workers to finish their current job.
// Jobs still queued are failed with ErrWorkerLost.
func (p *Pool[K, In, Out]) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	p.closed = true
	dropped := p.queue
	p.queue = nil
	p.cond.Broadcast()
	p.mu.Unlock()

	for _, job := range dropped {
		job.Abandon()
	}
	p.wg.Wait()
	queueDepth.WithLabelValues(p.name).Set(0)
}

// Name returns the pool's metrics/log label.
func (p *Pool[K, In, Out]) Name() string {
	return p.name
}

// Size returns the number of workers the pool was started with.
func (p *Pool[K, In, Out]) Size() int {
	return p.size
}

// Alive returns the number of workers still running.
func (p *Pool[K, In, Out]) Alive() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alive
}

// QueueLen returns the number of jobs waiting for a worker.
func (p *Pool[K, In, Out]) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}
