package worker

import (
	"sync"

	"github.com/oklog/ulid/v2"
)

// GenerateFunc is the pure per-key generation function run by workers.
// It must be safe to call concurrently with different keys.
type GenerateFunc[K comparable, In, Out any] func(key K, in In) (Out, error)

// Factory builds the generation function for one worker. It is called once per
// worker at pool construction so each worker owns its own copy of any
// read-only context or scratch state.
type Factory[K comparable, In, Out any] func(workerID int) GenerateFunc[K, In, Out]

// Result contains the outcome of a generation job.
type Result[K comparable, Out any] struct {
	Key   K
	Value Out
	Err   error
}

// Job represents a generation request queued on a Pool.
type Job[K comparable, In, Out any] struct {
	ID    string
	Key   K
	Input In

	cancel <-chan struct{}
	result chan<- Result[K, Out]
}

// Ticket is the dispatcher's handle on an in-flight Job. Only the dispatcher
// cancels or polls it.
type Ticket[K comparable, Out any] struct {
	ID string

	cancel chan struct{}
	result <-chan Result[K, Out]
	once   sync.Once
}

// NewJob creates a job for key together with its ticket. The result slot holds
// exactly one value, so a worker never blocks publishing into it.
func NewJob[K comparable, In, Out any](key K, input In) (Job[K, In, Out], *Ticket[K, Out]) {
	id := ulid.Make().String()
	cancel := make(chan struct{})
	result := make(chan Result[K, Out], 1)

	job := Job[K, In, Out]{
		ID:     id,
		Key:    key,
		Input:  input,
		cancel: cancel,
		result: result,
	}
	return job, &Ticket[K, Out]{ID: id, cancel: cancel, result: result}
}

// Cancelled reports whether the dispatcher withdrew interest in the job.
func (j Job[K, In, Out]) Cancelled() bool {
	select {
	case <-j.cancel:
		return true
	default:
		return false
	}
}

// Resolve publishes the job's result. It is called exactly once by whoever
// executed the job.
func (j Job[K, In, Out]) Resolve(value Out, err error) {
	j.result <- Result[K, Out]{Key: j.Key, Value: value, Err: err}
}

// Abandon closes the result slot without a value; the ticket then reports
// ErrWorkerLost.
func (j Job[K, In, Out]) Abandon() {
	close(j.result)
}

// Cancel signals the worker to skip the job if it has not started yet.
// Safe to call more than once; never blocks.
func (t *Ticket[K, Out]) Cancel() {
	t.once.Do(func() { close(t.cancel) })
}

// Poll performs a non-blocking receive on the result slot. ready is false while
// the job is still queued or running. A slot closed without a value means the
// job was lost with its worker and is reported as ErrWorkerLost.
func (t *Ticket[K, Out]) Poll() (res Result[K, Out], ready bool) {
	select {
	case r, ok := <-t.result:
		if !ok {
			res.Err = ErrWorkerLost
			return res, true
		}
		return r, true
	default:
		return res, false
	}
}
