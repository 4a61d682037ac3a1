package worker

import (
	"fmt"
	"time"
)

// Worker is a long-lived goroutine bound to a pool's queue.
type Worker[K comparable, In, Out any] struct {
	id       int
	pool     *Pool[K, In, Out]
	generate GenerateFunc[K, In, Out]
}

func (w *Worker[K, In, Out]) run() {
	defer w.pool.wg.Done()
	defer w.pool.retire()

	for {
		job, ok := w.pool.next()
		if !ok {
			return
		}
		if !w.execute(job) {
			// A panicking generator takes its worker down; the pool keeps
			// running with one worker less.
			workerDeaths.WithLabelValues(w.pool.name).Inc()
			return
		}
	}
}

// execute runs one job. Cancellation is only checked here, before generation
// starts; a running generation always completes. It returns false if the
// generation function panicked.
func (w *Worker[K, In, Out]) execute(job Job[K, In, Out]) (survived bool) {
	if job.Cancelled() {
		jobsTotal.WithLabelValues(w.pool.name, outcomeSkipped).Inc()
		w.pool.logger.Debug("job discarded",
			"pool", w.pool.name,
			"worker", w.id,
			"job_id", job.ID,
			"key", fmt.Sprint(job.Key),
		)
		return true
	}

	defer func() {
		if r := recover(); r != nil {
			job.Abandon()
			jobsTotal.WithLabelValues(w.pool.name, outcomePanicked).Inc()
			w.pool.logger.Error("generation panicked, worker terminated",
				"pool", w.pool.name,
				"worker", w.id,
				"job_id", job.ID,
				"key", fmt.Sprint(job.Key),
				"panic", fmt.Sprint(r),
			)
			survived = false
		}
	}()

	start := time.Now()
	out, err := w.generate(job.Key, job.Input)
	generateSeconds.WithLabelValues(w.pool.name).Observe(time.Since(start).Seconds())

	if err != nil {
		jobsTotal.WithLabelValues(w.pool.name, outcomeFailed).Inc()
	} else {
		jobsTotal.WithLabelValues(w.pool.name, outcomeExecuted).Inc()
	}

	// The slot has capacity one and receives exactly one value, so this never
	// blocks, even if the dispatcher already dropped its ticket.
	job.Resolve(out, err)
	return true
}
