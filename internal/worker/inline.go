package worker

// Inline runs jobs synchronously on the dispatching goroutine. It is used to
// generate the spawn area before the first frame, where blocking is wanted.
type Inline[K comparable, In, Out any] struct {
	Generate GenerateFunc[K, In, Out]
}

// Dispatch generates the job immediately unless it was already cancelled.
func (d Inline[K, In, Out]) Dispatch(job Job[K, In, Out]) error {
	if job.Cancelled() {
		return nil
	}
	out, err := d.Generate(job.Key, job.Input)
	job.Resolve(out, err)
	return nil
}
