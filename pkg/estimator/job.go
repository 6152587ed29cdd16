package estimator

import (
	"context"

	"github.com/google/uuid"
)

// Job is the asynchronous handle for one estimation run. The run executes
// on its own goroutine; Result blocks until it finishes. Cancel stops the
// run between shot batches and inside backends that honor their context; a
// batch already in flight completes or fails whole.
type Job struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
	result *PrimitiveResult
	err    error
}

func startJob(e *Estimator, pubs []*coercedPub) *Job {
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{
		id:     uuid.New().String(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer cancel()
		job.result, job.err = e.run(ctx, pubs)
		close(job.done)
	}()
	return job
}

// ID returns the job's unique identifier.
func (j *Job) ID() string {
	return j.id
}

// Done returns a channel closed once the job finishes, successfully or not.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Cancel stops the job. It is safe to call repeatedly and after the job has
// finished.
func (j *Job) Cancel() {
	j.cancel()
}

// Result blocks until the job finishes and returns its outcome. The context
// bounds only the wait: cancelling it abandons the wait without cancelling
// the job.
func (j *Job) Result(ctx context.Context) (*PrimitiveResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-j.done:
		return j.result, j.err
	}
}
