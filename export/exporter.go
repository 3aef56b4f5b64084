package export

import (
	"context"
	"sync"

	"FractalRenderer/misc"
	"github.com/google/uuid"
)

// Job is one export running on its own goroutine.
type Job struct {
	ID       string
	Request  Request
	progress chan Stage
	done     chan struct{}
	cancel   context.CancelFunc
	outcome  Outcome
}

// Progress delivers every stage reached, then closes once the job is over.
func (j *Job) Progress() <-chan Stage {
	return j.progress
}

// Done is closed when the job has finished.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Outcome blocks until the job has finished and returns how it ended.
func (j *Job) Outcome() Outcome {
	<-j.done
	return j.outcome
}

// Cancel asks the job to stop at its next stage boundary.
func (j *Job) Cancel() {
	j.cancel()
}

// Exporter runs at most one export at a time.
type Exporter struct {
	pipeline *Pipeline
	lock     sync.Mutex
	active   *Job
}

func NewExporter(pipeline *Pipeline) *Exporter {
	return &Exporter{pipeline: pipeline}
}

// Start launches req in the background. While another job is active it returns
// misc.ErrExportActive and leaves that job alone.
func (e *Exporter) Start(ctx context.Context, req Request, defaults Defaults, saver Saver) (*Job, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.active != nil {
		return nil, misc.ErrExportActive
	}

	jobCtx, cancel := context.WithCancel(ctx)
	job := &Job{
		ID:       uuid.NewString(),
		Request:  req,
		progress: make(chan Stage, Done+1),
		done:     make(chan struct{}),
		cancel:   cancel,
	}
	e.active = job

	go func() {
		defer cancel()
		outcome := e.pipeline.Run(jobCtx, req, defaults, saver, func(stage Stage) {
			job.progress <- stage
		})

		e.lock.Lock()
		e.active = nil
		e.lock.Unlock()

		job.outcome = outcome
		close(job.progress)
		close(job.done)
	}()
	return job, nil
}

// Active returns the running job, or nil.
func (e *Exporter) Active() *Job {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.active
}
