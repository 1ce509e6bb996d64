package jobs

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/hh-hire/internal/logger"
	log "github.com/sirupsen/logrus"
)

const jobTopic = "job:run"

type Job func(ctx context.Context) error

// Dispatcher runs units of work either in the caller's goroutine or through a queue.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, job Job) error
}

type Inline struct{}

func NewInline() *Inline {
	return &Inline{}
}

// Dispatch runs the job right away and returns its error.
func (i *Inline) Dispatch(ctx context.Context, name string, job Job) error {
	log.Debugf("running job %s inline", name)
	return job(ctx)
}

// Queued hands jobs to asynchronous bus subscribers. Once enqueued a job is not
// bound to the caller's cancellation and runs to completion.
type Queued struct {
	bus EventBus.Bus
}

func NewQueued(bus EventBus.Bus) (*Queued, error) {
	q := &Queued{bus: bus}
	if err := bus.SubscribeAsync(jobTopic, q.run, false); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *Queued) Dispatch(ctx context.Context, name string, job Job) error {
	log.Debugf("enqueueing job %s", name)
	q.bus.Publish(jobTopic, context.WithoutCancel(ctx), name, job)
	return nil
}

// Wait blocks until every enqueued job has finished.
func (q *Queued) Wait() {
	q.bus.WaitAsync()
}

func (q *Queued) run(ctx context.Context, name string, job Job) {
	start := time.Now()
	if err := job(ctx); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeJob).Errorf("job %s failed: %v", name, err)
		return
	}
	log.Debugf("job %s done in %v", name, time.Since(start))
}
