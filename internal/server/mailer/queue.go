// Package mailer turns notification jobs into delivered email without
// blocking request handling. Producers push onto a bounded queue owned by the
// composition root; a single background consumer performs the slow SMTP work.
package mailer

import (
	"context"

	"github.com/avasilkov/keyvault/internal/logging"
)

// Job is one message to deliver. Jobs are transient: a restart before
// delivery loses them.
type Job struct {
	Recipient string
	Subject   string
	Body      string
}

// Sender performs the actual delivery of one job.
type Sender interface {
	Send(ctx context.Context, job Job) error
}

// Queue is a bounded multi-producer/single-consumer pipeline. Construct it
// once at startup, before any producer can enqueue, and pass it by handle —
// there is no ambient global.
type Queue struct {
	jobs   chan Job
	sender Sender
	logger logging.Logger
}

func NewQueue(capacity int, sender Sender, logger logging.Logger) *Queue {
	return &Queue{
		jobs:   make(chan Job, capacity),
		sender: sender,
		logger: logger.With("module", "mail_queue"),
	}
}

// Enqueue offers a job to the queue without blocking the producer. When the
// queue is saturated the job is dropped with a logged failure; notification
// delivery is best-effort and must never stall a request or a scheduler tick.
// Reports whether the job was accepted.
func (q *Queue) Enqueue(ctx context.Context, job Job) bool {
	select {
	case q.jobs <- job:
		return true
	default:
		q.logger.Error(ctx, "mail queue full, dropping job",
			"recipient", job.Recipient, "subject", job.Subject)
		return false
	}
}

// Run consumes jobs one at a time until ctx is canceled. Delivery failures
// are logged and never propagate; the consumer survives them and moves on to
// the next job.
func (q *Queue) Run(ctx context.Context) {
	q.logger.Info(ctx, "mail queue consumer started")

	for {
		select {
		case <-ctx.Done():
			q.logger.Info(ctx, "mail queue consumer stopping", "undelivered", len(q.jobs))
			return
		case job := <-q.jobs:
			if err := q.sender.Send(ctx, job); err != nil {
				q.logger.Error(ctx, "error sending email",
					"recipient", job.Recipient, "subject", job.Subject, "error", err)
				continue
			}
			q.logger.Info(ctx, "email sent", "subject", job.Subject)
		}
	}
}

// Len reports the number of queued, undelivered jobs.
func (q *Queue) Len() int {
	return len(q.jobs)
}
