// Package dispatch runs multi-recipient campaign jobs: strictly ordered,
// one in-flight send, progress streamed per recipient. A failing recipient
// never aborts the job; the dispatcher optimizes for maximum delivered count.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rafaelqm/imovia/constants"
	"github.com/rafaelqm/imovia/internal/common"
)

// Sender is the delivery channel a job runs over. Ready reports whether the
// underlying session/connection is established; Dispatch refuses to start
// without it.
type Sender interface {
	Ready() bool
	Send(ctx context.Context, recipient, message string) error
}

// Job is one campaign: a message fanned out to an ordered recipient list.
type Job struct {
	ID             string
	Recipients     []string
	Message        string
	Status         constants.DispatchStatus
	CompletedCount int
	Attempted      int
	Succeeded      int
	StartedAt      time.Time
	FinishedAt     time.Time
}

func NewJob(recipients []string, message string) *Job {
	return &Job{
		ID:         uuid.New().String(),
		Recipients: recipients,
		Message:    message,
		Status:     constants.DispatchPending,
	}
}

// Event is one element of the progress stream. Non-terminal events carry the
// rounded percentage; the terminal event carries the final status and the
// aggregate summary. Individual recipient identities never appear here.
type Event struct {
	JobID     string
	Progress  int // round(100 * completed / total)
	Completed int
	Total     int
	Terminal  bool
	Status    constants.DispatchStatus // set on the terminal event
	Attempted int                      // terminal summary
	Succeeded int                      // terminal summary
}

type Dispatcher struct {
	sender       Sender
	logger       *slog.Logger
	sendInterval time.Duration
}

type Option func(*Dispatcher)

// WithSendInterval paces consecutive sends. Zero means no pacing.
func WithSendInterval(d time.Duration) Option {
	return func(dp *Dispatcher) { dp.sendInterval = d }
}

func NewDispatcher(sender Sender, logger *slog.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{sender: sender, logger: logger}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch validates the job synchronously and, on success, transitions it to
// Running and starts the send loop. Precondition violations return
// ErrPreconditionFailed and leave the job Pending. The returned channel is
// buffered for the whole stream, so an abandoning caller never blocks the job.
func (d *Dispatcher) Dispatch(ctx context.Context, job *Job) (<-chan Event, error) {
	if job.Status != constants.DispatchPending {
		return nil, fmt.Errorf("%w: job %s is %s, want %s",
			common.ErrPreconditionFailed, job.ID, job.Status, constants.DispatchPending)
	}
	recipients := uniqueRecipients(job.Recipients)
	if len(recipients) == 0 {
		return nil, fmt.Errorf("%w: job %s has no recipients", common.ErrPreconditionFailed, job.ID)
	}
	if strings.TrimSpace(job.Message) == "" {
		return nil, fmt.Errorf("%w: job %s has an empty message", common.ErrPreconditionFailed, job.ID)
	}
	if !d.sender.Ready() {
		return nil, fmt.Errorf("%w: send channel not ready", common.ErrPreconditionFailed)
	}

	job.Status = constants.DispatchRunning
	job.StartedAt = time.Now()
	d.logger.Info("dispatch.job.start", "job_id", job.ID, "recipients", len(recipients))

	events := make(chan Event, len(recipients)+1)
	go d.run(ctx, job, recipients, events)
	return events, nil
}

func (d *Dispatcher) run(ctx context.Context, job *Job, recipients []string, events chan<- Event) {
	defer close(events)

	total := len(recipients)
	for i, recipient := range recipients {
		if ctx.Err() != nil {
			d.abort(job, total, events)
			return
		}
		if i > 0 && d.sendInterval > 0 {
			if !sleepCtx(ctx, d.sendInterval) {
				d.abort(job, total, events)
				return
			}
		}

		err := d.sender.Send(ctx, recipient, job.Message)
		job.Attempted++
		if err != nil {
			d.logger.Warn("dispatch.send.failed", "job_id", job.ID, "index", i, "error", err)
		} else {
			job.Succeeded++
		}

		job.CompletedCount++
		events <- Event{
			JobID:     job.ID,
			Progress:  roundedProgress(job.CompletedCount, total),
			Completed: job.CompletedCount,
			Total:     total,
		}
	}

	job.Status = constants.DispatchCompleted
	job.FinishedAt = time.Now()
	d.logger.Info("dispatch.job.done",
		"job_id", job.ID, "attempted", job.Attempted, "succeeded", job.Succeeded,
	)
	events <- Event{
		JobID:     job.ID,
		Progress:  100,
		Completed: job.CompletedCount,
		Total:     total,
		Terminal:  true,
		Status:    constants.DispatchCompleted,
		Attempted: job.Attempted,
		Succeeded: job.Succeeded,
	}
}

// abort marks the job Aborted on the external stop signal and emits the
// terminal event with whatever counts accumulated.
func (d *Dispatcher) abort(job *Job, total int, events chan<- Event) {
	job.Status = constants.DispatchAborted
	job.FinishedAt = time.Now()
	d.logger.Warn("dispatch.job.aborted",
		"job_id", job.ID, "completed", job.CompletedCount, "total", total,
	)
	events <- Event{
		JobID:     job.ID,
		Progress:  roundedProgress(job.CompletedCount, total),
		Completed: job.CompletedCount,
		Total:     total,
		Terminal:  true,
		Status:    constants.DispatchAborted,
		Attempted: job.Attempted,
		Succeeded: job.Succeeded,
	}
}

func roundedProgress(completed, total int) int {
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// sleepCtx waits for d or the context, reporting false on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// uniqueRecipients trims, drops empties, and removes duplicates while
// preserving first-occurrence order.
func uniqueRecipients(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, r := range in {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
