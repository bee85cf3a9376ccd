// Package workers implements the family of single-purpose poll-claim-process
// loops spec.md §4.3/§5 describes: one worker per task type, each claiming
// only its own AnalysisJobs. Orchestration happens by one worker enqueuing
// successor tasks; there is no central coordinator.
package workers

import (
	"context"
	"time"

	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/chainsentinel/sentinel/internal/store"
	"github.com/ethereum/go-ethereum/log"
)

// Handler processes one claimed job. An error marks the job failed; success
// marks it completed (spec.md §4.3 failure policy: no automatic retry).
type Handler func(ctx context.Context, job *model.AnalysisJob) error

// Worker polls store.JobStore for jobs of one task type at a fixed interval.
type Worker struct {
	name     string
	taskType model.TaskType
	jobs     store.JobStore
	handler  Handler
	interval time.Duration
}

func New(name string, taskType model.TaskType, jobs store.JobStore, interval time.Duration, handler Handler) *Worker {
	return &Worker{name: name, taskType: taskType, jobs: jobs, handler: handler, interval: interval}
}

// Run blocks, polling and processing jobs until ctx is cancelled. Multiple
// Workers may run for the same task type concurrently; the store's atomic
// claim keeps them from double-processing (spec.md §5).
func (w *Worker) Run(ctx context.Context) {
	interval := w.interval
	if interval <= 0 {
		interval = 7 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain claims and processes jobs back-to-back until the queue for this
// task type is empty, then waits for the next tick.
func (w *Worker) drain(ctx context.Context) {
	for {
		job, err := w.jobs.ClaimNext(ctx, w.taskType)
		if err != nil {
			log.Warn("worker: claim failed", "worker", w.name, "task_type", w.taskType, "err", err)
			return
		}
		if job == nil {
			return
		}
		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job *model.AnalysisJob) {
	if err := w.handler(ctx, job); err != nil {
		log.Error("worker: job failed", "worker", w.name, "job", job.ID, "wallet", job.WalletID, "err", err)
		if failErr := w.jobs.Fail(ctx, job.ID, err.Error()); failErr != nil {
			log.Error("worker: failed to persist job failure", "job", job.ID, "err", failErr)
		}
		return
	}
	if err := w.jobs.Complete(ctx, job.ID); err != nil {
		log.Error("worker: failed to persist job completion", "job", job.ID, "err", err)
	}
}
