// Package jobs is a thin convenience wrapper over store.JobStore for
// enqueuing the task graph described in spec.md §4.3.
package jobs

import (
	"context"

	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/chainsentinel/sentinel/internal/store"
)

type Queue struct {
	jobs store.JobStore
}

func New(jobs store.JobStore) *Queue {
	return &Queue{jobs: jobs}
}

func (q *Queue) EnqueueFullScan(ctx context.Context, walletID string) error {
	return q.jobs.Enqueue(ctx, &model.AnalysisJob{WalletID: walletID, TaskType: model.TaskFullScan})
}

func (q *Queue) EnqueueFetchTransactions(ctx context.Context, walletID string) error {
	return q.jobs.Enqueue(ctx, &model.AnalysisJob{WalletID: walletID, TaskType: model.TaskFetchTransactions})
}

// EnqueuePostFetchAnalyzers enqueues the four independent analyzers with no
// join barrier between them (spec.md §4.3 task graph).
func (q *Queue) EnqueuePostFetchAnalyzers(ctx context.Context, walletID string) error {
	for _, t := range []model.TaskType{
		model.TaskAnalyzeApprovals,
		model.TaskAnalyzeContracts,
		model.TaskAnalyzeActivity,
		model.TaskAnalyzeLPStake,
	} {
		if err := q.jobs.Enqueue(ctx, &model.AnalysisJob{WalletID: walletID, TaskType: t}); err != nil {
			return err
		}
	}
	return nil
}
