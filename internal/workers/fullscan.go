package workers

import (
	"context"
	"time"

	"github.com/chainsentinel/sentinel/internal/jobs"
	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/chainsentinel/sentinel/internal/store"
)

// FullScanHandler builds the no-op orchestrator task: enqueue
// fetch_transactions and stamp last_scan_at (spec.md §4.3).
func FullScanHandler(wallets store.WalletStore, queue *jobs.Queue) Handler {
	return func(ctx context.Context, job *model.AnalysisJob) error {
		if err := queue.EnqueueFetchTransactions(ctx, job.WalletID); err != nil {
			return err
		}
		return wallets.SetLastScanAt(ctx, job.WalletID, time.Now())
	}
}
