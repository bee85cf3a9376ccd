package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/chainsentinel/sentinel/internal/analysis"
	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/chainsentinel/sentinel/internal/store"
)

// AnalyzeActivityHandler implements spec.md §4.7's activity/risk step: it
// computes activity metrics from the cached normal transactions and scores
// the report from whatever sub-sections exist at this moment — there is no
// join barrier, so the score reflects a race with the other three analyzers
// (spec.md §9 open question, left as specified).
func AnalyzeActivityHandler(wallets store.WalletStore, reports store.ReportStore) Handler {
	return func(ctx context.Context, job *model.AnalysisJob) error {
		wallet, err := wallets.Get(ctx, job.WalletID)
		if err != nil {
			return err
		}
		if wallet == nil {
			return nil
		}

		metrics := analysis.ComputeActivityMetrics(wallet.Address, wallet.TransactionCache.StreamTxs(model.StreamNormal), time.Now())

		report, err := reports.UpsertSection(ctx, wallet.ID, model.SectionActivity, &metrics)
		if err != nil {
			return err
		}

		score := analysis.ScoreRisk(report.Details, metrics)
		summary := fmt.Sprintf("%d transactions over %d days, %d unique counterparties", metrics.TransactionCount, metrics.WalletAgeDays, metrics.UniqueInteractedAddresses)
		return reports.SetScore(ctx, wallet.ID, score, summary)
	}
}
