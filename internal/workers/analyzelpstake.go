package workers

import (
	"context"

	"github.com/chainsentinel/sentinel/internal/analysis"
	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/chainsentinel/sentinel/internal/store"
)

// AnalyzeLPStakeHandler implements spec.md §4.7's LP/stake detection: scan
// wallet-originated transactions for add-liquidity/stake/deposit calls and
// record the distinct destinations as potential forgotten positions. This
// section carries no severity threshold in the source, so it is written to
// the report without going through the notifier.
func AnalyzeLPStakeHandler(wallets store.WalletStore, reports store.ReportStore) Handler {
	return func(ctx context.Context, job *model.AnalysisJob) error {
		wallet, err := wallets.Get(ctx, job.WalletID)
		if err != nil {
			return err
		}
		if wallet == nil {
			return nil
		}

		positions := analysis.FindLPStakePositions(wallet.Address, wallet.TransactionCache.StreamTxs(model.StreamNormal))

		_, err = reports.UpsertSection(ctx, wallet.ID, model.SectionLPStake, positions)
		return err
	}
}
