package workers

import (
	"context"

	"github.com/chainsentinel/sentinel/internal/cache"
	"github.com/chainsentinel/sentinel/internal/chainadapter"
	"github.com/chainsentinel/sentinel/internal/jobs"
	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/chainsentinel/sentinel/internal/store"
)

// TransactionLister is the subset of chainadapter.Adapter the fetcher needs.
type TransactionLister interface {
	ListNormalTransactions(ctx context.Context, p chainadapter.ListTransactionsParams) ([]model.Transaction, error)
	ListTokenTransfers(ctx context.Context, p chainadapter.ListTransactionsParams) ([]model.Transaction, error)
	ListNFTTransfers(ctx context.Context, p chainadapter.ListTransactionsParams) ([]model.Transaction, error)
}

// FetchTransactionsHandler implements spec.md §4.4: per stream, decide
// initial vs incremental from the watermark, fetch, append, advance the
// watermark, then enqueue the four post-fetch analyzers once all three
// streams have landed.
func FetchTransactionsHandler(wallets store.WalletStore, lister TransactionLister, queue *jobs.Queue, maxInitialTx int) Handler {
	streams := []struct {
		stream model.Stream
		list   func(context.Context, TransactionLister, chainadapter.ListTransactionsParams) ([]model.Transaction, error)
	}{
		{model.StreamNormal, func(ctx context.Context, l TransactionLister, p chainadapter.ListTransactionsParams) ([]model.Transaction, error) {
			return l.ListNormalTransactions(ctx, p)
		}},
		{model.StreamTokenTransfer, func(ctx context.Context, l TransactionLister, p chainadapter.ListTransactionsParams) ([]model.Transaction, error) {
			return l.ListTokenTransfers(ctx, p)
		}},
		{model.StreamNFTTransfer, func(ctx context.Context, l TransactionLister, p chainadapter.ListTransactionsParams) ([]model.Transaction, error) {
			return l.ListNFTTransfers(ctx, p)
		}},
	}

	return func(ctx context.Context, job *model.AnalysisJob) error {
		wallet, err := wallets.Get(ctx, job.WalletID)
		if err != nil {
			return err
		}
		if wallet == nil {
			return nil // wallet deleted since enqueue; nothing to do
		}

		for _, s := range streams {
			watermark := wallet.TransactionCache.Watermark[s.stream]
			plan := cache.PlanFetch(watermark, maxInitialTx)

			rows, err := s.list(ctx, lister, chainadapter.ListTransactionsParams{
				Chain:      wallet.Chain,
				Address:    wallet.Address,
				StartBlock: plan.StartBlock,
				Descending: plan.Descending,
				PageSize:   plan.PageSize,
			})
			if err != nil {
				return err
			}

			newWatermark := cache.NextWatermark(watermark, rows)
			if err := wallets.AppendTransactions(ctx, wallet.ID, s.stream, rows, newWatermark); err != nil {
				return err
			}
		}

		return queue.EnqueuePostFetchAnalyzers(ctx, wallet.ID)
	}
}
