package workers

import (
	"context"
	"testing"

	"github.com/chainsentinel/sentinel/internal/chainadapter"
	"github.com/chainsentinel/sentinel/internal/jobs"
	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	normal, tokens, nfts []model.Transaction
}

func (f *fakeLister) ListNormalTransactions(ctx context.Context, p chainadapter.ListTransactionsParams) ([]model.Transaction, error) {
	return f.normal, nil
}
func (f *fakeLister) ListTokenTransfers(ctx context.Context, p chainadapter.ListTransactionsParams) ([]model.Transaction, error) {
	return f.tokens, nil
}
func (f *fakeLister) ListNFTTransfers(ctx context.Context, p chainadapter.ListTransactionsParams) ([]model.Transaction, error) {
	return f.nfts, nil
}

func TestFetchTransactionsHandlerAppendsAllThreeStreamsAndEnqueuesAnalyzers(t *testing.T) {
	wallet := &model.Wallet{ID: "w1", Chain: model.ChainEthereum, Address: "0xabc"}
	wallets := newFakeWalletStore(wallet)
	jobStore := &fakeJobStore{}
	lister := &fakeLister{
		normal:  []model.Transaction{{Hash: "0x1", BlockNumber: 10}},
		tokens:  []model.Transaction{{Hash: "0x2", BlockNumber: 11}},
		nfts:    []model.Transaction{{Hash: "0x3", BlockNumber: 12}},
	}
	handler := FetchTransactionsHandler(wallets, lister, jobs.New(jobStore), 1000)

	err := handler(context.Background(), &model.AnalysisJob{WalletID: "w1", TaskType: model.TaskFetchTransactions})
	require.NoError(t, err)

	assert.Len(t, wallet.TransactionCache.Normal, 1)
	assert.Len(t, wallet.TransactionCache.TokenTransfer, 1)
	assert.Len(t, wallet.TransactionCache.NFTTransfer, 1)
	assert.Equal(t, uint64(10), wallet.TransactionCache.Watermark[model.StreamNormal])

	assert.Len(t, jobStore.enqueued, 4) // the four post-fetch analyzers, no join barrier
}

func TestFetchTransactionsHandlerDeletedWalletIsNoop(t *testing.T) {
	wallets := newFakeWalletStore()
	jobStore := &fakeJobStore{}
	handler := FetchTransactionsHandler(wallets, &fakeLister{}, jobs.New(jobStore), 1000)

	err := handler(context.Background(), &model.AnalysisJob{WalletID: "missing"})
	require.NoError(t, err)
	assert.Empty(t, jobStore.enqueued)
}
