package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/chainsentinel/sentinel/internal/jobs"
	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWalletStore struct {
	wallets []*model.Wallet
}

func (f *fakeWalletStore) Get(ctx context.Context, id string) (*model.Wallet, error) { return nil, nil }
func (f *fakeWalletStore) List(ctx context.Context) ([]*model.Wallet, error)          { return f.wallets, nil }
func (f *fakeWalletStore) Create(ctx context.Context, w *model.Wallet) error          { return nil }
func (f *fakeWalletStore) Delete(ctx context.Context, id string) error                { return nil }
func (f *fakeWalletStore) AppendTransactions(ctx context.Context, walletID string, stream model.Stream, rows []model.Transaction, newWatermark uint64) error {
	return nil
}
func (f *fakeWalletStore) SetLastScanAt(ctx context.Context, walletID string, at time.Time) error {
	return nil
}
func (f *fakeWalletStore) UpdateAnalysisState(ctx context.Context, walletID string, approvals *[]string, interactedContracts *[]string) error {
	return nil
}

type fakeJobStore struct {
	enqueued []*model.AnalysisJob
}

func (f *fakeJobStore) Enqueue(ctx context.Context, job *model.AnalysisJob) error {
	f.enqueued = append(f.enqueued, job)
	return nil
}
func (f *fakeJobStore) ClaimNext(ctx context.Context, taskType model.TaskType) (*model.AnalysisJob, error) {
	return nil, nil
}
func (f *fakeJobStore) Complete(ctx context.Context, jobID string) error          { return nil }
func (f *fakeJobStore) Fail(ctx context.Context, jobID string, reason string) error { return nil }
func (f *fakeJobStore) CountByStatus(ctx context.Context, taskType model.TaskType) (map[model.JobStatus]int, error) {
	return nil, nil
}
func (f *fakeJobStore) CompletedSince(ctx context.Context, taskType model.TaskType, since time.Time) (int, error) {
	return 0, nil
}

func TestSweepEnqueuesFullScanForEveryWallet(t *testing.T) {
	wallets := &fakeWalletStore{wallets: []*model.Wallet{{ID: "w1"}, {ID: "w2"}}}
	jobStore := &fakeJobStore{}
	s := New(wallets, jobs.New(jobStore), time.Hour)

	s.sweep(context.Background())

	require.Len(t, jobStore.enqueued, 2)
	assert.Equal(t, model.TaskFullScan, jobStore.enqueued[0].TaskType)
	assert.ElementsMatch(t, []string{"w1", "w2"}, []string{jobStore.enqueued[0].WalletID, jobStore.enqueued[1].WalletID})
}

func TestSweepWithNoWalletsEnqueuesNothing(t *testing.T) {
	wallets := &fakeWalletStore{}
	jobStore := &fakeJobStore{}
	s := New(wallets, jobs.New(jobStore), time.Hour)

	s.sweep(context.Background())
	assert.Empty(t, jobStore.enqueued)
}
