package workers

import (
	"context"
	"time"

	"github.com/chainsentinel/sentinel/internal/model"
)

type fakeWalletStore struct {
	wallets map[string]*model.Wallet

	lastScanAt            map[string]time.Time
	approvalsState        map[string][]string
	interactedState       map[string][]string
	appendedWatermarks    map[model.Stream]uint64
	appendedRowCountTotal int
}

func newFakeWalletStore(wallets ...*model.Wallet) *fakeWalletStore {
	f := &fakeWalletStore{
		wallets:            map[string]*model.Wallet{},
		lastScanAt:         map[string]time.Time{},
		approvalsState:     map[string][]string{},
		interactedState:    map[string][]string{},
		appendedWatermarks: map[model.Stream]uint64{},
	}
	for _, w := range wallets {
		f.wallets[w.ID] = w
	}
	return f
}

func (f *fakeWalletStore) Get(ctx context.Context, id string) (*model.Wallet, error) {
	return f.wallets[id], nil
}
func (f *fakeWalletStore) List(ctx context.Context) ([]*model.Wallet, error) {
	var out []*model.Wallet
	for _, w := range f.wallets {
		out = append(out, w)
	}
	return out, nil
}
func (f *fakeWalletStore) Create(ctx context.Context, w *model.Wallet) error {
	f.wallets[w.ID] = w
	return nil
}
func (f *fakeWalletStore) Delete(ctx context.Context, id string) error {
	delete(f.wallets, id)
	return nil
}
func (f *fakeWalletStore) AppendTransactions(ctx context.Context, walletID string, stream model.Stream, rows []model.Transaction, newWatermark uint64) error {
	f.appendedRowCountTotal += len(rows)
	f.appendedWatermarks[stream] = newWatermark
	if w, ok := f.wallets[walletID]; ok {
		switch stream {
		case model.StreamNormal:
			w.TransactionCache.Normal = append(w.TransactionCache.Normal, rows...)
		case model.StreamTokenTransfer:
			w.TransactionCache.TokenTransfer = append(w.TransactionCache.TokenTransfer, rows...)
		case model.StreamNFTTransfer:
			w.TransactionCache.NFTTransfer = append(w.TransactionCache.NFTTransfer, rows...)
		}
		if w.TransactionCache.Watermark == nil {
			w.TransactionCache.Watermark = map[model.Stream]uint64{}
		}
		w.TransactionCache.Watermark[stream] = newWatermark
	}
	return nil
}
func (f *fakeWalletStore) SetLastScanAt(ctx context.Context, walletID string, at time.Time) error {
	f.lastScanAt[walletID] = at
	return nil
}
func (f *fakeWalletStore) UpdateAnalysisState(ctx context.Context, walletID string, approvals *[]string, interactedContracts *[]string) error {
	if approvals != nil {
		f.approvalsState[walletID] = *approvals
	}
	if interactedContracts != nil {
		f.interactedState[walletID] = *interactedContracts
	}
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

type fakeReportStore struct {
	reports map[string]*model.Report
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{reports: map[string]*model.Report{}}
}

func (f *fakeReportStore) Get(ctx context.Context, walletID string) (*model.Report, error) {
	return f.reports[walletID], nil
}
func (f *fakeReportStore) UpsertSection(ctx context.Context, walletID string, section model.Section, value interface{}) (*model.Report, error) {
	r, ok := f.reports[walletID]
	if !ok {
		r = &model.Report{WalletID: walletID}
		f.reports[walletID] = r
	}
	switch section {
	case model.SectionApprovals:
		r.Details.Approvals, _ = value.([]model.ApprovalFinding)
	case model.SectionContracts:
		r.Details.Contracts, _ = value.(*model.ContractReport)
	case model.SectionLPStake:
		r.Details.LPStake, _ = value.([]model.LPStakePosition)
	case model.SectionActivity:
		r.Details.Activity, _ = value.(*model.ActivityMetrics)
	}
	return r, nil
}
func (f *fakeReportStore) SetScore(ctx context.Context, walletID string, score int, summary string) error {
	if r, ok := f.reports[walletID]; ok {
		r.RiskScore = score
		r.Summary = summary
	}
	return nil
}
