package workers

import (
	"context"
	"testing"

	"github.com/chainsentinel/sentinel/internal/jobs"
	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullScanHandlerEnqueuesFetchAndStampsLastScan(t *testing.T) {
	wallets := newFakeWalletStore(&model.Wallet{ID: "w1"})
	jobStore := &fakeJobStore{}
	handler := FullScanHandler(wallets, jobs.New(jobStore))

	err := handler(context.Background(), &model.AnalysisJob{WalletID: "w1", TaskType: model.TaskFullScan})
	require.NoError(t, err)

	require.Len(t, jobStore.enqueued, 1)
	assert.Equal(t, model.TaskFetchTransactions, jobStore.enqueued[0].TaskType)
	_, stamped := wallets.lastScanAt["w1"]
	assert.True(t, stamped)
}
