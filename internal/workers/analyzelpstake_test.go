package workers

import (
	"context"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/chainsentinel/sentinel/internal/chainadapter"
	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeStakeCall(t *testing.T, sig chainadapter.Signature, args ...any) string {
	t.Helper()
	var fields abi.Arguments
	for _, ty := range sig.Args {
		typ, err := abi.NewType(ty, "", nil)
		require.NoError(t, err)
		fields = append(fields, abi.Argument{Type: typ})
	}
	packed, err := fields.Pack(args...)
	require.NoError(t, err)
	sel := sig.Selector()
	return "0x" + hex.EncodeToString(append(sel[:], packed...))
}

func TestAnalyzeLPStakeHandlerWritesDistinctPositions(t *testing.T) {
	const address = "0x1111111111111111111111111111111111111111"
	const pool = "0x4444444444444444444444444444444444444444"

	stakeInput := encodeStakeCall(t, chainadapter.Signature{Name: "stake", Args: []string{"uint256"}}, big.NewInt(1000))
	w := &model.Wallet{
		ID:      "w1",
		Address: address,
		TransactionCache: model.TransactionCache{
			Normal: []model.Transaction{
				{From: address, To: pool, Input: stakeInput},
			},
		},
	}
	wallets := newFakeWalletStore(w)
	reports := newFakeReportStore()
	handler := AnalyzeLPStakeHandler(wallets, reports)

	err := handler(context.Background(), &model.AnalysisJob{WalletID: "w1", TaskType: model.TaskAnalyzeLPStake})
	require.NoError(t, err)

	report := reports.reports["w1"]
	require.NotNil(t, report)
	require.Len(t, report.Details.LPStake, 1)
	assert.Equal(t, "stake", report.Details.LPStake[0].Kind)
}
