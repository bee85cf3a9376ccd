package workers

import (
	"context"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/chainsentinel/sentinel/internal/chainadapter"
	"github.com/chainsentinel/sentinel/internal/labels"
	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/chainsentinel/sentinel/internal/notifier"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeApprovalWorkerCall(t *testing.T, sig chainadapter.Signature, args ...any) string {
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

func approveWorkerSig() chainadapter.Signature {
	for _, s := range chainadapter.ApprovalSignatures {
		if s.Name == "approve" {
			return s
		}
	}
	panic("no approve signature found")
}

type nullLabelStore struct{}

func (nullLabelStore) Get(ctx context.Context, address string, chain model.Chain) (*model.AddressLabel, error) {
	return nil, nil
}
func (nullLabelStore) Insert(ctx context.Context, l *model.AddressLabel) error { return nil }

type nullOnChainNamer struct{}

func (nullOnChainNamer) Name(ctx context.Context, chain model.Chain, address string) (string, bool) {
	return "", false
}

type nullSourceNamer struct{}

func (nullSourceNamer) FetchSourceCode(ctx context.Context, chain model.Chain, address string) (*chainadapter.SourceCode, error) {
	return nil, nil
}
func (nullSourceNamer) ResolveImplementation(ctx context.Context, chain model.Chain, address string) (string, error) {
	return "", nil
}

type capturingTransport struct {
	sent []string
}

func (c *capturingTransport) Send(ctx context.Context, userID, message string) error {
	c.sent = append(c.sent, message)
	return nil
}

type fakeApprovalReader struct{ allowance *big.Int }

func (f *fakeApprovalReader) Allowance(ctx context.Context, chain model.Chain, token, owner, spender string) *big.Int {
	return f.allowance
}
func (f *fakeApprovalReader) IsApprovedForAll(ctx context.Context, chain model.Chain, token, owner, operator string) (bool, error) {
	return false, nil
}
func (f *fakeApprovalReader) RevokeCalldataERC20(spender string) string { return "0xrevoke" }
func (f *fakeApprovalReader) RevokeCalldataNFT(operator string) string  { return "0xrevokeNFT" }

func TestAnalyzeApprovalsHandlerNotifiesOnNewUnlimitedApprovalAndPersistsState(t *testing.T) {
	const address = "0x1111111111111111111111111111111111111111"
	const tokenAddr = "0x2222222222222222222222222222222222222222"
	const spenderAddr = "0x3333333333333333333333333333333333333333"

	maxUint256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	input := encodeApprovalWorkerCall(t, approveWorkerSig(), common.HexToAddress(spenderAddr), maxUint256)

	w := &model.Wallet{
		ID:      "w1",
		UserID:  "chat-1",
		Address: address,
		Chain:   model.ChainEthereum,
		TransactionCache: model.TransactionCache{
			Normal: []model.Transaction{{From: address, To: tokenAddr, Input: input}},
		},
	}
	wallets := newFakeWalletStore(w)
	reports := newFakeReportStore()
	labelSvc := labels.New(nullLabelStore{}, nullOnChainNamer{}, nullSourceNamer{})
	transport := &capturingTransport{}
	notify := notifier.New(transport, model.SeverityMedium)
	reader := &fakeApprovalReader{allowance: maxUint256}

	handler := AnalyzeApprovalsHandler(wallets, reports, reader, labelSvc, notify)
	err := handler(context.Background(), &model.AnalysisJob{WalletID: "w1", TaskType: model.TaskAnalyzeApprovals})
	require.NoError(t, err)

	report := reports.reports["w1"]
	require.NotNil(t, report)
	require.Len(t, report.Details.Approvals, 1)
	assert.True(t, report.Details.Approvals[0].IsUnlimited)
	assert.Len(t, transport.sent, 1)

	state, ok := wallets.approvalsState["w1"]
	require.True(t, ok)
	assert.Equal(t, []string{report.Details.Approvals[0].Fingerprint}, state)
}

func TestAnalyzeApprovalsHandlerDoesNotRenotifyOnSecondRun(t *testing.T) {
	const address = "0x1111111111111111111111111111111111111111"
	const tokenAddr = "0x2222222222222222222222222222222222222222"
	const spenderAddr = "0x3333333333333333333333333333333333333333"

	maxUint256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	input := encodeApprovalWorkerCall(t, approveWorkerSig(), common.HexToAddress(spenderAddr), maxUint256)
	fingerprint := "erc20-" + tokenAddr + "-" + spenderAddr

	w := &model.Wallet{
		ID:      "w1",
		UserID:  "chat-1",
		Address: address,
		Chain:   model.ChainEthereum,
		TransactionCache: model.TransactionCache{
			Normal: []model.Transaction{{From: address, To: tokenAddr, Input: input}},
		},
		LastAnalysisState: model.AnalysisState{Approvals: []string{fingerprint}},
	}
	wallets := newFakeWalletStore(w)
	reports := newFakeReportStore()
	labelSvc := labels.New(nullLabelStore{}, nullOnChainNamer{}, nullSourceNamer{})
	transport := &capturingTransport{}
	notify := notifier.New(transport, model.SeverityMedium)
	reader := &fakeApprovalReader{allowance: maxUint256}

	handler := AnalyzeApprovalsHandler(wallets, reports, reader, labelSvc, notify)
	err := handler(context.Background(), &model.AnalysisJob{WalletID: "w1", TaskType: model.TaskAnalyzeApprovals})
	require.NoError(t, err)

	assert.Empty(t, transport.sent)
}
