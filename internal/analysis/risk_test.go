package analysis

import (
	"testing"

	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/stretchr/testify/require"
)

func TestScoreRiskEmptyReportYieldsZero(t *testing.T) {
	score := ScoreRisk(model.ReportDetails{}, model.ActivityMetrics{TransactionCount: 50, WalletAgeDays: 400})
	require.Equal(t, 0, score)
}

func TestScoreRiskUnlimitedApprovalContribution(t *testing.T) {
	details := model.ReportDetails{
		Approvals: []model.ApprovalFinding{
			{Kind: model.ApprovalERC20, IsUnlimited: true},
		},
	}
	score := ScoreRisk(details, model.ActivityMetrics{TransactionCount: 50, WalletAgeDays: 400})
	require.Equal(t, 10, score)
}

func TestScoreRiskCapsAt100(t *testing.T) {
	var approvals []model.ApprovalFinding
	for i := 0; i < 10; i++ {
		approvals = append(approvals, model.ApprovalFinding{Kind: model.ApprovalERC20, IsUnlimited: true})
		approvals = append(approvals, model.ApprovalFinding{Kind: model.ApprovalERC20})
	}
	details := model.ReportDetails{
		Approvals: approvals,
		Contracts: &model.ContractReport{
			UnverifiedWithRisks:        make([]model.ContractFinding, 10),
			VerifiedContractsWithRisks: make([]model.ContractFinding, 10),
		},
	}
	score := ScoreRisk(details, model.ActivityMetrics{TransactionCount: 1, WalletAgeDays: 1})
	require.Equal(t, 100, score)
}

func TestScoreRiskNewWalletActivityBonus(t *testing.T) {
	score := ScoreRisk(model.ReportDetails{}, model.ActivityMetrics{TransactionCount: 5, WalletAgeDays: 10})
	require.Equal(t, 20, score)
}
