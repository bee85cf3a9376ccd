package analysis

import "github.com/chainsentinel/sentinel/internal/model"

// ScoreRisk computes the 0-100 risk score from whatever report sections
// exist at the moment the activity worker runs (spec.md §4.7). The four
// analyzers race with no join barrier (spec.md §9 open question); this
// function is deterministic given its inputs, the non-determinism is
// entirely in which sections have landed by the time it is called.
func ScoreRisk(details model.ReportDetails, metrics model.ActivityMetrics) int {
	score := 0

	unlimited, limited := 0, 0
	for _, a := range details.Approvals {
		if a.Kind != model.ApprovalERC20 {
			continue
		}
		if a.IsUnlimited {
			unlimited++
		} else {
			limited++
		}
	}
	score += min(unlimited*10, 30)
	score += min(limited*2, 10)

	if details.Contracts != nil {
		unverifiedCount := len(details.Contracts.UnverifiedContracts) + len(details.Contracts.UnverifiedWithRisks)
		score += min(unverifiedCount*5, 25)
		score += min(len(details.Contracts.VerifiedContractsWithRisks)*3, 15)
	}

	if metrics.TransactionCount < 10 {
		score += 10
	}
	if metrics.WalletAgeDays < 30 {
		score += 10
	}

	return clamp(score, 0, 100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
