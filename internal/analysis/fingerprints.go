package analysis

import "github.com/chainsentinel/sentinel/internal/model"

// ApprovalFingerprints returns the canonical fingerprint set for a slice of
// approval findings, the form the stateful notifier diffs (spec.md §4.9).
func ApprovalFingerprints(findings []model.ApprovalFinding) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Fingerprint)
	}
	return out
}

// ContractFingerprints returns the lowercased address fingerprint set for a
// contract report's risky buckets.
func ContractFingerprints(report model.ContractReport) []string {
	var out []string
	for _, f := range report.UnverifiedWithRisks {
		out = append(out, f.Fingerprint)
	}
	for _, f := range report.VerifiedContractsWithRisks {
		out = append(out, f.Fingerprint)
	}
	return out
}
