package workers

import (
	"context"
	"strings"

	"github.com/chainsentinel/sentinel/internal/analysis"
	"github.com/chainsentinel/sentinel/internal/labels"
	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/chainsentinel/sentinel/internal/notifier"
	"github.com/chainsentinel/sentinel/internal/store"
)

// AnalyzeContractsHandler implements spec.md §4.6: bucket every distinct
// counterparty contract by verification state and risk tier, notify on new
// ones at or above the notifier's severity threshold, and overwrite
// interacted_contracts to the full set.
func AnalyzeContractsHandler(
	wallets store.WalletStore,
	reports store.ReportStore,
	provider analysis.ContractSourceProvider,
	ai analysis.AISummarizer,
	labelSvc *labels.Service,
	notify *notifier.Notifier,
) Handler {
	return func(ctx context.Context, job *model.AnalysisJob) error {
		wallet, err := wallets.Get(ctx, job.WalletID)
		if err != nil {
			return err
		}
		if wallet == nil {
			return nil
		}

		addresses := distinctCounterparties(wallet)

		var findings []model.ContractFinding
		for _, addr := range addresses {
			finding := analysis.AnalyzeContract(ctx, wallet.Chain, addr, provider, ai)
			if name, ok := labelSvc.Resolve(ctx, wallet.Chain, addr); ok {
				finding.Label = name
			}
			findings = append(findings, finding)
		}
		bucketed := analysis.BucketContracts(findings)

		notifierFindings := make([]notifier.Finding, 0, len(findings))
		for _, f := range findings {
			if f.HighestTier == "" {
				continue
			}
			notifierFindings = append(notifierFindings, notifier.Finding{
				Fingerprint: f.Fingerprint,
				Severity:    contractSeverity(f),
				Title:       contractAlertTitle(f),
				Detail:      f.Address,
			})
		}
		_ = notify.Notify(ctx, wallet.UserID, wallet.LastAnalysisState.InteractedContracts, notifierFindings)

		if _, err := reports.UpsertSection(ctx, wallet.ID, model.SectionContracts, &bucketed); err != nil {
			return err
		}
		return wallets.UpdateAnalysisState(ctx, wallet.ID, nil, &addresses)
	}
}

func distinctCounterparties(wallet *model.Wallet) []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(addr string) {
		addr = strings.ToLower(addr)
		if addr == "" || addr == strings.ToLower(wallet.Address) {
			return
		}
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	for _, s := range []model.Stream{model.StreamNormal, model.StreamTokenTransfer, model.StreamNFTTransfer} {
		for _, tx := range wallet.TransactionCache.StreamTxs(s) {
			add(tx.To)
		}
	}
	return out
}

func contractSeverity(f model.ContractFinding) model.ApprovalSeverity {
	if f.HiddenApprove {
		return model.SeverityCritical
	}
	switch f.HighestTier {
	case string(analysis.TierHigh):
		return model.SeverityHigh
	case string(analysis.TierMedium):
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

func contractAlertTitle(f model.ContractFinding) string {
	if f.HiddenApprove {
		return "CRITICAL HONEYPOT ALERT: hidden approve in " + f.Address
	}
	if !f.Verified {
		return "Interaction with unverified risky contract " + f.Address
	}
	return "Interaction with risky verified contract " + f.Address
}
