package workers

import (
	"context"
	"time"

	"github.com/chainsentinel/sentinel/internal/analysis"
	"github.com/chainsentinel/sentinel/internal/labels"
	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/chainsentinel/sentinel/internal/notifier"
	"github.com/chainsentinel/sentinel/internal/store"
)

// AnalyzeApprovalsHandler implements spec.md §4.5: reconstruct standing
// approval intents from wallet-originated transactions, confirm each
// on-chain, decorate with labels, diff against the wallet's prior
// fingerprint set, notify on new items at or above the notifier's severity
// threshold, then write the report section and, in a separate write, the
// analyzer's own fingerprint slot.
func AnalyzeApprovalsHandler(
	wallets store.WalletStore,
	reports store.ReportStore,
	reader analysis.OnChainReader,
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

		normalTxs := wallet.TransactionCache.StreamTxs(model.StreamNormal)
		intents := analysis.ReconstructApprovalIntents(wallet.Address, normalTxs)
		findings := analysis.ConfirmApprovals(ctx, wallet.Chain, wallet.Address, intents, reader, time.Now())

		for i := range findings {
			if name, ok := labelSvc.Resolve(ctx, wallet.Chain, findings[i].Token); ok {
				findings[i].TokenLabel = name
			}
			if name, ok := labelSvc.Resolve(ctx, wallet.Chain, findings[i].Spender); ok {
				findings[i].SpenderLabel = name
			}
		}

		notifierFindings := make([]notifier.Finding, len(findings))
		for i, f := range findings {
			notifierFindings[i] = notifier.Finding{
				Fingerprint: f.Fingerprint,
				Severity:    f.Severity,
				Title:       approvalAlertTitle(f),
				Detail:      f.Spender,
			}
		}
		fingerprints := notify.Notify(ctx, wallet.UserID, wallet.LastAnalysisState.Approvals, notifierFindings)

		if _, err := reports.UpsertSection(ctx, wallet.ID, model.SectionApprovals, findings); err != nil {
			return err
		}
		return wallets.UpdateAnalysisState(ctx, wallet.ID, &fingerprints, nil)
	}
}

func approvalAlertTitle(f model.ApprovalFinding) string {
	switch {
	case f.Kind == model.ApprovalERC20 && f.IsUnlimited:
		return "Unlimited ERC20 approval granted to " + f.Spender
	case f.Kind == model.ApprovalERC20:
		return "ERC20 approval granted to " + f.Spender
	case f.Kind == model.ApprovalNFT:
		return "Collection-wide NFT approval granted to " + f.Spender
	case f.Kind == model.ApprovalPermit2612 && f.LongLived:
		return "Long-lived permit signed for " + f.Spender
	default:
		return "Standing approval detected for " + f.Spender
	}
}
