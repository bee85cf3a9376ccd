package analysis

import (
	"strings"
	"time"

	"github.com/chainsentinel/sentinel/internal/model"
)

// ComputeActivityMetrics derives wallet age and usage stats from the
// normal-transaction cache, per spec.md §4.7.
func ComputeActivityMetrics(wallet string, normalTxs []model.Transaction, now time.Time) model.ActivityMetrics {
	wallet = strings.ToLower(wallet)
	metrics := model.ActivityMetrics{TransactionCount: len(normalTxs)}

	unique := map[string]struct{}{}
	for _, tx := range normalTxs {
		ts := tx.Timestamp
		if metrics.FirstTxAt == nil || ts.Before(*metrics.FirstTxAt) {
			t := ts
			metrics.FirstTxAt = &t
		}
		if metrics.LastTxAt == nil || ts.After(*metrics.LastTxAt) {
			t := ts
			metrics.LastTxAt = &t
		}
		counterparty := strings.ToLower(tx.To)
		if strings.EqualFold(tx.From, wallet) {
			counterparty = strings.ToLower(tx.To)
		} else {
			counterparty = strings.ToLower(tx.From)
		}
		if counterparty != "" && counterparty != wallet {
			unique[counterparty] = struct{}{}
		}
	}
	metrics.UniqueInteractedAddresses = len(unique)

	if metrics.FirstTxAt != nil {
		metrics.WalletAgeDays = int(now.Sub(*metrics.FirstTxAt).Hours() / 24)
	}
	return metrics
}
