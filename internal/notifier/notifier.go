// Package notifier implements the stateful diff-and-alert layer spec.md
// §4.9 describes: each analyzer's fingerprint set is diffed against the
// wallet's prior state, and only new, sufficiently severe items fire a
// notification. The transport is a stateless sink; delivery failures are
// logged and never block the pipeline.
package notifier

import (
	"context"

	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/ethereum/go-ethereum/log"
)

// Transport delivers a rendered alert. Failures must never propagate back
// into the analysis pipeline (spec.md §4.9).
type Transport interface {
	Send(ctx context.Context, userID, message string) error
}

// Finding is anything with a fingerprint and a severity, the common shape
// approval and contract findings share for diffing purposes.
type Finding struct {
	Fingerprint string
	Severity    model.ApprovalSeverity
	Title       string
	Detail      string
}

var severityRank = map[model.ApprovalSeverity]int{
	model.SeverityInfo:     0,
	model.SeverityLow:      1,
	model.SeverityMedium:   2,
	model.SeverityHigh:     3,
	model.SeverityCritical: 4,
}

// Diff returns the subset of current whose fingerprint is absent from
// previous AND meets or exceeds threshold — the "new and sufficiently risky"
// rule of spec.md §4.9.
func Diff(previous []string, current []Finding, threshold model.ApprovalSeverity) []Finding {
	seen := make(map[string]struct{}, len(previous))
	for _, fp := range previous {
		seen[fp] = struct{}{}
	}

	minRank := severityRank[threshold]
	var out []Finding
	for _, f := range current {
		if _, already := seen[f.Fingerprint]; already {
			continue
		}
		if severityRank[f.Severity] < minRank {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Notifier wires Diff to a Transport and logs (never retries) delivery
// failures.
type Notifier struct {
	transport Transport
	threshold model.ApprovalSeverity
}

func New(transport Transport, threshold model.ApprovalSeverity) *Notifier {
	return &Notifier{transport: transport, threshold: threshold}
}

// Notify diffs current against previous and sends one message per surviving
// finding. It returns the full current fingerprint set so the caller can
// write it back atomically with its other state (spec.md §4.9).
func (n *Notifier) Notify(ctx context.Context, userID string, previous []string, current []Finding) []string {
	fresh := Diff(previous, current, n.threshold)
	for _, f := range fresh {
		msg := f.Title
		if f.Detail != "" {
			msg += ": " + f.Detail
		}
		if err := n.transport.Send(ctx, userID, msg); err != nil {
			log.Warn("notifier: delivery failed, continuing", "user", userID, "fingerprint", f.Fingerprint, "err", err)
		}
	}

	all := make([]string, len(current))
	for i, f := range current {
		all[i] = f.Fingerprint
	}
	return all
}
