package chainadapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/chainsentinel/sentinel/internal/apperr"
	"github.com/chainsentinel/sentinel/internal/gateway/providers"
	"github.com/chainsentinel/sentinel/internal/model"
)

// Summarizer routes contract-risk summaries through the Gateway's AI
// provider, so AI calls share the same rate-limit/retry machinery as every
// other outbound call (spec.md §9).
type Summarizer struct {
	gw submitter
}

func NewSummarizer(gw submitter) *Summarizer {
	return &Summarizer{gw: gw}
}

// Summarize asks the AI provider to explain why a contract's source matched
// the given risk keywords. The caller (analysis.AnalyzeContract) only
// invokes this when at least one HIGH/MEDIUM keyword matched or the
// hidden-approve flag is set (spec.md §4.6).
func (s *Summarizer) Summarize(ctx context.Context, source string, matches map[string][]string) (string, error) {
	var flags []string
	for tier, words := range matches {
		if len(words) > 0 {
			flags = append(flags, fmt.Sprintf("%s: %s", tier, strings.Join(words, ", ")))
		}
	}
	prompt := fmt.Sprintf(
		"Summarize the security risk of this Solidity contract in two sentences. Matched risk signals: %s.\n\n%s",
		strings.Join(flags, "; "), truncate(source, 6000),
	)

	req := providers.AIRequest{Prompt: prompt}
	payload, err := fastJSON.Marshal(req)
	if err != nil {
		return "", apperr.Wrap(apperr.PermanentExternal, "chainadapter.summarize", err)
	}
	return s.gw.Submit(ctx, model.ProviderAI, string(payload))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
