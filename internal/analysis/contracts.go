package analysis

import (
	"context"
	"regexp"
	"strings"

	"github.com/chainsentinel/sentinel/internal/chainadapter"
	"github.com/chainsentinel/sentinel/internal/model"
)

// hiddenApproveOverrideRe matches a declared override of the internal
// transfer hooks (spec.md §4.6 step 3, "Hidden approve").
var hiddenApproveOverrideRe = regexp.MustCompile(`function\s+(_transfer|transferFrom|transfer)\s*\([^)]*\)[^{]*override`)

// hardcodedBlockRe matches a hardcoded address comparison in a transfer
// path.
var hardcodedBlockRe = regexp.MustCompile(`require\s*\(\s*sender\s*!=\s*0x[0-9a-fA-F]{40}`)

// obfuscatedEncodingRe matches the string.concat/abi.encodePacked pattern.
var obfuscatedEncodingRe = regexp.MustCompile(`string\.concat\s*\(\s*"[^"]*"\s*,\s*abi\.encodePacked`)

// safeMathRe matches a SafeMath usage declaration.
var safeMathRe = regexp.MustCompile(`using\s+SafeMath\s+for\s+uint256`)

// pragmaAtLeast08Re detects a pragma ^0.8.x or >=0.8.x floor.
var pragmaAtLeast08Re = regexp.MustCompile(`pragma\s+solidity\s*[\^>=]*\s*0\.(8|9)`)

// ContractSourceProvider resolves verified source and bytecode for an
// address, performing EIP-1967 proxy resolution first.
type ContractSourceProvider interface {
	ResolveImplementation(ctx context.Context, chain model.Chain, address string) (string, error)
	FetchSourceCode(ctx context.Context, chain model.Chain, address string) (*chainadapter.SourceCode, error)
	GetCode(ctx context.Context, chain model.Chain, address string) ([]byte, error)
}

// AISummarizer produces a natural-language summary of risky source, routed
// through the Gateway like any other provider call (spec.md §9). Keyed by
// plain strings rather than RiskTier so implementations don't need to
// depend on this package.
type AISummarizer interface {
	Summarize(ctx context.Context, source string, matches map[string][]string) (string, error)
}

// AnalyzeContract resolves the analyzed address (following an EIP-1967 proxy
// if present), then classifies it per spec.md §4.6 steps 1-4.
func AnalyzeContract(ctx context.Context, chain model.Chain, address string, provider ContractSourceProvider, ai AISummarizer) model.ContractFinding {
	analyzed := address
	if impl, err := provider.ResolveImplementation(ctx, chain, address); err == nil && impl != "" {
		analyzed = impl
	}

	finding := model.ContractFinding{
		Address:     strings.ToLower(address),
		Fingerprint: strings.ToLower(address),
	}

	src, err := provider.FetchSourceCode(ctx, chain, analyzed)
	if err == nil && src != nil && src.SourceCode != "" {
		finding.Verified = true
		finding.Label = src.ContractName
		analyzeVerifiedSource(ctx, src.SourceCode, &finding, ai)
		return finding
	}

	code, err := provider.GetCode(ctx, chain, analyzed)
	if err != nil || len(code) == 0 {
		return finding // "no bytecode" — unverified, no risks (spec.md §8 boundary)
	}
	analyzeBytecode(code, &finding)
	return finding
}

func analyzeVerifiedSource(ctx context.Context, source string, finding *model.ContractFinding, ai AISummarizer) {
	matches := MatchSourceKeywords(source)
	for _, words := range matches {
		finding.RiskKeywords = append(finding.RiskKeywords, words...)
	}
	finding.HighestTier = highestTier(matches)

	finding.HiddenApprove = hiddenApproveNearby(source)
	finding.HardcodedBlock = hardcodedBlockRe.MatchString(source)
	finding.ObfuscatedEncoding = obfuscatedEncodingRe.MatchString(source)
	finding.UnnecessarySafeMath = safeMathRe.MatchString(source) && pragmaAtLeast08Re.MatchString(source)

	shouldSummarize := len(matches[TierHigh]) > 0 || len(matches[TierMedium]) > 0 || finding.HiddenApprove
	if shouldSummarize && ai != nil {
		strMatches := map[string][]string{
			string(TierHigh):   matches[TierHigh],
			string(TierMedium): matches[TierMedium],
			string(TierLow):    matches[TierLow],
		}
		if summary, err := ai.Summarize(ctx, source, strMatches); err == nil {
			finding.AISummary = summary
		}
	}
}

// hiddenApproveNearby looks for "approve(" within ~500 chars after a declared
// override of a transfer hook (spec.md §4.6, "Hidden approve").
func hiddenApproveNearby(source string) bool {
	loc := hiddenApproveOverrideRe.FindStringIndex(source)
	if loc == nil {
		return false
	}
	window := loc[1] + 500
	if window > len(source) {
		window = len(source)
	}
	return strings.Contains(source[loc[1]:window], "approve(")
}

func analyzeBytecode(code []byte, finding *model.ContractFinding) {
	matches := MatchBytecodeSelectors(code)
	for _, names := range matches {
		finding.RiskKeywords = append(finding.RiskKeywords, names...)
	}
	finding.HighestTier = highestTier(matches)
}

// BucketContracts sorts findings into the three report buckets spec.md §4.6
// names.
func BucketContracts(findings []model.ContractFinding) model.ContractReport {
	var report model.ContractReport
	for _, f := range findings {
		switch {
		case !f.Verified && f.HighestTier == string(TierHigh):
			report.UnverifiedWithRisks = append(report.UnverifiedWithRisks, f)
		case !f.Verified:
			report.UnverifiedContracts = append(report.UnverifiedContracts, f)
		case f.Verified && f.HighestTier != "":
			report.VerifiedContractsWithRisks = append(report.VerifiedContractsWithRisks, f)
		}
	}
	return report
}
