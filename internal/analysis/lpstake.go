package analysis

import (
	"strings"

	"github.com/chainsentinel/sentinel/internal/chainadapter"
	"github.com/chainsentinel/sentinel/internal/model"
)

// FindLPStakePositions scans wallet-originated transactions for calls that
// parse against the add-liquidity/stake/deposit signature set and returns
// the distinct destination contracts as potential forgotten positions
// (spec.md §4.7).
func FindLPStakePositions(wallet string, txs []model.Transaction) []model.LPStakePosition {
	wallet = strings.ToLower(wallet)
	seen := map[string]model.LPStakePosition{}

	for _, tx := range txs {
		if !strings.EqualFold(tx.From, wallet) {
			continue
		}
		parsed, ok := chainadapter.ParseInput(tx.Input, chainadapter.LPStakeSignatures)
		if !ok {
			continue
		}
		contract := strings.ToLower(tx.To)
		if _, exists := seen[contract]; exists {
			continue
		}
		seen[contract] = model.LPStakePosition{Contract: contract, Kind: positionKind(parsed.Name)}
	}

	out := make([]model.LPStakePosition, 0, len(seen))
	for _, p := range seen {
		out = append(out, p)
	}
	return out
}

func positionKind(fn string) string {
	switch {
	case strings.HasPrefix(fn, "addLiquidity"):
		return "add_liquidity"
	case fn == "stake":
		return "stake"
	case fn == "deposit":
		return "deposit"
	default:
		return fn
	}
}
