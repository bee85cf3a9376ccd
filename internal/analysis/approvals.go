package analysis

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/chainsentinel/sentinel/internal/chainadapter"
	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/ethereum/go-ethereum/common"
)

// maxUint256 is 2**256-1, the sentinel value for an "unlimited" ERC-20
// approval.
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// OnChainReader is the subset of chainadapter.Adapter the approval analyzer
// needs for on-chain confirmation reads.
type OnChainReader interface {
	Allowance(ctx context.Context, chain model.Chain, token, owner, spender string) *big.Int
	IsApprovedForAll(ctx context.Context, chain model.Chain, token, owner, operator string) (bool, error)
	RevokeCalldataERC20(spender string) string
	RevokeCalldataNFT(operator string) string
}

// approvalIntent is the last-writer-wins reconstructed intent for one
// (token, counterparty) pair before on-chain confirmation.
type approvalIntent struct {
	kind     model.ApprovalKind
	token    string
	spender  string
	amount   *big.Int
	approved bool // for setApprovalForAll
	deadline *time.Time
}

// ReconstructApprovalIntents scans wallet-originated transactions against
// the fixed approval function-signature set and reduces them to the latest
// intent per (token, spender) pair by last-writer-wins, per spec.md §4.5.
// Last-writer-wins is defined over ascending block number, so txs is sorted
// here rather than trusted to already be chronological: the initial scan
// fetches newest-first (fetchtransactions.go's Descending plan) and is
// appended to the cache in that same order, so callers only ever hand this
// function cache order, not chronological order.
func ReconstructApprovalIntents(wallet string, txs []model.Transaction) map[string]*approvalIntent {
	wallet = strings.ToLower(wallet)
	intents := map[string]*approvalIntent{}

	sorted := make([]model.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].BlockNumber < sorted[j].BlockNumber })

	for _, tx := range sorted {
		if !strings.EqualFold(tx.From, wallet) {
			continue
		}
		parsed, ok := chainadapter.ParseInput(tx.Input, chainadapter.ApprovalSignatures)
		if !ok {
			continue
		}
		token := strings.ToLower(tx.To)

		switch parsed.Name {
		case "approve":
			spender, amount := addrArg(parsed.Args, 0), bigArg(parsed.Args, 1)
			key := intentKey(model.ApprovalERC20, token, spender)
			intents[key] = &approvalIntent{kind: model.ApprovalERC20, token: token, spender: spender, amount: amount}

		case "setApprovalForAll":
			operator := addrArg(parsed.Args, 0)
			approved, _ := parsed.Args[1].(bool)
			key := intentKey(model.ApprovalNFT, token, operator)
			if !approved {
				delete(intents, key)
				continue
			}
			intents[key] = &approvalIntent{kind: model.ApprovalNFT, token: token, spender: operator, approved: true}

		case "permit":
			spender, amount := addrArg(parsed.Args, 1), bigArg(parsed.Args, 2)
			deadline := unixArg(parsed.Args, 3)
			key := intentKey(model.ApprovalPermit2612, token, spender)
			intents[key] = &approvalIntent{kind: model.ApprovalPermit2612, token: token, spender: spender, amount: amount, deadline: &deadline}

		case "permitTransferFrom", "permitWitnessTransferFrom":
			spender := addrArg(parsed.Args, 2)
			key := intentKey(model.ApprovalPermit2, token, spender)
			intents[key] = &approvalIntent{kind: model.ApprovalPermit2, token: token, spender: spender}
		}
	}
	return intents
}

// ConfirmApprovals performs the on-chain confirmation read spec.md §4.5
// requires for every surviving intent and returns the findings that should
// be reported. Confirmation failures are absorbed (spec.md §7 OnChainRead)
// by simply omitting the finding rather than erroring.
func ConfirmApprovals(ctx context.Context, chain model.Chain, wallet string, intents map[string]*approvalIntent, reader OnChainReader, now time.Time) []model.ApprovalFinding {
	var out []model.ApprovalFinding

	for _, intent := range intents {
		switch intent.kind {
		case model.ApprovalERC20:
			allowance := reader.Allowance(ctx, chain, intent.token, wallet, intent.spender)
			if allowance == nil || allowance.Sign() <= 0 {
				continue
			}
			unlimited := allowance.Cmp(maxUint256) == 0
			sev := model.SeverityMedium
			if unlimited {
				sev = model.SeverityHigh
			}
			out = append(out, model.ApprovalFinding{
				Kind: model.ApprovalERC20, Token: intent.token, Spender: intent.spender,
				Amount: allowance.String(), IsUnlimited: unlimited, Severity: sev,
				RevokeCalldata: reader.RevokeCalldataERC20(intent.spender),
				Fingerprint:    fmt.Sprintf("erc20-%s-%s", intent.token, intent.spender),
			})

		case model.ApprovalNFT:
			approved, err := reader.IsApprovedForAll(ctx, chain, intent.token, wallet, intent.spender)
			if err != nil || !approved {
				continue
			}
			out = append(out, model.ApprovalFinding{
				Kind: model.ApprovalNFT, Token: intent.token, Spender: intent.spender,
				IsUnlimited: true, Severity: model.SeverityHigh,
				RevokeCalldata: reader.RevokeCalldataNFT(intent.spender),
				Fingerprint:    fmt.Sprintf("nft-%s-%s", intent.token, intent.spender),
			})

		case model.ApprovalPermit2612:
			longLived := intent.deadline != nil && intent.deadline.After(now.AddDate(1, 0, 0))
			sev := model.SeverityLow
			if longLived {
				sev = model.SeverityMedium
			}
			var amt string
			if intent.amount != nil {
				amt = intent.amount.String()
			}
			out = append(out, model.ApprovalFinding{
				Kind: model.ApprovalPermit2612, Token: intent.token, Spender: intent.spender,
				Amount: amt, LongLived: longLived, Severity: sev, Deadline: intent.deadline,
				Fingerprint: fmt.Sprintf("permit2612-%s-%s", intent.token, intent.spender),
			})

		case model.ApprovalPermit2:
			out = append(out, model.ApprovalFinding{
				Kind: model.ApprovalPermit2, Token: intent.token, Spender: intent.spender,
				Severity:    model.SeverityInfo,
				Fingerprint: fmt.Sprintf("permit2-%s-%s", intent.token, intent.spender),
			})
		}
	}
	return out
}

func intentKey(kind model.ApprovalKind, token, spender string) string {
	return string(kind) + "|" + token + "|" + spender
}

func addrArg(args []any, i int) string {
	if i >= len(args) {
		return ""
	}
	addr, ok := args[i].(common.Address)
	if !ok {
		return ""
	}
	return strings.ToLower(addr.Hex())
}

func bigArg(args []any, i int) *big.Int {
	if i >= len(args) {
		return big.NewInt(0)
	}
	n, ok := args[i].(*big.Int)
	if !ok {
		return big.NewInt(0)
	}
	return n
}

func unixArg(args []any, i int) time.Time {
	n := bigArg(args, i)
	return time.Unix(n.Int64(), 0).UTC()
}
