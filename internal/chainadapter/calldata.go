package chainadapter

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signature describes one entry in the function-signature set transaction
// input bytes are parsed against (spec.md §4.2, §4.5, §4.7).
type Signature struct {
	Name string
	// Args lists each parameter's Solidity type, used only to build the
	// 4-byte selector and to decode the argument list generically.
	Args []string
}

func (s Signature) canonical() string {
	return s.Name + "(" + strings.Join(s.Args, ",") + ")"
}

// Selector returns the 4-byte function selector for this signature.
func (s Signature) Selector() [4]byte {
	var sel [4]byte
	copy(sel[:], crypto.Keccak256([]byte(s.canonical()))[:4])
	return sel
}

// ParsedCall is a successfully decoded call against one Signature.
type ParsedCall struct {
	Name string
	Args []any
}

// ParseInput decodes input (hex string, with or without 0x prefix) against
// the given signature set, returning the first match. On-chain ABI decode
// failures or an unrecognized selector both yield (nil, false) rather than
// an error, per spec.md §4.2's "absorbed as unknown" rule.
func ParseInput(input string, sigs []Signature) (*ParsedCall, bool) {
	raw := strings.TrimPrefix(input, "0x")
	data, err := hex.DecodeString(raw)
	if err != nil || len(data) < 4 {
		return nil, false
	}

	var selector [4]byte
	copy(selector[:], data[:4])

	for _, sig := range sigs {
		if sig.Selector() != selector {
			continue
		}
		args, ok := decodeArgs(sig, data[4:])
		if !ok {
			return nil, false
		}
		return &ParsedCall{Name: sig.Name, Args: args}, true
	}
	return nil, false
}

func decodeArgs(sig Signature, payload []byte) ([]any, bool) {
	var fields abi.Arguments
	for i, t := range sig.Args {
		typ, err := abi.NewType(t, "", nil)
		if err != nil {
			return nil, false
		}
		fields = append(fields, abi.Argument{Name: argName(i), Type: typ})
	}
	values, err := fields.Unpack(payload)
	if err != nil {
		return nil, false
	}
	return values, true
}

func argName(i int) string {
	return "arg" + string(rune('0'+i))
}

// ApprovalSignatures is the fixed set spec.md §4.5 parses approval intents
// against.
var ApprovalSignatures = []Signature{
	{Name: "approve", Args: []string{"address", "uint256"}},
	{Name: "setApprovalForAll", Args: []string{"address", "bool"}},
	{Name: "permit", Args: []string{"address", "address", "uint256", "uint256", "uint8", "bytes32", "bytes32"}},
	{Name: "permitTransferFrom", Args: []string{"address", "uint256", "address", "uint256"}},
	{Name: "permitWitnessTransferFrom", Args: []string{"address", "uint256", "address", "uint256", "bytes32"}},
}

// LPStakeSignatures is the fixed set spec.md §4.7 parses LP/stake intents
// against.
var LPStakeSignatures = []Signature{
	{Name: "addLiquidity", Args: []string{"address", "address", "uint256", "uint256", "uint256", "uint256", "address", "uint256"}},
	{Name: "addLiquidityETH", Args: []string{"address", "uint256", "uint256", "uint256", "address", "uint256"}},
	{Name: "stake", Args: []string{"uint256"}},
	{Name: "deposit", Args: []string{"uint256"}},
	{Name: "deposit", Args: []string{"uint256", "address"}},
}
