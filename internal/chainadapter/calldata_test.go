package chainadapter

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func encodeCall(t *testing.T, sig Signature, args ...any) string {
	t.Helper()
	var fields abi.Arguments
	for i, ty := range sig.Args {
		typ, err := abi.NewType(ty, "", nil)
		require.NoError(t, err)
		fields = append(fields, abi.Argument{Name: argName(i), Type: typ})
	}
	packed, err := fields.Pack(args...)
	require.NoError(t, err)
	sel := sig.Selector()
	return "0x" + hex.EncodeToString(append(sel[:], packed...))
}

func TestParseInputApprove(t *testing.T) {
	sig := ApprovalSignatures[0]
	spender := common.HexToAddress("0x00000000000000000000000000000000000001")
	amount := new(big.Int).SetInt64(1000)
	input := encodeCall(t, sig, spender, amount)

	parsed, ok := ParseInput(input, ApprovalSignatures)
	require.True(t, ok)
	require.Equal(t, "approve", parsed.Name)
	require.Equal(t, spender, parsed.Args[0])
	require.Equal(t, amount, parsed.Args[1])
}

func TestParseInputUnknownSelector(t *testing.T) {
	_, ok := ParseInput("0xdeadbeef", ApprovalSignatures)
	require.False(t, ok)
}

func TestParseInputTooShort(t *testing.T) {
	_, ok := ParseInput("0x1234", ApprovalSignatures)
	require.False(t, ok)
}
