package analysis

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchSourceKeywordsCaseInsensitive(t *testing.T) {
	matches := MatchSourceKeywords("function kill() public { SELFDESTRUCT(owner); }")
	assert.Contains(t, matches[TierHigh], "selfdestruct")
}

func TestHighestTierPrefersHighOverMedium(t *testing.T) {
	matches := map[RiskTier][]string{TierHigh: {"selfdestruct"}, TierMedium: {"assembly"}}
	assert.Equal(t, string(TierHigh), highestTier(matches))
}

func TestHighestTierEmptyYieldsEmptyString(t *testing.T) {
	assert.Equal(t, "", highestTier(map[RiskTier][]string{}))
}

func TestMatchBytecodeSelectorsFindsUpgradeTo(t *testing.T) {
	code, err := hex.DecodeString("608060405234" + "3659cfe6" + "deadbeef")
	assert.NoError(t, err)
	matches := MatchBytecodeSelectors(code)
	assert.Contains(t, matches[TierHigh], "upgradeTo(address)")
}

func TestMatchBytecodeSelectorsEmptyBytecodeYieldsNoMatches(t *testing.T) {
	matches := MatchBytecodeSelectors(nil)
	assert.Empty(t, matches[TierHigh])
}
