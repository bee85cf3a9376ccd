package model

import "time"

// ApprovalSeverity ranks an approval finding for the stateful notifier's
// threshold check and for display.
type ApprovalSeverity string

const (
	SeverityInfo     ApprovalSeverity = "informational"
	SeverityLow      ApprovalSeverity = "low"
	SeverityMedium   ApprovalSeverity = "medium"
	SeverityHigh     ApprovalSeverity = "high"
	SeverityCritical ApprovalSeverity = "critical"
)

// ApprovalKind distinguishes the wire shape a standing approval came from.
type ApprovalKind string

const (
	ApprovalERC20        ApprovalKind = "erc20"
	ApprovalNFT          ApprovalKind = "nft_operator"
	ApprovalPermit2612   ApprovalKind = "eip2612_permit"
	ApprovalPermit2      ApprovalKind = "permit2"
)

// ApprovalFinding is one surviving approval intent, confirmed on-chain.
type ApprovalFinding struct {
	Kind          ApprovalKind     `bson:"kind" json:"kind"`
	Token         string           `bson:"token" json:"token"`
	TokenLabel    string           `bson:"token_label,omitempty" json:"tokenLabel,omitempty"`
	Spender       string           `bson:"spender" json:"spender"`
	SpenderLabel  string           `bson:"spender_label,omitempty" json:"spenderLabel,omitempty"`
	Amount        string           `bson:"amount,omitempty" json:"amount,omitempty"`
	IsUnlimited   bool             `bson:"is_unlimited" json:"isUnlimited"`
	Deadline      *time.Time       `bson:"deadline,omitempty" json:"deadline,omitempty"`
	LongLived     bool             `bson:"long_lived,omitempty" json:"longLived,omitempty"`
	Severity      ApprovalSeverity `bson:"severity" json:"severity"`
	RevokeCalldata string          `bson:"revoke_calldata,omitempty" json:"revokeCalldata,omitempty"`
	Fingerprint   string           `bson:"fingerprint" json:"fingerprint"`
}

// ContractFinding is one analyzed contract, placed in one of the three
// buckets the contract analyzer sorts interacted contracts into.
type ContractFinding struct {
	Address     string   `bson:"address" json:"address"`
	Label       string   `bson:"label,omitempty" json:"label,omitempty"`
	Verified    bool     `bson:"verified" json:"verified"`
	RiskKeywords []string `bson:"risk_keywords,omitempty" json:"riskKeywords,omitempty"`
	HighestTier string   `bson:"highest_tier,omitempty" json:"highestTier,omitempty"` // high|medium|low
	HiddenApprove bool   `bson:"hidden_approve,omitempty" json:"hiddenApprove,omitempty"`
	HardcodedBlock bool  `bson:"hardcoded_block,omitempty" json:"hardcodedBlock,omitempty"`
	ObfuscatedEncoding bool `bson:"obfuscated_encoding,omitempty" json:"obfuscatedEncoding,omitempty"`
	UnnecessarySafeMath bool `bson:"unnecessary_safemath,omitempty" json:"unnecessarySafeMath,omitempty"`
	AISummary   string   `bson:"ai_summary,omitempty" json:"aiSummary,omitempty"`
	Fingerprint string   `bson:"fingerprint" json:"fingerprint"`
}

// ContractReport is the §4.6 output: contracts bucketed by verification
// state and risk.
type ContractReport struct {
	UnverifiedContracts        []ContractFinding `bson:"unverified_contracts" json:"unverifiedContracts"`
	UnverifiedWithRisks        []ContractFinding `bson:"unverified_with_risks" json:"unverifiedWithRisks"`
	VerifiedContractsWithRisks []ContractFinding `bson:"verified_contracts_with_risks" json:"verifiedContractsWithRisks"`
}

// LPStakePosition is one potential forgotten liquidity/staking position.
type LPStakePosition struct {
	Contract string `bson:"contract" json:"contract"`
	Label    string `bson:"label,omitempty" json:"label,omitempty"`
	Kind     string `bson:"kind" json:"kind"` // add_liquidity|stake|deposit
}

// ActivityMetrics summarizes wallet age and usage for the risk scorer.
type ActivityMetrics struct {
	TransactionCount         int        `bson:"transaction_count" json:"transactionCount"`
	FirstTxAt                *time.Time `bson:"first_tx_at,omitempty" json:"firstTxAt,omitempty"`
	LastTxAt                 *time.Time `bson:"last_tx_at,omitempty" json:"lastTxAt,omitempty"`
	WalletAgeDays            int        `bson:"wallet_age_days" json:"walletAgeDays"`
	UniqueInteractedAddresses int       `bson:"unique_interacted_addresses" json:"uniqueInteractedAddresses"`
}

// Section names the details.<section> slot a ReportStore.UpsertSection call
// targets. These match ReportDetails' bson tags exactly, so the store can
// $set "details."+Section without ever touching a sibling slot.
type Section string

const (
	SectionApprovals Section = "approvals"
	SectionContracts Section = "contracts"
	SectionLPStake   Section = "lp_stake"
	SectionActivity  Section = "activity"
)

// ReportDetails is the `details.<section>` slot structure each analysis
// worker writes into independently (spec.md §3, §4.7).
type ReportDetails struct {
	Approvals []ApprovalFinding  `bson:"approvals,omitempty" json:"approvals,omitempty"`
	Contracts *ContractReport    `bson:"contracts,omitempty" json:"contracts,omitempty"`
	LPStake   []LPStakePosition  `bson:"lp_stake,omitempty" json:"lpStake,omitempty"`
	Activity  *ActivityMetrics   `bson:"activity,omitempty" json:"activity,omitempty"`
	Errors    map[string]string  `bson:"errors,omitempty" json:"errors,omitempty"` // per-section error text (spec.md §7 propagation rule)
}

// Report is the latest per-wallet analysis result.
type Report struct {
	ID        string        `bson:"_id,omitempty" json:"id"`
	WalletID  string        `bson:"wallet_id" json:"walletId"`
	RiskScore int           `bson:"risk_score" json:"riskScore"`
	Summary   string        `bson:"summary,omitempty" json:"summary,omitempty"`
	Details   ReportDetails `bson:"details" json:"details"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updatedAt"`
}
