package model

import "time"

// Chain is one of the supported EVM chain identifiers. Exact numeric values
// matter for wire compatibility with the explorer's chainid parameter.
type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainPolygon  Chain = "polygon"
	ChainArbitrum Chain = "arbitrum"
	ChainBase     Chain = "base"
	ChainZkSync   Chain = "zksync"
)

// ChainID returns the numeric chain identifier the explorer's chainid
// parameter expects. Exact values are fixed by spec.md §6.
func (c Chain) ChainID() int64 {
	switch c {
	case ChainEthereum:
		return 1
	case ChainPolygon:
		return 137
	case ChainArbitrum:
		return 42161
	case ChainBase:
		return 8453
	case ChainZkSync:
		return 324
	default:
		return 0
	}
}

// Stream is one of the three append-only transaction lists a Wallet caches.
type Stream string

const (
	StreamNormal       Stream = "normal"
	StreamTokenTransfer Stream = "token-transfer"
	StreamNFTTransfer  Stream = "nft-transfer"
)

// Transaction is a single cached row from one of the three streams. Fields
// are a superset of what normal/token/NFT transfer listings return; unused
// fields are left zero for a given stream.
type Transaction struct {
	Hash            string    `bson:"hash" json:"hash"`
	BlockNumber     uint64    `bson:"block_number" json:"blockNumber"`
	Timestamp       time.Time `bson:"timestamp" json:"timestamp"`
	From            string    `bson:"from" json:"from"`
	To              string    `bson:"to" json:"to"`
	Value           string    `bson:"value" json:"value"`
	Input           string    `bson:"input" json:"input"`
	TokenAddress    string    `bson:"token_address,omitempty" json:"tokenAddress,omitempty"`
	TokenID         string    `bson:"token_id,omitempty" json:"tokenId,omitempty"`
	ContractAddress string    `bson:"contract_address,omitempty" json:"contractAddress,omitempty"`
}

// TransactionCache is the per-wallet append-only cache described in spec.md
// §3, keyed by stream with a monotonic watermark per stream.
type TransactionCache struct {
	Normal        []Transaction        `bson:"normal" json:"normal"`
	TokenTransfer []Transaction        `bson:"token_transfer" json:"tokenTransfer"`
	NFTTransfer   []Transaction        `bson:"nft_transfer" json:"nftTransfer"`
	Watermark     map[Stream]uint64    `bson:"watermark" json:"watermark"`
}

// StreamTxs returns the cached list for a given stream.
func (c *TransactionCache) StreamTxs(s Stream) []Transaction {
	switch s {
	case StreamNormal:
		return c.Normal
	case StreamTokenTransfer:
		return c.TokenTransfer
	case StreamNFTTransfer:
		return c.NFTTransfer
	default:
		return nil
	}
}

// AnalysisState holds the two opaque fingerprint sets the stateful notifier
// diffs against on every analyzer run.
type AnalysisState struct {
	Approvals           []string `bson:"approvals" json:"approvals"`
	InteractedContracts []string `bson:"interacted_contracts" json:"interactedContracts"`
}

// Wallet is a registered (user, address, chain) triple under continuous
// analysis.
type Wallet struct {
	ID               string            `bson:"_id,omitempty" json:"id"`
	UserID           string            `bson:"user_id" json:"userId"`
	Address          string            `bson:"address" json:"address"`
	Chain            Chain             `bson:"chain" json:"chain"`
	Label            string            `bson:"label,omitempty" json:"label,omitempty"`
	TransactionCache TransactionCache  `bson:"transaction_cache" json:"transactionCache"`
	LastAnalysisState AnalysisState    `bson:"last_analysis_state" json:"lastAnalysisState"`
	LastScanAt       *time.Time        `bson:"last_scan_at,omitempty" json:"lastScanAt,omitempty"`
	CreatedAt        time.Time         `bson:"created_at" json:"createdAt"`
}
