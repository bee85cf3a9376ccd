package model

import "time"

// ContractAnalysis is the 24-hour cache of a single contract's analysis
// payload, keyed by (address, chain), used by the on-demand contract
// analysis path independent of any one wallet's report.
type ContractAnalysis struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	ContractAddress string   `bson:"contract_address" json:"contractAddress"`
	Chain          Chain     `bson:"chain" json:"chain"`
	Finding        ContractFinding `bson:"finding" json:"finding"`
	LastAnalyzedAt time.Time `bson:"last_analyzed_at" json:"lastAnalyzedAt"`
}

// Fresh reports whether this cache entry is still within the 24-hour window.
func (c *ContractAnalysis) Fresh(now time.Time) bool {
	return now.Sub(c.LastAnalyzedAt) < 24*time.Hour
}

// GuestScanCache is the 12-hour freshness cache of a full guest scan result,
// keyed by wallet address alone (no user association).
type GuestScanCache struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	WalletAddress string    `bson:"wallet_address" json:"walletAddress"`
	Result        Report    `bson:"result" json:"result"`
	LastScannedAt time.Time `bson:"last_scanned_at" json:"lastScannedAt"`
}

// Fresh reports whether this guest scan is still within the 12-hour window.
func (g *GuestScanCache) Fresh(now time.Time) bool {
	return now.Sub(g.LastScannedAt) < 12*time.Hour
}

// AddressLabel is an insert-only, first-resolution-wins human-readable name
// for an address on a given chain.
type AddressLabel struct {
	ID      string `bson:"_id,omitempty" json:"id"`
	Address string `bson:"address" json:"address"`
	Chain   Chain  `bson:"chain" json:"chain"`
	Label   string `bson:"label" json:"label"`
	Source  string `bson:"source" json:"source"` // onchain_name|explorer_source
}

// TelegramLinkToken binds a user account to a Telegram chat id. It
// auto-expires 10 minutes after creation.
type TelegramLinkToken struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"userId"`
	Token     string    `bson:"token" json:"token"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	ConsumedAt *time.Time `bson:"consumed_at,omitempty" json:"consumedAt,omitempty"`
}

// Expired reports whether the token is past its 10-minute lifetime.
func (t *TelegramLinkToken) Expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) > 10*time.Minute
}
