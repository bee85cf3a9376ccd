package model

import "time"

// RequestStatus is the lifecycle state of an ApiRequest.
type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestProcessing RequestStatus = "processing"
	RequestCompleted  RequestStatus = "completed"
	RequestFailed     RequestStatus = "failed"
)

// Provider names a rate-limit bucket and endpoint adapter. Each provider gets
// its own per-second/per-minute/per-day windows (spec.md §4.1, §6).
type Provider string

const (
	ProviderEtherscan Provider = "etherscan"
	ProviderAI        Provider = "ai"
)

// ApiRequest is one queued outbound call to a blockchain explorer or the AI
// provider, persisted so the gateway driver can claim it atomically and so a
// crashed gateway leaves a recoverable trail (spec.md §3, §9).
type ApiRequest struct {
	ID           string        `bson:"_id,omitempty" json:"id"`
	Provider     Provider      `bson:"provider" json:"provider"`
	RequestData  string        `bson:"request_data" json:"requestData"` // json-iterator encoded, provider-specific and opaque to the queue
	Status       RequestStatus `bson:"status" json:"status"`
	Attempts     int           `bson:"attempts" json:"attempts"`
	ProcessingID string        `bson:"processing_id,omitempty" json:"processingId,omitempty"`
	ClaimedAt    *time.Time    `bson:"claimed_at,omitempty" json:"claimedAt,omitempty"` // set by ClaimNext, the reaper's lease clock
	RetryAt      *time.Time    `bson:"retry_at,omitempty" json:"retryAt,omitempty"`
	Result       string        `bson:"result,omitempty" json:"result,omitempty"`
	Error        string        `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt    time.Time     `bson:"created_at" json:"createdAt"`
	CompletedAt  *time.Time    `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
}
