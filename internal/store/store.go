// Package store defines the persistence contracts the pipeline depends on
// and a MongoDB-backed implementation. Every claim operation (AnalysisJob,
// ApiRequest) is expressed as a single atomic find-and-modify, per spec.md
// §9: "Do not emulate with read-then-write; it violates the exactly-once-
// claim invariant."
package store

import (
	"context"
	"time"

	"github.com/chainsentinel/sentinel/internal/model"
)

// WalletStore persists Wallet documents and their embedded cache/state.
type WalletStore interface {
	Get(ctx context.Context, id string) (*model.Wallet, error)
	List(ctx context.Context) ([]*model.Wallet, error)
	Create(ctx context.Context, w *model.Wallet) error
	Delete(ctx context.Context, id string) error

	// AppendTransactions appends rows to a stream and advances its watermark
	// iff newWatermark > the stored one, atomically with the append.
	AppendTransactions(ctx context.Context, walletID string, stream model.Stream, rows []model.Transaction, newWatermark uint64) error
	SetLastScanAt(ctx context.Context, walletID string, at time.Time) error

	// UpdateAnalysisState overwrites one fingerprint slot (approvals or
	// interacted_contracts). Only the analyzer that owns a slot ever writes
	// it, so this needs no compare-and-set (spec.md §5).
	UpdateAnalysisState(ctx context.Context, walletID string, approvals *[]string, interactedContracts *[]string) error
}

// JobStore persists AnalysisJob documents with atomic claim semantics.
type JobStore interface {
	Enqueue(ctx context.Context, job *model.AnalysisJob) error
	// ClaimNext atomically claims the oldest pending job of the given type:
	// FIND pending ORDER BY created_at ASC, SET status=processing,
	// processed_at=now. Returns nil, nil if none is pending.
	ClaimNext(ctx context.Context, taskType model.TaskType) (*model.AnalysisJob, error)
	Complete(ctx context.Context, jobID string) error
	Fail(ctx context.Context, jobID string, reason string) error
	CountByStatus(ctx context.Context, taskType model.TaskType) (map[model.JobStatus]int, error)
	CompletedSince(ctx context.Context, taskType model.TaskType, since time.Time) (int, error)
}

// RequestStore persists ApiRequest documents for the gateway.
type RequestStore interface {
	Create(ctx context.Context, r *model.ApiRequest) error
	Get(ctx context.Context, id string) (*model.ApiRequest, error)
	// ClaimNext atomically claims the oldest eligible pending request for a
	// provider: status=pending AND (retry_at IS NULL OR retry_at<=now), sets
	// status=processing, processing_id=processingID, attempts+=1.
	ClaimNext(ctx context.Context, provider model.Provider, processingID string, now time.Time) (*model.ApiRequest, error)
	Complete(ctx context.Context, id string, result string, completedAt time.Time) error
	Fail(ctx context.Context, id string, errMsg string, maxAttempts int, completedAt time.Time) error
	RetryLater(ctx context.Context, id string, errMsg string, retryAt time.Time) error
	CountCompletedSince(ctx context.Context, provider model.Provider, since time.Time) (int, error)
	CountByStatus(ctx context.Context, provider model.Provider) (map[model.RequestStatus]int, error)
	// ReapStale returns processing requests whose claimed_at is at or before
	// the lease cutoff back to pending, or marks them failed once attempts
	// has reached maxAttempts (spec.md §9 open question).
	ReapStale(ctx context.Context, leaseCutoff time.Time, maxAttempts int) (int, error)
}

// ReportStore persists the latest Report per wallet.
type ReportStore interface {
	Get(ctx context.Context, walletID string) (*model.Report, error)
	// UpsertSection $sets exactly details.<section>, never the surrounding
	// document, and returns the resulting full report so callers (e.g. the
	// activity worker) can see whatever partial state other analyzers have
	// already written. value is stored verbatim at that slot.
	UpsertSection(ctx context.Context, walletID string, section model.Section, value interface{}) (*model.Report, error)
	SetScore(ctx context.Context, walletID string, score int, summary string) error
}

// ContractStore persists the 24-hour ContractAnalysis cache.
type ContractStore interface {
	Get(ctx context.Context, address string, chain model.Chain) (*model.ContractAnalysis, error)
	Upsert(ctx context.Context, entry *model.ContractAnalysis) error
}

// GuestScanStore persists the 12-hour GuestScanCache.
type GuestScanStore interface {
	Get(ctx context.Context, address string) (*model.GuestScanCache, error)
	Upsert(ctx context.Context, entry *model.GuestScanCache) error
}

// LabelStore persists insert-only AddressLabel rows.
type LabelStore interface {
	Get(ctx context.Context, address string, chain model.Chain) (*model.AddressLabel, error)
	// Insert ignores unique-constraint collisions (first writer wins),
	// matching spec.md §4.8's "best effort" persistence.
	Insert(ctx context.Context, l *model.AddressLabel) error
}

// TelegramTokenStore persists short-lived link tokens.
type TelegramTokenStore interface {
	Create(ctx context.Context, t *model.TelegramLinkToken) error
	Consume(ctx context.Context, token string, now time.Time) (*model.TelegramLinkToken, error)
}

// Store aggregates every persistence contract the pipeline needs.
type Store interface {
	Wallets() WalletStore
	Jobs() JobStore
	Requests() RequestStore
	Reports() ReportStore
	Contracts() ContractStore
	GuestScans() GuestScanStore
	Labels() LabelStore
	TelegramTokens() TelegramTokenStore
	Close(ctx context.Context) error
}
