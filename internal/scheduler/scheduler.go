// Package scheduler implements the periodic full_scan enqueuer of spec.md
// §2/§4.3: on SCAN_INTERVAL_HOURS, every registered wallet gets a fresh
// full_scan job.
package scheduler

import (
	"context"
	"time"

	"github.com/chainsentinel/sentinel/internal/jobs"
	"github.com/chainsentinel/sentinel/internal/store"
	"github.com/ethereum/go-ethereum/log"
)

type Scheduler struct {
	wallets  store.WalletStore
	queue    *jobs.Queue
	interval time.Duration
}

func New(wallets store.WalletStore, queue *jobs.Queue, interval time.Duration) *Scheduler {
	return &Scheduler{wallets: wallets, queue: queue, interval: interval}
}

// Run blocks, enqueueing a full_scan for every wallet on each tick, until
// ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	interval := s.interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	wallets, err := s.wallets.List(ctx)
	if err != nil {
		log.Warn("scheduler: failed to list wallets", "err", err)
		return
	}
	for _, w := range wallets {
		if err := s.queue.EnqueueFullScan(ctx, w.ID); err != nil {
			log.Warn("scheduler: failed to enqueue full_scan", "wallet", w.ID, "err", err)
		}
	}
}
