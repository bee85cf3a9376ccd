package gateway

import (
	"context"
	"time"

	"github.com/chainsentinel/sentinel/internal/config"
	"github.com/chainsentinel/sentinel/internal/store"
	"github.com/ethereum/go-ethereum/log"
)

// Reaper rescues ApiRequest rows left in processing by a crashed Gateway
// instance. The source never did this (spec.md §9 open question); this is
// the implementer's fix, run on its own slow tick alongside the driver.
type Reaper struct {
	requests    store.RequestStore
	lease       time.Duration
	maxAttempts int
}

func NewReaper(requests store.RequestStore, cfg *config.Config) *Reaper {
	return &Reaper{
		requests:    requests,
		lease:       cfg.GatewayLeaseTimeout,
		maxAttempts: cfg.MaxAttempts,
	}
}

// Run sweeps stale processing requests every interval until ctx is done.
func (r *Reaper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-r.lease)
	n, err := r.requests.ReapStale(ctx, cutoff, r.maxAttempts)
	if err != nil {
		log.Warn("gateway reaper: sweep failed", "err", err)
		return
	}
	if n > 0 {
		log.Info("gateway reaper: rescued stale requests", "count", n)
		reaped.Add(float64(n))
	}
}
