package gateway

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/chainsentinel/sentinel/internal/apperr"
	"github.com/chainsentinel/sentinel/internal/config"
	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const maxAttempts = 3

// dispatcher performs the actual provider call for one ApiRequest.
type dispatcher interface {
	Call(ctx context.Context, requestData string) (string, error)
}

// Driver is the single reentrancy-guarded loop described in spec.md §4.1: it
// ticks at ~5 Hz, and for every configured provider checks rate windows,
// atomically claims one eligible request, dispatches it, and finalizes the
// outcome.
type Driver struct {
	gw       *Gateway
	cfg      *config.Config
	windows  *windowChecker
	adapters map[model.Provider]dispatcher
	// localLimiters is a fast in-process per-second admission check layered
	// ahead of the authoritative database window count, so a saturated
	// provider doesn't pay a query on every tick.
	localLimiters map[model.Provider]*rate.Limiter

	instanceID string
	ticking    atomic.Bool
}

func NewDriver(gw *Gateway, cfg *config.Config, etherscan, ai dispatcher) *Driver {
	localLimiters := map[model.Provider]*rate.Limiter{
		model.ProviderEtherscan: rate.NewLimiter(rate.Limit(cfg.EtherscanRateLimit.PerSecond), cfg.EtherscanRateLimit.PerSecond),
		model.ProviderAI:        rate.NewLimiter(rate.Limit(cfg.AIRateLimit.PerSecond), cfg.AIRateLimit.PerSecond),
	}
	return &Driver{
		gw:      gw,
		cfg:     cfg,
		windows: newWindowChecker(gw.requests, cfg),
		adapters: map[model.Provider]dispatcher{
			model.ProviderEtherscan: etherscan,
			model.ProviderAI:        ai,
		},
		localLimiters: localLimiters,
		instanceID:    uuid.NewString(),
	}
}

// Run blocks, ticking the driver until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) {
	interval := d.cfg.GatewayTickInterval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

// tick is reentrancy-guarded: an overlapping slow iteration is skipped
// rather than allowed to double-dispatch (spec.md §4.1 concurrency note).
func (d *Driver) tick(ctx context.Context) {
	if !d.ticking.CompareAndSwap(false, true) {
		return
	}
	defer d.ticking.Store(false)

	for provider := range d.adapters {
		d.tickProvider(ctx, provider)
	}
}

func (d *Driver) tickProvider(ctx context.Context, provider model.Provider) {
	now := time.Now()

	if lim, ok := d.localLimiters[provider]; ok && !lim.Allow() {
		rateLimited.WithLabelValues(string(provider)).Inc()
		return
	}

	ok, err := d.windows.allow(ctx, provider, now)
	if err != nil {
		log.Warn("gateway: rate window check failed", "provider", provider, "err", err)
		return
	}
	if !ok {
		rateLimited.WithLabelValues(string(provider)).Inc()
		return
	}

	req, err := d.gw.requests.ClaimNext(ctx, provider, d.instanceID, now)
	if err != nil {
		log.Warn("gateway: claim failed", "provider", provider, "err", err)
		return
	}
	if req == nil {
		return
	}

	d.dispatch(ctx, req)
}

func (d *Driver) dispatch(ctx context.Context, req *model.ApiRequest) {
	adapter := d.adapters[req.Provider]

	result, callErr := d.callWithTransportRetry(ctx, adapter, req.RequestData)
	now := time.Now()

	if callErr == nil {
		dispatched.WithLabelValues(string(req.Provider), "success").Inc()
		if err := d.gw.requests.Complete(ctx, req.ID, result, now); err != nil {
			log.Warn("gateway: failed to persist completion", "id", req.ID, "err", err)
		}
		d.gw.wake(req.ID, Result{Value: result})
		return
	}

	classified, _ := apperr.As(callErr)
	retryable := classified == nil || classified.Class.Retryable()

	if retryable && req.Attempts < maxAttempts {
		dispatched.WithLabelValues(string(req.Provider), "retry").Inc()
		backoffSeconds := math.Pow(2, float64(req.Attempts))
		retryAt := now.Add(time.Duration(backoffSeconds) * time.Second)
		if err := d.gw.requests.RetryLater(ctx, req.ID, callErr.Error(), retryAt); err != nil {
			log.Warn("gateway: failed to persist retry", "id", req.ID, "err", err)
		}
		return
	}

	dispatched.WithLabelValues(string(req.Provider), "failure").Inc()
	if err := d.gw.requests.Fail(ctx, req.ID, callErr.Error(), maxAttempts, now); err != nil {
		log.Warn("gateway: failed to persist failure", "id", req.ID, "err", err)
	}
	d.gw.wake(req.ID, Result{Err: callErr})
}

// callWithTransportRetry is the bounded transport-level retry distinct from
// the queue-level retry/backoff (spec.md §4.1 step 3): 2 attempts total,
// exponential backoff.
func (d *Driver) callWithTransportRetry(ctx context.Context, adapter dispatcher, requestData string) (string, error) {
	var result string
	op := func() error {
		var err error
		result, err = adapter.Call(ctx, requestData)
		if err == nil {
			return nil
		}
		if classified, ok := apperr.As(err); ok && !classified.Class.Retryable() {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 1)
	err := backoff.Retry(op, backoff.WithContext(bo, ctx))
	return result, err
}
