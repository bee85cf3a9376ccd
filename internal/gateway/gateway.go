// Package gateway is the singleton, rate-limited outbound request funnel
// described in spec.md §4.1: every blockchain-explorer and AI call in the
// pipeline is submitted here, persisted, and retried under a per-provider
// three-window rate limit, instead of being dispatched directly by callers.
package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/chainsentinel/sentinel/internal/apperr"
	"github.com/chainsentinel/sentinel/internal/config"
	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/chainsentinel/sentinel/internal/store"
	"github.com/google/uuid"
)

// Result is what a waiter receives when its ApiRequest reaches a terminal
// state.
type Result struct {
	Value string
	Err   error
}

// waiter is the one-shot completion handle spec.md §9 describes: "a mapping
// from request-id to a one-shot completion handle, protected by a mutex".
type waiter struct {
	ch chan Result
}

// Gateway owns the waiter registry and exposes the single Submit contract.
// The Driver (driver.go) is the loop that actually claims and dispatches
// ApiRequest rows and calls wake() on completion.
type Gateway struct {
	requests store.RequestStore
	timeout  time.Duration

	mu      sync.Mutex
	waiters map[string]*waiter
}

func New(requests store.RequestStore, cfg *config.Config) *Gateway {
	return &Gateway{
		requests: requests,
		timeout:  cfg.RequestTimeout,
		waiters:  make(map[string]*waiter),
	}
}

// Submit persists a logical request and blocks until the driver loop
// completes it, a timeout fires, or ctx is cancelled.
func (g *Gateway) Submit(ctx context.Context, provider model.Provider, requestData string) (string, error) {
	req := &model.ApiRequest{
		ID:          uuid.NewString(),
		Provider:    provider,
		RequestData: requestData,
	}
	if err := g.requests.Create(ctx, req); err != nil {
		return "", apperr.Wrap(apperr.TransientExternal, "gateway.submit", err)
	}

	w := &waiter{ch: make(chan Result, 1)}
	g.mu.Lock()
	g.waiters[req.ID] = w
	g.mu.Unlock()

	timeout := g.timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-w.ch:
		return res.Value, res.Err
	case <-timer.C:
		g.forget(req.ID)
		// The persisted record may still be completed later by the driver;
		// it becomes the reaper's concern (spec.md §4.1, §9).
		return "", apperr.New(apperr.TimeoutExceeded, "gateway.submit", "timed out waiting for request %s", req.ID)
	case <-ctx.Done():
		g.forget(req.ID)
		return "", ctx.Err()
	}
}

// wake signals exactly the caller waiting on id, if any is still registered.
func (g *Gateway) wake(id string, res Result) {
	g.mu.Lock()
	w, ok := g.waiters[id]
	if ok {
		delete(g.waiters, id)
	}
	g.mu.Unlock()
	if !ok {
		return
	}
	w.ch <- res
}

func (g *Gateway) forget(id string) {
	g.mu.Lock()
	delete(g.waiters, id)
	g.mu.Unlock()
}

// waiterCount reports how many Submit calls are currently registered and
// waiting for a result; waiters that timed out have already been removed.
func (g *Gateway) waiterCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.waiters)
}
