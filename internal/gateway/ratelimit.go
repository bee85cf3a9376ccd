package gateway

import (
	"context"
	"time"

	"github.com/chainsentinel/sentinel/internal/config"
	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/chainsentinel/sentinel/internal/store"
)

// windowChecker counts completed requests against the three rolling windows
// spec.md §4.1 step 1 names, checked largest-window-first so a saturated day
// budget short-circuits before the cheaper minute/second counts are queried.
type windowChecker struct {
	requests store.RequestStore
	limits   map[model.Provider]config.RateLimit
}

func newWindowChecker(requests store.RequestStore, cfg *config.Config) *windowChecker {
	return &windowChecker{
		requests: requests,
		limits: map[model.Provider]config.RateLimit{
			model.ProviderEtherscan: cfg.EtherscanRateLimit,
			model.ProviderAI:        cfg.AIRateLimit,
		},
	}
}

// allow reports whether provider has budget left in all three windows right
// now. It does one CountCompletedSince per window, day first.
func (w *windowChecker) allow(ctx context.Context, provider model.Provider, now time.Time) (bool, error) {
	limit, ok := w.limits[provider]
	if !ok {
		return true, nil
	}

	checks := []struct {
		since time.Time
		max   int
	}{
		{now.Add(-24 * time.Hour), limit.PerDay},
		{now.Add(-time.Minute), limit.PerMinute},
		{now.Add(-time.Second), limit.PerSecond},
	}
	for _, c := range checks {
		if c.max <= 0 {
			continue
		}
		n, err := w.requests.CountCompletedSince(ctx, provider, c.since)
		if err != nil {
			return false, err
		}
		if n >= c.max {
			return false, nil
		}
	}
	return true, nil
}
