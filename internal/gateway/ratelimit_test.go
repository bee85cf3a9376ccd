package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/chainsentinel/sentinel/internal/config"
	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/stretchr/testify/require"
)

type fakeRequestStore struct {
	completedSince map[model.Provider]int
	calls          int
}

func (f *fakeRequestStore) Create(ctx context.Context, r *model.ApiRequest) error { return nil }
func (f *fakeRequestStore) Get(ctx context.Context, id string) (*model.ApiRequest, error) {
	return nil, nil
}
func (f *fakeRequestStore) ClaimNext(ctx context.Context, provider model.Provider, processingID string, now time.Time) (*model.ApiRequest, error) {
	return nil, nil
}
func (f *fakeRequestStore) Complete(ctx context.Context, id string, result string, completedAt time.Time) error {
	return nil
}
func (f *fakeRequestStore) Fail(ctx context.Context, id string, errMsg string, maxAttempts int, completedAt time.Time) error {
	return nil
}
func (f *fakeRequestStore) RetryLater(ctx context.Context, id string, errMsg string, retryAt time.Time) error {
	return nil
}
func (f *fakeRequestStore) CountCompletedSince(ctx context.Context, provider model.Provider, since time.Time) (int, error) {
	f.calls++
	return f.completedSince[provider], nil
}
func (f *fakeRequestStore) CountByStatus(ctx context.Context, provider model.Provider) (map[model.RequestStatus]int, error) {
	return nil, nil
}
func (f *fakeRequestStore) ReapStale(ctx context.Context, leaseCutoff time.Time, maxAttempts int) (int, error) {
	return 0, nil
}

func TestWindowCheckerSaturatedDayBlocksBeforeOthersChecked(t *testing.T) {
	cfg := &config.Config{
		EtherscanRateLimit: config.RateLimit{PerSecond: 4, PerMinute: 240, PerDay: 5},
	}
	fake := &fakeRequestStore{completedSince: map[model.Provider]int{model.ProviderEtherscan: 5}}
	wc := newWindowChecker(fake, cfg)

	ok, err := wc.allow(context.Background(), model.ProviderEtherscan, time.Now())
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 1, fake.calls)
}

func TestWindowCheckerAllowsUnderLimit(t *testing.T) {
	cfg := &config.Config{
		EtherscanRateLimit: config.RateLimit{PerSecond: 4, PerMinute: 240, PerDay: 100000},
	}
	fake := &fakeRequestStore{completedSince: map[model.Provider]int{model.ProviderEtherscan: 1}}
	wc := newWindowChecker(fake, cfg)

	ok, err := wc.allow(context.Background(), model.ProviderEtherscan, time.Now())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestWindowCheckerUnknownProviderAlwaysAllowed(t *testing.T) {
	cfg := &config.Config{}
	fake := &fakeRequestStore{completedSince: map[model.Provider]int{}}
	wc := newWindowChecker(fake, cfg)

	ok, err := wc.allow(context.Background(), model.Provider("unknown"), time.Now())
	require.NoError(t, err)
	require.True(t, ok)
}
