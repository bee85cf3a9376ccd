package notifier

import (
	"context"
	"testing"

	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/stretchr/testify/require"
)

func TestDiffOnlyReturnsNewAboveThreshold(t *testing.T) {
	previous := []string{"erc20-0xtoken-0xspender"}
	current := []Finding{
		{Fingerprint: "erc20-0xtoken-0xspender", Severity: model.SeverityHigh},
		{Fingerprint: "erc20-0xtoken2-0xspender2", Severity: model.SeverityLow},
		{Fingerprint: "erc20-0xtoken3-0xspender3", Severity: model.SeverityHigh},
	}
	fresh := Diff(previous, current, model.SeverityMedium)
	require.Len(t, fresh, 1)
	require.Equal(t, "erc20-0xtoken3-0xspender3", fresh[0].Fingerprint)
}

func TestDiffIdempotentOnUpdatedState(t *testing.T) {
	current := []Finding{{Fingerprint: "nft-0xcol-0xop", Severity: model.SeverityHigh}}
	previous := []string{"nft-0xcol-0xop"}
	fresh := Diff(previous, current, model.SeverityMedium)
	require.Empty(t, fresh)
}

type fakeTransport struct {
	sent []string
	err  error
}

func (f *fakeTransport) Send(ctx context.Context, userID, message string) error {
	f.sent = append(f.sent, message)
	return f.err
}

func TestNotifySendsOnlyFreshFindingsAndReturnsFullSet(t *testing.T) {
	transport := &fakeTransport{}
	n := New(transport, model.SeverityMedium)

	current := []Finding{
		{Fingerprint: "a", Severity: model.SeverityHigh, Title: "Alert A"},
		{Fingerprint: "b", Severity: model.SeverityLow, Title: "Alert B"},
	}
	fullSet := n.Notify(context.Background(), "user1", nil, current)

	require.Len(t, transport.sent, 1)
	require.ElementsMatch(t, []string{"a", "b"}, fullSet)
}

func TestNotifyDeliveryFailureDoesNotPanic(t *testing.T) {
	transport := &fakeTransport{err: require.AnError}
	n := New(transport, model.SeverityInfo)
	require.NotPanics(t, func() {
		n.Notify(context.Background(), "user1", nil, []Finding{{Fingerprint: "x", Severity: model.SeverityHigh}})
	})
}
