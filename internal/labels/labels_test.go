package labels

import (
	"context"
	"testing"

	"github.com/chainsentinel/sentinel/internal/chainadapter"
	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	records map[string]*model.AddressLabel
	inserts int
}

func (f *fakeStore) Get(ctx context.Context, address string, chain model.Chain) (*model.AddressLabel, error) {
	return f.records[memoKey(chain, address)], nil
}
func (f *fakeStore) Insert(ctx context.Context, l *model.AddressLabel) error {
	f.inserts++
	return nil
}

type fakeOnChain struct {
	name string
	ok   bool
}

func (f *fakeOnChain) Name(ctx context.Context, chain model.Chain, address string) (string, bool) {
	return f.name, f.ok
}

type fakeSource struct {
	src  map[string]*chainadapter.SourceCode
	impl map[string]string
}

func (f *fakeSource) FetchSourceCode(ctx context.Context, chain model.Chain, address string) (*chainadapter.SourceCode, error) {
	return f.src[address], nil
}
func (f *fakeSource) ResolveImplementation(ctx context.Context, chain model.Chain, address string) (string, error) {
	return f.impl[address], nil
}

func TestResolveHitsStoreBeforeOnChain(t *testing.T) {
	store := &fakeStore{records: map[string]*model.AddressLabel{
		memoKey(model.ChainEthereum, "0xabc"): {Label: "Known Router"},
	}}
	svc := New(store, &fakeOnChain{ok: true, name: "ShouldNotUse"}, &fakeSource{})

	name, ok := svc.Resolve(context.Background(), model.ChainEthereum, "0xabc")
	require.True(t, ok)
	require.Equal(t, "Known Router", name)
}

func TestResolveFallsBackToOnChainName(t *testing.T) {
	store := &fakeStore{records: map[string]*model.AddressLabel{}}
	svc := New(store, &fakeOnChain{ok: true, name: "MyToken"}, &fakeSource{})

	name, ok := svc.Resolve(context.Background(), model.ChainEthereum, "0xdef")
	require.True(t, ok)
	require.Equal(t, "MyToken", name)
	require.Equal(t, 1, store.inserts)
}

func TestResolveMemoizesAcrossCalls(t *testing.T) {
	store := &fakeStore{records: map[string]*model.AddressLabel{}}
	onchain := &fakeOnChain{ok: true, name: "MyToken"}
	svc := New(store, onchain, &fakeSource{})

	_, _ = svc.Resolve(context.Background(), model.ChainEthereum, "0xdef")
	// with the store and the on-chain name both emptied, only the memo can answer
	store.records = nil
	onchain.ok = false
	name, ok := svc.Resolve(context.Background(), model.ChainEthereum, "0xdef")
	require.True(t, ok)
	require.Equal(t, "MyToken", name)
}

func TestResolveUnknownReturnsFalse(t *testing.T) {
	store := &fakeStore{records: map[string]*model.AddressLabel{}}
	svc := New(store, &fakeOnChain{ok: false}, &fakeSource{src: map[string]*chainadapter.SourceCode{}})

	_, ok := svc.Resolve(context.Background(), model.ChainEthereum, "0xghi")
	require.False(t, ok)
}
