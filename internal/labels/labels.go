// Package labels resolves addresses to human-readable names through a chain
// of caches: a process memo, the persistent label store, an on-chain
// name() read, and explorer source-code metadata, per spec.md §4.8 and §9's
// "graph of caches" design note.
package labels

import (
	"context"
	"strings"
	"sync"

	"github.com/chainsentinel/sentinel/internal/chainadapter"
	"github.com/chainsentinel/sentinel/internal/model"
)

// OnChainNamer reads name() bounded to a short timeout.
type OnChainNamer interface {
	Name(ctx context.Context, chain model.Chain, address string) (string, bool)
}

// SourceNamer resolves explorer source metadata and EIP-1967 proxy targets.
type SourceNamer interface {
	FetchSourceCode(ctx context.Context, chain model.Chain, address string) (*chainadapter.SourceCode, error)
	ResolveImplementation(ctx context.Context, chain model.Chain, address string) (string, error)
}

// Store is the persistent label store dependency (a subset of
// store.LabelStore).
type Store interface {
	Get(ctx context.Context, address string, chain model.Chain) (*model.AddressLabel, error)
	Insert(ctx context.Context, l *model.AddressLabel) error
}

// Service resolves labels through the layered lookup and memoizes results
// per process.
type Service struct {
	store  Store
	onchain OnChainNamer
	source SourceNamer

	mu   sync.RWMutex
	memo map[string]string
}

func New(store Store, onchain OnChainNamer, source SourceNamer) *Service {
	return &Service{store: store, onchain: onchain, source: source, memo: make(map[string]string)}
}

func memoKey(chain model.Chain, address string) string {
	return string(chain) + ":" + strings.ToLower(address)
}

// Resolve implements the §4.8 resolution order: memo -> store -> name() ->
// explorer ContractName, with a proxy-aware retry when the name looks like a
// proxy label.
func (s *Service) Resolve(ctx context.Context, chain model.Chain, address string) (string, bool) {
	key := memoKey(chain, address)

	s.mu.RLock()
	if name, ok := s.memo[key]; ok {
		s.mu.RUnlock()
		return name, true
	}
	s.mu.RUnlock()

	if rec, err := s.store.Get(ctx, address, chain); err == nil && rec != nil {
		s.remember(key, rec.Label)
		return rec.Label, true
	}

	if name, ok := s.onchain.Name(ctx, chain, address); ok {
		s.persist(ctx, chain, address, name, "onchain_name")
		return name, true
	}

	src, err := s.source.FetchSourceCode(ctx, chain, address)
	if err != nil || src == nil || src.ContractName == "" {
		return "", false
	}
	name := src.ContractName
	if strings.Contains(strings.ToLower(name), "proxy") {
		if impl, err := s.source.ResolveImplementation(ctx, chain, address); err == nil && impl != "" {
			if implSrc, err := s.source.FetchSourceCode(ctx, chain, impl); err == nil && implSrc != nil && implSrc.ContractName != "" && implSrc.ContractName != name {
				name = implSrc.ContractName
			}
		}
	}
	s.persist(ctx, chain, address, name, "explorer_source")
	return name, true
}

func (s *Service) remember(key, name string) {
	s.mu.Lock()
	s.memo[key] = name
	s.mu.Unlock()
}

// persist memoizes and best-effort writes a newly resolved name, ignoring
// unique-constraint collisions (spec.md §4.8).
func (s *Service) persist(ctx context.Context, chain model.Chain, address, name, source string) {
	s.remember(memoKey(chain, address), name)
	_ = s.store.Insert(ctx, &model.AddressLabel{
		Address: strings.ToLower(address),
		Chain:   chain,
		Label:   name,
		Source:  source,
	})
}

// ResolveMany resolves a batch, returning only the addresses that were
// found (callers default unresolved ones to "Unknown").
func (s *Service) ResolveMany(ctx context.Context, chain model.Chain, addresses []string) map[string]string {
	out := make(map[string]string, len(addresses))
	for _, addr := range addresses {
		if name, ok := s.Resolve(ctx, chain, addr); ok {
			out[strings.ToLower(addr)] = name
		}
	}
	return out
}
