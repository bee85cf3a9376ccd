package chainadapter

import (
	"fmt"
	"sync"

	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/ethereum/go-ethereum/ethclient"
)

// RPCPool lazily dials and caches one ethclient.Client per chain, keyed by a
// caller-supplied URL map (spec.md §4.2's "direct JSON-RPC reads").
type RPCPool struct {
	urls map[model.Chain]string

	mu      sync.Mutex
	clients map[model.Chain]*ethclient.Client
}

func NewRPCPool(urls map[model.Chain]string) *RPCPool {
	return &RPCPool{urls: urls, clients: make(map[model.Chain]*ethclient.Client)}
}

func (p *RPCPool) ClientFor(chain model.Chain) (*ethclient.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[chain]; ok {
		return c, nil
	}
	url, ok := p.urls[chain]
	if !ok || url == "" {
		return nil, fmt.Errorf("no RPC endpoint configured for chain %s", chain)
	}
	client, err := ethclient.Dial(url)
	if err != nil {
		return nil, err
	}
	p.clients[chain] = client
	return client, nil
}
