// Package chainadapter is the stateless translator from domain operations
// (list transactions, read allowance, read code, parse input) to either a
// Gateway-submitted explorer request or a direct JSON-RPC read, per spec.md
// §4.2.
package chainadapter

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/chainsentinel/sentinel/internal/apperr"
	"github.com/chainsentinel/sentinel/internal/gateway/providers"
	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	jsoniter "github.com/json-iterator/go"
)

var fastJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// eip1967ImplementationSlot is the fixed storage slot proxies use to hold
// their implementation address (spec.md §6).
var eip1967ImplementationSlot = common.HexToHash("0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc")

// submitter is the subset of gateway.Gateway the adapter depends on.
type submitter interface {
	Submit(ctx context.Context, provider model.Provider, requestData string) (string, error)
}

// rpcPool resolves a Chain to an *ethclient.Client for direct reads.
type rpcPool interface {
	ClientFor(chain model.Chain) (*ethclient.Client, error)
}

type Adapter struct {
	gw   submitter
	rpcs rpcPool

	erc20ABI abi.ABI
	erc721ABI abi.ABI
}

func New(gw submitter, rpcs rpcPool) (*Adapter, error) {
	erc20, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	erc721, err := abi.JSON(strings.NewReader(erc721ABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse erc721 abi: %w", err)
	}
	return &Adapter{gw: gw, rpcs: rpcs, erc20ABI: erc20, erc721ABI: erc721}, nil
}

// ListTransactionsParams configures one explorer transaction-list call.
type ListTransactionsParams struct {
	Chain      model.Chain
	Address    string
	StartBlock uint64
	Descending bool
	PageSize   int
}

func (a *Adapter) listStream(ctx context.Context, action string, p ListTransactionsParams) ([]model.Transaction, error) {
	sort := "asc"
	if p.Descending {
		sort = "desc"
	}
	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}

	req := providers.EtherscanRequest{
		Module:  "account",
		Action:  action,
		ChainID: p.Chain.ChainID(),
		Params: map[string]string{
			"address":    p.Address,
			"startblock": fmt.Sprintf("%d", p.StartBlock),
			"sort":       sort,
			"page":       "1",
			"offset":     fmt.Sprintf("%d", pageSize),
		},
	}
	payload, err := fastJSON.Marshal(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.PermanentExternal, "chainadapter.listStream", err)
	}

	raw, err := a.gw.Submit(ctx, model.ProviderEtherscan, string(payload))
	if err != nil {
		return nil, err
	}

	var rows []explorerTxRow
	if err := fastJSON.UnmarshalFromString(raw, &rows); err != nil {
		return nil, apperr.Wrap(apperr.PermanentExternal, "chainadapter.listStream", err)
	}
	return toTransactions(rows), nil
}

// ListNormalTransactions lists plain value/call transactions sent or
// received by an address.
func (a *Adapter) ListNormalTransactions(ctx context.Context, p ListTransactionsParams) ([]model.Transaction, error) {
	return a.listStream(ctx, "txlist", p)
}

// ListTokenTransfers lists ERC-20 transfer events touching an address.
func (a *Adapter) ListTokenTransfers(ctx context.Context, p ListTransactionsParams) ([]model.Transaction, error) {
	return a.listStream(ctx, "tokentx", p)
}

// ListNFTTransfers lists ERC-721/1155 transfer events touching an address.
func (a *Adapter) ListNFTTransfers(ctx context.Context, p ListTransactionsParams) ([]model.Transaction, error) {
	return a.listStream(ctx, "tokennfttx", p)
}

// SourceCode is the explorer's verified-source response.
type SourceCode struct {
	SourceCode   string
	ContractName string
}

// FetchSourceCode fetches verified source for a contract, if any.
func (a *Adapter) FetchSourceCode(ctx context.Context, chain model.Chain, address string) (*SourceCode, error) {
	req := providers.EtherscanRequest{
		Module:  "contract",
		Action:  "getsourcecode",
		ChainID: chain.ChainID(),
		Params:  map[string]string{"address": address},
	}
	payload, err := fastJSON.Marshal(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.PermanentExternal, "chainadapter.sourceCode", err)
	}

	raw, err := a.gw.Submit(ctx, model.ProviderEtherscan, string(payload))
	if err != nil {
		return nil, err
	}

	var rows []struct {
		SourceCode   string `json:"SourceCode"`
		ContractName string `json:"ContractName"`
	}
	if err := fastJSON.UnmarshalFromString(raw, &rows); err != nil || len(rows) == 0 {
		return &SourceCode{}, nil
	}
	return &SourceCode{SourceCode: rows[0].SourceCode, ContractName: rows[0].ContractName}, nil
}

// GetCode reads raw bytecode at address. On-chain read failures are absorbed
// as empty bytecode rather than propagated (spec.md §4.2).
func (a *Adapter) GetCode(ctx context.Context, chain model.Chain, address string) ([]byte, error) {
	client, err := a.rpcs.ClientFor(chain)
	if err != nil {
		return nil, nil
	}
	code, err := client.CodeAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, nil
	}
	return code, nil
}

// ResolveImplementation reads the EIP-1967 implementation slot; a zero
// result means address is not a proxy under this convention.
func (a *Adapter) ResolveImplementation(ctx context.Context, chain model.Chain, address string) (string, error) {
	client, err := a.rpcs.ClientFor(chain)
	if err != nil {
		return "", nil
	}
	val, err := client.StorageAt(ctx, common.HexToAddress(address), eip1967ImplementationSlot, nil)
	if err != nil || len(val) < 20 {
		return "", nil
	}
	impl := common.BytesToAddress(val[len(val)-20:])
	if impl == (common.Address{}) {
		return "", nil
	}
	return impl.Hex(), nil
}

// Allowance reads ERC-20 allowance(owner, spender); failures are absorbed as
// zero (spec.md §4.2, §7 OnChainRead).
func (a *Adapter) Allowance(ctx context.Context, chain model.Chain, token, owner, spender string) *big.Int {
	client, err := a.rpcs.ClientFor(chain)
	if err != nil {
		return big.NewInt(0)
	}
	data, err := a.erc20ABI.Pack("allowance", common.HexToAddress(owner), common.HexToAddress(spender))
	if err != nil {
		return big.NewInt(0)
	}

	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	out, err := client.CallContract(cctx, ethCallMsg(token, data), nil)
	if err != nil || len(out) == 0 {
		return big.NewInt(0)
	}

	results, err := a.erc20ABI.Unpack("allowance", out)
	if err != nil || len(results) == 0 {
		return big.NewInt(0)
	}
	amount, ok := results[0].(*big.Int)
	if !ok {
		return big.NewInt(0)
	}
	return amount
}

// IsApprovedForAll reads ERC-721/1155 isApprovedForAll(owner, operator).
func (a *Adapter) IsApprovedForAll(ctx context.Context, chain model.Chain, token, owner, operator string) (bool, error) {
	client, err := a.rpcs.ClientFor(chain)
	if err != nil {
		return false, nil
	}
	data, err := a.erc721ABI.Pack("isApprovedForAll", common.HexToAddress(owner), common.HexToAddress(operator))
	if err != nil {
		return false, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	out, err := client.CallContract(cctx, ethCallMsg(token, data), nil)
	if err != nil || len(out) == 0 {
		return false, nil
	}

	results, err := a.erc721ABI.Unpack("isApprovedForAll", out)
	if err != nil || len(results) == 0 {
		return false, nil
	}
	approved, ok := results[0].(bool)
	if !ok {
		return false, nil
	}
	return approved, nil
}

// Name reads name() on a contract, bounded to a 2s timeout, absorbing any
// failure as "no name".
func (a *Adapter) Name(ctx context.Context, chain model.Chain, address string) (string, bool) {
	client, err := a.rpcs.ClientFor(chain)
	if err != nil {
		return "", false
	}
	data, err := a.erc20ABI.Pack("name")
	if err != nil {
		return "", false
	}

	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	out, err := client.CallContract(cctx, ethCallMsg(address, data), nil)
	if err != nil || len(out) == 0 {
		return "", false
	}

	results, err := a.erc20ABI.Unpack("name", out)
	if err != nil || len(results) == 0 {
		return "", false
	}
	name, ok := results[0].(string)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// BalanceOf reads ERC-20 balanceOf(owner).
func (a *Adapter) BalanceOf(ctx context.Context, chain model.Chain, token, owner string) *big.Int {
	client, err := a.rpcs.ClientFor(chain)
	if err != nil {
		return big.NewInt(0)
	}
	data, err := a.erc20ABI.Pack("balanceOf", common.HexToAddress(owner))
	if err != nil {
		return big.NewInt(0)
	}

	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	out, err := client.CallContract(cctx, ethCallMsg(token, data), nil)
	if err != nil || len(out) == 0 {
		return big.NewInt(0)
	}

	results, err := a.erc20ABI.Unpack("balanceOf", out)
	if err != nil || len(results) == 0 {
		return big.NewInt(0)
	}
	amount, ok := results[0].(*big.Int)
	if !ok {
		return big.NewInt(0)
	}
	return amount
}

type explorerTxRow struct {
	Hash            string `json:"hash"`
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	Input           string `json:"input"`
	ContractAddress string `json:"contractAddress"`
	TokenID         string `json:"tokenID"`
}

func toTransactions(rows []explorerTxRow) []model.Transaction {
	out := make([]model.Transaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Transaction{
			Hash:            r.Hash,
			BlockNumber:     parseUint(r.BlockNumber),
			Timestamp:       parseUnixSeconds(r.TimeStamp),
			From:            strings.ToLower(r.From),
			To:              strings.ToLower(r.To),
			Value:           r.Value,
			Input:           r.Input,
			TokenAddress:    strings.ToLower(r.ContractAddress),
			TokenID:         r.TokenID,
			ContractAddress: strings.ToLower(r.ContractAddress),
		})
	}
	return out
}

func parseUint(s string) uint64 {
	var n uint64
	_, _ = fmt.Sscanf(s, "%d", &n)
	return n
}

func parseUnixSeconds(s string) time.Time {
	var sec int64
	_, _ = fmt.Sscanf(s, "%d", &sec)
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// Decimals reads ERC-20 decimals(), defaulting to 18 on any failure. Fixes
// spec.md §9's open question: allowance display previously assumed 18
// decimals regardless of token.
func (a *Adapter) Decimals(ctx context.Context, chain model.Chain, token string) int {
	client, err := a.rpcs.ClientFor(chain)
	if err != nil {
		return 18
	}
	data, err := a.erc20ABI.Pack("decimals")
	if err != nil {
		return 18
	}

	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	out, err := client.CallContract(cctx, ethCallMsg(token, data), nil)
	if err != nil || len(out) == 0 {
		return 18
	}

	results, err := a.erc20ABI.Unpack("decimals", out)
	if err != nil || len(results) == 0 {
		return 18
	}
	d, ok := results[0].(uint8)
	if !ok {
		return 18
	}
	return int(d)
}

// RevokeCalldataERC20 builds approve(spender, 0) calldata.
func (a *Adapter) RevokeCalldataERC20(spender string) string {
	data, _ := a.erc20ABI.Pack("approve", common.HexToAddress(spender), big.NewInt(0))
	return "0x" + common.Bytes2Hex(data)
}

// RevokeCalldataNFT builds setApprovalForAll(operator, false) calldata.
func (a *Adapter) RevokeCalldataNFT(operator string) string {
	data, _ := a.erc721ABI.Pack("setApprovalForAll", common.HexToAddress(operator), false)
	return "0x" + common.Bytes2Hex(data)
}

func ethCallMsg(to string, data []byte) ethereum.CallMsg {
	addr := common.HexToAddress(to)
	return ethereum.CallMsg{To: &addr, Data: data}
}
