// Package providers implements the wire-level adapters the gateway driver
// dispatches ApiRequest payloads to, per spec.md §4.1 and §6.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chainsentinel/sentinel/internal/apperr"
	jsoniter "github.com/json-iterator/go"
)

var fastJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// EtherscanRequest is the decoded shape of an ApiRequest.RequestData payload
// for the explorer provider.
type EtherscanRequest struct {
	Module string            `json:"module"`
	Action string            `json:"action"`
	ChainID int64            `json:"chainId"`
	Params map[string]string `json:"params"`
}

// etherscanEnvelope is the common explorer response shape: {status, message,
// result}. result may be a string, an array, or an object depending on
// action, so it is kept raw and re-marshaled as the gateway's result string.
type etherscanEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// Etherscan is the Etherscan-V2-style unified explorer adapter (spec.md §6):
// GET <base>?module=&action=&chainid=&apikey=&...
type Etherscan struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewEtherscan(baseURL, apiKey string) *Etherscan {
	return &Etherscan{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Call dispatches one explorer request and classifies the response per
// spec.md §4.1 step 4 / §6.
func (e *Etherscan) Call(ctx context.Context, requestData string) (string, error) {
	var req EtherscanRequest
	if err := fastJSON.UnmarshalFromString(requestData, &req); err != nil {
		return "", apperr.Wrap(apperr.PermanentExternal, "etherscan.call", err)
	}

	q := url.Values{}
	q.Set("module", req.Module)
	q.Set("action", req.Action)
	if req.ChainID != 0 {
		q.Set("chainid", fmt.Sprintf("%d", req.ChainID))
	}
	q.Set("apikey", e.APIKey)
	for k, v := range req.Params {
		q.Set(k, v)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, e.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", apperr.Wrap(apperr.PermanentExternal, "etherscan.call", err)
	}

	resp, err := e.Client.Do(httpReq)
	if err != nil {
		return "", apperr.Wrap(apperr.TransientExternal, "etherscan.call", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Wrap(apperr.TransientExternal, "etherscan.call", err)
	}

	if resp.StatusCode >= 500 {
		return "", apperr.New(apperr.TransientExternal, "etherscan.call", "explorer returned %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return "", apperr.New(apperr.PermanentExternal, "etherscan.call", "explorer returned %d", resp.StatusCode)
	}

	var env etherscanEnvelope
	if err := fastJSON.Unmarshal(body, &env); err != nil {
		return "", apperr.Wrap(apperr.PermanentExternal, "etherscan.call", err)
	}

	lowerMsg := strings.ToLower(env.Message)
	switch {
	case env.Status == "1" || strings.Contains(lowerMsg, "ok"):
		return string(env.Result), nil
	case strings.Contains(lowerMsg, "no transactions found"):
		// DomainEmpty: an empty list is a success, not a failure (spec.md §7).
		return "[]", nil
	case strings.Contains(lowerMsg, "rate limit") || strings.Contains(lowerMsg, "max rate"):
		return "", apperr.New(apperr.TransientExternal, "etherscan.call", "explorer rate limited: %s", env.Message)
	default:
		return "", apperr.New(apperr.PermanentExternal, "etherscan.call", "explorer error: %s", env.Message)
	}
}
