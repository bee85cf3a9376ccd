package providers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/chainsentinel/sentinel/internal/apperr"
)

// AIRequest is the decoded ApiRequest.RequestData payload for the AI
// provider: a single prompt string, wrapped into the Gemini-style envelope
// on the wire (spec.md §6).
type AIRequest struct {
	Prompt string `json:"prompt"`
}

type aiWireRequest struct {
	Contents []aiContent `json:"contents"`
}

type aiContent struct {
	Parts []aiPart `json:"parts"`
}

type aiPart struct {
	Text string `json:"text"`
}

type aiResponse struct {
	Candidates []struct {
		Content aiContent `json:"content"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// AI is the generative-summary provider adapter. No SDK in the dependency
// pack speaks this wire format, so it is a direct net/http POST matching
// spec.md §6's documented body shape.
type AI struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewAI(baseURL, apiKey string) *AI {
	return &AI{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (a *AI) Call(ctx context.Context, requestData string) (string, error) {
	var req AIRequest
	if err := fastJSON.UnmarshalFromString(requestData, &req); err != nil {
		return "", apperr.Wrap(apperr.PermanentExternal, "ai.call", err)
	}

	wire := aiWireRequest{Contents: []aiContent{{Parts: []aiPart{{Text: req.Prompt}}}}}
	body, err := fastJSON.Marshal(wire)
	if err != nil {
		return "", apperr.Wrap(apperr.PermanentExternal, "ai.call", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"?key="+a.APIKey, bytes.NewReader(body))
	if err != nil {
		return "", apperr.Wrap(apperr.PermanentExternal, "ai.call", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.Client.Do(httpReq)
	if err != nil {
		return "", apperr.Wrap(apperr.TransientExternal, "ai.call", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Wrap(apperr.TransientExternal, "ai.call", err)
	}

	if resp.StatusCode >= 500 {
		return "", apperr.New(apperr.TransientExternal, "ai.call", "AI provider returned %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return "", apperr.New(apperr.PermanentExternal, "ai.call", "AI provider returned %d", resp.StatusCode)
	}

	var parsed aiResponse
	if err := fastJSON.Unmarshal(respBody, &parsed); err != nil {
		return "", apperr.Wrap(apperr.PermanentExternal, "ai.call", err)
	}

	if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
		return "", apperr.New(apperr.PermanentExternal, "ai.call", "content filtered: %s", parsed.PromptFeedback.BlockReason)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", apperr.New(apperr.PermanentExternal, "ai.call", "no candidates in AI response")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
