package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chainsentinel/sentinel/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAI(t *testing.T, srv *httptest.Server) *AI {
	t.Cleanup(srv.Close)
	return NewAI(srv.URL, "test-key")
}

func TestAICallReturnsFirstCandidateText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"looks risky"}]}}]}`))
	}))
	ai := newAI(t, srv)

	payload, _ := fastJSON.MarshalToString(AIRequest{Prompt: "summarize this"})
	result, err := ai.Call(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "looks risky", result)
}

func TestAICallContentBlockedIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	ai := newAI(t, srv)

	payload, _ := fastJSON.MarshalToString(AIRequest{Prompt: "summarize this"})
	_, err := ai.Call(context.Background(), payload)
	require.Error(t, err)

	classified, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.PermanentExternal, classified.Class)
}

func TestAICallNoCandidatesIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	ai := newAI(t, srv)

	payload, _ := fastJSON.MarshalToString(AIRequest{Prompt: "summarize this"})
	_, err := ai.Call(context.Background(), payload)
	require.Error(t, err)

	classified, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.PermanentExternal, classified.Class)
}

func TestAICall5xxIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	ai := newAI(t, srv)

	payload, _ := fastJSON.MarshalToString(AIRequest{Prompt: "summarize this"})
	_, err := ai.Call(context.Background(), payload)
	require.Error(t, err)

	classified, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.TransientExternal, classified.Class)
}
