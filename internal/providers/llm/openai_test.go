package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sandevgo/evabot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAI_Complete(t *testing.T) {
	var gotReq struct {
		Model    string             `json:"model"`
		Messages []core.ChatMessage `json:"messages"`
	}
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"summary\":\"ok\"}"}}]}`))
	}))
	defer server.Close()

	provider := NewOpenAI(server.URL, "test-key", "gpt-3.5-turbo")
	reply, err := provider.Complete(context.Background(), []core.ChatMessage{
		{Role: core.RoleUser, Content: "summarize this"},
		{Role: core.RoleModel, Content: "previous reply"},
	}, "be terse")
	require.NoError(t, err)

	assert.Equal(t, `{"summary":"ok"}`, reply)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-3.5-turbo", gotReq.Model)

	// system first, then history with the gemini model role mapped back
	require.Len(t, gotReq.Messages, 3)
	assert.Equal(t, core.ChatMessage{Role: core.RoleSystem, Content: "be terse"}, gotReq.Messages[0])
	assert.Equal(t, core.RoleUser, gotReq.Messages[1].Role)
	assert.Equal(t, core.RoleAssistant, gotReq.Messages[2].Role)
}

func TestOpenAI_Complete_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := NewOpenAI(server.URL, "test-key", "gpt-3.5-turbo")
	_, err := provider.Complete(context.Background(), []core.ChatMessage{
		{Role: core.RoleUser, Content: "hi"},
	}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAI_Complete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	provider := NewOpenAI(server.URL, "test-key", "gpt-3.5-turbo")
	_, err := provider.Complete(context.Background(), []core.ChatMessage{
		{Role: core.RoleUser, Content: "hi"},
	}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty choices")
}
