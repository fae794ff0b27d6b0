package llm

import (
	"context"
	"testing"

	"github.com/sandevgo/evabot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChatModel_UnknownProvider(t *testing.T) {
	_, err := NewChatModel(context.Background(), "claude", DefaultChatRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown chat provider: claude")
}

func TestNewSummarizer_UnknownProvider(t *testing.T) {
	_, err := NewSummarizer(context.Background(), "llama", DefaultSummaryRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown summary provider: llama")
}

func TestNewSummarizer_Registered(t *testing.T) {
	registry := map[string]SummaryConstructor{
		"openai": func(context.Context) (core.Completer, error) {
			return NewOpenAI("http://localhost", "key", "model"), nil
		},
	}

	completer, err := NewSummarizer(context.Background(), "openai", registry)
	require.NoError(t, err)
	assert.NotNil(t, completer)
}

func TestDefaultRegistries(t *testing.T) {
	assert.Contains(t, DefaultChatRegistry(), "gemini")
	assert.Contains(t, DefaultSummaryRegistry(), "openai")
	assert.Contains(t, DefaultSummaryRegistry(), "gemini")
}
