package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sandevgo/evabot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	response  string
	err       error
	gotSystem string
	gotPrompt string
}

func (f *fakeCompleter) Complete(_ context.Context, history []core.ChatMessage, system string) (string, error) {
	f.gotSystem = system
	if len(history) > 0 {
		f.gotPrompt = history[len(history)-1].Content
	}
	return f.response, f.err
}

func newTestCompressor(ai core.Completer) (*Compressor, *Store) {
	store, _, _ := newTestStore()
	return NewCompressor(store, NewBuilder(store), ai), store
}

const summarizerPayload = `Here is the summary you asked for:
{
  "summary": "User discussed their morning routine.",
  "facts": [
    {"category": "preference", "content": "drinks espresso every morning", "importance": 8},
    {"category": "mood", "content": "is tired on mondays", "importance": 20}
  ],
  "topics": ["coffee", "routine"]
}`

func TestCompressor_SummarizeConversation(t *testing.T) {
	ai := &fakeCompleter{response: summarizerPayload}
	compressor, _ := newTestCompressor(ai)

	summary, err := compressor.SummarizeConversation(context.Background(), "u1", []core.ChatMessage{
		{Role: core.RoleUser, Content: "I always start with an espresso"},
		{Role: core.RoleAssistant, Content: "Noted!"},
	})
	require.NoError(t, err)

	assert.Equal(t, "User discussed their morning routine.", summary.Summary)
	require.Len(t, summary.Facts, 2)
	assert.Equal(t, "drinks espresso every morning", summary.Facts[0].Content)
	assert.Equal(t, []string{"coffee", "routine"}, summary.Topics)

	assert.Equal(t, summarizationInstruction, ai.gotSystem)
	assert.Contains(t, ai.gotPrompt, "user: I always start with an espresso")
	assert.Contains(t, ai.gotPrompt, "assistant: Noted!")
}

func TestCompressor_SummarizeConversation_NonStructured(t *testing.T) {
	ai := &fakeCompleter{response: "The user talked about coffee, no JSON here."}
	compressor, _ := newTestCompressor(ai)

	summary, err := compressor.SummarizeConversation(context.Background(), "u1", []core.ChatMessage{
		{Role: core.RoleUser, Content: "hi"},
	})
	require.NoError(t, err)

	assert.Equal(t, "The user talked about coffee, no JSON here.", summary.Summary)
	assert.Empty(t, summary.Facts)
	assert.Empty(t, summary.Topics)
}

func TestCompressor_SummarizeConversation_Empty(t *testing.T) {
	compressor, _ := newTestCompressor(&fakeCompleter{})

	_, err := compressor.SummarizeConversation(context.Background(), "u1", nil)
	assert.True(t, errors.Is(err, core.ErrNothingToSummarize))

	_, err = compressor.SummarizeConversation(context.Background(), "u1", []core.ChatMessage{})
	assert.True(t, errors.Is(err, core.ErrNothingToSummarize))
}

func TestCompressor_CompressToLongTerm(t *testing.T) {
	ai := &fakeCompleter{response: summarizerPayload}
	compressor, store := newTestCompressor(ai)
	ctx := context.Background()

	_, err := store.AppendMessage(ctx, "u1", core.RoleUser, "I always start with an espresso", "", nil)
	require.NoError(t, err)

	result, err := compressor.CompressToLongTerm(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, 2, result.FactsSaved)
	assert.Equal(t, "User discussed their morning routine.", result.Summary)
	assert.Equal(t, []string{"coffee", "routine"}, result.Topics)

	facts, err := store.ListFacts(ctx, "u1", "", 10)
	require.NoError(t, err)
	require.Len(t, facts, 2)
	for _, f := range facts {
		assert.Equal(t, "conversation_compression", f.Metadata["source"])
	}

	// unknown category and out-of-range importance are normalized on
	// save; the clamped fact sorts first by importance
	assert.Equal(t, core.CategoryFact, facts[0].Category)
	assert.Equal(t, 10, facts[0].Importance)
	assert.Equal(t, core.CategoryPreference, facts[1].Category)
}

func TestCompressor_CompressToLongTerm_SummarizeFails(t *testing.T) {
	wantErr := errors.New("model unavailable")
	ai := &fakeCompleter{err: wantErr}
	compressor, store := newTestCompressor(ai)
	ctx := context.Background()

	_, err := store.AppendMessage(ctx, "u1", core.RoleUser, "hi", "", nil)
	require.NoError(t, err)

	_, err = compressor.CompressToLongTerm(ctx, "u1")
	assert.True(t, errors.Is(err, wantErr))

	facts, err := store.ListFacts(ctx, "u1", "", 10)
	require.NoError(t, err)
	assert.Empty(t, facts)
}

func TestCompressor_FormatConversation_Truncates(t *testing.T) {
	compressor, _ := newTestCompressor(&fakeCompleter{})
	compressor.TokenBudget = 20

	old := core.ChatMessage{Role: core.RoleUser, Content: strings.Repeat("old ", 50)}
	recent := core.ChatMessage{Role: core.RoleAssistant, Content: "short reply"}

	text := compressor.formatConversation(context.Background(), []core.ChatMessage{old, recent})

	assert.Contains(t, text, "short reply")
	assert.NotContains(t, text, "old old")
}
