package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/evabot/internal/core"
	"github.com/sandevgo/evabot/pkg/log"
)

const (
	defaultSummarizeLimit = 30
	defaultTokenBudget    = 3000
	tokenEncoding         = "cl100k_base"
)

// Compressor converts recent conversation into durable facts, bounding
// short-term storage growth. It is a maintenance operation triggered
// explicitly, never per chat turn.
type Compressor struct {
	store   *Store
	builder *Builder
	ai      core.Completer

	// FetchLimit is how many recent messages a run without explicit
	// input summarizes. TokenBudget caps the conversation text handed
	// to the summarizer.
	FetchLimit  int
	TokenBudget int

	encOnce sync.Once
	enc     *tiktoken.Tiktoken
}

func NewCompressor(store *Store, builder *Builder, ai core.Completer) *Compressor {
	return &Compressor{
		store:       store,
		builder:     builder,
		ai:          ai,
		FetchLimit:  defaultSummarizeLimit,
		TokenBudget: defaultTokenBudget,
	}
}

// SummarizeConversation summarizes the given messages, or the user's
// most recent short-term context when msgs is nil. Empty input yields
// core.ErrNothingToSummarize.
func (c *Compressor) SummarizeConversation(ctx context.Context, userID string, msgs []core.ChatMessage) (core.Summary, error) {
	if msgs == nil {
		var err error
		msgs, err = c.builder.RecentContext(ctx, userID, c.FetchLimit)
		if err != nil {
			return core.Summary{}, fmt.Errorf("summarize: %w", err)
		}
	}
	if len(msgs) == 0 {
		return core.Summary{}, core.ErrNothingToSummarize
	}

	conversation := c.formatConversation(ctx, msgs)

	raw, err := c.ai.Complete(ctx, []core.ChatMessage{
		{Role: core.RoleUser, Content: conversation},
	}, summarizationInstruction)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summarize: %w", err)
	}

	summary, ok := parseSummary(raw)
	if !ok {
		// Degrade gracefully: keep the whole response as the summary
		// rather than failing the call.
		log.FromCtx(ctx).Warn().Msg("summarizer returned non-structured payload, using raw text")
		return core.Summary{Summary: raw}, nil
	}
	return summary, nil
}

// CompressToLongTerm summarizes recent conversation and persists the
// extracted facts. A summarization failure propagates unchanged and
// saves nothing.
func (c *Compressor) CompressToLongTerm(ctx context.Context, userID string) (core.CompressionResult, error) {
	summary, err := c.SummarizeConversation(ctx, userID, nil)
	if err != nil {
		return core.CompressionResult{}, err
	}

	logger := log.FromCtx(ctx)
	saved := make([]core.Fact, 0, len(summary.Facts))
	for _, cand := range summary.Facts {
		fact, err := c.store.SaveFact(ctx, userID, cand.Category, cand.Content, cand.Importance,
			map[string]string{"source": compressionSource})
		if err != nil {
			return core.CompressionResult{}, fmt.Errorf("compress: %w", err)
		}
		logger.Info().Str("category", fact.Category).Int("importance", fact.Importance).Msg("fact compressed to long-term memory")
		saved = append(saved, fact)
	}

	return core.CompressionResult{
		Summary:    summary.Summary,
		Topics:     summary.Topics,
		FactsSaved: len(saved),
		Facts:      saved,
	}, nil
}

// formatConversation renders "role: content" lines, truncating
// oldest-first when the token budget is exceeded.
func (c *Compressor) formatConversation(ctx context.Context, msgs []core.ChatMessage) string {
	lines := make([]string, len(msgs))
	for i, m := range msgs {
		lines[i] = m.Role + ": " + m.Content
	}
	text := strings.Join(lines, "\n")

	for len(lines) > 1 && c.countTokens(text) > c.TokenBudget {
		lines = lines[1:]
		text = strings.Join(lines, "\n")
	}
	if c.countTokens(text) > c.TokenBudget {
		log.FromCtx(ctx).Warn().Msg("single message exceeds summarization token budget")
	}
	return text
}

func (c *Compressor) countTokens(text string) int {
	c.encOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(tokenEncoding)
		if err == nil {
			c.enc = enc
		}
	})
	if c.enc == nil {
		// Encoder unavailable (e.g. offline); estimate instead.
		return len(text) / 4
	}
	return len(c.enc.Encode(text, nil, nil))
}

func parseSummary(raw string) (core.Summary, bool) {
	jsonStr := extractJSONObject(raw)
	if jsonStr == "" {
		return core.Summary{}, false
	}
	var summary core.Summary
	if err := json.Unmarshal([]byte(jsonStr), &summary); err != nil {
		return core.Summary{}, false
	}
	return summary, true
}

func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(content[start:], "}")
	if end == -1 {
		return ""
	}
	return content[start : start+end+1]
}
