package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/evabot/internal/core"
	"github.com/sandevgo/evabot/pkg/log"
)

const longTermPreamble = "User information from previous conversations:"

// Builder assembles the bounded prompt context for a completion call:
// long-term facts rendered as one system entry, followed by the most
// recent short-term messages in chronological order.
type Builder struct {
	store *Store
}

func NewBuilder(store *Store) *Builder {
	return &Builder{store: store}
}

func (b *Builder) BuildContext(ctx context.Context, userID string, includeLongTerm bool, shortTermLimit, longTermLimit int) ([]core.ChatMessage, error) {
	var prompt []core.ChatMessage

	if includeLongTerm {
		facts, err := b.store.ListFacts(ctx, userID, "", longTermLimit)
		if err != nil {
			return nil, fmt.Errorf("build context: %w", err)
		}
		if len(facts) > 0 {
			prompt = append(prompt, core.ChatMessage{
				Role:    core.RoleSystem,
				Content: renderFacts(facts),
			})

			ids := make([]string, len(facts))
			for i, f := range facts {
				ids[i] = f.ID
			}
			if err := b.store.TouchFacts(ctx, userID, ids); err != nil {
				log.FromCtx(ctx).Warn().Err(err).Msg("failed to bump fact access counts")
			}
		}
	}

	recent, err := b.RecentContext(ctx, userID, shortTermLimit)
	if err != nil {
		return nil, err
	}
	prompt = append(prompt, recent...)

	return prompt, nil
}

// RecentContext is the short-term path: role and content of the most
// recent messages, stripped of metadata, oldest first.
func (b *Builder) RecentContext(ctx context.Context, userID string, limit int) ([]core.ChatMessage, error) {
	msgs, err := b.store.RecentMessages(ctx, userID, limit, "")
	if err != nil {
		return nil, fmt.Errorf("build context: %w", err)
	}

	out := make([]core.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, core.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return out, nil
}

func renderFacts(facts []core.Fact) string {
	var sb strings.Builder
	sb.WriteString(longTermPreamble)
	for _, f := range facts {
		sb.WriteString("\n- ")
		sb.WriteString(f.Content)
	}
	return sb.String()
}
