package chat

import (
	"context"
	"fmt"

	"github.com/sandevgo/evabot/internal/core"
	"github.com/sandevgo/evabot/pkg/log"
)

// SystemInstruction is Eva's personality, applied to every chat turn.
const SystemInstruction = `You are Eva, a personal AI assistant.

YOUR PERSONALITY:
- Warm, friendly, and approachable
- Concise but helpful - don't be overly verbose
- Use a conversational tone, not robotic

GUIDELINES:
- Keep responses concise unless the user asks for detail
- Be proactive in offering help when appropriate
- If you don't know something, say so honestly
- Never pretend to have capabilities you don't have`

// ApologyReply is returned when the completion call fails; the chat
// turn degrades instead of surfacing the upstream error.
const ApologyReply = "I'm sorry, I encountered an issue processing your request. Please try again."

// ContextStore is the durable memory surface a chat turn writes through to.
type ContextStore interface {
	AppendMessage(ctx context.Context, userID, role, content, sessionID string, metadata map[string]string) (core.Message, error)
	RecentMessages(ctx context.Context, userID string, limit int, sessionID string) ([]core.Message, error)
	ClearShortTerm(ctx context.Context, userID, sessionID string) (int, error)
}

// ContextBuilder assembles durable context when the session cache is cold.
type ContextBuilder interface {
	BuildContext(ctx context.Context, userID string, includeLongTerm bool, shortTermLimit, longTermLimit int) ([]core.ChatMessage, error)
}

type Config struct {
	ShortTermLimit    int
	LongTermLimit     int
	SystemInstruction string
}

// Chat orchestrates one conversational turn: session cache in front,
// durable context store behind, completion provider in the middle.
type Chat struct {
	cfg     Config
	cache   *SessionCache
	store   ContextStore
	builder ContextBuilder
	ai      core.StreamCompleter
}

func NewChat(cfg Config, cache *SessionCache, store ContextStore, builder ContextBuilder, ai core.StreamCompleter) *Chat {
	if cfg.ShortTermLimit <= 0 {
		cfg.ShortTermLimit = 10
	}
	if cfg.LongTermLimit <= 0 {
		cfg.LongTermLimit = 5
	}
	if cfg.SystemInstruction == "" {
		cfg.SystemInstruction = SystemInstruction
	}
	return &Chat{
		cfg:     cfg,
		cache:   cache,
		store:   store,
		builder: builder,
		ai:      ai,
	}
}

// Send processes one chat turn and returns the assistant's reply. A
// completion failure degrades to ApologyReply; storage failures on the
// user turn propagate.
func (c *Chat) Send(ctx context.Context, userID, conversationID, text string) (string, error) {
	return c.send(ctx, userID, conversationID, text, nil)
}

// SendStream is Send with incremental delivery. History and the
// durable log are touched only after the stream completes cleanly; a
// mid-stream failure appends nothing.
func (c *Chat) SendStream(ctx context.Context, userID, conversationID, text string, onChunk func(string)) (string, error) {
	return c.send(ctx, userID, conversationID, text, onChunk)
}

func (c *Chat) send(ctx context.Context, userID, conversationID, text string, onChunk func(string)) (string, error) {
	logger := log.FromCtx(ctx)
	if conversationID == "" {
		conversationID = DefaultConversationID
	}

	history := c.cache.History(userID, conversationID)
	if len(history) == 0 {
		history = c.seed(ctx, userID, conversationID)
	}

	if _, err := c.store.AppendMessage(ctx, userID, core.RoleUser, text, conversationID, nil); err != nil {
		return "", fmt.Errorf("failed to save user message: %w", err)
	}

	contents := append(history, core.ChatMessage{Role: core.RoleUser, Content: text})

	var reply string
	var err error
	if onChunk != nil {
		reply, err = c.ai.CompleteStream(ctx, contents, c.cfg.SystemInstruction, onChunk)
	} else {
		reply, err = c.ai.Complete(ctx, contents, c.cfg.SystemInstruction)
	}
	if err != nil {
		// Conversational continuity beats strict error surfacing on
		// this path. Nothing is cached, so a partial stream never
		// becomes an assistant turn.
		logger.Error().Err(err).Str("user", userID).Msg("completion call failed")
		if onChunk != nil {
			onChunk(ApologyReply)
		}
		return ApologyReply, nil
	}

	c.cache.AppendTurn(userID, conversationID, core.RoleUser, text)
	c.cache.AppendTurn(userID, conversationID, core.RoleModel, reply)

	if _, err := c.store.AppendMessage(ctx, userID, core.RoleAssistant, reply, conversationID, nil); err != nil {
		logger.Error().Err(err).Msg("failed to save assistant message")
	}

	return reply, nil
}

// seed warms a cold session from durable storage. Failure here is
// tolerated: the turn proceeds with empty context.
func (c *Chat) seed(ctx context.Context, userID, conversationID string) []core.ChatMessage {
	built, err := c.builder.BuildContext(ctx, userID, true, c.cfg.ShortTermLimit, c.cfg.LongTermLimit)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("user", userID).Msg("failed to seed session from durable context")
		return nil
	}
	for _, m := range built {
		c.cache.AppendTurn(userID, conversationID, m.Role, m.Content)
	}
	return built
}

// History returns the durable conversation log for a user, optionally
// scoped to one conversation.
func (c *Chat) History(ctx context.Context, userID, conversationID string, limit int) ([]core.Message, error) {
	return c.store.RecentMessages(ctx, userID, limit, conversationID)
}

// ClearConversation drops the cached session and clears the matching
// durable short-term scope, returning how many messages were deleted.
func (c *Chat) ClearConversation(ctx context.Context, userID, conversationID string) (int, error) {
	c.cache.Clear(userID, conversationID)
	if conversationID == "" {
		conversationID = DefaultConversationID
	}
	return c.store.ClearShortTerm(ctx, userID, conversationID)
}

// ActiveConversations lists conversations with live cached state.
func (c *Chat) ActiveConversations(userID string) []string {
	return c.cache.ActiveConversations(userID)
}
