package chat

import (
	"sync"

	"github.com/sandevgo/evabot/internal/core"
)

// DefaultConversationID keys a user's conversation when none is given.
const DefaultConversationID = "default"

type sessionKey struct {
	UserID         string
	ConversationID string
}

func newSessionKey(userID, conversationID string) sessionKey {
	if conversationID == "" {
		conversationID = DefaultConversationID
	}
	return sessionKey{UserID: userID, ConversationID: conversationID}
}

// SessionCache holds live conversation turns per (user, conversation).
// Process-lifetime only: no persistence, no TTL. It is an acceleration
// structure; the durable message log remains the source of truth.
//
// The whole cache is mutex-serialized, so concurrent appends to the
// same key cannot interleave mid-entry; ordering between racing turns
// is arrival order.
type SessionCache struct {
	mu       sync.RWMutex
	sessions map[sessionKey][]core.ChatMessage
}

func NewSessionCache() *SessionCache {
	return &SessionCache{
		sessions: make(map[sessionKey][]core.ChatMessage),
	}
}

func (c *SessionCache) AppendTurn(userID, conversationID, role, text string) {
	key := newSessionKey(userID, conversationID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[key] = append(c.sessions[key], core.ChatMessage{Role: role, Content: text})
}

// History returns the turns for a key, empty when none exist. The
// returned slice is a copy; mutating it does not touch the cache.
func (c *SessionCache) History(userID, conversationID string) []core.ChatMessage {
	key := newSessionKey(userID, conversationID)

	c.mu.RLock()
	defer c.mu.RUnlock()

	history := c.sessions[key]
	out := make([]core.ChatMessage, len(history))
	copy(out, history)
	return out
}

// Clear drops a conversation entirely, used when a user starts a new
// conversation or explicitly resets.
func (c *SessionCache) Clear(userID, conversationID string) {
	key := newSessionKey(userID, conversationID)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, key)
}

// ActiveConversations enumerates conversation IDs cached for a user.
func (c *SessionCache) ActiveConversations(userID string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var ids []string
	for key := range c.sessions {
		if key.UserID == userID {
			ids = append(ids, key.ConversationID)
		}
	}
	return ids
}
