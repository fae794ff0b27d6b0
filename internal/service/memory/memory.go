package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/evabot/internal/core"
	"github.com/sandevgo/evabot/pkg/log"
)

const (
	// DefaultShortTermTTL bounds how long a message counts as valid
	// short-term context.
	DefaultShortTermTTL = 24 * time.Hour

	// searchCandidateLimit bounds the candidate set a substring search
	// scans over: the top facts by importance, not a full-text index.
	searchCandidateLimit = 100
)

// Store is the durable short-term and long-term memory per user.
type Store struct {
	messages core.MessageRepository
	facts    core.FactRepository
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(messages core.MessageRepository, facts core.FactRepository, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultShortTermTTL
	}
	return &Store{
		messages: messages,
		facts:    facts,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) AppendMessage(ctx context.Context, userID, role, content, sessionID string, metadata map[string]string) (core.Message, error) {
	now := s.now()
	msg := core.Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		Content:   content,
		SessionID: sessionID,
		Metadata:  metadata,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return core.Message{}, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}

// RecentMessages returns up to limit unexpired messages in
// chronological order, optionally scoped to one session.
func (s *Store) RecentMessages(ctx context.Context, userID string, limit int, sessionID string) ([]core.Message, error) {
	msgs, err := s.messages.Recent(ctx, userID, limit, sessionID)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	return msgs, nil
}

func (s *Store) ClearShortTerm(ctx context.Context, userID, sessionID string) (int, error) {
	count, err := s.messages.Clear(ctx, userID, sessionID)
	if err != nil {
		return count, fmt.Errorf("clear short-term: %w", err)
	}
	log.FromCtx(ctx).Info().Str("user", userID).Int("count", count).Msg("short-term context cleared")
	return count, nil
}

func (s *Store) SaveFact(ctx context.Context, userID, category, content string, importance int, metadata map[string]string) (core.Fact, error) {
	if !core.ValidCategory(category) {
		category = core.CategoryFact
	}
	now := s.now()
	fact := core.Fact{
		ID:          uuid.NewString(),
		UserID:      userID,
		Category:    category,
		Content:     content,
		ContentHash: HashContent(content),
		Importance:  ClampImportance(importance),
		Metadata:    metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	saved, err := s.facts.Save(ctx, fact)
	if err != nil {
		return core.Fact{}, fmt.Errorf("save fact: %w", err)
	}
	return saved, nil
}

func (s *Store) ListFacts(ctx context.Context, userID, category string, limit int) ([]core.Fact, error) {
	facts, err := s.facts.List(ctx, userID, category, limit)
	if err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}
	return facts, nil
}

// SearchFacts performs a case-insensitive substring match over a
// bounded candidate set of the user's most important facts.
func (s *Store) SearchFacts(ctx context.Context, userID, query string, limit int) ([]core.Fact, error) {
	candidates, err := s.facts.Candidates(ctx, userID, searchCandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("search facts: %w", err)
	}

	needle := strings.ToLower(query)
	var matches []core.Fact
	for _, f := range candidates {
		if strings.Contains(strings.ToLower(f.Content), needle) {
			matches = append(matches, f)
			if len(matches) == limit {
				break
			}
		}
	}
	return matches, nil
}

// FactUpdate carries the mutable fields of a fact; nil means unchanged.
type FactUpdate struct {
	Category   *string
	Content    *string
	Importance *int
	Metadata   map[string]string
}

func (s *Store) UpdateFact(ctx context.Context, userID, id string, upd FactUpdate) (core.Fact, error) {
	fact, err := s.facts.Get(ctx, userID, id)
	if err != nil {
		return core.Fact{}, fmt.Errorf("update fact: %w", err)
	}

	if upd.Category != nil && core.ValidCategory(*upd.Category) {
		fact.Category = *upd.Category
	}
	if upd.Content != nil {
		fact.Content = *upd.Content
		fact.ContentHash = HashContent(*upd.Content)
	}
	if upd.Importance != nil {
		fact.Importance = ClampImportance(*upd.Importance)
	}
	if upd.Metadata != nil {
		fact.Metadata = upd.Metadata
	}
	fact.UpdatedAt = s.now()

	if err := s.facts.Update(ctx, fact); err != nil {
		return core.Fact{}, fmt.Errorf("update fact: %w", err)
	}
	return fact, nil
}

func (s *Store) DeleteFact(ctx context.Context, userID, id string) error {
	if err := s.facts.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete fact: %w", err)
	}
	return nil
}

// TouchFacts bumps access counters for facts that were served as
// context. Best effort; callers log and move on.
func (s *Store) TouchFacts(ctx context.Context, userID string, ids []string) error {
	return s.facts.MarkAccessed(ctx, userID, ids)
}

// ClampImportance forces an importance score into [1,10].
func ClampImportance(importance int) int {
	if importance < core.ImportanceMin {
		return core.ImportanceMin
	}
	if importance > core.ImportanceMax {
		return core.ImportanceMax
	}
	return importance
}

// HashContent is the dedup key for fact content: the first 16 hex
// characters of its SHA-256 digest.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:16]
}
