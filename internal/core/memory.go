package core

import (
	"errors"
	"time"
)

var (
	// ErrNotFound signals that a referenced document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNothingToSummarize signals that a summarization run had no input.
	ErrNothingToSummarize = errors.New("nothing to summarize")
)

const (
	ImportanceMin = 1
	ImportanceMax = 10
)

const (
	CategoryPreference = "preference"
	CategoryInterest   = "interest"
	CategoryEvent      = "event"
	CategoryGoal       = "goal"
	CategoryFact       = "fact"
)

// Categories lists the valid fact categories in long-term memory.
var Categories = []string{
	CategoryPreference,
	CategoryInterest,
	CategoryEvent,
	CategoryGoal,
	CategoryFact,
}

func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Message is one short-term context entry. Append-only; never edited
// in place once written.
type Message struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	SessionID string            `json:"session_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Fact is one long-term memory entry: distilled, importance-ranked
// knowledge about a user that outlives short-term expiry.
type Fact struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Category    string            `json:"category"`
	Content     string            `json:"content"`
	ContentHash string            `json:"content_hash"`
	Importance  int               `json:"importance"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	AccessCount int               `json:"access_count"`
}

// FactCandidate is a fact as proposed by the summarizer, before it is
// clamped, hashed and persisted.
type FactCandidate struct {
	Category   string `json:"category"`
	Content    string `json:"content"`
	Importance int    `json:"importance"`
}

// Summary is the structured outcome of one summarization call.
type Summary struct {
	Summary string          `json:"summary"`
	Facts   []FactCandidate `json:"facts"`
	Topics  []string        `json:"topics"`
}

// CompressionResult reports what a compression run distilled and saved.
type CompressionResult struct {
	Summary    string   `json:"summary"`
	Topics     []string `json:"topics"`
	FactsSaved int      `json:"facts_saved"`
	Facts      []Fact   `json:"facts"`
}
