package core

import (
	"context"
	"time"
)

// MessageRepository is the short-term message log. sessionID narrows an
// operation to one session; empty means all sessions of the user.
type MessageRepository interface {
	Append(ctx context.Context, msg Message) error
	// Recent returns up to limit unexpired messages in chronological
	// order (oldest first).
	Recent(ctx context.Context, userID string, limit int, sessionID string) ([]Message, error)
	// Clear deletes messages in bounded batches and reports how many
	// rows went away.
	Clear(ctx context.Context, userID, sessionID string) (int, error)
	// PurgeExpired removes rows whose expires_at is at or before now.
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

// FactRepository is the long-term fact store.
type FactRepository interface {
	// Save inserts a fact. When a fact with the same content hash
	// already exists for the user, the stored row is returned and no
	// duplicate is created.
	Save(ctx context.Context, fact Fact) (Fact, error)
	// List returns facts ordered by importance descending, optionally
	// filtered by category.
	List(ctx context.Context, userID, category string, limit int) ([]Fact, error)
	// Candidates returns the bounded candidate set substring search
	// scans over: the top entries by importance.
	Candidates(ctx context.Context, userID string, limit int) ([]Fact, error)
	Get(ctx context.Context, userID, id string) (Fact, error)
	// Update replaces a stored fact, ErrNotFound when absent.
	Update(ctx context.Context, fact Fact) error
	// Delete removes a fact, ErrNotFound when absent.
	Delete(ctx context.Context, userID, id string) error
	// MarkAccessed bumps access_count for the given fact IDs.
	MarkAccessed(ctx context.Context, userID string, ids []string) error
}
