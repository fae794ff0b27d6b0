package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/evabot/internal/core"
	"github.com/sandevgo/evabot/pkg/log"
)

const defaultDeleteBatchSize = 500

type MessagesRepo struct {
	db        *sql.DB
	batchSize int
}

func NewMessagesRepo(db *sql.DB, batchSize int) *MessagesRepo {
	if batchSize <= 0 {
		batchSize = defaultDeleteBatchSize
	}
	return &MessagesRepo{db: db, batchSize: batchSize}
}

func (r *MessagesRepo) Append(ctx context.Context, msg core.Message) error {
	meta, err := marshalMetadata(msg.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `INSERT INTO messages (id, user_id, role, content, session_id, metadata, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		msg.ID, msg.UserID, msg.Role, msg.Content, msg.SessionID, meta, msg.CreatedAt, msg.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (r *MessagesRepo) Recent(ctx context.Context, userID string, limit int, sessionID string) ([]core.Message, error) {
	// Fetch the LAST 'limit' unexpired messages by ordering DESC
	query := `SELECT id, user_id, role, content, session_id, metadata, created_at, expires_at
		FROM messages WHERE user_id = ? AND expires_at > ?`
	args := []any{userID, time.Now().UTC()}
	if sessionID != "" {
		query += ` AND session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []core.Message
	for rows.Next() {
		var msg core.Message
		var meta sql.NullString
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.Role, &msg.Content,
			&msg.SessionID, &meta, &msg.CreatedAt, &msg.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if msg.Metadata, err = unmarshalMetadata(meta.String); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// The query returned messages newest first; reverse back to
	// chronological order for the caller.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	log.FromCtx(ctx).Debug().Int("count", len(messages)).Msg("loaded short-term messages")
	return messages, nil
}

func (r *MessagesRepo) Clear(ctx context.Context, userID, sessionID string) (int, error) {
	query := `SELECT id FROM messages WHERE user_id = ?`
	args := []any{userID}
	if sessionID != "" {
		query += ` AND session_id = ?`
		args = append(args, sessionID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to query messages for delete: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	// Delete in bounded batches; the store enforces a ceiling on
	// write-batch size. A failure partway leaves earlier batches
	// deleted, which is acceptable.
	deleted := 0
	for _, chunk := range chunkIDs(ids, r.batchSize) {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		del := fmt.Sprintf("DELETE FROM messages WHERE id IN (%s)", placeholders)
		chunkArgs := make([]any, len(chunk))
		for i, id := range chunk {
			chunkArgs[i] = id
		}
		res, err := r.db.ExecContext(ctx, del, chunkArgs...)
		if err != nil {
			return deleted, fmt.Errorf("failed to delete message batch: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return deleted, err
		}
		deleted += int(n)
	}

	log.FromCtx(ctx).Debug().Int("count", deleted).Msg("cleared short-term messages")
	return deleted, nil
}

func (r *MessagesRepo) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired messages: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func chunkIDs(ids []string, size int) [][]string {
	if len(ids) == 0 {
		return nil
	}
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
