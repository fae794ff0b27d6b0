package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sandevgo/evabot/internal/core"
)

type FactsRepo struct {
	db *sql.DB
}

func NewFactsRepo(db *sql.DB) *FactsRepo {
	return &FactsRepo{db: db}
}

func (r *FactsRepo) Save(ctx context.Context, fact core.Fact) (core.Fact, error) {
	meta, err := marshalMetadata(fact.Metadata)
	if err != nil {
		return core.Fact{}, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `INSERT INTO facts (id, user_id, category, content, content_hash, importance, metadata, created_at, updated_at, access_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		fact.ID, fact.UserID, fact.Category, fact.Content, fact.ContentHash,
		fact.Importance, meta, fact.CreatedAt, fact.UpdatedAt, fact.AccessCount)
	if err != nil {
		if isDuplicateError(err) {
			// Identical content already stored for this user; hand the
			// existing row back instead of creating a duplicate.
			return r.getByHash(ctx, fact.UserID, fact.ContentHash)
		}
		return core.Fact{}, fmt.Errorf("failed to insert fact: %w", err)
	}
	return fact, nil
}

func (r *FactsRepo) List(ctx context.Context, userID, category string, limit int) ([]core.Fact, error) {
	query := `SELECT id, user_id, category, content, content_hash, importance, metadata, created_at, updated_at, access_count
		FROM facts WHERE user_id = ?`
	args := []any{userID}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY importance DESC, updated_at DESC LIMIT ?`
	args = append(args, limit)

	return r.queryFacts(ctx, query, args...)
}

func (r *FactsRepo) Candidates(ctx context.Context, userID string, limit int) ([]core.Fact, error) {
	return r.List(ctx, userID, "", limit)
}

func (r *FactsRepo) Get(ctx context.Context, userID, id string) (core.Fact, error) {
	facts, err := r.queryFacts(ctx,
		`SELECT id, user_id, category, content, content_hash, importance, metadata, created_at, updated_at, access_count
		FROM facts WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return core.Fact{}, err
	}
	if len(facts) == 0 {
		return core.Fact{}, core.ErrNotFound
	}
	return facts[0], nil
}

func (r *FactsRepo) Update(ctx context.Context, fact core.Fact) error {
	meta, err := marshalMetadata(fact.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE facts SET category = ?, content = ?, content_hash = ?, importance = ?, metadata = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`,
		fact.Category, fact.Content, fact.ContentHash, fact.Importance, meta, fact.UpdatedAt,
		fact.UserID, fact.ID)
	if err != nil {
		return fmt.Errorf("failed to update fact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *FactsRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM facts WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete fact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *FactsRepo) MarkAccessed(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf(`UPDATE facts SET access_count = access_count + 1 WHERE user_id = ? AND id IN (%s)`, placeholders)
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *FactsRepo) getByHash(ctx context.Context, userID, hash string) (core.Fact, error) {
	facts, err := r.queryFacts(ctx,
		`SELECT id, user_id, category, content, content_hash, importance, metadata, created_at, updated_at, access_count
		FROM facts WHERE user_id = ? AND content_hash = ?`, userID, hash)
	if err != nil {
		return core.Fact{}, err
	}
	if len(facts) == 0 {
		return core.Fact{}, core.ErrNotFound
	}
	return facts[0], nil
}

func (r *FactsRepo) queryFacts(ctx context.Context, query string, args ...any) ([]core.Fact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	var facts []core.Fact
	for rows.Next() {
		var f core.Fact
		var meta sql.NullString
		if err := rows.Scan(&f.ID, &f.UserID, &f.Category, &f.Content, &f.ContentHash,
			&f.Importance, &meta, &f.CreatedAt, &f.UpdatedAt, &f.AccessCount); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		if f.Metadata, err = unmarshalMetadata(meta.String); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return facts, nil
}

func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "constraint failed")
}
