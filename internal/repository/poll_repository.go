package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"deckcast/internal/domain"
	"deckcast/pkg/database"

	"github.com/jackc/pgx/v5"
)

// PollRepository persists standalone polls as JSONB documents with the
// share code lifted into its own uniquely-indexed column.
type PollRepository struct {
	db *database.PostgresDB
}

func NewPollRepository(db *database.PostgresDB) *PollRepository {
	return &PollRepository{db: db}
}

// Load retrieves a poll by id.
func (r *PollRepository) Load(ctx context.Context, id string) (domain.Poll, error) {
	return r.loadWhere(ctx, `SELECT doc FROM polls WHERE id = $1`, id)
}

// LoadByShortCode resolves a poll by its share code.
func (r *PollRepository) LoadByShortCode(ctx context.Context, code string) (domain.Poll, error) {
	return r.loadWhere(ctx, `SELECT doc FROM polls WHERE short_code = $1`, code)
}

func (r *PollRepository) loadWhere(ctx context.Context, query string, arg interface{}) (domain.Poll, error) {
	var doc []byte
	err := r.db.Pool.QueryRow(ctx, query, arg).Scan(&doc)
	if err == pgx.ErrNoRows {
		return domain.Poll{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Poll{}, fmt.Errorf("failed to load poll: %w", err)
	}

	var p domain.Poll
	if err := json.Unmarshal(doc, &p); err != nil {
		return domain.Poll{}, fmt.Errorf("failed to decode poll: %w", err)
	}
	return p, nil
}

// Save upserts the full poll aggregate.
func (r *PollRepository) Save(ctx context.Context, p domain.Poll) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode poll: %w", err)
	}

	query := `
		INSERT INTO polls (id, short_code, creator_id, doc, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET short_code = EXCLUDED.short_code, doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.Pool.Exec(ctx, query, p.ID, p.ShortCode, p.CreatorID, doc, p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save poll: %w", err)
	}
	return nil
}

// Delete removes a poll.
func (r *PollRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ShortCodeExists reports whether a share code is already taken.
func (r *PollRepository) ShortCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM polls WHERE short_code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check short code: %w", err)
	}
	return exists, nil
}
