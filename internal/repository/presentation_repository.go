package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"deckcast/internal/domain"
	"deckcast/pkg/database"

	"github.com/jackc/pgx/v5"
)

// PresentationRepository persists presentation aggregates as
// self-contained JSONB documents. Slide content stays nested as strings
// inside the outer JSON, so the storage schema never needs to know the
// element schema.
type PresentationRepository struct {
	db *database.PostgresDB
}

func NewPresentationRepository(db *database.PostgresDB) *PresentationRepository {
	return &PresentationRepository{db: db}
}

// Load retrieves a presentation by id.
func (r *PresentationRepository) Load(ctx context.Context, id string) (domain.Presentation, error) {
	query := `SELECT doc FROM presentations WHERE id = $1`

	var doc []byte
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(&doc)
	if err == pgx.ErrNoRows {
		return domain.Presentation{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Presentation{}, fmt.Errorf("failed to load presentation: %w", err)
	}

	var p domain.Presentation
	if err := json.Unmarshal(doc, &p); err != nil {
		return domain.Presentation{}, fmt.Errorf("failed to decode presentation %s: %w", id, err)
	}
	return p, nil
}

// Save upserts the full aggregate.
func (r *PresentationRepository) Save(ctx context.Context, p domain.Presentation) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode presentation: %w", err)
	}

	query := `
		INSERT INTO presentations (id, creator_id, doc, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.Pool.Exec(ctx, query, p.ID, p.CreatorID, doc, p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save presentation: %w", err)
	}
	return nil
}

// Delete removes a presentation.
func (r *PresentationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM presentations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete presentation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCreator returns a creator's presentations, newest first.
func (r *PresentationRepository) ListByCreator(ctx context.Context, creatorID string) ([]domain.Presentation, error) {
	query := `
		SELECT doc FROM presentations
		WHERE creator_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list presentations: %w", err)
	}
	defer rows.Close()

	var out []domain.Presentation
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan presentation: %w", err)
		}
		var p domain.Presentation
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, fmt.Errorf("failed to decode presentation: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
