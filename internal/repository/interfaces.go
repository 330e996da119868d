package repository

import (
	"context"

	"deckcast/internal/domain"
)

// PresentationStore defines the persistence contract for presentation
// aggregates. Implementations must round-trip slide content strings
// verbatim: they are opaque blobs to this layer.
type PresentationStore interface {
	// Load retrieves a presentation by id; domain.ErrNotFound when missing
	Load(ctx context.Context, id string) (domain.Presentation, error)

	// Save upserts the full presentation aggregate
	Save(ctx context.Context, p domain.Presentation) error

	// Delete removes a presentation
	Delete(ctx context.Context, id string) error

	// ListByCreator returns presentations owned by a creator, newest first
	ListByCreator(ctx context.Context, creatorID string) ([]domain.Presentation, error)
}

// PollStore defines the persistence contract for standalone polls.
type PollStore interface {
	// Load retrieves a poll by id; domain.ErrNotFound when missing
	Load(ctx context.Context, id string) (domain.Poll, error)

	// LoadByShortCode resolves a poll by its share code
	LoadByShortCode(ctx context.Context, code string) (domain.Poll, error)

	// Save upserts the full poll aggregate
	Save(ctx context.Context, p domain.Poll) error

	// Delete removes a poll
	Delete(ctx context.Context, id string) error

	// ShortCodeExists reports whether a share code is already taken
	ShortCodeExists(ctx context.Context, code string) (bool, error)
}

// Stores aggregates both store interfaces
type Stores struct {
	Presentations PresentationStore
	Polls         PollStore
}
