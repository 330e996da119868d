package service

import (
	"context"
	"encoding/json"
	"fmt"

	"deckcast/internal/domain"
	"deckcast/internal/repository"
	"deckcast/pkg/redis"

	"go.uber.org/zap"
)

// PresentationService owns the persisted side of the editing protocol:
// document CRUD, slide and element operations, the presenter pointer,
// and the cached snapshot served to polling viewers.
type PresentationService struct {
	store  repository.PresentationStore
	redis  *redis.Client
	logger *zap.Logger
}

func NewPresentationService(store repository.PresentationStore, redisClient *redis.Client, logger *zap.Logger) *PresentationService {
	return &PresentationService{
		store:  store,
		redis:  redisClient,
		logger: logger,
	}
}

// Create starts a new presentation with a single blank slide.
func (s *PresentationService) Create(ctx context.Context, req *domain.CreatePresentationRequest, creatorID string) (domain.Presentation, error) {
	title := req.Title
	if title == "" {
		title = "Untitled presentation"
	}
	p := domain.NewPresentation(title, creatorID)
	if err := s.store.Save(ctx, p); err != nil {
		return domain.Presentation{}, fmt.Errorf("failed to create presentation: %w", err)
	}

	s.logger.Info("presentation created",
		zap.String("presentation_id", p.ID),
		zap.String("creator_id", creatorID))
	return p, nil
}

// Get loads the authoritative stored document. Editors use this; the
// viewer polling path goes through GetSnapshot.
func (s *PresentationService) Get(ctx context.Context, id string) (domain.Presentation, error) {
	return s.store.Load(ctx, id)
}

// List returns a creator's presentations, newest first.
func (s *PresentationService) List(ctx context.Context, creatorID string) ([]domain.Presentation, error) {
	return s.store.ListByCreator(ctx, creatorID)
}

// GetSnapshot serves the read-only document for the 1s viewer pollers,
// cache-aside with a TTL short enough that votes and saves show up
// within a tick or two.
func (s *PresentationService) GetSnapshot(ctx context.Context, id string) (domain.Presentation, error) {
	if s.redis != nil {
		key := s.redis.KeyBuilder.KeyDeckSnapshot(id)
		if cached, err := s.redis.Get(ctx, key); err == nil && cached != "" {
			var p domain.Presentation
			if err := json.Unmarshal([]byte(cached), &p); err == nil {
				return p, nil
			}
			s.logger.Warn("snapshot cache corrupted, falling back to store",
				zap.String("presentation_id", id))
		}
	}

	p, err := s.store.Load(ctx, id)
	if err != nil {
		return domain.Presentation{}, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(p); err == nil {
			_ = s.redis.Set(ctx, s.redis.KeyBuilder.KeyDeckSnapshot(id), string(data), redis.TTLDeckSnapshot)
		}
	}
	return p, nil
}

// Save persists a full document pushed by an editor. A save whose base
// updatedAt is older than the stored document is rejected as stale: the
// editor's pull loop will converge it onto the newer revision instead
// of silently overwriting it.
func (s *PresentationService) Save(ctx context.Context, incoming domain.Presentation) (domain.Presentation, error) {
	stored, err := s.store.Load(ctx, incoming.ID)
	if err == domain.ErrNotFound {
		return domain.Presentation{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Presentation{}, fmt.Errorf("failed to load presentation: %w", err)
	}
	if stored.UpdatedAt.After(incoming.UpdatedAt) {
		return domain.Presentation{}, domain.ErrStaleSave
	}

	saved := incoming.Touch()
	if err := s.store.Save(ctx, saved); err != nil {
		return domain.Presentation{}, fmt.Errorf("failed to save presentation: %w", err)
	}
	s.invalidateSnapshot(ctx, saved.ID)
	return saved, nil
}

// Update patches deck-level settings. Nil fields are left untouched;
// an invalid aspect ratio is rejected before anything is persisted.
func (s *PresentationService) Update(ctx context.Context, id string, req *domain.UpdatePresentationRequest) (domain.Presentation, error) {
	if req.AspectRatio != nil && !domain.AspectRatio(*req.AspectRatio).Valid() {
		return domain.Presentation{}, fmt.Errorf("unknown aspect ratio %q", *req.AspectRatio)
	}
	return s.mutate(ctx, id, func(p domain.Presentation) (domain.Presentation, error) {
		if req.Title != nil {
			p.Title = *req.Title
		}
		if req.Theme != nil {
			p.Theme = *req.Theme
		}
		if req.AspectRatio != nil {
			p.AspectRatio = domain.AspectRatio(*req.AspectRatio)
		}
		return p, nil
	})
}

// Delete removes a presentation.
func (s *PresentationService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateSnapshot(ctx, id)
	return nil
}

// AddSlide appends a template slide and moves the pointer onto it.
func (s *PresentationService) AddSlide(ctx context.Context, id, layout string) (domain.Presentation, error) {
	return s.mutate(ctx, id, func(p domain.Presentation) (domain.Presentation, error) {
		return p.AddSlide(layout), nil
	})
}

// RemoveSlide deletes a slide; the last remaining slide is protected.
func (s *PresentationService) RemoveSlide(ctx context.Context, id, slideID string) (domain.Presentation, error) {
	return s.mutate(ctx, id, func(p domain.Presentation) (domain.Presentation, error) {
		return p.RemoveSlide(slideID)
	})
}

// ReorderSlides replaces the slide order wholesale.
func (s *PresentationService) ReorderSlides(ctx context.Context, id string, order []string) (domain.Presentation, error) {
	return s.mutate(ctx, id, func(p domain.Presentation) (domain.Presentation, error) {
		return p.ReorderSlides(order), nil
	})
}

// UpdateSlide patches slide content or appearance.
func (s *PresentationService) UpdateSlide(ctx context.Context, id, slideID string, req *domain.UpdateSlideRequest) (domain.Presentation, error) {
	return s.mutate(ctx, id, func(p domain.Presentation) (domain.Presentation, error) {
		slide, ok := p.SlideByID(slideID)
		if !ok {
			return p, nil
		}
		if req.Content != nil {
			slide.Content = *req.Content
		}
		if req.Background != nil {
			slide.Background = *req.Background
		}
		if req.Layout != nil {
			slide.Layout = *req.Layout
		}
		return p.ReplaceSlide(slide), nil
	})
}

// SetPointer persists the presenter's authoritative slide index. This
// write is immediate, never debounced: audience pollers must pick it up
// on their next tick.
func (s *PresentationService) SetPointer(ctx context.Context, id string, index int) (domain.Presentation, error) {
	p, err := s.mutate(ctx, id, func(p domain.Presentation) (domain.Presentation, error) {
		return p.SetCurrentSlide(index), nil
	})
	if err != nil {
		return domain.Presentation{}, err
	}
	s.logger.Debug("presenter pointer set",
		zap.String("presentation_id", id),
		zap.Int("index", p.CurrentSlideIndex))
	return p, nil
}

// CreateElement inserts an element into a slide's collection, on top of
// the z-order.
func (s *PresentationService) CreateElement(ctx context.Context, id, slideID string, req *domain.CreateElementRequest) (domain.Presentation, string, error) {
	elementID := domain.NewElementID()
	p, err := s.mutate(ctx, id, func(p domain.Presentation) (domain.Presentation, error) {
		slide, ok := p.SlideByID(slideID)
		if !ok {
			return p, nil
		}
		elements := append(slide.Elements(), domain.CanvasElement{
			ID:      elementID,
			Kind:    req.Kind,
			X:       req.X,
			Y:       req.Y,
			Width:   req.Width,
			Height:  req.Height,
			Content: req.Content,
			Style:   req.Style,
		})
		return p.ReplaceSlide(slide.WithElements(elements)), nil
	})
	return p, elementID, err
}

// UpdateElement patches element fields inside a slide. An unknown
// element id is a silent no-op.
func (s *PresentationService) UpdateElement(ctx context.Context, id, slideID, elementID string, req *domain.UpdateElementRequest) (domain.Presentation, error) {
	return s.mutate(ctx, id, func(p domain.Presentation) (domain.Presentation, error) {
		slide, ok := p.SlideByID(slideID)
		if !ok {
			return p, nil
		}
		elements := slide.Elements()
		for i := range elements {
			if elements[i].ID != elementID {
				continue
			}
			if req.X != nil {
				elements[i].X = *req.X
			}
			if req.Y != nil {
				elements[i].Y = *req.Y
			}
			if req.Width != nil {
				elements[i].Width = *req.Width
			}
			if req.Height != nil {
				elements[i].Height = *req.Height
			}
			if req.Rotation != nil {
				elements[i].Rotation = *req.Rotation
			}
			if req.Content != nil {
				elements[i].Content = *req.Content
			}
			if req.Style != nil {
				elements[i].Style = *req.Style
			}
			return p.ReplaceSlide(slide.WithElements(elements)), nil
		}
		return p, nil
	})
}

// DeleteElement removes an element from a slide.
func (s *PresentationService) DeleteElement(ctx context.Context, id, slideID, elementID string) (domain.Presentation, error) {
	return s.mutate(ctx, id, func(p domain.Presentation) (domain.Presentation, error) {
		slide, ok := p.SlideByID(slideID)
		if !ok {
			return p, nil
		}
		elements := slide.Elements()
		for i := range elements {
			if elements[i].ID == elementID {
				elements = append(elements[:i], elements[i+1:]...)
				return p.ReplaceSlide(slide.WithElements(elements)), nil
			}
		}
		return p, nil
	})
}

// mutate is the load-apply-save path shared by all server-side document
// operations.
func (s *PresentationService) mutate(ctx context.Context, id string, fn func(domain.Presentation) (domain.Presentation, error)) (domain.Presentation, error) {
	p, err := s.store.Load(ctx, id)
	if err != nil {
		return domain.Presentation{}, err
	}

	next, err := fn(p)
	if err != nil {
		return domain.Presentation{}, err
	}

	next = next.Touch()
	if err := s.store.Save(ctx, next); err != nil {
		return domain.Presentation{}, fmt.Errorf("failed to save presentation: %w", err)
	}
	s.invalidateSnapshot(ctx, id)
	return next, nil
}

func (s *PresentationService) invalidateSnapshot(ctx context.Context, id string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Delete(ctx, s.redis.KeyBuilder.KeyDeckSnapshot(id)); err != nil {
		s.logger.Warn("failed to invalidate snapshot cache",
			zap.String("presentation_id", id),
			zap.Error(err))
	}
}
