package domain

import (
	"time"

	"github.com/google/uuid"
)

// AspectRatio fixes the logical canvas height: the width is always 1000
// units, the height is 1000 * h/w.
type AspectRatio string

const (
	AspectWide     AspectRatio = "16:9"
	AspectClassic  AspectRatio = "4:3"
	AspectSquare   AspectRatio = "1:1"
)

// CanvasHeight returns the logical canvas height for the ratio.
func (a AspectRatio) CanvasHeight() float64 {
	switch a {
	case AspectClassic:
		return 750
	case AspectSquare:
		return 1000
	default:
		return 562.5
	}
}

// Valid reports whether the ratio is one of the supported values.
func (a AspectRatio) Valid() bool {
	switch a {
	case AspectWide, AspectClassic, AspectSquare:
		return true
	}
	return false
}

// Presentation is the persisted document aggregate: an ordered, never
// empty slide collection plus the presenter's slide pointer. Mutations
// return new values so callers can detect change by comparison; nothing
// mutates a Presentation in place.
type Presentation struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	Slides            []Slide     `json:"slides"`
	CurrentSlideIndex int         `json:"currentSlideIndex"`
	AspectRatio       AspectRatio `json:"aspectRatio"`
	Theme             string      `json:"theme,omitempty"`
	UpdatedAt         time.Time   `json:"updatedAt"`
	CreatorID         string      `json:"creatorId,omitempty"`
}

// NewPresentation builds a presentation with a single blank slide.
func NewPresentation(title, creatorID string) Presentation {
	aspect := AspectWide
	return Presentation{
		ID:          uuid.NewString(),
		Title:       title,
		Slides:      []Slide{NewSlide(LayoutBlank, aspect)},
		AspectRatio: aspect,
		UpdatedAt:   time.Now().UTC(),
		CreatorID:   creatorID,
	}
}

// Clone returns a deep copy of the presentation.
func (p Presentation) Clone() Presentation {
	out := p
	out.Slides = make([]Slide, len(p.Slides))
	copy(out.Slides, p.Slides)
	return out
}

// Touch stamps a fresh UpdatedAt. Every persisted write goes through
// this so the timestamp gate in the pull loop can work.
func (p Presentation) Touch() Presentation {
	p.UpdatedAt = time.Now().UTC()
	return p
}

// AddSlide appends a new slide for the given layout and moves the
// pointer onto it.
func (p Presentation) AddSlide(layout string) Presentation {
	out := p.Clone()
	out.Slides = append(out.Slides, NewSlide(layout, p.AspectRatio))
	out.CurrentSlideIndex = len(out.Slides) - 1
	return out
}

// RemoveSlide deletes a slide by id. Removing the last remaining slide
// is rejected; an unknown id is a no-op.
func (p Presentation) RemoveSlide(slideID string) (Presentation, error) {
	idx := p.slideIndex(slideID)
	if idx < 0 {
		return p, nil
	}
	if len(p.Slides) == 1 {
		return p, ErrLastSlide
	}

	out := p.Clone()
	out.Slides = append(out.Slides[:idx], out.Slides[idx+1:]...)
	if out.CurrentSlideIndex >= len(out.Slides) {
		out.CurrentSlideIndex = len(out.Slides) - 1
	}
	return out, nil
}

// ReorderSlides replaces the slide order wholesale. Drag-and-drop hands
// us the complete new order, not a delta. Ids missing from the order
// keep their relative position at the end; unknown ids are ignored. An
// order that matches no slide leaves the presentation unchanged.
func (p Presentation) ReorderSlides(order []string) Presentation {
	byID := make(map[string]Slide, len(p.Slides))
	for _, s := range p.Slides {
		byID[s.ID] = s
	}

	reordered := make([]Slide, 0, len(p.Slides))
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if s, ok := byID[id]; ok && !seen[id] {
			reordered = append(reordered, s)
			seen[id] = true
		}
	}
	if len(reordered) == 0 {
		return p
	}
	for _, s := range p.Slides {
		if !seen[s.ID] {
			reordered = append(reordered, s)
		}
	}

	currentID := ""
	if p.CurrentSlideIndex >= 0 && p.CurrentSlideIndex < len(p.Slides) {
		currentID = p.Slides[p.CurrentSlideIndex].ID
	}

	out := p.Clone()
	out.Slides = reordered
	if idx := out.slideIndex(currentID); idx >= 0 {
		out.CurrentSlideIndex = idx
	}
	return out
}

// SetCurrentSlide moves the presenter pointer, clamped to the deck.
func (p Presentation) SetCurrentSlide(index int) Presentation {
	if index < 0 {
		index = 0
	}
	if index > len(p.Slides)-1 {
		index = len(p.Slides) - 1
	}
	out := p.Clone()
	out.CurrentSlideIndex = index
	return out
}

// SlideByID looks up a slide.
func (p Presentation) SlideByID(slideID string) (Slide, bool) {
	if idx := p.slideIndex(slideID); idx >= 0 {
		return p.Slides[idx], true
	}
	return Slide{}, false
}

// ReplaceSlide swaps in an updated slide by id. An unknown id is a no-op.
func (p Presentation) ReplaceSlide(slide Slide) Presentation {
	idx := p.slideIndex(slide.ID)
	if idx < 0 {
		return p
	}
	out := p.Clone()
	out.Slides[idx] = slide
	return out
}

// CurrentSlide returns the slide under the presenter pointer.
func (p Presentation) CurrentSlide() Slide {
	if len(p.Slides) == 0 {
		return Slide{}
	}
	idx := p.CurrentSlideIndex
	if idx < 0 || idx >= len(p.Slides) {
		idx = 0
	}
	return p.Slides[idx]
}

func (p Presentation) slideIndex(slideID string) int {
	for i, s := range p.Slides {
		if s.ID == slideID {
			return i
		}
	}
	return -1
}
