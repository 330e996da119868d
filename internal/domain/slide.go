package domain

import "github.com/google/uuid"

// Slide layout tags. Informational only: the tag records which template
// spawned the slide but does not constrain its content.
const (
	LayoutBlank        = "blank"
	LayoutPoll         = "poll"
	LayoutQuiz         = "quiz"
	LayoutQA           = "qa"
	LayoutTitle        = "title"
	LayoutTitleContent = "title-content"
)

// Slide is one page of a presentation. Content holds the serialized
// CanvasElement collection as an opaque JSON string so the outer
// persistence schema never has to track the element schema.
type Slide struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	Background string `json:"background,omitempty"`
	Layout     string `json:"layout,omitempty"`
}

// NewSlide builds a slide for the given layout and aspect ratio. Poll,
// quiz and qa layouts start with a single template element sized to fill
// the canvas; everything else starts empty.
func NewSlide(layout string, aspect AspectRatio) Slide {
	slide := Slide{
		ID:         uuid.NewString(),
		Content:    "[]",
		Background: "#ffffff",
		Layout:     layout,
	}

	var kind ElementKind
	switch layout {
	case LayoutPoll:
		kind = KindPollTmpl
	case LayoutQuiz:
		kind = KindQuizTmpl
	case LayoutQA:
		kind = KindQATmpl
	default:
		return slide
	}

	template := CanvasElement{
		ID:     NewElementID(),
		Kind:   kind,
		X:      0,
		Y:      0,
		Width:  CanvasWidth,
		Height: aspect.CanvasHeight(),
	}
	switch kind {
	case KindQATmpl:
		template.Content = `{"question":"","entries":[]}`
	default:
		template.Content = EncodePollPayload(DefaultPollPayload())
	}

	slide.Content = MarshalElements([]CanvasElement{template})
	return slide
}

// Elements decodes the slide's element collection, degrading malformed
// content to an empty collection.
func (s Slide) Elements() []CanvasElement {
	return ParseElements(s.Content)
}

// WithElements returns a copy of the slide holding the given collection.
func (s Slide) WithElements(elements []CanvasElement) Slide {
	s.Content = MarshalElements(elements)
	return s
}
