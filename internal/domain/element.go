package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ElementKind tags a canvas element with how its content is interpreted
// and how it is rendered.
type ElementKind string

const (
	KindText       ElementKind = "text"
	KindImage      ElementKind = "image"
	KindRectangle  ElementKind = "rectangle"
	KindEllipse    ElementKind = "ellipse"
	KindTriangle   ElementKind = "triangle"
	KindArrow      ElementKind = "arrow"
	KindStar       ElementKind = "star"
	KindLine       ElementKind = "line"
	KindArrowLine  ElementKind = "arrow-line"
	KindPolygon    ElementKind = "polygon"
	KindWaveSine   ElementKind = "wave-sine"
	KindWaveSquare ElementKind = "wave-square"
	KindWaveTan    ElementKind = "wave-tan"
	KindPollWidget ElementKind = "poll-widget"
	KindQRWidget   ElementKind = "qr-widget"
	KindPollTmpl   ElementKind = "poll-template"
	KindQuizTmpl   ElementKind = "quiz-template"
	KindQATmpl     ElementKind = "qa-template"
)

// CanvasWidth is the fixed logical width of a slide. All element
// coordinates live in this space regardless of the rendered size.
const CanvasWidth = 1000.0

// DuplicateOffset is the fixed delta applied to the position of a
// duplicated or pasted element.
const DuplicateOffset = 20.0

// CanvasElement is one drawable or interactive item on a slide. The
// position of an element within its slide's collection is its z-order:
// later means on top, there is no separate z-index field.
type CanvasElement struct {
	ID       string                 `json:"id"`
	Kind     ElementKind            `json:"kind"`
	X        float64                `json:"x"`
	Y        float64                `json:"y"`
	Width    float64                `json:"width"`
	Height   float64                `json:"height"`
	Rotation float64                `json:"rotation,omitempty"`
	// Content is opaque at this level: plain text for text elements,
	// a serialized payload for widget and template kinds.
	Content string                 `json:"content,omitempty"`
	Style   map[string]interface{} `json:"style,omitempty"`
}

// NewElementID returns a fresh element id.
func NewElementID() string {
	return uuid.NewString()
}

// Clone returns a deep copy of the element.
func (e CanvasElement) Clone() CanvasElement {
	out := e
	if e.Style != nil {
		out.Style = make(map[string]interface{}, len(e.Style))
		for k, v := range e.Style {
			out.Style[k] = v
		}
	}
	return out
}

// CloneElements deep-copies an element collection preserving order.
func CloneElements(elements []CanvasElement) []CanvasElement {
	out := make([]CanvasElement, len(elements))
	for i, e := range elements {
		out[i] = e.Clone()
	}
	return out
}

// ParseElements decodes a slide's serialized element collection. Missing
// or malformed content degrades to an empty collection, never an error:
// a viewer must render a half-written slide, not crash on it.
func ParseElements(content string) []CanvasElement {
	if content == "" {
		return []CanvasElement{}
	}
	var elements []CanvasElement
	if err := json.Unmarshal([]byte(content), &elements); err != nil {
		return []CanvasElement{}
	}
	if elements == nil {
		return []CanvasElement{}
	}
	return elements
}

// MarshalElements encodes an element collection to its canonical JSON
// array form.
func MarshalElements(elements []CanvasElement) string {
	if elements == nil {
		elements = []CanvasElement{}
	}
	data, err := json.Marshal(elements)
	if err != nil {
		return "[]"
	}
	return string(data)
}
