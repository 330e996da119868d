package canvas

import "deckcast/internal/domain"

// Store is the in-memory ordered element collection for the slide being
// edited. Collection order is z-order: later elements render on top.
// Every mutating operation funnels through commit so the history sees
// each change exactly once; operations naming a missing id are no-ops.
type Store struct {
	elements []domain.CanvasElement
	selected string
	aspect   domain.AspectRatio
	history  *History
	// gestureBase holds the pre-gesture snapshot while a drag or resize
	// is in flight, so the whole gesture collapses into one undo step.
	gestureBase []domain.CanvasElement
}

// NewStore builds an empty store for a canvas of the given ratio.
func NewStore(aspect domain.AspectRatio) *Store {
	return &Store{
		elements: []domain.CanvasElement{},
		aspect:   aspect,
		history:  NewHistory(),
	}
}

// Load replaces the collection without recording history, clearing both
// undo stacks and the selection. Used when the session switches slides.
func (s *Store) Load(elements []domain.CanvasElement) {
	s.elements = domain.CloneElements(elements)
	s.selected = ""
	s.gestureBase = nil
	s.history.Clear()
}

// Elements returns a copy of the collection in z-order.
func (s *Store) Elements() []domain.CanvasElement {
	return domain.CloneElements(s.elements)
}

// Len returns the element count.
func (s *Store) Len() int { return len(s.elements) }

// Selected returns the active element id, or "" when nothing is selected.
func (s *Store) Selected() string { return s.selected }

// Select marks an element as active. Selecting a missing id clears the
// selection.
func (s *Store) Select(id string) {
	if s.indexOf(id) < 0 {
		s.selected = ""
		return
	}
	s.selected = id
}

// Add inserts a new element on top of the stack and selects it.
func (s *Store) Add(req domain.CreateElementRequest) string {
	element := domain.CanvasElement{
		ID:      domain.NewElementID(),
		Kind:    req.Kind,
		X:       req.X,
		Y:       req.Y,
		Width:   req.Width,
		Height:  req.Height,
		Content: req.Content,
		Style:   req.Style,
	}

	next := append(s.Elements(), element)
	s.commit(next)
	s.selected = element.ID
	return element.ID
}

// Update patches an element's fields as one undo step.
func (s *Store) Update(id string, patch domain.UpdateElementRequest) {
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	next := s.Elements()
	next[idx] = applyPatch(next[idx], patch)
	s.commit(next)
}

// Preview applies a patch without recording history, for drag-in-progress
// frames. The first Preview of a gesture snapshots the base collection;
// EndGesture folds everything since then into a single undo step.
func (s *Store) Preview(id string, patch domain.UpdateElementRequest) {
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	if s.gestureBase == nil {
		s.gestureBase = domain.CloneElements(s.elements)
	}
	s.elements[idx] = applyPatch(s.elements[idx], patch)
}

// EndGesture commits an in-flight preview gesture as one history step.
// Without a pending gesture it is a no-op.
func (s *Store) EndGesture() {
	if s.gestureBase == nil {
		return
	}
	s.history.Commit(s.gestureBase)
	s.gestureBase = nil
}

// Remove deletes an element. Deleting the selected element clears the
// selection.
func (s *Store) Remove(id string) {
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	next := s.Elements()
	next = append(next[:idx], next[idx+1:]...)
	s.commit(next)
	if s.selected == id {
		s.selected = ""
	}
}

// Duplicate inserts a copy of an element with a fresh id, offset by the
// fixed delta, and selects it. It returns the new id, or "" for a
// missing source.
func (s *Store) Duplicate(id string) string {
	idx := s.indexOf(id)
	if idx < 0 {
		return ""
	}
	copied := s.elements[idx].Clone()
	copied.ID = domain.NewElementID()
	copied.X += domain.DuplicateOffset
	copied.Y += domain.DuplicateOffset

	next := append(s.Elements(), copied)
	s.commit(next)
	s.selected = copied.ID
	return copied.ID
}

// BringToFront moves an element to the end of the collection, the top of
// the z-order.
func (s *Store) BringToFront(id string) {
	idx := s.indexOf(id)
	if idx < 0 || idx == len(s.elements)-1 {
		return
	}
	next := s.Elements()
	element := next[idx]
	next = append(next[:idx], next[idx+1:]...)
	next = append(next, element)
	s.commit(next)
}

// SendToBack moves an element to the start of the collection, the bottom
// of the z-order.
func (s *Store) SendToBack(id string) {
	idx := s.indexOf(id)
	if idx <= 0 {
		return
	}
	next := s.Elements()
	element := next[idx]
	next = append(next[:idx], next[idx+1:]...)
	next = append([]domain.CanvasElement{element}, next...)
	s.commit(next)
}

// CenterHorizontally centers an element on the fixed logical canvas
// width. The logical canvas, not the rendered slide size, is the frame
// of reference.
func (s *Store) CenterHorizontally(id string) {
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	next := s.Elements()
	next[idx].X = (domain.CanvasWidth - next[idx].Width) / 2
	s.commit(next)
}

// CenterVertically centers an element on the logical canvas height for
// the store's aspect ratio.
func (s *Store) CenterVertically(id string) {
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	next := s.Elements()
	next[idx].Y = (s.aspect.CanvasHeight() - next[idx].Height) / 2
	s.commit(next)
}

// Undo restores the previous collection snapshot.
func (s *Store) Undo() {
	restored, ok := s.history.Undo(s.elements)
	if !ok {
		return
	}
	s.elements = restored
	s.dropDanglingSelection()
}

// Redo reverses the most recent Undo.
func (s *Store) Redo() {
	restored, ok := s.history.Redo(s.elements)
	if !ok {
		return
	}
	s.elements = restored
	s.dropDanglingSelection()
}

// CanUndo reports whether an undo step exists.
func (s *Store) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether a redo step exists.
func (s *Store) CanRedo() bool { return s.history.CanRedo() }

// commit is the single mutation funnel: record the outgoing collection
// in history, then adopt the new one. When a preview gesture is still in
// flight the pre-gesture snapshot is what undo must restore, not the
// mid-drag frame.
func (s *Store) commit(next []domain.CanvasElement) {
	base := s.elements
	if s.gestureBase != nil {
		base = s.gestureBase
	}
	s.history.Commit(base)
	s.elements = next
	s.gestureBase = nil
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, e := range s.elements {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) dropDanglingSelection() {
	if s.selected != "" && s.indexOf(s.selected) < 0 {
		s.selected = ""
	}
}

func applyPatch(e domain.CanvasElement, patch domain.UpdateElementRequest) domain.CanvasElement {
	if patch.X != nil {
		e.X = *patch.X
	}
	if patch.Y != nil {
		e.Y = *patch.Y
	}
	if patch.Width != nil {
		e.Width = *patch.Width
	}
	if patch.Height != nil {
		e.Height = *patch.Height
	}
	if patch.Rotation != nil {
		e.Rotation = *patch.Rotation
	}
	if patch.Content != nil {
		e.Content = *patch.Content
	}
	if patch.Style != nil {
		e.Style = *patch.Style
	}
	return e
}
