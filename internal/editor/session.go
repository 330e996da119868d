package editor

import (
	"sync"

	"deckcast/internal/canvas"
	"deckcast/internal/domain"
)

// Session is one author's editing state for a presentation: the document
// value, the canvas store for the slide being edited, and the clipboard.
// Element mutations go through the store (so undo/redo sees them), are
// folded back into the slide's serialized content, and reported through
// the mutation callback so the sync controller can arm its debounce.
type Session struct {
	mu           sync.Mutex
	presentation domain.Presentation
	store        *canvas.Store
	clipboard    *canvas.Clipboard
	activeSlide  string

	// onMutate receives the updated document after every committed
	// change. The sync controller registers itself here.
	onMutate func(domain.Presentation)

	// pending holds an open rich-text edit that has not been committed
	// to the store yet. An explicit save must flush it first.
	pending *pendingEdit
}

type pendingEdit struct {
	elementID string
	content   string
}

// NewSession opens an editing session on the first slide of the deck.
func NewSession(p domain.Presentation) *Session {
	s := &Session{
		presentation: p,
		store:        canvas.NewStore(p.AspectRatio),
		clipboard:    canvas.NewClipboard(),
	}
	if len(p.Slides) > 0 {
		s.openSlideLocked(p.Slides[0].ID)
	}
	return s
}

// OnMutate registers the callback fired after each committed change.
func (s *Session) OnMutate(fn func(domain.Presentation)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMutate = fn
}

// Presentation returns the current document value.
func (s *Session) Presentation() domain.Presentation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presentation
}

// ActiveSlide returns the id of the slide being edited.
func (s *Session) ActiveSlide() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeSlide
}

// OpenSlide switches the editing target. Undo/redo stacks belong to one
// slide's session, so switching clears them; a pending text edit on the
// old slide is flushed first.
func (s *Session) OpenSlide(slideID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slideID == s.activeSlide {
		return
	}
	s.flushPendingLocked()
	s.openSlideLocked(slideID)
}

func (s *Session) openSlideLocked(slideID string) {
	slide, ok := s.presentation.SlideByID(slideID)
	if !ok {
		return
	}
	s.activeSlide = slideID
	s.store.Load(slide.Elements())
}

// AddElement inserts an element on the active slide.
func (s *Session) AddElement(req domain.CreateElementRequest) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.store.Add(req)
	s.syncSlideLocked()
	return id
}

// UpdateElement patches element fields as one undo step.
func (s *Session) UpdateElement(id string, patch domain.UpdateElementRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Update(id, patch)
	s.syncSlideLocked()
}

// PreviewElement applies a drag-in-progress frame without committing a
// history step. The document is not synced: intermediate frames are not
// saved either.
func (s *Session) PreviewElement(id string, patch domain.UpdateElementRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Preview(id, patch)
}

// EndGesture folds the frames since the first PreviewElement into a
// single undo step and syncs the result.
func (s *Session) EndGesture() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.EndGesture()
	s.syncSlideLocked()
}

// RemoveElement deletes an element from the active slide.
func (s *Session) RemoveElement(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Remove(id)
	s.syncSlideLocked()
}

// DuplicateElement copies an element with a fresh id and offset position.
func (s *Session) DuplicateElement(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	newID := s.store.Duplicate(id)
	if newID != "" {
		s.syncSlideLocked()
	}
	return newID
}

// SelectElement marks the active element.
func (s *Session) SelectElement(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Select(id)
}

// BringToFront raises an element to the top of the z-order.
func (s *Session) BringToFront(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.BringToFront(id)
	s.syncSlideLocked()
}

// SendToBack lowers an element to the bottom of the z-order.
func (s *Session) SendToBack(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.SendToBack(id)
	s.syncSlideLocked()
}

// CenterHorizontally centers an element on the logical canvas width.
func (s *Session) CenterHorizontally(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.CenterHorizontally(id)
	s.syncSlideLocked()
}

// CenterVertically centers an element on the logical canvas height.
func (s *Session) CenterVertically(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.CenterVertically(id)
	s.syncSlideLocked()
}

// Undo restores the previous element snapshot on the active slide.
func (s *Session) Undo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Undo()
	s.syncSlideLocked()
}

// Redo reverses the most recent Undo.
func (s *Session) Redo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Redo()
	s.syncSlideLocked()
}

// Copy captures the selected element into the clipboard.
func (s *Session) Copy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clipboard.Copy(s.store)
}

// Cut captures the selected element and removes it.
func (s *Session) Cut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.clipboard.Cut(s.store)
	if ok {
		s.syncSlideLocked()
	}
	return ok
}

// Paste inserts the clipboard element with a fresh id, offset position.
func (s *Session) Paste() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.clipboard.Paste(s.store)
	if id != "" {
		s.syncSlideLocked()
	}
	return id
}

// SetPendingText records an open rich-text edit that has not been
// committed to the store yet.
func (s *Session) SetPendingText(elementID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &pendingEdit{elementID: elementID, content: content}
}

// FlushPending commits the open rich-text buffer into the document.
// Registered as the sync controller's before-flush hook so an explicit
// save never loses the edit in progress.
func (s *Session) FlushPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushPendingLocked()
}

func (s *Session) flushPendingLocked() {
	if s.pending == nil {
		return
	}
	content := s.pending.content
	id := s.pending.elementID
	s.pending = nil
	s.store.Update(id, domain.UpdateElementRequest{Content: &content})
	s.syncSlideLocked()
}

// AddSlide appends a slide from a layout template and opens it.
func (s *Session) AddSlide(layout string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushPendingLocked()
	s.adopt(s.presentation.AddSlide(layout))
	s.openSlideLocked(s.presentation.CurrentSlide().ID)
	s.notifyLocked()
}

// RemoveSlide deletes a slide; the last remaining slide is protected.
func (s *Session) RemoveSlide(slideID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.presentation.RemoveSlide(slideID)
	if err != nil {
		return err
	}
	s.adopt(next)
	if s.activeSlide == slideID {
		s.openSlideLocked(s.presentation.CurrentSlide().ID)
	}
	s.notifyLocked()
	return nil
}

// ReorderSlides replaces the slide order wholesale.
func (s *Session) ReorderSlides(order []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adopt(s.presentation.ReorderSlides(order))
	s.notifyLocked()
}

// SetPointer moves the presenter's slide index.
func (s *Session) SetPointer(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adopt(s.presentation.SetCurrentSlide(index))
	s.notifyLocked()
}

// ApplyRemote adopts a document pulled from the store. If the active
// slide's content changed remotely the canvas is reloaded, which clears
// undo/redo for that slide.
func (s *Session) ApplyRemote(p domain.Presentation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hadSlide := s.presentation.SlideByID(s.activeSlide)
	s.presentation = p

	slide, ok := p.SlideByID(s.activeSlide)
	switch {
	case !ok:
		s.openSlideLocked(p.CurrentSlide().ID)
	case !hadSlide || slide.Content != prev.Content:
		s.store.Load(slide.Elements())
	}
}

// syncSlideLocked folds the canvas collection back into the active
// slide's serialized content and fires the mutation callback.
func (s *Session) syncSlideLocked() {
	slide, ok := s.presentation.SlideByID(s.activeSlide)
	if !ok {
		return
	}
	updated := slide.WithElements(s.store.Elements())
	if updated.Content == slide.Content {
		return
	}
	s.adopt(s.presentation.ReplaceSlide(updated))
	s.notifyLocked()
}

func (s *Session) adopt(p domain.Presentation) {
	s.presentation = p
}

func (s *Session) notifyLocked() {
	if s.onMutate != nil {
		s.onMutate(s.presentation)
	}
}
