package canvas

import "deckcast/internal/domain"

// Clipboard is a single-slot buffer over store elements. Copy and Cut
// capture the selected element; Paste inserts an offset duplicate with a
// fresh id and selects it.
type Clipboard struct {
	item *domain.CanvasElement
}

// NewClipboard returns an empty clipboard.
func NewClipboard() *Clipboard {
	return &Clipboard{}
}

// Empty reports whether the slot is unoccupied.
func (c *Clipboard) Empty() bool { return c.item == nil }

// Copy captures the store's selected element. With no selection it is a
// no-op and reports false.
func (c *Clipboard) Copy(store *Store) bool {
	idx := store.indexOf(store.Selected())
	if idx < 0 {
		return false
	}
	snapshot := store.elements[idx].Clone()
	c.item = &snapshot
	return true
}

// Cut captures the selected element and removes it from the store. The
// removal commits a history step.
func (c *Clipboard) Cut(store *Store) bool {
	if !c.Copy(store) {
		return false
	}
	store.Remove(c.item.ID)
	return true
}

// Paste inserts a position-offset duplicate of the held element with a
// fresh id and selects it. Paste with an empty clipboard is a no-op and
// returns "".
func (c *Clipboard) Paste(store *Store) string {
	if c.item == nil {
		return ""
	}
	pasted := c.item.Clone()
	pasted.ID = domain.NewElementID()
	pasted.X += domain.DuplicateOffset
	pasted.Y += domain.DuplicateOffset

	next := append(store.Elements(), pasted)
	store.commit(next)
	store.selected = pasted.ID
	return pasted.ID
}
