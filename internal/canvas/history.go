package canvas

import "deckcast/internal/domain"

// historyLimit bounds both stacks. Slides hold few elements, so full
// snapshots are cheap enough at this depth.
const historyLimit = 100

// History holds undo/redo state as full-collection snapshots. Snapshots
// rather than diffs keep the semantics trivial to reason about: undo is
// "adopt the previous collection", nothing else.
type History struct {
	past   [][]domain.CanvasElement
	future [][]domain.CanvasElement
}

// NewHistory returns empty undo/redo stacks.
func NewHistory() *History {
	return &History{}
}

// Commit records the collection being replaced and clears the redo
// stack. current is the collection before the mutation.
func (h *History) Commit(current []domain.CanvasElement) {
	h.past = append(h.past, domain.CloneElements(current))
	if len(h.past) > historyLimit {
		h.past = h.past[len(h.past)-historyLimit:]
	}
	h.future = nil
}

// Undo swaps the current collection for the most recent snapshot. It
// returns the collection to adopt and false when there is nothing to
// undo.
func (h *History) Undo(current []domain.CanvasElement) ([]domain.CanvasElement, bool) {
	if len(h.past) == 0 {
		return nil, false
	}
	restored := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]

	h.future = append([][]domain.CanvasElement{domain.CloneElements(current)}, h.future...)
	if len(h.future) > historyLimit {
		h.future = h.future[:historyLimit]
	}
	return restored, true
}

// Redo reverses the most recent Undo.
func (h *History) Redo(current []domain.CanvasElement) ([]domain.CanvasElement, bool) {
	if len(h.future) == 0 {
		return nil, false
	}
	restored := h.future[0]
	h.future = h.future[1:]

	h.past = append(h.past, domain.CloneElements(current))
	if len(h.past) > historyLimit {
		h.past = h.past[len(h.past)-historyLimit:]
	}
	return restored, true
}

// Clear drops both stacks. Called when the editing session moves to a
// different slide: there is no cross-slide undo.
func (h *History) Clear() {
	h.past = nil
	h.future = nil
}

// CanUndo reports whether an undo step exists.
func (h *History) CanUndo() bool { return len(h.past) > 0 }

// CanRedo reports whether a redo step exists.
func (h *History) CanRedo() bool { return len(h.future) > 0 }
