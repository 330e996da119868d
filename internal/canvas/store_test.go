package canvas

import (
	"testing"

	"deckcast/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(domain.AspectWide)
}

func addElement(s *Store, x, y, w, h float64) string {
	return s.Add(domain.CreateElementRequest{
		Kind:   domain.KindRectangle,
		X:      x,
		Y:      y,
		Width:  w,
		Height: h,
	})
}

func floatPtr(f float64) *float64 { return &f }

func TestStore_AddSelectsNewElement(t *testing.T) {
	s := newTestStore()

	id := addElement(s, 10, 20, 100, 50)

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, id, s.Selected())
	assert.True(t, s.CanUndo())
}

func TestStore_UpdateMissingIDIsNoOp(t *testing.T) {
	s := newTestStore()
	addElement(s, 0, 0, 10, 10)
	require.True(t, s.CanUndo())

	s.Undo()
	require.False(t, s.CanUndo())

	s.Update("ghost", domain.UpdateElementRequest{X: floatPtr(5)})
	assert.False(t, s.CanUndo(), "a no-op must not record a history step")
}

func TestStore_UndoRedoAcrossMutations(t *testing.T) {
	s := newTestStore()

	a := addElement(s, 0, 0, 10, 10)
	b := addElement(s, 20, 20, 10, 10)
	s.Update(a, domain.UpdateElementRequest{X: floatPtr(100)})
	s.Remove(b)

	require.Equal(t, 1, s.Len())

	s.Undo() // un-remove b
	assert.Equal(t, 2, s.Len())

	s.Undo() // un-move a
	elements := s.Elements()
	assert.Equal(t, 0.0, elements[0].X)

	s.Undo() // un-add b
	assert.Equal(t, 1, s.Len())

	s.Undo() // un-add a
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.CanUndo())

	s.Redo()
	s.Redo()
	s.Redo()
	s.Redo()
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 100.0, s.Elements()[0].X)
	assert.False(t, s.CanRedo())
}

func TestStore_GestureCollapsesToOneUndoStep(t *testing.T) {
	s := newTestStore()
	id := addElement(s, 0, 0, 10, 10)

	// A drag produces many preview frames before the pointer is released.
	for x := 1.0; x <= 50; x++ {
		s.Preview(id, domain.UpdateElementRequest{X: floatPtr(x)})
	}
	s.EndGesture()

	assert.Equal(t, 50.0, s.Elements()[0].X)

	s.Undo()
	assert.Equal(t, 0.0, s.Elements()[0].X, "one undo reverts the whole gesture")

	s.Redo()
	assert.Equal(t, 50.0, s.Elements()[0].X)
}

func TestStore_CommitDuringGestureRecordsPreGestureState(t *testing.T) {
	s := newTestStore()
	id := addElement(s, 0, 0, 10, 10)

	// A committing mutation lands while a drag is still in flight.
	s.Preview(id, domain.UpdateElementRequest{X: floatPtr(25)})
	s.Update(id, domain.UpdateElementRequest{Y: floatPtr(99)})

	assert.Equal(t, 25.0, s.Elements()[0].X)
	assert.Equal(t, 99.0, s.Elements()[0].Y)

	s.Undo()
	assert.Equal(t, 0.0, s.Elements()[0].X, "undo restores the pre-drag position, not a mid-drag frame")
	assert.Equal(t, 0.0, s.Elements()[0].Y)

	// The interrupted gesture left nothing pending.
	s.EndGesture()
	s.Redo()
	assert.Equal(t, 25.0, s.Elements()[0].X)
	assert.Equal(t, 99.0, s.Elements()[0].Y)
}

func TestStore_EndGestureWithoutPreviewIsNoOp(t *testing.T) {
	s := newTestStore()
	addElement(s, 0, 0, 10, 10)
	s.Undo()
	require.False(t, s.CanUndo())

	s.EndGesture()
	assert.False(t, s.CanUndo())
}

func TestStore_Duplicate(t *testing.T) {
	s := newTestStore()
	id := addElement(s, 30, 40, 100, 50)

	newID := s.Duplicate(id)
	require.NotEmpty(t, newID)
	assert.NotEqual(t, id, newID)
	assert.Equal(t, newID, s.Selected())

	elements := s.Elements()
	require.Len(t, elements, 2)
	assert.Equal(t, 30+domain.DuplicateOffset, elements[1].X)
	assert.Equal(t, 40+domain.DuplicateOffset, elements[1].Y)
	assert.Equal(t, 100.0, elements[1].Width)

	assert.Empty(t, s.Duplicate("ghost"))
}

func TestStore_ZOrder(t *testing.T) {
	s := newTestStore()
	a := addElement(s, 0, 0, 10, 10)
	b := addElement(s, 0, 0, 10, 10)
	c := addElement(s, 0, 0, 10, 10)

	ids := func() []string {
		elements := s.Elements()
		out := make([]string, len(elements))
		for i, e := range elements {
			out[i] = e.ID
		}
		return out
	}

	s.BringToFront(a)
	assert.Equal(t, []string{b, c, a}, ids())

	s.SendToBack(c)
	assert.Equal(t, []string{c, b, a}, ids())

	// Already at the extremes: no-ops, no history step.
	before := ids()
	s.BringToFront(a)
	s.SendToBack(c)
	assert.Equal(t, before, ids())
}

func TestStore_Centering(t *testing.T) {
	s := newTestStore()
	id := addElement(s, 5, 5, 200, 100)

	s.CenterHorizontally(id)
	assert.Equal(t, (domain.CanvasWidth-200)/2, s.Elements()[0].X)

	s.CenterVertically(id)
	assert.Equal(t, (562.5-100)/2, s.Elements()[0].Y)
}

func TestStore_CenterVerticallyUsesAspectHeight(t *testing.T) {
	s := NewStore(domain.AspectSquare)
	id := addElement(s, 0, 0, 100, 100)

	s.CenterVertically(id)
	assert.Equal(t, 450.0, s.Elements()[0].Y)
}

func TestStore_UndoDropsDanglingSelection(t *testing.T) {
	s := newTestStore()
	addElement(s, 0, 0, 10, 10)
	b := addElement(s, 0, 0, 10, 10)
	s.Select(b)

	s.Undo() // b no longer exists
	assert.Empty(t, s.Selected())
}

func TestStore_LoadClearsHistoryAndSelection(t *testing.T) {
	s := newTestStore()
	id := addElement(s, 0, 0, 10, 10)
	s.Select(id)

	s.Load([]domain.CanvasElement{{ID: "x"}, {ID: "y"}})

	assert.Equal(t, 2, s.Len())
	assert.Empty(t, s.Selected())
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
}

func TestStore_SelectMissingClearsSelection(t *testing.T) {
	s := newTestStore()
	id := addElement(s, 0, 0, 10, 10)
	s.Select(id)
	require.Equal(t, id, s.Selected())

	s.Select("ghost")
	assert.Empty(t, s.Selected())
}
