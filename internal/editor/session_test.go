package editor

import (
	"testing"

	"deckcast/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession() *Session {
	return NewSession(domain.NewPresentation("deck", "author"))
}

func floatPtr(f float64) *float64 { return &f }

func TestSession_ElementMutationFoldsIntoSlideContent(t *testing.T) {
	s := newTestSession()

	var notified []domain.Presentation
	s.OnMutate(func(p domain.Presentation) {
		notified = append(notified, p)
	})

	id := s.AddElement(domain.CreateElementRequest{Kind: domain.KindText, X: 1, Y: 2, Width: 10, Height: 10})

	require.Len(t, notified, 1, "each committed change fires the mutation callback once")

	slide := s.Presentation().Slides[0]
	elements := slide.Elements()
	require.Len(t, elements, 1)
	assert.Equal(t, id, elements[0].ID)
	assert.Equal(t, domain.KindText, elements[0].Kind)
}

func TestSession_PreviewDoesNotNotify(t *testing.T) {
	s := newTestSession()
	id := s.AddElement(domain.CreateElementRequest{Kind: domain.KindText, Width: 10, Height: 10})

	calls := 0
	s.OnMutate(func(domain.Presentation) { calls++ })

	s.PreviewElement(id, domain.UpdateElementRequest{X: floatPtr(5)})
	s.PreviewElement(id, domain.UpdateElementRequest{X: floatPtr(9)})
	assert.Zero(t, calls, "drag frames are not persisted")

	s.EndGesture()
	assert.Equal(t, 1, calls, "the finished gesture syncs once")

	elements := s.Presentation().Slides[0].Elements()
	assert.Equal(t, 9.0, elements[0].X)
}

func TestSession_OpenSlideClearsUndo(t *testing.T) {
	s := newTestSession()
	s.AddElement(domain.CreateElementRequest{Kind: domain.KindText, Width: 10, Height: 10})

	s.AddSlide(domain.LayoutBlank)
	second := s.ActiveSlide()
	require.NotEmpty(t, second)

	// Undo on the fresh slide must not resurrect the first slide's steps.
	s.Undo()
	assert.Empty(t, s.Presentation().Slides[1].Elements())

	first := s.Presentation().Slides[0]
	assert.Len(t, first.Elements(), 1, "the other slide keeps its content")
}

func TestSession_AddSlideOpensIt(t *testing.T) {
	s := newTestSession()

	s.AddSlide(domain.LayoutPoll)

	p := s.Presentation()
	require.Len(t, p.Slides, 2)
	assert.Equal(t, 1, p.CurrentSlideIndex)
	assert.Equal(t, p.Slides[1].ID, s.ActiveSlide())
}

func TestSession_RemoveSlide(t *testing.T) {
	s := newTestSession()
	s.AddSlide(domain.LayoutBlank)
	second := s.ActiveSlide()

	require.NoError(t, s.RemoveSlide(second))
	assert.Len(t, s.Presentation().Slides, 1)
	assert.Equal(t, s.Presentation().Slides[0].ID, s.ActiveSlide())

	err := s.RemoveSlide(s.ActiveSlide())
	assert.ErrorIs(t, err, domain.ErrLastSlide)
}

func TestSession_PendingTextFlushedOnSlideSwitch(t *testing.T) {
	s := newTestSession()
	id := s.AddElement(domain.CreateElementRequest{Kind: domain.KindText, Width: 10, Height: 10})
	first := s.ActiveSlide()

	s.SetPendingText(id, "draft in progress")
	s.AddSlide(domain.LayoutBlank)

	firstSlide, ok := s.Presentation().SlideByID(first)
	require.True(t, ok)
	elements := firstSlide.Elements()
	require.Len(t, elements, 1)
	assert.Equal(t, "draft in progress", elements[0].Content)
}

func TestSession_FlushPending(t *testing.T) {
	s := newTestSession()
	id := s.AddElement(domain.CreateElementRequest{Kind: domain.KindText, Width: 10, Height: 10})

	calls := 0
	s.OnMutate(func(domain.Presentation) { calls++ })

	s.SetPendingText(id, "typed text")
	assert.Zero(t, calls, "an open buffer is not a committed change")

	s.FlushPending()
	assert.Equal(t, 1, calls)
	assert.Equal(t, "typed text", s.Presentation().Slides[0].Elements()[0].Content)

	s.FlushPending()
	assert.Equal(t, 1, calls, "flushing twice commits once")
}

func TestSession_CopyPasteAcrossSlides(t *testing.T) {
	s := newTestSession()
	id := s.AddElement(domain.CreateElementRequest{Kind: domain.KindText, X: 10, Y: 10, Width: 10, Height: 10})
	s.SelectElement(id)
	require.True(t, s.Copy())

	s.AddSlide(domain.LayoutBlank)
	pasted := s.Paste()
	require.NotEmpty(t, pasted)

	second := s.Presentation().Slides[1]
	elements := second.Elements()
	require.Len(t, elements, 1)
	assert.Equal(t, pasted, elements[0].ID)
	assert.Equal(t, 10+domain.DuplicateOffset, elements[0].X)
}

func TestSession_ApplyRemote(t *testing.T) {
	t.Run("remote change to the active slide reloads the canvas", func(t *testing.T) {
		s := newTestSession()
		s.AddElement(domain.CreateElementRequest{Kind: domain.KindText, Width: 10, Height: 10})

		remote := s.Presentation()
		slide := remote.Slides[0]
		remote = remote.ReplaceSlide(slide.WithElements([]domain.CanvasElement{
			{ID: "remote-el", Kind: domain.KindRectangle},
		})).Touch()

		s.ApplyRemote(remote)

		elements := s.Presentation().Slides[0].Elements()
		require.Len(t, elements, 1)
		assert.Equal(t, "remote-el", elements[0].ID)

		// The reload clears local undo for that slide.
		s.Undo()
		assert.Len(t, s.Presentation().Slides[0].Elements(), 1)
	})

	t.Run("active slide deleted remotely falls back to the pointer slide", func(t *testing.T) {
		s := newTestSession()
		s.AddSlide(domain.LayoutBlank)
		active := s.ActiveSlide()

		remote, err := s.Presentation().RemoveSlide(active)
		require.NoError(t, err)

		s.ApplyRemote(remote.Touch())
		assert.Equal(t, remote.CurrentSlide().ID, s.ActiveSlide())
	})
}

func TestSession_SetPointerNotifies(t *testing.T) {
	s := newTestSession()
	s.AddSlide(domain.LayoutBlank)

	calls := 0
	s.OnMutate(func(domain.Presentation) { calls++ })

	s.SetPointer(0)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, s.Presentation().CurrentSlideIndex)
}
