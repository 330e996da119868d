package repository

import (
	"context"
	"testing"
	"time"

	"deckcast/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestFileStore_PresentationRoundTrip(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	p := domain.NewPresentation("My deck", "creator-1").AddSlide(domain.LayoutPoll)
	require.NoError(t, store.Presentations().Save(ctx, p))

	loaded, err := store.Presentations().Load(ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, p.ID, loaded.ID)
	assert.Equal(t, "My deck", loaded.Title)
	require.Len(t, loaded.Slides, 2)
	assert.Equal(t, p.Slides[1].Content, loaded.Slides[1].Content, "slide content survives verbatim")
	assert.Equal(t, 1, loaded.CurrentSlideIndex)
}

func TestFileStore_LoadMissing(t *testing.T) {
	store := newTestFileStore(t)

	_, err := store.Presentations().Load(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	p := domain.NewPresentation("v1", "c")
	require.NoError(t, store.Presentations().Save(ctx, p))

	p.Title = "v2"
	require.NoError(t, store.Presentations().Save(ctx, p))

	loaded, err := store.Presentations().Load(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", loaded.Title)
}

func TestFileStore_Delete(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	p := domain.NewPresentation("deck", "c")
	require.NoError(t, store.Presentations().Save(ctx, p))
	require.NoError(t, store.Presentations().Delete(ctx, p.ID))

	_, err := store.Presentations().Load(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.Presentations().Delete(ctx, p.ID), domain.ErrNotFound)
}

func TestFileStore_ListByCreator(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	first := domain.NewPresentation("older", "me")
	first.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	second := domain.NewPresentation("newer", "me")
	other := domain.NewPresentation("not mine", "them")

	for _, p := range []domain.Presentation{first, second, other} {
		require.NoError(t, store.Presentations().Save(ctx, p))
	}

	mine, err := store.Presentations().ListByCreator(ctx, "me")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "newer", mine[0].Title, "newest first")
	assert.Equal(t, "older", mine[1].Title)
}

func TestFileStore_PollRoundTripAndShortCode(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	p := domain.NewPoll("Team lunch", "c")
	p.ShortCode = "54321"
	p.Status = domain.PollStatusPublished
	p.Questions = []domain.PollQuestion{
		{ID: "q1", Text: "Where?", Options: []domain.PollOption{{ID: "1", Text: "Pizza"}}},
	}
	require.NoError(t, store.Polls().Save(ctx, p))

	byCode, err := store.Polls().LoadByShortCode(ctx, "54321")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byCode.ID)
	require.Len(t, byCode.Questions, 1)

	_, err = store.Polls().LoadByShortCode(ctx, "00000")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	taken, err := store.Polls().ShortCodeExists(ctx, "54321")
	require.NoError(t, err)
	assert.True(t, taken)

	free, err := store.Polls().ShortCodeExists(ctx, "00000")
	require.NoError(t, err)
	assert.False(t, free)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileStore(dir)
	require.NoError(t, err)
	p := domain.NewPresentation("deck", "c")
	require.NoError(t, first.Presentations().Save(ctx, p))

	second, err := NewFileStore(dir)
	require.NoError(t, err)
	loaded, err := second.Presentations().Load(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "deck", loaded.Title)
}
