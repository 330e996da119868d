package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"deckcast/internal/domain"
	"deckcast/internal/repository"
	"deckcast/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (*chi.Mux, *repository.MemStore) {
	t.Helper()
	store := repository.NewMemStore()
	presentations := service.NewPresentationService(store.Presentations(), nil, zap.NewNop())
	votes := service.NewVoteService(store.Presentations(), store.Polls(), nil, zap.NewNop())
	polls := service.NewPollService(store.Polls(), nil, zap.NewNop())

	presentationHandler := NewPresentationHandler(presentations)
	voteHandler := NewVoteHandler(votes)
	pollHandler := NewPollHandler(polls)

	r := chi.NewRouter()
	r.Get("/api/v1/presentations/{presentationId}", presentationHandler.Get)
	r.Get("/api/v1/presentations/{presentationId}/snapshot", presentationHandler.GetSnapshot)
	r.Put("/api/v1/presentations/{presentationId}", presentationHandler.Save)
	r.Put("/api/v1/presentations/{presentationId}/pointer", presentationHandler.SetPointer)
	r.Delete("/api/v1/presentations/{presentationId}/slides/{slideId}", presentationHandler.RemoveSlide)
	r.Post("/api/v1/presentations/{presentationId}/votes", voteHandler.SubmitDeckVote)
	r.Get("/api/v1/polls/code/{shortCode}", pollHandler.GetByShortCode)
	r.Post("/api/v1/polls/code/{shortCode}/votes", voteHandler.SubmitPollVote)
	return r, store
}

func seedDeck(t *testing.T, store *repository.MemStore) domain.Presentation {
	t.Helper()
	p := domain.NewPresentation("deck", "author").AddSlide(domain.LayoutPoll)
	require.NoError(t, store.Presentations().Save(context.Background(), p))
	return p
}

func TestPresentationHandler_Get(t *testing.T) {
	r, store := newTestRouter(t)
	p := seedDeck(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/presentations/"+p.ID, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Presentation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, p.ID, got.ID)
	assert.Len(t, got.Slides, 2)
}

func TestPresentationHandler_Get_NotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/presentations/ghost", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPresentationHandler_Snapshot_ETag(t *testing.T) {
	r, store := newTestRouter(t)
	p := seedDeck(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/presentations/"+p.ID+"/snapshot", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=1")

	// Polling viewers replay the ETag and get a body-less 304.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/presentations/"+p.ID+"/snapshot", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func TestPresentationHandler_Save_StaleConflict(t *testing.T) {
	r, store := newTestRouter(t)
	p := seedDeck(t, store)

	// Someone else saved a newer revision.
	newer := p
	newer.UpdatedAt = p.UpdatedAt.Add(time.Second)
	require.NoError(t, store.Presentations().Save(context.Background(), newer))

	body, err := json.Marshal(p)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/presentations/"+p.ID, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPresentationHandler_SetPointer(t *testing.T) {
	r, store := newTestRouter(t)
	p := seedDeck(t, store)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/presentations/"+p.ID+"/pointer",
		bytes.NewReader([]byte(`{"index": 0}`)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := store.Presentations().Load(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CurrentSlideIndex)
}

func TestPresentationHandler_RemoveSlide_LastSlideConflict(t *testing.T) {
	r, store := newTestRouter(t)
	p := domain.NewPresentation("single", "author")
	require.NoError(t, store.Presentations().Save(context.Background(), p))

	req := httptest.NewRequest(http.MethodDelete,
		"/api/v1/presentations/"+p.ID+"/slides/"+p.Slides[0].ID, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestVoteHandler_SubmitDeckVote(t *testing.T) {
	r, store := newTestRouter(t)
	p := seedDeck(t, store)
	slide := p.Slides[1]
	payload := domain.DecodePollPayload(slide.Elements()[0].Content)

	body, err := json.Marshal(domain.SubmitVoteRequest{
		SlideID:   slide.ID,
		OptionIDs: []string{payload.Options[0].ID},
		Voter:     domain.VoterIdentity{Email: "a@example.com"},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/presentations/"+p.ID+"/votes", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp domain.VoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TotalVotes)
}

func TestVoteHandler_Validation(t *testing.T) {
	r, store := newTestRouter(t)
	p := seedDeck(t, store)

	tests := []struct {
		name string
		body string
	}{
		{
			name: "malformed JSON",
			body: `{"slide_id":`,
		},
		{
			name: "no options selected",
			body: `{"slide_id":"s1","option_ids":[],"voter":{"email":"a@example.com"}}`,
		},
		{
			name: "missing voter email",
			body: `{"slide_id":"s1","option_ids":["1"],"voter":{"name":"Ada"}}`,
		},
		{
			name: "invalid voter email",
			body: `{"slide_id":"s1","option_ids":["1"],"voter":{"email":"not-an-email"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost,
				"/api/v1/presentations/"+p.ID+"/votes", bytes.NewReader([]byte(tt.body)))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestVoteHandler_PollVoteStatusMapping(t *testing.T) {
	r, store := newTestRouter(t)
	ctx := context.Background()

	poll := domain.NewPoll("lunch", "author")
	poll.ShortCode = "12345"
	poll.Status = domain.PollStatusClosed
	poll.Questions = []domain.PollQuestion{
		{ID: "q1", Options: []domain.PollOption{{ID: "1"}}},
	}
	require.NoError(t, store.Polls().Save(ctx, poll))

	body := `{"question_id":"q1","option_ids":["1"],"voter":{"email":"a@example.com"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/polls/code/12345/votes", bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPollHandler_GetByShortCode(t *testing.T) {
	r, store := newTestRouter(t)
	ctx := context.Background()

	poll := domain.NewPoll("lunch", "author")
	poll.ShortCode = "12345"
	poll.Status = domain.PollStatusPublished
	require.NoError(t, store.Polls().Save(ctx, poll))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/polls/code/12345", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Poll
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, poll.ID, got.ID)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/polls/code/99999", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
