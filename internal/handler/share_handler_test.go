package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"deckcast/internal/domain"
	"deckcast/internal/repository"
	"deckcast/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newShareRouter(t *testing.T) (*chi.Mux, *repository.MemStore) {
	t.Helper()
	store := repository.NewMemStore()
	polls := service.NewPollService(store.Polls(), nil, zap.NewNop())
	presentations := service.NewPresentationService(store.Presentations(), nil, zap.NewNop())
	share := NewShareHandler(polls, presentations, "https://deckcast.example.com")

	r := chi.NewRouter()
	r.Get("/api/v1/polls/{pollId}/qr", share.PollQR)
	r.Get("/api/v1/polls/{pollId}/share", share.PollJoinInfo)
	r.Get("/api/v1/presentations/{presentationId}/qr", share.PresentationQR)
	return r, store
}

func TestShareHandler_PollJoinInfo(t *testing.T) {
	r, store := newShareRouter(t)

	poll := domain.NewPoll("lunch", "author")
	poll.ShortCode = "12345"
	poll.Status = domain.PollStatusPublished
	require.NoError(t, store.Polls().Save(context.Background(), poll))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/polls/"+poll.ID+"/share", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "12345", got["short_code"])
	assert.Equal(t, "https://deckcast.example.com/p/12345", got["join_url"])
}

func TestShareHandler_PollQR(t *testing.T) {
	r, store := newShareRouter(t)

	poll := domain.NewPoll("lunch", "author")
	poll.ShortCode = "12345"
	poll.Status = domain.PollStatusPublished
	require.NoError(t, store.Polls().Save(context.Background(), poll))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/polls/"+poll.ID+"/qr", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	// PNG magic bytes.
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestShareHandler_PollQR_NoCodeYet(t *testing.T) {
	r, store := newShareRouter(t)

	poll := domain.NewPoll("draft", "author")
	require.NoError(t, store.Polls().Save(context.Background(), poll))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/polls/"+poll.ID+"/qr", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestShareHandler_PresentationQR(t *testing.T) {
	r, store := newShareRouter(t)

	p := domain.NewPresentation("deck", "author")
	require.NoError(t, store.Presentations().Save(context.Background(), p))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/presentations/"+p.ID+"/qr?size=128", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/presentations/ghost/qr", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
