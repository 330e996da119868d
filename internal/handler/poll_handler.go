package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"deckcast/internal/domain"
	"deckcast/internal/middleware"
	"deckcast/internal/service"
	"github.com/go-chi/chi/v5"
)

// PollHandler exposes standalone poll lifecycle operations and the
// audience-facing short-code lookup.
type PollHandler struct {
	polls *service.PollService
}

func NewPollHandler(polls *service.PollService) *PollHandler {
	return &PollHandler{
		polls: polls,
	}
}

// Create handles POST /api/v1/polls
func (h *PollHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	creatorID := h.getUserID(r)
	if creatorID == "" {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req domain.CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" {
		h.respondError(w, http.StatusBadRequest, "Poll title is required")
		return
	}
	if len(req.Questions) == 0 {
		h.respondError(w, http.StatusBadRequest, "At least one question is required")
		return
	}

	poll, err := h.polls.Create(ctx, &req, creatorID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	h.respondJSON(w, http.StatusCreated, poll)
}

// Get handles GET /api/v1/polls/{pollId}
func (h *PollHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "pollId")

	poll, err := h.polls.Get(ctx, id)
	if err != nil {
		h.respondServiceError(w, err, "Failed to load poll")
		return
	}

	h.respondJSON(w, http.StatusOK, poll)
}

// GetByShortCode handles GET /api/v1/polls/code/{shortCode} (the
// audience join endpoint; each distinct visitor bumps the counter once)
func (h *PollHandler) GetByShortCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shortCode := chi.URLParam(r, "shortCode")

	poll, err := h.polls.GetByShortCode(ctx, shortCode, h.getVisitorID(r))
	if err != nil {
		h.respondServiceError(w, err, "Failed to load poll")
		return
	}

	h.respondJSON(w, http.StatusOK, poll)
}

// Publish handles POST /api/v1/polls/{pollId}/publish
func (h *PollHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "pollId")

	poll, err := h.polls.Publish(ctx, id)
	if err != nil {
		h.respondServiceError(w, err, "Failed to publish poll")
		return
	}

	h.respondJSON(w, http.StatusOK, poll)
}

// Schedule handles POST /api/v1/polls/{pollId}/schedule
func (h *PollHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "pollId")

	var req domain.SchedulePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ScheduledAt.IsZero() {
		h.respondError(w, http.StatusBadRequest, "scheduled_at is required")
		return
	}

	poll, err := h.polls.Schedule(ctx, id, req.ScheduledAt)
	if err != nil {
		h.respondServiceError(w, err, "Failed to schedule poll")
		return
	}

	h.respondJSON(w, http.StatusOK, poll)
}

// Close handles POST /api/v1/polls/{pollId}/close
func (h *PollHandler) Close(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "pollId")

	poll, err := h.polls.Close(ctx, id)
	if err != nil {
		h.respondServiceError(w, err, "Failed to close poll")
		return
	}

	h.respondJSON(w, http.StatusOK, poll)
}

// Delete handles DELETE /api/v1/polls/{pollId}
func (h *PollHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "pollId")

	if err := h.polls.Delete(ctx, id); err != nil {
		h.respondServiceError(w, err, "Failed to delete poll")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Helper methods

func (h *PollHandler) getUserID(r *http.Request) string {
	if user := middleware.UserFromContext(r.Context()); user != nil {
		return user.Sub
	}
	return ""
}

// getVisitorID identifies an audience member for the distinct-visitor
// counter. Browsers send a stable X-Visitor-ID; anything else falls
// back to the client IP.
func (h *PollHandler) getVisitorID(r *http.Request) string {
	if vid := r.Header.Get("X-Visitor-ID"); vid != "" {
		return vid
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

func (h *PollHandler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, domain.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "Poll not found")
		return
	}
	h.respondError(w, http.StatusInternalServerError, fallback)
}

func (h *PollHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *PollHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{
		"error": message,
	})
}
