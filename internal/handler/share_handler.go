package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"deckcast/internal/domain"
	"deckcast/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

// ShareHandler serves join links and QR codes the presenter puts on
// screen for the audience.
type ShareHandler struct {
	polls         *service.PollService
	presentations *service.PresentationService
	publicBaseURL string
}

func NewShareHandler(polls *service.PollService, presentations *service.PresentationService, publicBaseURL string) *ShareHandler {
	return &ShareHandler{
		polls:         polls,
		presentations: presentations,
		publicBaseURL: publicBaseURL,
	}
}

// PollQR handles GET /api/v1/polls/{pollId}/qr and returns a PNG
// encoding the audience join URL.
func (h *ShareHandler) PollQR(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "pollId")

	poll, err := h.polls.Get(ctx, id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if poll.ShortCode == "" {
		h.respondError(w, http.StatusConflict, "Poll has no join code yet, publish it first")
		return
	}

	h.servePNG(w, r, fmt.Sprintf("%s/p/%s", h.publicBaseURL, poll.ShortCode))
}

// PresentationQR handles GET /api/v1/presentations/{presentationId}/qr
// and returns a PNG encoding the viewer URL.
func (h *ShareHandler) PresentationQR(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "presentationId")

	p, err := h.presentations.Get(ctx, id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.servePNG(w, r, fmt.Sprintf("%s/view/%s", h.publicBaseURL, p.ID))
}

// PollJoinInfo handles GET /api/v1/polls/{pollId}/share and returns the
// join URL and code as JSON for clients that render their own UI.
func (h *ShareHandler) PollJoinInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "pollId")

	poll, err := h.polls.Get(ctx, id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if poll.ShortCode == "" {
		h.respondError(w, http.StatusConflict, "Poll has no join code yet, publish it first")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"short_code": poll.ShortCode,
		"join_url":   fmt.Sprintf("%s/p/%s", h.publicBaseURL, poll.ShortCode),
	})
}

// Helper methods

func (h *ShareHandler) servePNG(w http.ResponseWriter, r *http.Request, url string) {
	size := defaultQRSize
	if s := r.URL.Query().Get("size"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 && parsed <= maxQRSize {
			size = parsed
		}
	}

	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *ShareHandler) respondServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "Not found")
		return
	}
	h.respondError(w, http.StatusInternalServerError, "Failed to load share target")
}

func (h *ShareHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *ShareHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{
		"error": message,
	})
}
