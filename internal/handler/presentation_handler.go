package handler

import (
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"deckcast/internal/domain"
	"deckcast/internal/middleware"
	"deckcast/internal/service"
	"github.com/go-chi/chi/v5"
)

// PresentationHandler exposes deck CRUD, slide and element operations,
// the presenter pointer, and the read-only viewer snapshot.
type PresentationHandler struct {
	presentations *service.PresentationService
}

func NewPresentationHandler(presentations *service.PresentationService) *PresentationHandler {
	return &PresentationHandler{
		presentations: presentations,
	}
}

// Create handles POST /api/v1/presentations
func (h *PresentationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	creatorID := h.getUserID(r)
	if creatorID == "" {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req domain.CreatePresentationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.presentations.Create(ctx, &req, creatorID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to create presentation")
		return
	}

	h.respondJSON(w, http.StatusCreated, p)
}

// List handles GET /api/v1/presentations
func (h *PresentationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	creatorID := h.getUserID(r)
	if creatorID == "" {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	decks, err := h.presentations.List(ctx, creatorID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to list presentations")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"presentations": decks,
		"count":         len(decks),
	})
}

// Get handles GET /api/v1/presentations/{presentationId}
func (h *PresentationHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "presentationId")

	p, err := h.presentations.Get(ctx, id)
	if err != nil {
		h.respondServiceError(w, err, "Failed to load presentation")
		return
	}

	h.respondJSON(w, http.StatusOK, p)
}

// GetSnapshot handles GET /api/v1/presentations/{presentationId}/snapshot
// (the 1s viewer polling endpoint)
func (h *PresentationHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "presentationId")

	p, err := h.presentations.GetSnapshot(ctx, id)
	if err != nil {
		h.respondServiceError(w, err, "Failed to load snapshot")
		return
	}

	etag := h.generateETag(p)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=1")

	h.respondJSON(w, http.StatusOK, p)
}

// Save handles PUT /api/v1/presentations/{presentationId} (full document
// push from the editor's autosave)
func (h *PresentationHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "presentationId")

	var incoming domain.Presentation
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	incoming.ID = id

	saved, err := h.presentations.Save(ctx, incoming)
	if err != nil {
		h.respondServiceError(w, err, "Failed to save presentation")
		return
	}

	h.respondJSON(w, http.StatusOK, saved)
}

// Update handles PATCH /api/v1/presentations/{presentationId}
func (h *PresentationHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "presentationId")

	var req domain.UpdatePresentationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.presentations.Update(ctx, id, &req)
	if err != nil {
		h.respondServiceError(w, err, "Failed to update presentation")
		return
	}

	h.respondJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /api/v1/presentations/{presentationId}
func (h *PresentationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "presentationId")

	if err := h.presentations.Delete(ctx, id); err != nil {
		h.respondServiceError(w, err, "Failed to delete presentation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddSlide handles POST /api/v1/presentations/{presentationId}/slides
func (h *PresentationHandler) AddSlide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "presentationId")

	var req domain.AddSlideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.presentations.AddSlide(ctx, id, req.Layout)
	if err != nil {
		h.respondServiceError(w, err, "Failed to add slide")
		return
	}

	h.respondJSON(w, http.StatusCreated, p)
}

// RemoveSlide handles DELETE /api/v1/presentations/{presentationId}/slides/{slideId}
func (h *PresentationHandler) RemoveSlide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "presentationId")
	slideID := chi.URLParam(r, "slideId")

	p, err := h.presentations.RemoveSlide(ctx, id, slideID)
	if err != nil {
		if errors.Is(err, domain.ErrLastSlide) {
			h.respondError(w, http.StatusConflict, "Cannot remove the last slide")
			return
		}
		h.respondServiceError(w, err, "Failed to remove slide")
		return
	}

	h.respondJSON(w, http.StatusOK, p)
}

// ReorderSlides handles PUT /api/v1/presentations/{presentationId}/slides/order
func (h *PresentationHandler) ReorderSlides(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "presentationId")

	var req domain.ReorderSlidesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.presentations.ReorderSlides(ctx, id, req.Order)
	if err != nil {
		h.respondServiceError(w, err, "Failed to reorder slides")
		return
	}

	h.respondJSON(w, http.StatusOK, p)
}

// UpdateSlide handles PATCH /api/v1/presentations/{presentationId}/slides/{slideId}
func (h *PresentationHandler) UpdateSlide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "presentationId")
	slideID := chi.URLParam(r, "slideId")

	var req domain.UpdateSlideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.presentations.UpdateSlide(ctx, id, slideID, &req)
	if err != nil {
		h.respondServiceError(w, err, "Failed to update slide")
		return
	}

	h.respondJSON(w, http.StatusOK, p)
}

// SetPointer handles PUT /api/v1/presentations/{presentationId}/pointer
func (h *PresentationHandler) SetPointer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "presentationId")

	var req domain.SetPointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.presentations.SetPointer(ctx, id, req.Index)
	if err != nil {
		h.respondServiceError(w, err, "Failed to move pointer")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"current_slide_index": p.CurrentSlideIndex,
		"updated_at":          p.UpdatedAt,
	})
}

// CreateElement handles POST /api/v1/presentations/{presentationId}/slides/{slideId}/elements
func (h *PresentationHandler) CreateElement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "presentationId")
	slideID := chi.URLParam(r, "slideId")

	var req domain.CreateElementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, elementID, err := h.presentations.CreateElement(ctx, id, slideID, &req)
	if err != nil {
		h.respondServiceError(w, err, "Failed to create element")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"element_id":   elementID,
		"presentation": p,
	})
}

// UpdateElement handles PATCH /api/v1/presentations/{presentationId}/slides/{slideId}/elements/{elementId}
func (h *PresentationHandler) UpdateElement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "presentationId")
	slideID := chi.URLParam(r, "slideId")
	elementID := chi.URLParam(r, "elementId")

	var req domain.UpdateElementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.presentations.UpdateElement(ctx, id, slideID, elementID, &req)
	if err != nil {
		h.respondServiceError(w, err, "Failed to update element")
		return
	}

	h.respondJSON(w, http.StatusOK, p)
}

// DeleteElement handles DELETE /api/v1/presentations/{presentationId}/slides/{slideId}/elements/{elementId}
func (h *PresentationHandler) DeleteElement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "presentationId")
	slideID := chi.URLParam(r, "slideId")
	elementID := chi.URLParam(r, "elementId")

	p, err := h.presentations.DeleteElement(ctx, id, slideID, elementID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to delete element")
		return
	}

	h.respondJSON(w, http.StatusOK, p)
}

// Helper methods

func (h *PresentationHandler) getUserID(r *http.Request) string {
	if user := middleware.UserFromContext(r.Context()); user != nil {
		return user.Sub
	}
	return ""
}

func (h *PresentationHandler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.respondError(w, http.StatusNotFound, "Presentation not found")
	case errors.Is(err, domain.ErrStaleSave):
		h.respondError(w, http.StatusConflict, "Document was changed by another editor")
	default:
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}

func (h *PresentationHandler) generateETag(data interface{}) string {
	jsonData, _ := json.Marshal(data)
	hash := md5.Sum(jsonData)
	return fmt.Sprintf(`"%x"`, hash)
}

func (h *PresentationHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *PresentationHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{
		"error": message,
	})
}
