package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"deckcast/internal/domain"
	"deckcast/internal/service"
	"github.com/go-chi/chi/v5"
)

// VoteHandler accepts audience ballots, both against a poll element
// embedded in a presentation slide and against a standalone poll.
type VoteHandler struct {
	votes *service.VoteService
}

func NewVoteHandler(votes *service.VoteService) *VoteHandler {
	return &VoteHandler{
		votes: votes,
	}
}

// SubmitDeckVote handles POST /api/v1/presentations/{presentationId}/votes
func (h *VoteHandler) SubmitDeckVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	presentationID := chi.URLParam(r, "presentationId")

	var req domain.SubmitVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validateBallot(req.OptionIDs, req.Voter); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	response, err := h.votes.SubmitDeckVote(ctx, presentationID, &req)
	if err != nil {
		h.respondVoteError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, response)
}

// SubmitPollVote handles POST /api/v1/polls/code/{shortCode}/votes
func (h *VoteHandler) SubmitPollVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shortCode := chi.URLParam(r, "shortCode")

	var req domain.PollVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validateBallot(req.OptionIDs, req.Voter); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	poll, err := h.votes.SubmitPollVote(ctx, shortCode, &req)
	if err != nil {
		h.respondVoteError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, poll)
}

// Helper methods

func (h *VoteHandler) validateBallot(optionIDs []string, voter domain.VoterIdentity) error {
	if len(optionIDs) == 0 {
		return errors.New("at least one option is required")
	}
	if voter.Email == "" || !strings.Contains(voter.Email, "@") {
		return errors.New("valid voter email is required")
	}
	return nil
}

func (h *VoteHandler) respondVoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDuplicateVote):
		h.respondError(w, http.StatusConflict, "You have already voted")
	case errors.Is(err, domain.ErrPollClosed):
		h.respondError(w, http.StatusForbidden, "Poll is not accepting votes")
	case errors.Is(err, domain.ErrNoPollTarget):
		h.respondError(w, http.StatusUnprocessableEntity, "No poll found on this slide")
	case errors.Is(err, domain.ErrNotFound):
		h.respondError(w, http.StatusNotFound, "Not found")
	default:
		h.respondError(w, http.StatusInternalServerError, "Failed to submit vote")
	}
}

func (h *VoteHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *VoteHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{
		"error": message,
	})
}
