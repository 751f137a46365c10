package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

type feedbackRequest struct {
	ArtistID string                `json:"artist_id"`
	Action   models.FeedbackAction `json:"action"`
	Notes    string                `json:"notes"`
}

// PostFeedback records a scouting decision. Feedback is append-only; it feeds
// the fit bias on the next scoring run.
func (h *Handler) PostFeedback(w http.ResponseWriter, r *http.Request) {
	labelID := chi.URLParam(r, "labelID")
	if _, err := h.db.GetLabel(labelID); err != nil {
		h.storeError(w, r, err)
		return
	}

	var req feedbackRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if req.ArtistID == "" {
		h.writeError(w, r, http.StatusBadRequest, errors.New("artist_id is required"))
		return
	}
	if !req.Action.Valid() {
		h.writeError(w, r, http.StatusBadRequest, fmt.Errorf("unknown action %q", req.Action))
		return
	}
	if _, err := h.db.GetArtist(req.ArtistID); err != nil {
		h.storeError(w, r, err)
		return
	}

	fb := &models.Feedback{
		ID:        uuid.NewString(),
		LabelID:   labelID,
		ArtistID:  req.ArtistID,
		Action:    req.Action,
		Notes:     req.Notes,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.db.InsertFeedback(fb); err != nil {
		h.storeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, fb)
}
