package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) PipelineStatus(w http.ResponseWriter, r *http.Request) {
	labelID := chi.URLParam(r, "labelID")
	if _, err := h.db.GetLabel(labelID); err != nil {
		h.storeError(w, r, err)
		return
	}
	run, err := h.pipeline.Status(labelID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, run)
}

// PipelineRun enqueues a run for the label. A run already queued or running
// answers 409.
func (h *Handler) PipelineRun(w http.ResponseWriter, r *http.Request) {
	labelID := chi.URLParam(r, "labelID")
	if _, err := h.db.GetLabel(labelID); err != nil {
		h.storeError(w, r, err)
		return
	}
	if err := h.pipeline.Enqueue(labelID); err != nil {
		h.storeError(w, r, err)
		return
	}
	run, err := h.pipeline.Status(labelID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusAccepted, run)
}

func (h *Handler) PipelineCancel(w http.ResponseWriter, r *http.Request) {
	labelID := chi.URLParam(r, "labelID")
	if _, err := h.db.GetLabel(labelID); err != nil {
		h.storeError(w, r, err)
		return
	}
	if err := h.pipeline.Cancel(labelID); err != nil {
		h.storeError(w, r, err)
		return
	}
	run, err := h.pipeline.Status(labelID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusAccepted, run)
}
