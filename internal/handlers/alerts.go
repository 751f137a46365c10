package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

// ListAlerts returns the label's alerts, newest first, optionally filtered by
// ?status=new|seen|dismissed.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	labelID := chi.URLParam(r, "labelID")
	if _, err := h.db.GetLabel(labelID); err != nil {
		h.storeError(w, r, err)
		return
	}

	status := models.AlertStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.AlertStatusNew, models.AlertStatusSeen, models.AlertStatusDismissed:
	default:
		h.writeError(w, r, http.StatusBadRequest, fmt.Errorf("unknown status %q", status))
		return
	}

	alerts, err := h.db.ListAlerts(labelID, status)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []*models.Alert{}
	}
	h.writeJSON(w, r, http.StatusOK, alerts)
}

type alertStatusRequest struct {
	Status models.AlertStatus `json:"status"`
}

// UpdateAlertStatus moves an alert to seen or dismissed. Reverting to new is
// not allowed.
func (h *Handler) UpdateAlertStatus(w http.ResponseWriter, r *http.Request) {
	var req alertStatusRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if req.Status != models.AlertStatusSeen && req.Status != models.AlertStatusDismissed {
		h.writeError(w, r, http.StatusBadRequest, errors.New("status must be seen or dismissed"))
		return
	}

	if err := h.db.UpdateAlertStatus(chi.URLParam(r, "alertID"), req.Status); err != nil {
		h.storeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": string(req.Status)})
}
