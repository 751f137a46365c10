package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/scoutfeed/internal/constants"
	"github.com/cesargomez89/scoutfeed/internal/models"
)

type feedResponse struct {
	BatchID   string                  `json:"batch_id,omitempty"`
	CreatedAt string                  `json:"created_at,omitempty"`
	Total     int                     `json:"total"`
	Items     []*models.ScoutFeedItem `json:"items"`
}

// ScoutFeed serves the latest ranked batch. An empty feed is a 200 with no
// items, not an error; the pipeline simply has not produced a batch yet.
func (h *Handler) ScoutFeed(w http.ResponseWriter, r *http.Request) {
	labelID := chi.URLParam(r, "labelID")
	if _, err := h.db.GetLabel(labelID); err != nil {
		h.storeError(w, r, err)
		return
	}

	limit := queryInt(r, "limit", constants.DefaultFeedLimit)
	if limit < 1 {
		limit = constants.DefaultFeedLimit
	}
	if limit > constants.MaxFeedLimit {
		limit = constants.MaxFeedLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	batch, err := h.db.GetLatestBatch(labelID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	resp := feedResponse{Items: []*models.ScoutFeedItem{}}
	if batch == nil {
		h.writeJSON(w, r, http.StatusOK, resp)
		return
	}

	items, err := h.db.ListFeedItems(batch.ID, limit, offset)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	total, err := h.db.CountFeedItems(batch.ID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	resp.BatchID = batch.ID
	resp.CreatedAt = batch.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
	resp.Total = total
	if items != nil {
		resp.Items = items
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// TasteMap serves the latest published taste map version.
func (h *Handler) TasteMap(w http.ResponseWriter, r *http.Request) {
	labelID := chi.URLParam(r, "labelID")
	if _, err := h.db.GetLabel(labelID); err != nil {
		h.storeError(w, r, err)
		return
	}

	tm, err := h.db.GetLatestTasteMap(labelID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	if tm == nil {
		h.writeJSON(w, r, http.StatusOK, map[string]any{"taste_map": nil})
		return
	}
	h.writeJSON(w, r, http.StatusOK, tm)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
