package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

type artistDetailResponse struct {
	Artist    *models.Artist            `json:"artist"`
	Accounts  []*models.PlatformAccount `json:"accounts"`
	Snapshots []*models.Snapshot        `json:"snapshots"`
	Features  *models.ArtistFeatures    `json:"features,omitempty"`
	Brief     *models.ArtistBrief       `json:"brief,omitempty"`
}

// ArtistDetail returns the artist with its snapshot history and latest
// features. The cached brief is label scoped; pass ?label_id= to include it.
func (h *Handler) ArtistDetail(w http.ResponseWriter, r *http.Request) {
	artistID := chi.URLParam(r, "artistID")
	artist, err := h.db.GetArtist(artistID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	accounts, err := h.db.ListPlatformAccounts(artistID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	snapshots, err := h.db.ListSnapshots(artistID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	features, err := h.db.LatestFeatures(artistID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	resp := artistDetailResponse{
		Artist:    artist,
		Accounts:  accounts,
		Snapshots: snapshots,
		Features:  features,
	}
	if resp.Accounts == nil {
		resp.Accounts = []*models.PlatformAccount{}
	}
	if resp.Snapshots == nil {
		resp.Snapshots = []*models.Snapshot{}
	}

	if labelID := r.URL.Query().Get("label_id"); labelID != "" {
		brief, err := h.db.GetBrief(artistID, labelID)
		if err != nil {
			h.storeError(w, r, err)
			return
		}
		resp.Brief = brief
	}

	h.writeJSON(w, r, http.StatusOK, resp)
}
