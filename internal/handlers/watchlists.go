package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

func (h *Handler) ListWatchlists(w http.ResponseWriter, r *http.Request) {
	labelID := chi.URLParam(r, "labelID")
	if _, err := h.db.GetLabel(labelID); err != nil {
		h.storeError(w, r, err)
		return
	}
	lists, err := h.db.ListWatchlists(labelID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	if lists == nil {
		lists = []*models.Watchlist{}
	}
	h.writeJSON(w, r, http.StatusOK, lists)
}

type createWatchlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) CreateWatchlist(w http.ResponseWriter, r *http.Request) {
	labelID := chi.URLParam(r, "labelID")
	if _, err := h.db.GetLabel(labelID); err != nil {
		h.storeError(w, r, err)
		return
	}

	var req createWatchlistRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" {
		h.writeError(w, r, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	list := &models.Watchlist{
		ID:          uuid.NewString(),
		LabelID:     labelID,
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.db.CreateWatchlist(list); err != nil {
		h.storeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, list)
}

type watchlistResponse struct {
	*models.Watchlist
	Items []*models.WatchlistItem `json:"items"`
}

func (h *Handler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	list, err := h.db.GetWatchlist(chi.URLParam(r, "watchlistID"))
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	items, err := h.db.ListWatchlistItems(list.ID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	if items == nil {
		items = []*models.WatchlistItem{}
	}
	h.writeJSON(w, r, http.StatusOK, watchlistResponse{Watchlist: list, Items: items})
}

type addWatchlistItemRequest struct {
	ArtistID string `json:"artist_id"`
	Source   string `json:"source"`
	Notes    string `json:"notes"`
}

// AddWatchlistItem pins an artist to a watchlist. Re-adding the same artist
// is a no-op.
func (h *Handler) AddWatchlistItem(w http.ResponseWriter, r *http.Request) {
	list, err := h.db.GetWatchlist(chi.URLParam(r, "watchlistID"))
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	var req addWatchlistItemRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if req.ArtistID == "" {
		h.writeError(w, r, http.StatusBadRequest, errors.New("artist_id is required"))
		return
	}
	if _, err := h.db.GetArtist(req.ArtistID); err != nil {
		h.storeError(w, r, err)
		return
	}
	source := req.Source
	if source == "" {
		source = "manual"
	}

	item := &models.WatchlistItem{
		ID:          uuid.NewString(),
		WatchlistID: list.ID,
		ArtistID:    req.ArtistID,
		Source:      source,
		Notes:       req.Notes,
		CreatedAt:   time.Now().UTC(),
	}
	added, err := h.db.AddWatchlistItem(item)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	if !added {
		h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "already present"})
		return
	}
	h.writeJSON(w, r, http.StatusCreated, item)
}
