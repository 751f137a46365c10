package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cesargomez89/scoutfeed/internal/discovery"
	"github.com/cesargomez89/scoutfeed/internal/models"
)

type createLabelRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	GenreTags   []string `json:"genre_tags"`
}

func (h *Handler) CreateLabel(w http.ResponseWriter, r *http.Request) {
	var req createLabelRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" {
		h.writeError(w, r, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	now := time.Now().UTC()
	label := &models.Label{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		GenreTags:   req.GenreTags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.db.CreateLabel(label); err != nil {
		h.storeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, label)
}

func (h *Handler) ListLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := h.db.ListLabels()
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	if labels == nil {
		labels = []*models.Label{}
	}
	h.writeJSON(w, r, http.StatusOK, labels)
}

func (h *Handler) GetLabel(w http.ResponseWriter, r *http.Request) {
	label, err := h.db.GetLabel(chi.URLParam(r, "labelID"))
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, label)
}

// rosterEntry is one pre-parsed roster artist. Account URLs are resolved to
// platform identities server side; unrecognized URLs are reported back.
type rosterEntry struct {
	Name     string          `json:"name"`
	Genres   []string        `json:"genres"`
	URLs     []string        `json:"urls"`
	ImageURL string          `json:"image_url"`
	Bio      string          `json:"bio"`
	Accounts []rosterAccount `json:"accounts"`
}

type rosterAccount struct {
	Platform   string `json:"platform"`
	PlatformID string `json:"platform_id"`
	URL        string `json:"url"`
}

type attachRosterRequest struct {
	Entries []rosterEntry `json:"entries"`
}

type attachRosterResponse struct {
	Added          int      `json:"added"`
	Reused         int      `json:"reused"`
	UnresolvedURLs []string `json:"unresolved_urls,omitempty"`
	ArtistIDs      []string `json:"artist_ids"`
}

// AttachRoster adds artists to the label's roster. An entry whose platform
// identity already exists reuses that artist; the roster link itself is
// idempotent.
func (h *Handler) AttachRoster(w http.ResponseWriter, r *http.Request) {
	labelID := chi.URLParam(r, "labelID")
	if _, err := h.db.GetLabel(labelID); err != nil {
		h.storeError(w, r, err)
		return
	}

	var req attachRosterRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if len(req.Entries) == 0 {
		h.writeError(w, r, http.StatusBadRequest, errors.New("entries are required"))
		return
	}

	resp := attachRosterResponse{ArtistIDs: []string{}}
	for _, entry := range req.Entries {
		if entry.Name == "" {
			h.writeError(w, r, http.StatusBadRequest, errors.New("every entry needs a name"))
			return
		}

		accounts := entry.Accounts
		for _, raw := range entry.URLs {
			platform, platformID, ok := discovery.ParseAccountURL(raw)
			if !ok {
				resp.UnresolvedURLs = append(resp.UnresolvedURLs, raw)
				continue
			}
			accounts = append(accounts, rosterAccount{Platform: platform, PlatformID: platformID, URL: raw})
		}

		artistID, reused, err := h.resolveRosterArtist(entry, accounts)
		if err != nil {
			h.storeError(w, r, err)
			return
		}
		if err := h.db.AddRosterMember(labelID, artistID); err != nil {
			h.storeError(w, r, err)
			return
		}
		if reused {
			resp.Reused++
		} else {
			resp.Added++
		}
		resp.ArtistIDs = append(resp.ArtistIDs, artistID)
	}

	h.writeJSON(w, r, http.StatusOK, resp)
}

// resolveRosterArtist reuses the artist behind any known platform identity,
// otherwise creates one. Roster artists are never candidates.
func (h *Handler) resolveRosterArtist(entry rosterEntry, accounts []rosterAccount) (string, bool, error) {
	for _, acc := range accounts {
		existing, err := h.db.GetArtistByPlatformIdentity(acc.Platform, acc.PlatformID)
		if err != nil {
			return "", false, err
		}
		if existing != nil {
			return existing.ID, true, nil
		}
	}

	now := time.Now().UTC()
	artist := &models.Artist{
		ID:        uuid.NewString(),
		Name:      entry.Name,
		Bio:       entry.Bio,
		ImageURL:  entry.ImageURL,
		GenreTags: entry.Genres,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.db.CreateArtist(artist); err != nil {
		return "", false, err
	}
	for _, acc := range accounts {
		account := &models.PlatformAccount{
			ID:         uuid.NewString(),
			ArtistID:   artist.ID,
			Platform:   acc.Platform,
			PlatformID: acc.PlatformID,
			URL:        acc.URL,
			CreatedAt:  now,
		}
		if _, err := h.db.AddPlatformAccount(account); err != nil {
			return "", false, err
		}
	}
	return artist.ID, false, nil
}
