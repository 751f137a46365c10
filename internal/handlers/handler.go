// Package handlers is the JSON API surface. Routes are registered on a chi
// router; every response body goes through writeJSON.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/cesargomez89/scoutfeed/internal/logger"
	"github.com/cesargomez89/scoutfeed/internal/metrics"
	"github.com/cesargomez89/scoutfeed/internal/pipeline"
	"github.com/cesargomez89/scoutfeed/internal/repository"
)

type Handler struct {
	db       *repository.DB
	pipeline *pipeline.Manager
	log      *logger.Logger
}

func NewHandler(db *repository.DB, pm *pipeline.Manager, log *logger.Logger) *Handler {
	return &Handler{db: db, pipeline: pm, log: log.WithComponent("api")}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/labels", h.CreateLabel)
		r.Get("/labels", h.ListLabels)
		r.Route("/labels/{labelID}", func(r chi.Router) {
			r.Get("/", h.GetLabel)
			r.Post("/roster", h.AttachRoster)
			r.Get("/scout-feed", h.ScoutFeed)
			r.Get("/taste-map", h.TasteMap)
			r.Get("/pipeline", h.PipelineStatus)
			r.Post("/pipeline/run", h.PipelineRun)
			r.Post("/pipeline/cancel", h.PipelineCancel)
			r.Post("/feedback", h.PostFeedback)
			r.Get("/alerts", h.ListAlerts)
			r.Get("/watchlists", h.ListWatchlists)
			r.Post("/watchlists", h.CreateWatchlist)
		})
		r.Post("/alerts/{alertID}/status", h.UpdateAlertStatus)
		r.Get("/watchlists/{watchlistID}", h.GetWatchlist)
		r.Post("/watchlists/{watchlistID}/items", h.AddWatchlistItem)
		r.Get("/artists/{artistID}", h.ArtistDetail)
	})

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(); err != nil {
		h.writeError(w, r, http.StatusServiceUnavailable, fmt.Errorf("db unreachable: %w", err))
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("encoding response", "path", r.URL.Path, "error", err)
	}
	metrics.HTTPRequests.WithLabelValues(routePattern(r), strconv.Itoa(code)).Inc()
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, code int, err error) {
	if code >= http.StatusInternalServerError {
		h.log.Error("request failed", "path", r.URL.Path, "error", err)
	}
	h.writeJSON(w, r, code, map[string]string{"error": err.Error()})
}

// storeError maps repository sentinels onto HTTP statuses.
func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		h.writeError(w, r, http.StatusNotFound, err)
	case errors.Is(err, repository.ErrAlreadyInFlight), errors.Is(err, repository.ErrInvalidTransition):
		h.writeError(w, r, http.StatusConflict, err)
	default:
		h.writeError(w, r, http.StatusInternalServerError, err)
	}
}

func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
