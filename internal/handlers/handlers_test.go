package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/cesargomez89/scoutfeed/internal/connectors"
	"github.com/cesargomez89/scoutfeed/internal/llm"
	"github.com/cesargomez89/scoutfeed/internal/logger"
	"github.com/cesargomez89/scoutfeed/internal/models"
	"github.com/cesargomez89/scoutfeed/internal/pipeline"
	"github.com/cesargomez89/scoutfeed/internal/repository"
)

func newTestServer(t *testing.T) (*repository.DB, *httptest.Server) {
	t.Helper()
	db, err := repository.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	pm := pipeline.NewManager(db, connectors.NewManager(), llm.Disabled{}, pipeline.Options{}, logger.Default())
	h := NewHandler(db, pm, logger.Default())
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return db, srv
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return resp.StatusCode
}

func createLabel(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	var label models.Label
	code := doJSON(t, http.MethodPost, srv.URL+"/api/labels",
		map[string]any{"name": "Night Bloom", "genre_tags": []string{"indie"}}, &label)
	if code != http.StatusCreated {
		t.Fatalf("create label status = %d", code)
	}
	return label.ID
}

func seedArtist(t *testing.T, db *repository.DB, name string) string {
	t.Helper()
	now := time.Now().UTC()
	artist := &models.Artist{ID: uuid.NewString(), Name: name, IsCandidate: true, CreatedAt: now, UpdatedAt: now}
	if err := db.CreateArtist(artist); err != nil {
		t.Fatalf("seeding artist: %v", err)
	}
	return artist.ID
}

func TestHealth(t *testing.T) {
	_, srv := newTestServer(t)
	if code := doJSON(t, http.MethodGet, srv.URL+"/healthz", nil, nil); code != http.StatusOK {
		t.Errorf("healthz status = %d", code)
	}
}

func TestLabelLifecycle(t *testing.T) {
	_, srv := newTestServer(t)
	labelID := createLabel(t, srv)

	var got models.Label
	if code := doJSON(t, http.MethodGet, srv.URL+"/api/labels/"+labelID, nil, &got); code != http.StatusOK {
		t.Fatalf("get label status = %d", code)
	}
	if got.Name != "Night Bloom" {
		t.Errorf("label name = %q", got.Name)
	}

	var list []models.Label
	if code := doJSON(t, http.MethodGet, srv.URL+"/api/labels", nil, &list); code != http.StatusOK {
		t.Fatalf("list labels status = %d", code)
	}
	if len(list) != 1 {
		t.Errorf("labels = %d, want 1", len(list))
	}

	if code := doJSON(t, http.MethodGet, srv.URL+"/api/labels/"+uuid.NewString(), nil, nil); code != http.StatusNotFound {
		t.Errorf("missing label status = %d, want 404", code)
	}

	if code := doJSON(t, http.MethodPost, srv.URL+"/api/labels", map[string]any{"name": ""}, nil); code != http.StatusBadRequest {
		t.Errorf("empty name status = %d, want 400", code)
	}
}

func TestAttachRosterResolvesURLs(t *testing.T) {
	db, srv := newTestServer(t)
	labelID := createLabel(t, srv)

	body := map[string]any{"entries": []map[string]any{{
		"name":   "Neon Tides",
		"genres": []string{"synthpop"},
		"urls": []string{
			"https://open.spotify.com/artist/7abc123XYZ",
			"https://example.com/not-a-platform",
		},
	}}}
	var resp attachRosterResponse
	if code := doJSON(t, http.MethodPost, srv.URL+"/api/labels/"+labelID+"/roster", body, &resp); code != http.StatusOK {
		t.Fatalf("attach status = %d", code)
	}
	if resp.Added != 1 || resp.Reused != 0 {
		t.Errorf("added = %d, reused = %d", resp.Added, resp.Reused)
	}
	if len(resp.UnresolvedURLs) != 1 {
		t.Errorf("unresolved = %v", resp.UnresolvedURLs)
	}

	artist, err := db.GetArtistByPlatformIdentity(models.PlatformSpotify, "7abc123XYZ")
	if err != nil || artist == nil {
		t.Fatalf("identity not attached: %v %v", artist, err)
	}
	ids, err := db.ListRosterArtistIDs(labelID)
	if err != nil || len(ids) != 1 {
		t.Fatalf("roster ids = %v, %v", ids, err)
	}

	// Same identity again reuses the artist instead of duplicating it.
	if code := doJSON(t, http.MethodPost, srv.URL+"/api/labels/"+labelID+"/roster", body, &resp); code != http.StatusOK {
		t.Fatalf("re-attach status = %d", code)
	}
	if resp.Reused != 1 || resp.Added != 0 {
		t.Errorf("re-attach added = %d, reused = %d", resp.Added, resp.Reused)
	}
}

func TestScoutFeedPagination(t *testing.T) {
	db, srv := newTestServer(t)
	labelID := createLabel(t, srv)

	now := time.Now().UTC()
	batch := &models.FeedBatch{ID: uuid.NewString(), LabelID: labelID, CreatedAt: now}
	var items []models.ScoutFeedItem
	for i, score := range []float64{0.9, 0.6, 0.3} {
		items = append(items, models.ScoutFeedItem{
			ID:         uuid.NewString(),
			BatchID:    batch.ID,
			LabelID:    labelID,
			ArtistID:   seedArtist(t, db, "Artist "+string(rune('A'+i))),
			FinalScore: score,
			CreatedAt:  now,
		})
	}
	if err := db.SaveFeedBatch(batch, items); err != nil {
		t.Fatalf("seeding batch: %v", err)
	}

	var resp feedResponse
	if code := doJSON(t, http.MethodGet, srv.URL+"/api/labels/"+labelID+"/scout-feed?limit=2", nil, &resp); code != http.StatusOK {
		t.Fatalf("feed status = %d", code)
	}
	if resp.Total != 3 || len(resp.Items) != 2 {
		t.Errorf("total = %d, items = %d, want 3/2", resp.Total, len(resp.Items))
	}
	if resp.Items[0].FinalScore != 0.9 {
		t.Errorf("first item score = %v, want ranked order", resp.Items[0].FinalScore)
	}

	if code := doJSON(t, http.MethodGet, srv.URL+"/api/labels/"+labelID+"/scout-feed?limit=2&offset=2", nil, &resp); code != http.StatusOK {
		t.Fatalf("feed offset status = %d", code)
	}
	if len(resp.Items) != 1 {
		t.Errorf("offset items = %d, want 1", len(resp.Items))
	}
}

func TestScoutFeedEmpty(t *testing.T) {
	_, srv := newTestServer(t)
	labelID := createLabel(t, srv)

	var resp feedResponse
	if code := doJSON(t, http.MethodGet, srv.URL+"/api/labels/"+labelID+"/scout-feed", nil, &resp); code != http.StatusOK {
		t.Fatalf("feed status = %d", code)
	}
	if resp.Total != 0 || len(resp.Items) != 0 {
		t.Errorf("empty feed total = %d, items = %d", resp.Total, len(resp.Items))
	}
}

func TestPostFeedback(t *testing.T) {
	db, srv := newTestServer(t)
	labelID := createLabel(t, srv)
	artistID := seedArtist(t, db, "Neon Tides")

	url := srv.URL + "/api/labels/" + labelID + "/feedback"
	if code := doJSON(t, http.MethodPost, url, map[string]any{"artist_id": artistID, "action": "promote"}, nil); code != http.StatusBadRequest {
		t.Errorf("unknown action status = %d, want 400", code)
	}
	if code := doJSON(t, http.MethodPost, url, map[string]any{"artist_id": uuid.NewString(), "action": "shortlist"}, nil); code != http.StatusNotFound {
		t.Errorf("unknown artist status = %d, want 404", code)
	}

	var fb models.Feedback
	if code := doJSON(t, http.MethodPost, url, map[string]any{"artist_id": artistID, "action": "sign", "notes": "great live set"}, &fb); code != http.StatusCreated {
		t.Fatalf("feedback status = %d", code)
	}
	if fb.Action != models.FeedbackSign {
		t.Errorf("action = %q", fb.Action)
	}

	stored, err := db.ListFeedback(labelID)
	if err != nil || len(stored) != 1 {
		t.Errorf("stored feedback = %v, %v", stored, err)
	}
}

func TestAlertStatusFlow(t *testing.T) {
	db, srv := newTestServer(t)
	labelID := createLabel(t, srv)
	artistID := seedArtist(t, db, "Neon Tides")

	rule := &models.AlertRule{ID: uuid.NewString(), LabelID: labelID, Name: "Momentum Surge", Severity: "high", Active: true}
	if err := db.InsertAlertRule(rule); err != nil {
		t.Fatalf("seeding rule: %v", err)
	}
	alert := &models.Alert{
		ID: uuid.NewString(), LabelID: labelID, ArtistID: artistID, RuleID: rule.ID,
		Severity: "high", Status: models.AlertStatusNew, Title: "Momentum Surge",
		CreatedAt: time.Now().UTC(),
	}
	if err := db.InsertAlert(alert); err != nil {
		t.Fatalf("seeding alert: %v", err)
	}

	var alerts []models.Alert
	if code := doJSON(t, http.MethodGet, srv.URL+"/api/labels/"+labelID+"/alerts?status=new", nil, &alerts); code != http.StatusOK {
		t.Fatalf("list alerts status = %d", code)
	}
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}

	if code := doJSON(t, http.MethodGet, srv.URL+"/api/labels/"+labelID+"/alerts?status=bogus", nil, nil); code != http.StatusBadRequest {
		t.Errorf("bogus status filter = %d, want 400", code)
	}

	if code := doJSON(t, http.MethodPost, srv.URL+"/api/alerts/"+alert.ID+"/status", map[string]any{"status": "new"}, nil); code != http.StatusBadRequest {
		t.Errorf("revert to new status = %d, want 400", code)
	}
	if code := doJSON(t, http.MethodPost, srv.URL+"/api/alerts/"+alert.ID+"/status", map[string]any{"status": "seen"}, nil); code != http.StatusOK {
		t.Errorf("mark seen status = %d", code)
	}

	if code := doJSON(t, http.MethodGet, srv.URL+"/api/labels/"+labelID+"/alerts?status=new", nil, &alerts); code != http.StatusOK {
		t.Fatalf("list after seen status = %d", code)
	}
	if len(alerts) != 0 {
		t.Errorf("new alerts after seen = %d, want 0", len(alerts))
	}
}

func TestWatchlistFlow(t *testing.T) {
	db, srv := newTestServer(t)
	labelID := createLabel(t, srv)
	artistID := seedArtist(t, db, "Neon Tides")

	var list models.Watchlist
	if code := doJSON(t, http.MethodPost, srv.URL+"/api/labels/"+labelID+"/watchlists", map[string]any{"name": "Summer scouting"}, &list); code != http.StatusCreated {
		t.Fatalf("create watchlist status = %d", code)
	}

	itemURL := srv.URL + "/api/watchlists/" + list.ID + "/items"
	if code := doJSON(t, http.MethodPost, itemURL, map[string]any{"artist_id": artistID}, nil); code != http.StatusCreated {
		t.Errorf("add item status = %d", code)
	}
	if code := doJSON(t, http.MethodPost, itemURL, map[string]any{"artist_id": artistID}, nil); code != http.StatusOK {
		t.Errorf("re-add item status = %d, want 200 no-op", code)
	}

	var got watchlistResponse
	if code := doJSON(t, http.MethodGet, srv.URL+"/api/watchlists/"+list.ID, nil, &got); code != http.StatusOK {
		t.Fatalf("get watchlist status = %d", code)
	}
	if len(got.Items) != 1 {
		t.Errorf("items = %d, want 1", len(got.Items))
	}
	if got.Items[0].Source != "manual" {
		t.Errorf("item source = %q, want manual default", got.Items[0].Source)
	}
}

func TestArtistDetail(t *testing.T) {
	db, srv := newTestServer(t)
	labelID := createLabel(t, srv)
	artistID := seedArtist(t, db, "Neon Tides")

	now := time.Now().UTC()
	snap := &models.Snapshot{
		ID: uuid.NewString(), ArtistID: artistID, Platform: models.PlatformSpotify,
		CapturedAt: now, Followers: 1200, Views: 50000,
	}
	if _, err := db.InsertSnapshot(snap); err != nil {
		t.Fatalf("seeding snapshot: %v", err)
	}
	if err := db.UpsertBrief(&models.ArtistBrief{
		ArtistID: artistID, LabelID: labelID, InputHash: "h",
		Summary: "An emerging synthpop act.", CreatedAt: now,
	}); err != nil {
		t.Fatalf("seeding brief: %v", err)
	}

	var resp artistDetailResponse
	if code := doJSON(t, http.MethodGet, srv.URL+"/api/artists/"+artistID+"?label_id="+labelID, nil, &resp); code != http.StatusOK {
		t.Fatalf("artist detail status = %d", code)
	}
	if len(resp.Snapshots) != 1 {
		t.Errorf("snapshots = %d, want 1", len(resp.Snapshots))
	}
	if resp.Brief == nil || resp.Brief.Summary == "" {
		t.Error("expected brief for label scope")
	}

	if code := doJSON(t, http.MethodGet, srv.URL+"/api/artists/"+uuid.NewString(), nil, nil); code != http.StatusNotFound {
		t.Errorf("missing artist status = %d, want 404", code)
	}
}

func TestPipelineEndpoints(t *testing.T) {
	_, srv := newTestServer(t)
	labelID := createLabel(t, srv)

	var run models.PipelineRun
	if code := doJSON(t, http.MethodGet, srv.URL+"/api/labels/"+labelID+"/pipeline", nil, &run); code != http.StatusOK {
		t.Fatalf("status endpoint = %d", code)
	}
	if run.State != models.RunStateIdle {
		t.Errorf("initial state = %s, want idle", run.State)
	}

	// Cancel with nothing in flight conflicts.
	if code := doJSON(t, http.MethodPost, srv.URL+"/api/labels/"+labelID+"/pipeline/cancel", nil, nil); code != http.StatusConflict {
		t.Errorf("cancel idle status = %d, want 409", code)
	}

	if code := doJSON(t, http.MethodPost, srv.URL+"/api/labels/"+labelID+"/pipeline/run", nil, &run); code != http.StatusAccepted {
		t.Fatalf("run endpoint = %d", code)
	}

	// The empty roster makes the taste map stage fail; the run lands in error.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		doJSON(t, http.MethodGet, srv.URL+"/api/labels/"+labelID+"/pipeline", nil, &run)
		if run.State.Terminal() && run.State != models.RunStateIdle {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if run.State != models.RunStateError {
		t.Fatalf("final state = %s, want error", run.State)
	}
	if run.Error == "" {
		t.Error("expected stage error recorded on the run")
	}
}
