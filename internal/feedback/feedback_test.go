package feedback

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/scoutfeed/internal/constants"
	"github.com/cesargomez89/scoutfeed/internal/models"
	"github.com/cesargomez89/scoutfeed/internal/repository"
)

var now = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *repository.DB {
	t.Helper()
	db, err := repository.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedFeedback(t *testing.T, db *repository.DB, labelID string, action models.FeedbackAction, vector []float64, at time.Time) {
	t.Helper()
	artist := &models.Artist{ID: uuid.NewString(), Name: "x", CreatedAt: at, UpdatedAt: at}
	if err := db.CreateArtist(artist); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertEmbedding(&models.Embedding{
		ArtistID: artist.ID, Provider: models.EmbeddingProviderMetric, Vector: vector,
	}); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertFeedback(&models.Feedback{
		ID: uuid.NewString(), LabelID: labelID, ArtistID: artist.ID, Action: action, CreatedAt: at,
	}); err != nil {
		t.Fatal(err)
	}
}

func seedTestLabel(t *testing.T, db *repository.DB) string {
	t.Helper()
	label := &models.Label{ID: uuid.NewString(), Name: "Night Bloom", CreatedAt: now, UpdatedAt: now}
	if err := db.CreateLabel(label); err != nil {
		t.Fatal(err)
	}
	return label.ID
}

func TestWeight(t *testing.T) {
	cases := []struct {
		action models.FeedbackAction
		want   float64
	}{
		{models.FeedbackShortlist, 1.0},
		{models.FeedbackSign, 2.0},
		{models.FeedbackPass, -1.0},
		{models.FeedbackArchive, -0.5},
		{models.FeedbackAction("bogus"), 0},
	}
	for _, tc := range cases {
		if got := Weight(tc.action); got != tc.want {
			t.Errorf("Weight(%s) = %v, want %v", tc.action, got, tc.want)
		}
	}
}

func TestBiasDirection(t *testing.T) {
	db := openTestDB(t)
	labelID := seedTestLabel(t, db)
	liked := []float64{1, 0, 0, 0}
	seedFeedback(t, db, labelID, models.FeedbackSign, liked, now.Add(-24*time.Hour))

	b, err := NewBiaser(db, labelID, now)
	if err != nil {
		t.Fatalf("NewBiaser: %v", err)
	}
	if bias := b.Bias(liked); bias <= 0 {
		t.Errorf("bias toward a signed artist = %v, want positive", bias)
	}
	if bias := b.Bias([]float64{0, 1, 0, 0}); bias != 0 {
		t.Errorf("bias for an orthogonal candidate = %v, want 0", bias)
	}
}

func TestBiasCapped(t *testing.T) {
	db := openTestDB(t)
	labelID := seedTestLabel(t, db)
	liked := []float64{1, 0, 0, 0}
	for i := 0; i < 5; i++ {
		seedFeedback(t, db, labelID, models.FeedbackSign, liked, now.Add(-time.Hour))
	}

	b, err := NewBiaser(db, labelID, now)
	if err != nil {
		t.Fatalf("NewBiaser: %v", err)
	}
	bias := b.Bias(liked)
	if math.Abs(bias-constants.FeedbackBiasCap) > 1e-9 {
		t.Errorf("bias = %v, want capped at %v", bias, constants.FeedbackBiasCap)
	}

	hated := []float64{-1, 0, 0, 0}
	if bias := b.Bias(hated); math.Abs(bias+constants.FeedbackBiasCap) > 1e-9 {
		t.Errorf("negative bias = %v, want capped at %v", bias, -constants.FeedbackBiasCap)
	}
}

func TestBiasDecays(t *testing.T) {
	db := openTestDB(t)
	fresh := seedTestLabel(t, db)
	stale := seedTestLabel(t, db)
	liked := []float64{1, 0, 0, 0}
	seedFeedback(t, db, fresh, models.FeedbackShortlist, liked, now.Add(-time.Hour))
	seedFeedback(t, db, stale, models.FeedbackShortlist, liked, now.Add(-120*24*time.Hour))

	bFresh, err := NewBiaser(db, fresh, now)
	if err != nil {
		t.Fatal(err)
	}
	bStale, err := NewBiaser(db, stale, now)
	if err != nil {
		t.Fatal(err)
	}
	if bStale.Bias(liked) >= bFresh.Bias(liked) {
		t.Errorf("stale bias %v should be below fresh bias %v", bStale.Bias(liked), bFresh.Bias(liked))
	}
}

func TestBiasEmptyHistory(t *testing.T) {
	db := openTestDB(t)
	labelID := seedTestLabel(t, db)
	b, err := NewBiaser(db, labelID, now)
	if err != nil {
		t.Fatal(err)
	}
	if bias := b.Bias([]float64{1, 0}); bias != 0 {
		t.Errorf("bias with no history = %v, want 0", bias)
	}
}
