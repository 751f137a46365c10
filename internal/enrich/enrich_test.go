package enrich

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/scoutfeed/internal/llm"
	"github.com/cesargomez89/scoutfeed/internal/logger"
	"github.com/cesargomez89/scoutfeed/internal/models"
	"github.com/cesargomez89/scoutfeed/internal/repository"
)

func openTestDB(t *testing.T) *repository.DB {
	t.Helper()
	db, err := repository.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedLabel(t *testing.T, db *repository.DB) string {
	t.Helper()
	now := time.Now().UTC()
	label := &models.Label{ID: uuid.NewString(), Name: "Night Bloom", CreatedAt: now, UpdatedAt: now}
	if err := db.CreateLabel(label); err != nil {
		t.Fatalf("seeding label: %v", err)
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

func seedTasteMap(t *testing.T, db *repository.DB, labelID string) *models.TasteMap {
	t.Helper()
	tm := &models.TasteMap{
		ID:      uuid.NewString(),
		LabelID: labelID,
		Clusters: []models.Cluster{
			{ID: uuid.NewString(), Index: 0, Name: "Cluster 1", Centroid: []float64{1, 0}},
			{ID: uuid.NewString(), Index: 1, Name: "Cluster 2", Centroid: []float64{0, 1}},
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := db.SaveTasteMap(tm); err != nil {
		t.Fatalf("seeding taste map: %v", err)
	}
	return tm
}

func seedFeedItem(t *testing.T, db *repository.DB, labelID, artistID string) {
	t.Helper()
	now := time.Now().UTC()
	batch := &models.FeedBatch{ID: uuid.NewString(), LabelID: labelID, CreatedAt: now}
	items := []models.ScoutFeedItem{{
		ID:         uuid.NewString(),
		BatchID:    batch.ID,
		LabelID:    labelID,
		ArtistID:   artistID,
		FitScore:   0.8,
		FinalScore: 0.5,
		CreatedAt:  now,
	}}
	if err := db.SaveFeedBatch(batch, items); err != nil {
		t.Fatalf("seeding feed batch: %v", err)
	}
}

func TestEnricherStoresDNAAndRenamesClusters(t *testing.T) {
	db := openTestDB(t)
	labelID := seedLabel(t, db)
	seedTasteMap(t, db, labelID)

	mock := &llm.Mock{DNA: &models.LabelDNA{
		ClusterNames:  []string{"Hazy Synth", "Dusty Folk"},
		ThesisBullets: []string{"Slow-burn electronica"},
		SeedQueries:   []string{"bedroom synth pop"},
	}}
	e := NewEnricher(db, mock, logger.Default())
	if err := e.Run(context.Background(), labelID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	label, err := db.GetLabel(labelID)
	if err != nil {
		t.Fatalf("GetLabel: %v", err)
	}
	if label.DNA == nil {
		t.Fatal("expected stored dna")
	}
	if label.DNA.InputHash == "" {
		t.Error("stored dna has no input hash")
	}
	if len(label.DNA.SeedQueries) != 1 || label.DNA.SeedQueries[0] != "bedroom synth pop" {
		t.Errorf("seed queries = %v", label.DNA.SeedQueries)
	}

	tm, err := db.GetLatestTasteMap(labelID)
	if err != nil {
		t.Fatalf("GetLatestTasteMap: %v", err)
	}
	if tm.Clusters[0].Name != "Hazy Synth" || tm.Clusters[1].Name != "Dusty Folk" {
		t.Errorf("cluster names = %q, %q, want dna names applied", tm.Clusters[0].Name, tm.Clusters[1].Name)
	}
}

func TestEnricherSkipsDNAWhenInputsUnchanged(t *testing.T) {
	db := openTestDB(t)
	labelID := seedLabel(t, db)
	seedTasteMap(t, db, labelID)

	mock := &llm.Mock{DNA: &models.LabelDNA{ClusterNames: []string{"A", "B"}}}
	e := NewEnricher(db, mock, logger.Default())
	for i := 0; i < 2; i++ {
		if err := e.Run(context.Background(), labelID); err != nil {
			t.Fatalf("Run %d: %v", i+1, err)
		}
	}
	if mock.DNACalls != 1 {
		t.Errorf("DNACalls = %d, want 1 (second run cached)", mock.DNACalls)
	}
}

func TestEnricherFallbackDNAWhenUnavailable(t *testing.T) {
	db := openTestDB(t)
	labelID := seedLabel(t, db)
	seedTasteMap(t, db, labelID)

	e := NewEnricher(db, llm.Disabled{}, logger.Default())
	if err := e.Run(context.Background(), labelID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	label, err := db.GetLabel(labelID)
	if err != nil {
		t.Fatalf("GetLabel: %v", err)
	}
	if label.DNA == nil {
		t.Fatal("expected fallback dna stored")
	}
	if len(label.DNA.ClusterNames) != 2 || label.DNA.ClusterNames[0] != "Cluster 1" {
		t.Errorf("fallback cluster names = %v", label.DNA.ClusterNames)
	}
}

func TestEnricherBriefsCachedByInputHash(t *testing.T) {
	db := openTestDB(t)
	labelID := seedLabel(t, db)
	seedTasteMap(t, db, labelID)
	artistID := seedArtist(t, db, "Neon Tides")
	seedFeedItem(t, db, labelID, artistID)

	mock := &llm.Mock{
		DNA: &models.LabelDNA{ClusterNames: []string{"A", "B"}},
		Brief: &llm.BriefOutput{
			Summary:    "Neon Tides pairs hazy vocals with sharp drum programming.",
			Highlights: []string{"Strong week-over-week growth"},
		},
	}
	e := NewEnricher(db, mock, logger.Default())
	for i := 0; i < 2; i++ {
		if err := e.Run(context.Background(), labelID); err != nil {
			t.Fatalf("Run %d: %v", i+1, err)
		}
	}

	brief, err := db.GetBrief(artistID, labelID)
	if err != nil {
		t.Fatalf("GetBrief: %v", err)
	}
	if brief == nil {
		t.Fatal("expected stored brief")
	}
	if brief.Summary != mock.Brief.Summary {
		t.Errorf("summary = %q", brief.Summary)
	}
	if mock.BriefCalls != 1 {
		t.Errorf("BriefCalls = %d, want 1 (second run cached)", mock.BriefCalls)
	}
}

func TestEnricherBriefFallbackWhenUnavailable(t *testing.T) {
	db := openTestDB(t)
	labelID := seedLabel(t, db)
	seedTasteMap(t, db, labelID)
	artistID := seedArtist(t, db, "Neon Tides")
	seedFeedItem(t, db, labelID, artistID)

	e := NewEnricher(db, llm.Disabled{}, logger.Default())
	if err := e.Run(context.Background(), labelID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	brief, err := db.GetBrief(artistID, labelID)
	if err != nil {
		t.Fatalf("GetBrief: %v", err)
	}
	if brief == nil {
		t.Fatal("expected fallback brief stored")
	}
	if brief.Summary == "" || len(brief.Highlights) == 0 {
		t.Errorf("fallback brief incomplete: %+v", brief)
	}
}
