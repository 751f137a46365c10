package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/scoutfeed/internal/connectors"
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
		t.Fatal(err)
	}
	return label.ID
}

func seedArtistWithAccount(t *testing.T, db *repository.DB, labelID, platform, platformID string, candidate bool) string {
	t.Helper()
	now := time.Now().UTC()
	artist := &models.Artist{ID: uuid.NewString(), Name: "Act " + platformID, IsCandidate: candidate, CreatedAt: now, UpdatedAt: now}
	if err := db.CreateArtist(artist); err != nil {
		t.Fatal(err)
	}
	if !candidate {
		if err := db.AddRosterMember(labelID, artist.ID); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := db.AddPlatformAccount(&models.PlatformAccount{
		ID: uuid.NewString(), ArtistID: artist.ID, Platform: platform, PlatformID: platformID, CreatedAt: now,
	}); err != nil {
		t.Fatal(err)
	}
	return artist.ID
}

func TestRunIngestsAndBuildsEmbeddings(t *testing.T) {
	db := openTestDB(t)
	labelID := seedLabel(t, db)
	rosterID := seedArtistWithAccount(t, db, labelID, models.PlatformSpotify, "r1", false)
	candID := seedArtistWithAccount(t, db, labelID, models.PlatformSpotify, "c1", true)

	mock := connectors.NewMockConnector(models.PlatformSpotify)
	mock.Snapshots["r1"] = &models.Snapshot{Followers: 5000, Views: 100000, EngagementRate: 0.01}
	mock.Snapshots["c1"] = &models.Snapshot{Followers: 800, Views: 20000, EngagementRate: 0.02}
	manager := connectors.NewManager()
	manager.Register(models.PlatformSpotify, mock)

	in := NewIngestor(db, manager, 2, logger.Default())
	stats, err := in.Run(context.Background(), labelID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Snapshots != 2 {
		t.Errorf("snapshots = %d, want 2", stats.Snapshots)
	}

	for _, id := range []string{rosterID, candID} {
		emb, err := db.GetEmbedding(id)
		if err != nil {
			t.Fatal(err)
		}
		if emb == nil || emb.Provider != models.EmbeddingProviderMetric {
			t.Errorf("artist %s missing metric embedding after ingest", id)
		}
	}
}

func TestRunSameDayIsNoOp(t *testing.T) {
	db := openTestDB(t)
	labelID := seedLabel(t, db)
	artistID := seedArtistWithAccount(t, db, labelID, models.PlatformSpotify, "r1", false)

	mock := connectors.NewMockConnector(models.PlatformSpotify)
	mock.Snapshots["r1"] = &models.Snapshot{Followers: 5000}
	manager := connectors.NewManager()
	manager.Register(models.PlatformSpotify, mock)

	in := NewIngestor(db, manager, 1, logger.Default())
	if _, err := in.Run(context.Background(), labelID); err != nil {
		t.Fatal(err)
	}
	stats, err := in.Run(context.Background(), labelID)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Snapshots != 0 {
		t.Errorf("second same-day run inserted %d snapshots, want 0", stats.Snapshots)
	}
	if n, _ := db.CountSnapshots(artistID); n != 1 {
		t.Errorf("snapshot count = %d, want 1", n)
	}
}

func TestRunToleratesNotFound(t *testing.T) {
	db := openTestDB(t)
	labelID := seedLabel(t, db)
	seedArtistWithAccount(t, db, labelID, models.PlatformSpotify, "gone", false)
	seedArtistWithAccount(t, db, labelID, models.PlatformSpotify, "ok", false)

	mock := connectors.NewMockConnector(models.PlatformSpotify)
	mock.Snapshots["ok"] = &models.Snapshot{Followers: 100}
	manager := connectors.NewManager()
	manager.Register(models.PlatformSpotify, mock)

	in := NewIngestor(db, manager, 1, logger.Default())
	stats, err := in.Run(context.Background(), labelID)
	if err != nil {
		t.Fatalf("a vanished identity must not fail the stage: %v", err)
	}
	if stats.Skipped != 1 || stats.Snapshots != 1 {
		t.Errorf("stats = %+v, want one skipped, one ingested", stats)
	}
}

func TestRunAbortsOnFailureRate(t *testing.T) {
	db := openTestDB(t)
	labelID := seedLabel(t, db)
	for i := 0; i < 4; i++ {
		seedArtistWithAccount(t, db, labelID, models.PlatformSpotify, uuid.NewString(), false)
	}

	mock := connectors.NewMockConnector(models.PlatformSpotify)
	mock.Down = true
	manager := connectors.NewManager()
	manager.Register(models.PlatformSpotify, mock)

	in := NewIngestor(db, manager, 2, logger.Default())
	if _, err := in.Run(context.Background(), labelID); !errors.Is(err, ErrTooManyFailures) {
		t.Errorf("err = %v, want ErrTooManyFailures", err)
	}
}

func TestRunCanceled(t *testing.T) {
	db := openTestDB(t)
	labelID := seedLabel(t, db)
	seedArtistWithAccount(t, db, labelID, models.PlatformSpotify, "r1", false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	manager := connectors.NewManager()
	manager.Register(models.PlatformSpotify, connectors.NewMockConnector(models.PlatformSpotify))

	in := NewIngestor(db, manager, 1, logger.Default())
	if _, err := in.Run(ctx, labelID); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
