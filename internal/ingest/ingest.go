// Package ingest pulls fresh metric snapshots for artists and rebuilds their
// metric embeddings.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/scoutfeed/internal/connectors"
	"github.com/cesargomez89/scoutfeed/internal/constants"
	"github.com/cesargomez89/scoutfeed/internal/embedding"
	"github.com/cesargomez89/scoutfeed/internal/logger"
	"github.com/cesargomez89/scoutfeed/internal/models"
	"github.com/cesargomez89/scoutfeed/internal/repository"
)

// ErrTooManyFailures aborts the stage when the hard-failure rate across
// platform accounts crosses the configured threshold.
var ErrTooManyFailures = errors.New("too many connector failures")

// Stats summarizes one ingestion pass.
type Stats struct {
	Artists   int
	Snapshots int
	Skipped   int
	Failures  int
	attempts  int
}

// Ingestor fetches snapshots for every platform account of the artists in
// scope, bounded by a worker pool.
type Ingestor struct {
	db          *repository.DB
	manager     *connectors.Manager
	workers     int
	failureRate float64
	log         *logger.Logger
}

func NewIngestor(db *repository.DB, manager *connectors.Manager, workers int, log *logger.Logger) *Ingestor {
	if workers < 1 {
		workers = constants.DefaultArtistWorkers
	}
	return &Ingestor{
		db:          db,
		manager:     manager,
		workers:     workers,
		failureRate: constants.DefaultStageFailureRate,
		log:         log.WithComponent("ingest"),
	}
}

// Run ingests the label's roster plus the global candidate pool. Individual
// account failures are warnings; the stage only fails when more than the
// configured fraction of accounts hard-fail.
func (in *Ingestor) Run(ctx context.Context, labelID string) (Stats, error) {
	roster, err := in.db.ListRosterArtists(labelID)
	if err != nil {
		return Stats{}, fmt.Errorf("loading roster: %w", err)
	}
	candidates, err := in.db.ListCandidates()
	if err != nil {
		return Stats{}, fmt.Errorf("loading candidates: %w", err)
	}

	seen := make(map[string]bool)
	var artists []*models.Artist
	for _, a := range append(roster, candidates...) {
		if !seen[a.ID] {
			seen[a.ID] = true
			artists = append(artists, a)
		}
	}

	var (
		mu    sync.Mutex
		stats Stats
		wg    sync.WaitGroup
		sem   = make(chan struct{}, in.workers)
	)
	for _, artist := range artists {
		if err := ctx.Err(); err != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(artist *models.Artist) {
			defer wg.Done()
			defer func() { <-sem }()
			s := in.ingestArtist(ctx, artist)
			mu.Lock()
			stats.Artists++
			stats.Snapshots += s.Snapshots
			stats.Skipped += s.Skipped
			stats.Failures += s.Failures
			stats.attempts += s.attempts
			mu.Unlock()
		}(artist)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	if stats.attempts > 0 && float64(stats.Failures)/float64(stats.attempts) > in.failureRate {
		return stats, fmt.Errorf("%w: %d of %d accounts failed", ErrTooManyFailures, stats.Failures, stats.attempts)
	}
	return stats, nil
}

// ingestArtist snapshots each of the artist's platform accounts, then
// rebuilds its metric embedding from the full snapshot history.
func (in *Ingestor) ingestArtist(ctx context.Context, artist *models.Artist) Stats {
	var stats Stats
	log := in.log.WithArtist(artist.ID, artist.Name)

	accounts, err := in.db.ListPlatformAccounts(artist.ID)
	if err != nil {
		log.Error("listing accounts failed", "error", err)
		stats.Failures++
		return stats
	}

	for _, account := range accounts {
		if ctx.Err() != nil {
			return stats
		}
		conn := in.manager.Get(account.Platform)
		if conn == nil {
			continue
		}
		stats.attempts++

		snap, err := conn.FetchSnapshot(ctx, account.PlatformID)
		switch {
		case errors.Is(err, connectors.ErrNotFound):
			log.Warn("platform identity gone, skipping", "platform", account.Platform)
			stats.Skipped++
			continue
		case errors.Is(err, connectors.ErrUnavailable):
			log.Warn("platform unavailable, skipping", "platform", account.Platform)
			stats.Failures++
			continue
		case err != nil:
			log.Error("snapshot fetch failed", "platform", account.Platform, "error", err)
			stats.Failures++
			continue
		}

		snap.ID = uuid.NewString()
		snap.ArtistID = artist.ID
		snap.Platform = account.Platform
		if snap.CapturedAt.IsZero() {
			snap.CapturedAt = time.Now().UTC()
		}
		inserted, err := in.db.InsertSnapshot(snap)
		if err != nil {
			log.Error("snapshot insert failed", "platform", account.Platform, "error", err)
			stats.Failures++
			continue
		}
		if inserted {
			stats.Snapshots++
		}
	}

	if err := in.rebuildEmbedding(artist.ID); err != nil {
		log.Error("embedding rebuild failed", "error", err)
	}
	return stats
}

func (in *Ingestor) rebuildEmbedding(artistID string) error {
	snapshots, err := in.db.ListSnapshots(artistID)
	if err != nil {
		return err
	}
	vec := embedding.BuildMetricVector(snapshots)
	if vec == nil {
		return nil
	}
	return in.db.UpsertEmbedding(&models.Embedding{
		ArtistID: artistID,
		Provider: models.EmbeddingProviderMetric,
		Vector:   vec,
	})
}
