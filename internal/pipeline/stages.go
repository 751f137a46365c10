package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/cesargomez89/scoutfeed/internal/alerts"
	"github.com/cesargomez89/scoutfeed/internal/connectors"
	"github.com/cesargomez89/scoutfeed/internal/constants"
	"github.com/cesargomez89/scoutfeed/internal/discovery"
	"github.com/cesargomez89/scoutfeed/internal/enrich"
	"github.com/cesargomez89/scoutfeed/internal/features"
	"github.com/cesargomez89/scoutfeed/internal/ingest"
	"github.com/cesargomez89/scoutfeed/internal/llm"
	"github.com/cesargomez89/scoutfeed/internal/logger"
	"github.com/cesargomez89/scoutfeed/internal/metrics"
	"github.com/cesargomez89/scoutfeed/internal/repository"
	"github.com/cesargomez89/scoutfeed/internal/scoring"
	"github.com/cesargomez89/scoutfeed/internal/tastemap"
)

// Options sizes the run components. Zero values fall back to the defaults
// the components carry themselves.
type Options struct {
	Workers       int // concurrent label runs
	ArtistWorkers int // concurrent artists within the ingest stage
	ClusterCount  int
}

// NewManager wires the full stage sequence over the real components.
func NewManager(db *repository.DB, conns *connectors.Manager, svc llm.Service, opts Options, log *logger.Logger) *Manager {
	ingestor := ingest.NewIngestor(db, conns, opts.ArtistWorkers, log)
	engine := discovery.NewEngine(db, conns, svc, log)
	clusterCount := opts.ClusterCount
	if clusterCount < 1 {
		clusterCount = constants.DefaultClusterCount
	}
	builder := tastemap.NewBuilder(db, clusterCount, log)
	scorer := scoring.NewScorer(db, log)
	enricher := enrich.NewEnricher(db, svc, log)
	alerter := alerts.NewEngine(db, log)

	stages := []stage{
		{name: "ingest", run: func(ctx context.Context, labelID string) error {
			stats, err := ingestor.Run(ctx, labelID)
			if err != nil {
				return err
			}
			log.Info("ingest stats", "label_id", labelID, "artists", stats.Artists,
				"snapshots", stats.Snapshots, "skipped", stats.Skipped, "failures", stats.Failures)
			return nil
		}},
		{name: "discover", run: func(ctx context.Context, labelID string) error {
			summary, err := engine.Run(ctx, labelID)
			if err != nil {
				return err
			}
			metrics.CandidatesDiscovered.WithLabelValues("created").Add(float64(summary.Created))
			metrics.CandidatesDiscovered.WithLabelValues("merged").Add(float64(summary.Merged))
			metrics.CandidatesDiscovered.WithLabelValues("reused").Add(float64(summary.Reused))
			metrics.CandidatesDiscovered.WithLabelValues("skipped").Add(float64(summary.Skipped))
			return nil
		}},
		{name: "tastemap", run: func(ctx context.Context, labelID string) error {
			_, err := builder.Build(ctx, labelID)
			return err
		}},
		{name: "features", run: featureStage(db)},
		{name: "scoring", run: func(ctx context.Context, labelID string) error {
			_, err := scorer.Score(ctx, labelID)
			return err
		}},
		{name: "enrich", run: enricher.Run},
		{name: "alerts", run: func(ctx context.Context, labelID string) error {
			fired, err := alerter.Scan(ctx, labelID)
			if err != nil {
				return err
			}
			metrics.AlertsFired.Add(float64(fired))
			return nil
		}},
	}
	return newManager(db, stages, opts.Workers, log)
}

// featureStage recomputes growth and risk features for every artist with
// snapshot history: the label's roster plus the candidate pool.
func featureStage(db *repository.DB) StageFunc {
	return func(ctx context.Context, labelID string) error {
		ids, err := db.ListRosterArtistIDs(labelID)
		if err != nil {
			return fmt.Errorf("loading roster: %w", err)
		}
		candidates, err := db.ListCandidates()
		if err != nil {
			return fmt.Errorf("loading candidates: %w", err)
		}
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			seen[id] = true
		}
		for _, c := range candidates {
			if !seen[c.ID] {
				ids = append(ids, c.ID)
			}
		}

		now := time.Now().UTC()
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			snapshots, err := db.ListSnapshots(id)
			if err != nil {
				return fmt.Errorf("loading snapshots: %w", err)
			}
			feat := features.Compute(id, snapshots, now)
			if feat == nil {
				continue
			}
			if err := db.InsertFeatures(feat); err != nil {
				return fmt.Errorf("storing features: %w", err)
			}
		}
		return nil
	}
}
