// Package scoring ranks candidate artists against a label's taste map and
// publishes the result as an immutable feed batch.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/scoutfeed/internal/constants"
	"github.com/cesargomez89/scoutfeed/internal/embedding"
	"github.com/cesargomez89/scoutfeed/internal/feedback"
	"github.com/cesargomez89/scoutfeed/internal/logger"
	"github.com/cesargomez89/scoutfeed/internal/models"
	"github.com/cesargomez89/scoutfeed/internal/repository"
)

// ErrNoTasteMap means the label has no published taste map to score against.
var ErrNoTasteMap = errors.New("label has no taste map")

// Scorer builds scored feed batches.
type Scorer struct {
	db  *repository.DB
	log *logger.Logger
}

func NewScorer(db *repository.DB, log *logger.Logger) *Scorer {
	return &Scorer{db: db, log: log.WithComponent("scoring")}
}

// Score ranks every candidate artist for the label and commits the batch.
// Candidates without any embedding are skipped. The previous batch stays the
// visible feed until this one commits.
func (s *Scorer) Score(ctx context.Context, labelID string) (*models.FeedBatch, error) {
	tm, err := s.db.GetLatestTasteMap(labelID)
	if err != nil {
		return nil, fmt.Errorf("loading taste map: %w", err)
	}
	if tm == nil || len(tm.Clusters) == 0 {
		return nil, ErrNoTasteMap
	}

	rosterIDs, err := s.db.ListRosterArtistIDs(labelID)
	if err != nil {
		return nil, fmt.Errorf("loading roster: %w", err)
	}
	rosterEmbs, err := s.db.GetEmbeddings(rosterIDs)
	if err != nil {
		return nil, fmt.Errorf("loading roster embeddings: %w", err)
	}

	candidates, err := s.db.ListCandidates()
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}

	now := time.Now().UTC()
	biaser, err := feedback.NewBiaser(s.db, labelID, now)
	if err != nil {
		return nil, err
	}

	candidateIDs := make([]string, len(candidates))
	for i, c := range candidates {
		candidateIDs[i] = c.ID
	}
	featureMap, err := s.db.LatestFeaturesFor(candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("loading features: %w", err)
	}

	batch := &models.FeedBatch{ID: uuid.NewString(), LabelID: labelID, CreatedAt: now}
	var items []models.ScoutFeedItem
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		emb, err := s.db.GetEmbedding(candidate.ID)
		if err != nil {
			return nil, fmt.Errorf("loading embedding for %s: %w", candidate.ID, err)
		}
		if emb == nil {
			s.log.Debug("skipping candidate without embedding", "artist_id", candidate.ID)
			continue
		}
		item := s.scoreOne(candidate, emb.Vector, tm, rosterEmbs, featureMap[candidate.ID], biaser)
		item.BatchID = batch.ID
		item.LabelID = labelID
		item.CreatedAt = now
		items = append(items, item)
	}

	sortItems(items)
	if err := s.db.SaveFeedBatch(batch, items); err != nil {
		return nil, fmt.Errorf("saving feed batch: %w", err)
	}
	s.log.Info("feed batch published", "label_id", labelID, "batch_id", batch.ID, "items", len(items))
	return batch, nil
}

func (s *Scorer) scoreOne(
	candidate *models.Artist,
	vector []float64,
	tm *models.TasteMap,
	rosterEmbs map[string]*models.Embedding,
	feat *models.ArtistFeatures,
	biaser *feedback.Biaser,
) models.ScoutFeedItem {
	item := models.ScoutFeedItem{
		ID:       uuid.NewString(),
		ArtistID: candidate.ID,
	}

	bestSim := math.Inf(-1)
	for i := range tm.Clusters {
		c := &tm.Clusters[i]
		sim := embedding.Cosine(vector, c.Centroid)
		if sim > bestSim {
			bestSim = sim
			item.NearestClusterID = c.ID
			item.NearestClusterName = c.Name
		}
	}
	item.FitScore = clamp01(bestSim + biaser.Bias(vector))

	bestRoster := -1.0
	for _, rosterID := range sortedKeys(rosterEmbs) {
		sim := embedding.Cosine(vector, rosterEmbs[rosterID].Vector)
		if sim > bestRoster {
			bestRoster = sim
			item.NearestRosterArtist = rosterID
		}
	}

	fallback := feat == nil || feat.Fallback
	if feat != nil {
		item.MomentumScore = feat.MomentumScore
		item.RiskScore = feat.RiskScore
	}
	if fallback {
		item.MomentumScore = constants.NeutralMomentum
		item.FallbackScoring = true
		item.FinalScore = item.FitScore
	} else {
		item.FinalScore = math.Max(0, item.FitScore*item.MomentumScore-item.RiskScore)
	}

	item.Reasons = reasons(&item, feat)
	return item
}

// reasons derives the explanation tags. Each tag corresponds to exactly one
// threshold crossing, so identical inputs always explain identically.
func reasons(item *models.ScoutFeedItem, feat *models.ArtistFeatures) []string {
	var out []string
	if item.MomentumScore >= constants.HighMomentumThreshold && !item.FallbackScoring {
		out = append(out, "high momentum")
	}
	if item.FitScore >= constants.StrongFitThreshold {
		out = append(out, "strong fit")
	}
	if feat != nil && feat.Acceleration > constants.AcceleratingThreshold {
		out = append(out, "accelerating")
	}
	if item.NearestClusterName != "" {
		out = append(out, "near cluster "+item.NearestClusterName)
	}
	if feat != nil {
		for _, flag := range feat.RiskFlags {
			out = append(out, "risk: "+flag)
		}
	}
	if item.FallbackScoring {
		out = append(out, "fit-only scoring")
	}
	return out
}

// sortItems orders a batch: final score descending, fit descending, then
// artist id ascending so equal scores rank deterministically.
func sortItems(items []models.ScoutFeedItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].FinalScore != items[j].FinalScore {
			return items[i].FinalScore > items[j].FinalScore
		}
		if items[i].FitScore != items[j].FitScore {
			return items[i].FitScore > items[j].FitScore
		}
		return items[i].ArtistID < items[j].ArtistID
	})
}

func sortedKeys(m map[string]*models.Embedding) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
