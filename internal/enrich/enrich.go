// Package enrich runs the optional LLM stage: label DNA analysis and artist
// scouting briefs. Provider unavailability never fails the stage; the
// deterministic fallbacks are stored instead.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cesargomez89/scoutfeed/internal/constants"
	"github.com/cesargomez89/scoutfeed/internal/llm"
	"github.com/cesargomez89/scoutfeed/internal/logger"
	"github.com/cesargomez89/scoutfeed/internal/models"
	"github.com/cesargomez89/scoutfeed/internal/repository"
)

type Enricher struct {
	db   *repository.DB
	svc  llm.Service
	topN int
	log  *logger.Logger
}

func NewEnricher(db *repository.DB, svc llm.Service, log *logger.Logger) *Enricher {
	return &Enricher{
		db:   db,
		svc:  svc,
		topN: constants.BriefTopN,
		log:  log.WithComponent("enrich"),
	}
}

// Run refreshes the label's DNA and the briefs for its top feed items.
func (e *Enricher) Run(ctx context.Context, labelID string) error {
	if err := e.refreshLabelDNA(ctx, labelID); err != nil {
		return err
	}
	return e.refreshBriefs(ctx, labelID)
}

// refreshLabelDNA regenerates the label analysis when its inputs changed.
// The input hash stored with the cached DNA decides reuse.
func (e *Enricher) refreshLabelDNA(ctx context.Context, labelID string) error {
	label, err := e.db.GetLabel(labelID)
	if err != nil {
		return fmt.Errorf("loading label: %w", err)
	}
	roster, err := e.db.ListRosterArtists(labelID)
	if err != nil {
		return fmt.Errorf("loading roster: %w", err)
	}
	tm, err := e.db.GetLatestTasteMap(labelID)
	if err != nil {
		return fmt.Errorf("loading taste map: %w", err)
	}

	in := llm.DNAInput{
		LabelName:   label.Name,
		Description: label.Description,
		GenreTags:   label.GenreTags,
	}
	for _, artist := range roster {
		in.Roster = append(in.Roster, llm.RosterEntry{Name: artist.Name, Genres: artist.GenreTags})
	}
	clusterCount := constants.DefaultClusterCount
	if tm != nil {
		clusterCount = len(tm.Clusters)
		for _, c := range tm.Clusters {
			in.ClusterSizes = append(in.ClusterSizes, len(c.ArtistIDs))
		}
	}

	hash := llm.HashInput(in)
	if label.DNA != nil && label.DNA.InputHash == hash {
		return nil
	}

	dna, err := e.svc.GenerateLabelDNA(ctx, in)
	switch {
	case errors.Is(err, llm.ErrUnavailable):
		e.log.Warn("llm unavailable, storing fallback dna", "label_id", labelID)
		dna = llm.FallbackDNA(label.Name, clusterCount)
	case err != nil:
		return fmt.Errorf("generating label dna: %w", err)
	}
	dna.InputHash = hash
	if err := e.db.UpdateLabelDNA(labelID, dna); err != nil {
		return fmt.Errorf("storing label dna: %w", err)
	}

	if tm != nil {
		for i, c := range tm.Clusters {
			if i >= len(dna.ClusterNames) || dna.ClusterNames[i] == "" {
				break
			}
			if err := e.db.UpdateClusterName(c.ID, dna.ClusterNames[i]); err != nil {
				return fmt.Errorf("renaming cluster: %w", err)
			}
		}
	}
	return nil
}

// refreshBriefs rebuilds briefs for the top of the latest feed batch,
// skipping items whose inputs have not changed since the cached brief.
func (e *Enricher) refreshBriefs(ctx context.Context, labelID string) error {
	batch, err := e.db.GetLatestBatch(labelID)
	if err != nil {
		return fmt.Errorf("loading latest batch: %w", err)
	}
	if batch == nil {
		return nil
	}
	items, err := e.db.ListFeedItems(batch.ID, e.topN, 0)
	if err != nil {
		return fmt.Errorf("loading feed items: %w", err)
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.briefFor(ctx, labelID, item); err != nil {
			return err
		}
	}
	return nil
}

func (e *Enricher) briefFor(ctx context.Context, labelID string, item *models.ScoutFeedItem) error {
	artist, err := e.db.GetArtist(item.ArtistID)
	if err != nil {
		return fmt.Errorf("loading artist: %w", err)
	}
	feat, err := e.db.LatestFeatures(item.ArtistID)
	if err != nil {
		return fmt.Errorf("loading features: %w", err)
	}
	snapshots, err := e.db.ListSnapshots(item.ArtistID)
	if err != nil {
		return fmt.Errorf("loading snapshots: %w", err)
	}

	in := llm.BriefInput{
		ArtistName:    artist.Name,
		Genres:        artist.GenreTags,
		FitScore:      item.FitScore,
		MomentumScore: item.MomentumScore,
	}
	if len(snapshots) > 0 {
		latest := snapshots[len(snapshots)-1]
		in.Followers = latest.Followers
		in.Views = latest.Views
	}
	if feat != nil {
		in.Growth7d = feat.Growth7d
		in.Growth30d = feat.Growth30d
		in.EngagementRate = feat.EngagementRate
		in.RiskFlags = feat.RiskFlags
	}

	hash := llm.HashInput(in)
	cached, err := e.db.GetBrief(item.ArtistID, labelID)
	if err != nil {
		return fmt.Errorf("loading cached brief: %w", err)
	}
	if cached != nil && cached.InputHash == hash {
		return nil
	}

	out, err := e.svc.GenerateBrief(ctx, in)
	switch {
	case errors.Is(err, llm.ErrUnavailable):
		out = llm.FallbackBrief(artist.Name)
	case err != nil:
		return fmt.Errorf("generating brief: %w", err)
	}

	return e.db.UpsertBrief(&models.ArtistBrief{
		ArtistID:   item.ArtistID,
		LabelID:    labelID,
		InputHash:  hash,
		Summary:    out.Summary,
		Highlights: out.Highlights,
		CreatedAt:  time.Now().UTC(),
	})
}
