package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/scoutfeed/internal/constants"
	"github.com/cesargomez89/scoutfeed/internal/logger"
	"github.com/cesargomez89/scoutfeed/internal/models"
	"github.com/cesargomez89/scoutfeed/internal/repository"
)

// Resolver persists candidate stubs against the artist pool. An exact
// (platform, platform_id) hit reuses the existing artist; a close name match
// attaches the new platform account to it; everything else becomes a new
// candidate artist with a provenance tag.
type Resolver struct {
	db        *repository.DB
	threshold float64
	log       *logger.Logger
}

func NewResolver(db *repository.DB, threshold float64, log *logger.Logger) *Resolver {
	if threshold <= 0 {
		threshold = constants.DefaultNameMatchThreshold
	}
	return &Resolver{db: db, threshold: threshold, log: log.WithComponent("discovery.resolver")}
}

// Summary counts what a resolve pass did with the stubs it was given.
type Summary struct {
	Created int
	Merged  int
	Reused  int
	Skipped int
}

func (r *Resolver) Resolve(ctx context.Context, stubs []models.CandidateStub) (Summary, error) {
	var sum Summary

	known, err := r.db.ListArtistNames()
	if err != nil {
		return sum, fmt.Errorf("loading artist names: %w", err)
	}

	for _, stub := range stubs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if stub.PlatformID == "" && stub.URL != "" {
			if platform, id, ok := ParseAccountURL(stub.URL); ok {
				stub.Platform, stub.PlatformID = platform, id
			}
		}
		if stub.PlatformID == "" || stub.Platform == "" || IsJunkName(stub.Name) || !meetsFloors(stub) {
			sum.Skipped++
			continue
		}

		existing, err := r.db.GetArtistByPlatformIdentity(stub.Platform, stub.PlatformID)
		if err != nil {
			return sum, fmt.Errorf("resolving platform identity: %w", err)
		}
		if existing != nil {
			sum.Reused++
			continue
		}

		if matchID := r.bestNameMatch(known, stub.Name); matchID != "" {
			if err := r.attachAccount(matchID, stub); err != nil {
				return sum, err
			}
			sum.Merged++
			continue
		}

		artistID, err := r.createCandidate(stub)
		if err != nil {
			return sum, err
		}
		if artistID == "" {
			// lost the identity race to a concurrent run
			sum.Reused++
			continue
		}
		known = append(known, repository.ArtistName{ID: artistID, Name: stub.Name})
		sum.Created++
	}
	return sum, nil
}

// bestNameMatch returns the id of the most similar known artist at or above
// the threshold, preferring the lowest id on equal similarity.
func (r *Resolver) bestNameMatch(known []repository.ArtistName, name string) string {
	var bestID string
	var bestSim float64
	for _, k := range known {
		sim := TokenSimilarity(name, k.Name)
		if sim >= r.threshold && sim > bestSim {
			bestID, bestSim = k.ID, sim
		}
	}
	return bestID
}

func (r *Resolver) attachAccount(artistID string, stub models.CandidateStub) error {
	added, err := r.db.AddPlatformAccount(&models.PlatformAccount{
		ID:         uuid.NewString(),
		ArtistID:   artistID,
		Platform:   stub.Platform,
		PlatformID: stub.PlatformID,
		URL:        stub.URL,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("attaching platform account: %w", err)
	}
	if added {
		r.log.Debug("merged platform identity", "artist_id", artistID, "platform", stub.Platform, "platform_id", stub.PlatformID)
	}
	return r.db.TouchArtist(artistID)
}

// createCandidate inserts a new candidate artist with its platform account.
// Returns "" when another writer claimed the platform identity first; the
// provisional artist row is backed out so the identity stays singular.
func (r *Resolver) createCandidate(stub models.CandidateStub) (string, error) {
	now := time.Now().UTC()
	artist := &models.Artist{
		ID:          uuid.NewString(),
		Name:        stub.Name,
		GenreTags:   stub.Genres,
		IsCandidate: true,
		Provenance:  stub.Source,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.db.CreateArtist(artist); err != nil {
		return "", fmt.Errorf("creating candidate: %w", err)
	}
	added, err := r.db.AddPlatformAccount(&models.PlatformAccount{
		ID:         uuid.NewString(),
		ArtistID:   artist.ID,
		Platform:   stub.Platform,
		PlatformID: stub.PlatformID,
		URL:        stub.URL,
		CreatedAt:  now,
	})
	if err != nil {
		return "", fmt.Errorf("creating platform account: %w", err)
	}
	if !added {
		if err := r.db.DeleteArtist(artist.ID); err != nil {
			return "", fmt.Errorf("backing out duplicate candidate: %w", err)
		}
		return "", nil
	}
	return artist.ID, nil
}
