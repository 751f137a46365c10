package discovery

import (
	"context"
	"errors"
	"sort"

	"github.com/cesargomez89/scoutfeed/internal/connectors"
	"github.com/cesargomez89/scoutfeed/internal/constants"
	"github.com/cesargomez89/scoutfeed/internal/logger"
	"github.com/cesargomez89/scoutfeed/internal/models"
)

// CrossRefStrategy searches the remaining platforms for names the other
// strategies already surfaced. A hit whose name matches above the similarity
// threshold yields the same artist's identity on another platform, which the
// resolver then merges into a single artist.
type CrossRefStrategy struct {
	manager   *connectors.Manager
	threshold float64
	log       *logger.Logger
}

func NewCrossRefStrategy(manager *connectors.Manager, threshold float64, log *logger.Logger) *CrossRefStrategy {
	if threshold <= 0 {
		threshold = constants.DefaultNameMatchThreshold
	}
	return &CrossRefStrategy{
		manager:   manager,
		threshold: threshold,
		log:       log.WithComponent("discovery.crossref"),
	}
}

func (s *CrossRefStrategy) Name() string { return "crossref" }

func (s *CrossRefStrategy) Discover(ctx context.Context, seed Seed) ([]models.CandidateStub, error) {
	platforms := s.manager.Platforms()
	sort.Strings(platforms)

	var out []models.CandidateStub
	for _, name := range seed.Names {
		for _, platform := range platforms {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			conn := s.manager.Get(platform)
			results, err := conn.Search(ctx, name)
			if err != nil {
				if errors.Is(err, connectors.ErrUnavailable) || errors.Is(err, connectors.ErrNotFound) {
					continue
				}
				return out, err
			}
			for _, stub := range results {
				if TokenSimilarity(name, stub.Name) < s.threshold {
					continue
				}
				stub.Source = s.Name()
				out = append(out, stub)
			}
		}
	}
	return out, nil
}
