package discovery

import (
	"context"
	"errors"
	"sort"

	"github.com/cesargomez89/scoutfeed/internal/connectors"
	"github.com/cesargomez89/scoutfeed/internal/logger"
	"github.com/cesargomez89/scoutfeed/internal/models"
)

// SearchStrategy runs the label's seed queries against every configured
// platform's search endpoint.
type SearchStrategy struct {
	manager    *connectors.Manager
	perQuery   int
	queryLimit int
	log        *logger.Logger
}

func NewSearchStrategy(manager *connectors.Manager, perQuery, queryLimit int, log *logger.Logger) *SearchStrategy {
	return &SearchStrategy{
		manager:    manager,
		perQuery:   perQuery,
		queryLimit: queryLimit,
		log:        log.WithComponent("discovery.search"),
	}
}

func (s *SearchStrategy) Name() string { return "search" }

func (s *SearchStrategy) Discover(ctx context.Context, seed Seed) ([]models.CandidateStub, error) {
	queries := seed.Queries
	if len(queries) > s.queryLimit {
		queries = queries[:s.queryLimit]
	}
	platforms := s.manager.Platforms()
	sort.Strings(platforms)

	var out []models.CandidateStub
	for _, query := range queries {
		for _, platform := range platforms {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			conn := s.manager.Get(platform)
			results, err := conn.Search(ctx, query)
			if err != nil {
				if errors.Is(err, connectors.ErrUnavailable) || errors.Is(err, connectors.ErrNotFound) {
					s.log.Warn("search skipped", "platform", platform, "query", query, "error", err)
					continue
				}
				return out, err
			}
			if len(results) > s.perQuery {
				results = results[:s.perQuery]
			}
			for _, stub := range results {
				stub.Source = s.Name()
				out = append(out, stub)
			}
		}
	}
	return out, nil
}
