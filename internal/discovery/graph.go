package discovery

import (
	"context"
	"errors"

	"github.com/cesargomez89/scoutfeed/internal/connectors"
	"github.com/cesargomez89/scoutfeed/internal/logger"
	"github.com/cesargomez89/scoutfeed/internal/models"
)

// GraphStrategy walks the related-artists graph outward from the roster.
// The visited set plus the depth and candidate caps guarantee termination
// even when the platform graph has cycles.
type GraphStrategy struct {
	manager       *connectors.Manager
	maxDepth      int
	maxCandidates int
	log           *logger.Logger
}

func NewGraphStrategy(manager *connectors.Manager, maxDepth, maxCandidates int, log *logger.Logger) *GraphStrategy {
	return &GraphStrategy{
		manager:       manager,
		maxDepth:      maxDepth,
		maxCandidates: maxCandidates,
		log:           log.WithComponent("discovery.graph"),
	}
}

func (s *GraphStrategy) Name() string { return "graph" }

type graphNode struct {
	platform   string
	platformID string
}

func (s *GraphStrategy) Discover(ctx context.Context, seed Seed) ([]models.CandidateStub, error) {
	visited := make(map[graphNode]bool)
	var frontier []graphNode
	for _, acct := range seed.Accounts {
		node := graphNode{acct.Platform, acct.PlatformID}
		visited[node] = true
		frontier = append(frontier, node)
	}

	var out []models.CandidateStub
	for depth := 0; depth < s.maxDepth && len(frontier) > 0; depth++ {
		var next []graphNode
		for _, node := range frontier {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			if len(out) >= s.maxCandidates {
				return out, nil
			}
			conn := s.manager.Get(node.platform)
			if conn == nil {
				continue
			}
			related, err := conn.FetchRelated(ctx, node.platformID)
			if err != nil {
				if errors.Is(err, connectors.ErrUnavailable) || errors.Is(err, connectors.ErrNotFound) {
					s.log.Warn("related lookup skipped", "platform", node.platform, "platform_id", node.platformID, "error", err)
					continue
				}
				return out, err
			}
			for _, stub := range related {
				edge := graphNode{stub.Platform, stub.PlatformID}
				if visited[edge] {
					continue
				}
				visited[edge] = true
				stub.Source = s.Name()
				out = append(out, stub)
				next = append(next, edge)
				if len(out) >= s.maxCandidates {
					return out, nil
				}
			}
		}
		frontier = next
	}
	return out, nil
}
