// Package discovery finds new candidate artists for a label and resolves
// them against the known artist pool without ever duplicating a platform
// identity.
package discovery

import (
	"context"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

// Seed is the starting material a strategy expands from.
type Seed struct {
	LabelID  string
	Accounts []*models.PlatformAccount // roster platform identities
	Queries  []string                  // label DNA seed queries
	Names    []string                  // names found by earlier strategies, for cross-referencing
}

// Strategy is one way of turning a seed into candidate stubs. Strategies are
// independent; the engine filters and deduplicates their combined output.
type Strategy interface {
	Name() string
	Discover(ctx context.Context, seed Seed) ([]models.CandidateStub, error)
}
