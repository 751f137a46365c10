package discovery

import (
	"context"
	"fmt"

	"github.com/cesargomez89/scoutfeed/internal/connectors"
	"github.com/cesargomez89/scoutfeed/internal/constants"
	"github.com/cesargomez89/scoutfeed/internal/llm"
	"github.com/cesargomez89/scoutfeed/internal/logger"
	"github.com/cesargomez89/scoutfeed/internal/models"
	"github.com/cesargomez89/scoutfeed/internal/repository"
)

// Engine seeds the strategies, filters their combined output and hands the
// survivors to the resolver.
type Engine struct {
	db            *repository.DB
	enrich        llm.Service
	graph         *GraphStrategy
	search        *SearchStrategy
	crossref      *CrossRefStrategy
	resolver      *Resolver
	maxCandidates int
	log           *logger.Logger
}

func NewEngine(db *repository.DB, manager *connectors.Manager, enrich llm.Service, log *logger.Logger) *Engine {
	return &Engine{
		db:            db,
		enrich:        enrich,
		graph:         NewGraphStrategy(manager, constants.DefaultGraphMaxDepth, constants.DefaultMaxCandidates, log),
		search:        NewSearchStrategy(manager, constants.DefaultSearchPerQuery, constants.DefaultSeedQueryLimit, log),
		crossref:      NewCrossRefStrategy(manager, constants.DefaultNameMatchThreshold, log),
		resolver:      NewResolver(db, constants.DefaultNameMatchThreshold, log),
		maxCandidates: constants.DefaultMaxCandidates,
		log:           log.WithComponent("discovery"),
	}
}

// Run discovers new candidates for a label and persists them.
func (e *Engine) Run(ctx context.Context, labelID string) (Summary, error) {
	seed, err := e.buildSeed(ctx, labelID)
	if err != nil {
		return Summary{}, err
	}

	var stubs []models.CandidateStub
	for _, strategy := range []Strategy{e.graph, e.search} {
		found, err := strategy.Discover(ctx, seed)
		if err != nil {
			return Summary{}, fmt.Errorf("%s discovery: %w", strategy.Name(), err)
		}
		e.log.Info("strategy finished", "strategy", strategy.Name(), "label_id", labelID, "stubs", len(found))
		stubs = append(stubs, found...)
		if len(stubs) >= e.maxCandidates {
			stubs = stubs[:e.maxCandidates]
			break
		}
	}

	// Cross-reference the surviving names on the remaining platforms so one
	// act found twice lands as one artist with two accounts.
	seed.Names = stubNames(stubs)
	crossed, err := e.crossref.Discover(ctx, seed)
	if err != nil {
		return Summary{}, fmt.Errorf("crossref discovery: %w", err)
	}
	stubs = append(stubs, crossed...)

	sum, err := e.resolver.Resolve(ctx, stubs)
	if err != nil {
		return sum, err
	}
	e.log.Info("discovery finished", "label_id", labelID,
		"created", sum.Created, "merged", sum.Merged, "reused", sum.Reused, "skipped", sum.Skipped)
	return sum, nil
}

// buildSeed collects the roster's platform identities and the label's seed
// queries, asking the enrichment service to widen the query list when it can.
func (e *Engine) buildSeed(ctx context.Context, labelID string) (Seed, error) {
	label, err := e.db.GetLabel(labelID)
	if err != nil {
		return Seed{}, fmt.Errorf("loading label: %w", err)
	}

	rosterIDs, err := e.db.ListRosterArtistIDs(labelID)
	if err != nil {
		return Seed{}, fmt.Errorf("loading roster: %w", err)
	}
	var accounts []*models.PlatformAccount
	for _, artistID := range rosterIDs {
		accts, err := e.db.ListPlatformAccounts(artistID)
		if err != nil {
			return Seed{}, fmt.Errorf("loading roster accounts: %w", err)
		}
		accounts = append(accounts, accts...)
	}

	var queries []string
	if label.DNA != nil && len(label.DNA.SeedQueries) > 0 {
		queries = append(queries, label.DNA.SeedQueries...)
		expanded, err := e.enrich.ExpandQueries(ctx, label.DNA, label.Name)
		if err == nil {
			queries = append(queries, expanded...)
		}
	} else {
		queries = []string{
			label.Name + " emerging artists",
			label.Name + " new music",
		}
	}

	return Seed{LabelID: labelID, Accounts: accounts, Queries: queries}, nil
}

func stubNames(stubs []models.CandidateStub) []string {
	seen := make(map[string]bool, len(stubs))
	var names []string
	for _, stub := range stubs {
		if stub.Name == "" || seen[stub.Name] {
			continue
		}
		seen[stub.Name] = true
		names = append(names, stub.Name)
	}
	return names
}
