// Package llm wraps the optional enrichment provider. Every call has a
// deterministic local fallback so the pipeline behaves identically with the
// provider disabled, modulo text quality.
package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

// ErrUnavailable is returned when no provider is configured or the provider
// cannot be reached. Callers substitute the deterministic fallbacks.
var ErrUnavailable = errors.New("llm provider unavailable")

// RosterEntry is the slice of artist data the label analysis sees.
type RosterEntry struct {
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

// DNAInput gathers everything the label analysis prompt is built from. Its
// hash decides cache reuse.
type DNAInput struct {
	LabelName    string        `json:"label_name"`
	Description  string        `json:"label_description"`
	GenreTags    []string      `json:"genre_tags"`
	Roster       []RosterEntry `json:"roster"`
	ClusterSizes []int         `json:"cluster_sizes"`
}

// BriefInput is the artist data a scouting brief is generated from.
type BriefInput struct {
	ArtistName     string   `json:"artist_name"`
	Genres         []string `json:"genres"`
	Followers      int64    `json:"followers"`
	Views          int64    `json:"views"`
	Growth7d       *float64 `json:"growth_7d"`
	Growth30d      *float64 `json:"growth_30d"`
	EngagementRate float64  `json:"engagement_rate"`
	RiskFlags      []string `json:"risk_flags"`
	FitScore       float64  `json:"fit_score"`
	MomentumScore  float64  `json:"momentum_score"`
}

// BriefOutput is the structured scouting brief.
type BriefOutput struct {
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
}

// Service is the enrichment interface the pipeline calls.
type Service interface {
	GenerateLabelDNA(ctx context.Context, in DNAInput) (*models.LabelDNA, error)
	ExpandQueries(ctx context.Context, dna *models.LabelDNA, labelName string) ([]string, error)
	GenerateBrief(ctx context.Context, in BriefInput) (*BriefOutput, error)
}

// HashInput returns a deterministic hash of a prompt input for caching.
func HashInput(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FallbackDNA is the label analysis used when no provider responds.
func FallbackDNA(labelName string, clusterCount int) *models.LabelDNA {
	names := make([]string, clusterCount)
	for i := range names {
		names[i] = fmt.Sprintf("Cluster %d", i+1)
	}
	return &models.LabelDNA{
		ClusterNames:  names,
		ThesisBullets: []string{"Diverse roster spanning multiple genres"},
		SeedQueries:   []string{labelName + " similar artists"},
	}
}

// FallbackBrief is the scouting brief used when no provider responds.
func FallbackBrief(artistName string) *BriefOutput {
	return &BriefOutput{
		Summary: fmt.Sprintf("%s is an emerging artist with growing metrics.", artistName),
		Highlights: []string{
			"Limited data history, further monitoring recommended",
			"Review content quality manually",
		},
	}
}

// Disabled is the Service used when no API key is configured.
type Disabled struct{}

func (Disabled) GenerateLabelDNA(context.Context, DNAInput) (*models.LabelDNA, error) {
	return nil, ErrUnavailable
}

func (Disabled) ExpandQueries(context.Context, *models.LabelDNA, string) ([]string, error) {
	return nil, ErrUnavailable
}

func (Disabled) GenerateBrief(context.Context, BriefInput) (*BriefOutput, error) {
	return nil, ErrUnavailable
}
