package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

type dnaOutput struct {
	ClusterNames  []string `json:"cluster_names"`
	ThesisBullets []string `json:"label_thesis_bullets"`
	SeedQueries   []string `json:"search_seed_queries"`
}

func (c *OpenAIClient) GenerateLabelDNA(ctx context.Context, in DNAInput) (*models.LabelDNA, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this record label's taste profile:\n\n")
	fmt.Fprintf(&b, "Label: %s\nDescription: %s\nGenre tags: %s\n\nRoster Artists:\n",
		in.LabelName, orNA(in.Description), strings.Join(in.GenreTags, ", "))
	for _, entry := range in.Roster {
		fmt.Fprintf(&b, "- %s (genres: %s)\n", entry.Name, strings.Join(entry.Genres, ", "))
	}
	fmt.Fprintf(&b, "\nNumber of taste clusters: %d\nCluster sizes: %v\n\n", len(in.ClusterSizes), in.ClusterSizes)
	b.WriteString(`Respond with JSON:
{
  "cluster_names": ["name for each cluster based on the artists"],
  "label_thesis_bullets": ["3-5 bullet points describing the label's taste"],
  "search_seed_queries": ["5-10 search queries to find similar artists"]
}`)

	var out dnaOutput
	if err := c.generate(ctx, dnaSystemPrompt, b.String(), &out); err != nil {
		return nil, err
	}
	return &models.LabelDNA{
		ClusterNames:  out.ClusterNames,
		ThesisBullets: out.ThesisBullets,
		SeedQueries:   out.SeedQueries,
	}, nil
}

type queryOutput struct {
	Queries []string `json:"queries"`
}

func (c *OpenAIClient) ExpandQueries(ctx context.Context, dna *models.LabelDNA, labelName string) ([]string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on this label's taste profile, generate discovery search queries:\n\n")
	fmt.Fprintf(&b, "Label: %s\nThesis:\n", labelName)
	for _, bullet := range dna.ThesisBullets {
		fmt.Fprintf(&b, "- %s\n", bullet)
	}
	fmt.Fprintf(&b, "Seed Queries: %v\n\n", dna.SeedQueries)
	b.WriteString(`Generate JSON:
{
  "queries": ["10-15 search queries to find emerging artists matching this taste"]
}`)

	var out queryOutput
	if err := c.generate(ctx, querySystemPrompt, b.String(), &out); err != nil {
		return nil, err
	}
	return out.Queries, nil
}

func (c *OpenAIClient) GenerateBrief(ctx context.Context, in BriefInput) (*BriefOutput, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Produce a scouting brief for this emerging artist:\n\n")
	fmt.Fprintf(&b, "Artist: %s\nGenres: %s\n", in.ArtistName, strings.Join(in.Genres, ", "))
	fmt.Fprintf(&b, "Current Followers: %d\nTotal Views: %d\n", in.Followers, in.Views)
	fmt.Fprintf(&b, "7-day Growth: %s\n30-day Growth: %s\n", formatGrowth(in.Growth7d), formatGrowth(in.Growth30d))
	fmt.Fprintf(&b, "Engagement Rate: %.4f\nRisk Flags: %v\n", in.EngagementRate, in.RiskFlags)
	fmt.Fprintf(&b, "Fit Score: %.2f\nMomentum Score: %.2f\n\n", in.FitScore, in.MomentumScore)
	b.WriteString(`Respond with JSON:
{
  "summary": "1-2 sentence summary of the artist's trajectory and label fit",
  "highlights": ["2-4 specific observations or next steps for the A&R team"]
}`)

	var out BriefOutput
	if err := c.generate(ctx, briefSystemPrompt, b.String(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func formatGrowth(g *float64) string {
	if g == nil {
		return "unknown"
	}
	return fmt.Sprintf("%+.0f%%", *g*100)
}
