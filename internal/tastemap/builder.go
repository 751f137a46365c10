package tastemap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/scoutfeed/internal/constants"
	"github.com/cesargomez89/scoutfeed/internal/embedding"
	"github.com/cesargomez89/scoutfeed/internal/logger"
	"github.com/cesargomez89/scoutfeed/internal/models"
	"github.com/cesargomez89/scoutfeed/internal/repository"
)

// ErrEmptyRoster means the label has no roster artists to cluster.
var ErrEmptyRoster = errors.New("label roster is empty")

// Builder assembles and publishes taste map versions for a label.
type Builder struct {
	db           *repository.DB
	clusterCount int
	log          *logger.Logger
}

func NewBuilder(db *repository.DB, clusterCount int, log *logger.Logger) *Builder {
	if clusterCount < 1 {
		clusterCount = constants.DefaultClusterCount
	}
	return &Builder{db: db, clusterCount: clusterCount, log: log.WithComponent("tastemap")}
}

// Build clusters the label's roster and publishes the result as a new taste
// map version. The previous version stays visible until the new one commits.
func (b *Builder) Build(ctx context.Context, labelID string) (*models.TasteMap, error) {
	roster, err := b.db.ListRosterArtists(labelID)
	if err != nil {
		return nil, fmt.Errorf("loading roster: %w", err)
	}
	if len(roster) == 0 {
		return nil, ErrEmptyRoster
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vectors, artistIDs, err := b.rosterVectors(roster)
	if err != nil {
		return nil, err
	}

	k := b.clusterCount
	if k > len(vectors) {
		k = len(vectors)
	}
	res := KMeans(vectors, k, constants.KMeansSeed, constants.KMeansMaxIterations)

	names := clusterNames(b.db, labelID, len(res.Centroids))
	clusters := make([]models.Cluster, len(res.Centroids))
	for c := range res.Centroids {
		var members []string
		for i, assigned := range res.Assignments {
			if assigned == c {
				members = append(members, artistIDs[i])
			}
		}
		clusters[c] = models.Cluster{
			ID:        uuid.NewString(),
			Index:     c,
			Name:      names[c],
			Centroid:  res.Centroids[c],
			ArtistIDs: members,
		}
	}

	tm := &models.TasteMap{
		ID:        uuid.NewString(),
		LabelID:   labelID,
		Clusters:  clusters,
		CreatedAt: time.Now().UTC(),
	}
	if err := b.db.SaveTasteMap(tm); err != nil {
		return nil, fmt.Errorf("saving taste map: %w", err)
	}
	b.log.Info("taste map published", "label_id", labelID, "version", tm.Version, "clusters", len(clusters))
	return tm, nil
}

// rosterVectors returns one embedding per roster artist, creating hashed
// name+genre fallback embeddings for artists with no stored vector.
func (b *Builder) rosterVectors(roster []*models.Artist) ([][]float64, []string, error) {
	ids := make([]string, len(roster))
	for i, a := range roster {
		ids[i] = a.ID
	}
	stored, err := b.db.GetEmbeddings(ids)
	if err != nil {
		return nil, nil, fmt.Errorf("loading embeddings: %w", err)
	}

	vectors := make([][]float64, 0, len(roster))
	artistIDs := make([]string, 0, len(roster))
	for _, artist := range roster {
		emb, ok := stored[artist.ID]
		if !ok {
			vec := embedding.BuildFallbackVector(artist.Name, artist.GenreTags)
			emb = &models.Embedding{
				ArtistID: artist.ID,
				Provider: models.EmbeddingProviderFallback,
				Vector:   vec,
			}
			if err := b.db.UpsertEmbedding(emb); err != nil {
				return nil, nil, fmt.Errorf("storing fallback embedding: %w", err)
			}
			b.log.Debug("built fallback embedding", "artist_id", artist.ID)
		}
		vectors = append(vectors, emb.Vector)
		artistIDs = append(artistIDs, artist.ID)
	}
	return vectors, artistIDs, nil
}

// clusterNames pulls names from the label's cached DNA when the count lines
// up, falling back to positional names.
func clusterNames(db *repository.DB, labelID string, count int) []string {
	names := make([]string, count)
	for i := range names {
		names[i] = fmt.Sprintf("Cluster %d", i+1)
	}
	label, err := db.GetLabel(labelID)
	if err != nil || label.DNA == nil {
		return names
	}
	for i := 0; i < count && i < len(label.DNA.ClusterNames); i++ {
		if label.DNA.ClusterNames[i] != "" {
			names[i] = label.DNA.ClusterNames[i]
		}
	}
	return names
}
