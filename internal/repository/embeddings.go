package repository

import (
	"database/sql"
	"time"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

func (db *DB) UpsertEmbedding(e *models.Embedding) error {
	query := `INSERT INTO embeddings (artist_id, provider, vector, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (artist_id, provider) DO UPDATE SET vector = excluded.vector, updated_at = excluded.updated_at`
	_, err := db.Exec(query, e.ArtistID, e.Provider, marshalJSON(e.Vector), time.Now().UTC())
	return err
}

// GetEmbedding returns the artist's embedding, preferring the metric provider
// over the fallback one. Returns nil, nil when the artist has no embedding.
func (db *DB) GetEmbedding(artistID string) (*models.Embedding, error) {
	query := `SELECT artist_id, provider, vector, updated_at FROM embeddings
		WHERE artist_id = ? AND provider IN (?, ?)
		ORDER BY CASE provider WHEN ? THEN 0 ELSE 1 END
		LIMIT 1`
	row := db.QueryRow(query, artistID,
		models.EmbeddingProviderMetric, models.EmbeddingProviderFallback,
		models.EmbeddingProviderMetric)

	e := &models.Embedding{}
	var vector string
	err := row.Scan(&e.ArtistID, &e.Provider, &vector, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.Vector = unmarshalFloats(vector)
	return e, nil
}

// GetEmbeddings returns the preferred embedding per artist for a set of ids.
func (db *DB) GetEmbeddings(artistIDs []string) (map[string]*models.Embedding, error) {
	out := make(map[string]*models.Embedding, len(artistIDs))
	for _, id := range artistIDs {
		e, err := db.GetEmbedding(id)
		if err != nil {
			return nil, err
		}
		if e != nil {
			out[id] = e
		}
	}
	return out, nil
}
