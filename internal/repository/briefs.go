package repository

import (
	"database/sql"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

func (db *DB) UpsertBrief(b *models.ArtistBrief) error {
	query := `INSERT INTO artist_briefs (artist_id, label_id, input_hash, summary, highlights, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (artist_id, label_id) DO UPDATE SET
			input_hash = excluded.input_hash,
			summary = excluded.summary,
			highlights = excluded.highlights,
			created_at = excluded.created_at`
	_, err := db.Exec(query, b.ArtistID, b.LabelID, b.InputHash, b.Summary,
		marshalJSON(b.Highlights), b.CreatedAt.UTC())
	return err
}

// GetBrief returns the cached brief for an artist under a label, or nil, nil.
func (db *DB) GetBrief(artistID, labelID string) (*models.ArtistBrief, error) {
	query := `SELECT artist_id, label_id, input_hash, summary, highlights, created_at
		FROM artist_briefs WHERE artist_id = ? AND label_id = ?`
	b := &models.ArtistBrief{}
	var highlights string
	err := db.QueryRow(query, artistID, labelID).Scan(&b.ArtistID, &b.LabelID,
		&b.InputHash, &b.Summary, &highlights, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.Highlights = unmarshalStrings(highlights)
	return b, nil
}
