package repository

import (
	"database/sql"
	"fmt"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

// SaveFeedBatch commits a scoring run's ranked items as one immutable batch.
// Items are written before the batch row inside one transaction, so the
// latest visible batch is always complete.
func (db *DB) SaveFeedBatch(batch *models.FeedBatch, items []models.ScoutFeedItem) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin feed batch tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for rank, item := range items {
		if _, err := tx.Exec(
			`INSERT INTO feed_items (id, batch_id, label_id, artist_id, fit_score, momentum_score, risk_score, final_score, reasons, nearest_cluster_id, nearest_cluster_name, nearest_roster_artist_id, fallback_scoring, rank, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, batch.ID, batch.LabelID, item.ArtistID,
			item.FitScore, item.MomentumScore, item.RiskScore, item.FinalScore,
			marshalJSON(item.Reasons), item.NearestClusterID, item.NearestClusterName,
			item.NearestRosterArtist, item.FallbackScoring, rank, batch.CreatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("failed to insert feed item for %s: %w", item.ArtistID, err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO feed_batches (id, label_id, created_at) VALUES (?, ?, ?)`,
		batch.ID, batch.LabelID, batch.CreatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to insert feed batch: %w", err)
	}

	return tx.Commit()
}

// GetLatestBatch returns the most recent committed batch for a label, or
// nil, nil when the label has never been scored.
func (db *DB) GetLatestBatch(labelID string) (*models.FeedBatch, error) {
	batch := &models.FeedBatch{}
	err := db.QueryRow(
		`SELECT id, label_id, created_at FROM feed_batches WHERE label_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		labelID,
	).Scan(&batch.ID, &batch.LabelID, &batch.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// ListFeedItems returns a page of a batch's items in rank order, joined with
// artist names for display.
func (db *DB) ListFeedItems(batchID string, limit, offset int) ([]*models.ScoutFeedItem, error) {
	query := `SELECT fi.id, fi.batch_id, fi.label_id, fi.artist_id, a.name,
			fi.fit_score, fi.momentum_score, fi.risk_score, fi.final_score,
			fi.reasons, fi.nearest_cluster_id, fi.nearest_cluster_name,
			fi.nearest_roster_artist_id, fi.fallback_scoring, fi.created_at
		FROM feed_items fi
		JOIN artists a ON a.id = fi.artist_id
		WHERE fi.batch_id = ?
		ORDER BY fi.rank ASC
		LIMIT ? OFFSET ?`
	rows, err := db.Query(query, batchID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.ScoutFeedItem
	for rows.Next() {
		item := &models.ScoutFeedItem{}
		var reasons string
		var clusterID, clusterName, rosterID sql.NullString
		if err := rows.Scan(&item.ID, &item.BatchID, &item.LabelID, &item.ArtistID, &item.ArtistName,
			&item.FitScore, &item.MomentumScore, &item.RiskScore, &item.FinalScore,
			&reasons, &clusterID, &clusterName, &rosterID,
			&item.FallbackScoring, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Reasons = unmarshalStrings(reasons)
		item.NearestClusterID = clusterID.String
		item.NearestClusterName = clusterName.String
		item.NearestRosterArtist = rosterID.String
		items = append(items, item)
	}
	return items, rows.Err()
}

func (db *DB) CountFeedItems(batchID string) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM feed_items WHERE batch_id = ?`, batchID).Scan(&count)
	return count, err
}
