package repository

import (
	"database/sql"
	"fmt"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

// SaveTasteMap commits a fully built taste map as the next version for the
// label. The whole map lands in one transaction; readers see either the
// previous complete version or this one, never a partial cluster set.
func (db *DB) SaveTasteMap(tm *models.TasteMap) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin taste map tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var version int
	if err := tx.QueryRow(`SELECT COALESCE(MAX(version), 0) + 1 FROM taste_maps WHERE label_id = ?`, tm.LabelID).Scan(&version); err != nil {
		return fmt.Errorf("failed to allocate taste map version: %w", err)
	}
	tm.Version = version

	for i := range tm.Clusters {
		c := &tm.Clusters[i]
		if _, err := tx.Exec(
			`INSERT INTO taste_map_clusters (id, taste_map_id, cluster_index, name, centroid, artist_ids) VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, tm.ID, c.Index, c.Name, marshalJSON(c.Centroid), marshalJSON(c.ArtistIDs),
		); err != nil {
			return fmt.Errorf("failed to insert cluster %d: %w", c.Index, err)
		}
	}

	// The version row lands last so a visible map always has its clusters.
	if _, err := tx.Exec(
		`INSERT INTO taste_maps (id, label_id, version, created_at) VALUES (?, ?, ?, ?)`,
		tm.ID, tm.LabelID, tm.Version, tm.CreatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to insert taste map: %w", err)
	}

	return tx.Commit()
}

// GetLatestTasteMap returns the highest committed version for a label, or
// nil, nil when none exists.
func (db *DB) GetLatestTasteMap(labelID string) (*models.TasteMap, error) {
	tm := &models.TasteMap{}
	err := db.QueryRow(
		`SELECT id, label_id, version, created_at FROM taste_maps WHERE label_id = ? ORDER BY version DESC LIMIT 1`,
		labelID,
	).Scan(&tm.ID, &tm.LabelID, &tm.Version, &tm.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		`SELECT id, cluster_index, name, centroid, artist_ids FROM taste_map_clusters WHERE taste_map_id = ? ORDER BY cluster_index ASC`,
		tm.ID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Cluster
		var centroid, artistIDs string
		if err := rows.Scan(&c.ID, &c.Index, &c.Name, &centroid, &artistIDs); err != nil {
			return nil, err
		}
		c.Centroid = unmarshalFloats(centroid)
		c.ArtistIDs = unmarshalStrings(artistIDs)
		tm.Clusters = append(tm.Clusters, c)
	}
	return tm, rows.Err()
}

func (db *DB) UpdateClusterName(clusterID, name string) error {
	_, err := db.Exec(`UPDATE taste_map_clusters SET name = ? WHERE id = ?`, name, clusterID)
	return err
}
