package repository

import (
	"github.com/cesargomez89/scoutfeed/internal/models"
)

// InsertSnapshot appends a snapshot, deduplicated by (artist, platform,
// calendar day). Re-inserting the same day is a no-op; the bool reports
// whether a row was created.
func (db *DB) InsertSnapshot(s *models.Snapshot) (bool, error) {
	query := `INSERT INTO snapshots (id, artist_id, platform, captured_at, captured_day, followers, views, likes, comments, engagement_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (artist_id, platform, captured_day) DO NOTHING`
	day := s.CapturedAt.UTC().Format("2006-01-02")
	res, err := db.Exec(query, s.ID, s.ArtistID, s.Platform, s.CapturedAt.UTC(), day,
		s.Followers, s.Views, s.Likes, s.Comments, s.EngagementRate)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListSnapshots returns all snapshots for an artist across platforms,
// ordered oldest first.
func (db *DB) ListSnapshots(artistID string) ([]*models.Snapshot, error) {
	query := `SELECT id, artist_id, platform, captured_at, followers, views, likes, comments, engagement_rate
		FROM snapshots WHERE artist_id = ? ORDER BY captured_at ASC`
	rows, err := db.Query(query, artistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*models.Snapshot
	for rows.Next() {
		s := &models.Snapshot{}
		if err := rows.Scan(&s.ID, &s.ArtistID, &s.Platform, &s.CapturedAt,
			&s.Followers, &s.Views, &s.Likes, &s.Comments, &s.EngagementRate); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

func (db *DB) CountSnapshots(artistID string) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM snapshots WHERE artist_id = ?`, artistID).Scan(&count)
	return count, err
}
