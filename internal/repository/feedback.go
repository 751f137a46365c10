package repository

import (
	"database/sql"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

func (db *DB) InsertFeedback(f *models.Feedback) error {
	query := `INSERT INTO feedback (id, label_id, artist_id, action, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(query, f.ID, f.LabelID, f.ArtistID, string(f.Action), f.Notes, f.CreatedAt.UTC())
	return err
}

func (db *DB) ListFeedback(labelID string) ([]*models.Feedback, error) {
	query := `SELECT id, label_id, artist_id, action, notes, created_at
		FROM feedback WHERE label_id = ? ORDER BY created_at DESC`
	rows, err := db.Query(query, labelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Feedback
	for rows.Next() {
		f := &models.Feedback{}
		var action string
		var notes sql.NullString
		if err := rows.Scan(&f.ID, &f.LabelID, &f.ArtistID, &action, &notes, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.Action = models.FeedbackAction(action)
		f.Notes = notes.String
		out = append(out, f)
	}
	return out, rows.Err()
}
