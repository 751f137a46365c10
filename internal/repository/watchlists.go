package repository

import (
	"database/sql"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

func (db *DB) CreateWatchlist(w *models.Watchlist) error {
	query := `INSERT INTO watchlists (id, label_id, name, description, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(query, w.ID, w.LabelID, w.Name, w.Description, w.Active, w.CreatedAt.UTC())
	return err
}

func (db *DB) GetWatchlist(id string) (*models.Watchlist, error) {
	query := `SELECT id, label_id, name, description, active, created_at FROM watchlists WHERE id = ?`
	w := &models.Watchlist{}
	var desc sql.NullString
	err := db.QueryRow(query, id).Scan(&w.ID, &w.LabelID, &w.Name, &desc, &w.Active, &w.CreatedAt)
	if err != nil {
		return nil, noRows(err)
	}
	w.Description = desc.String
	return w, nil
}

func (db *DB) ListWatchlists(labelID string) ([]*models.Watchlist, error) {
	query := `SELECT id, label_id, name, description, active, created_at
		FROM watchlists WHERE label_id = ? ORDER BY created_at ASC`
	rows, err := db.Query(query, labelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []*models.Watchlist
	for rows.Next() {
		w := &models.Watchlist{}
		var desc sql.NullString
		if err := rows.Scan(&w.ID, &w.LabelID, &w.Name, &desc, &w.Active, &w.CreatedAt); err != nil {
			return nil, err
		}
		w.Description = desc.String
		lists = append(lists, w)
	}
	return lists, rows.Err()
}

// AddWatchlistItem adds an artist to a watchlist. Re-adding is a no-op; the
// bool reports whether a row was created.
func (db *DB) AddWatchlistItem(item *models.WatchlistItem) (bool, error) {
	query := `INSERT INTO watchlist_items (id, watchlist_id, artist_id, source, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (watchlist_id, artist_id) DO NOTHING`
	res, err := db.Exec(query, item.ID, item.WatchlistID, item.ArtistID, item.Source, item.Notes, item.CreatedAt.UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (db *DB) ListWatchlistItems(watchlistID string) ([]*models.WatchlistItem, error) {
	query := `SELECT id, watchlist_id, artist_id, source, notes, created_at
		FROM watchlist_items WHERE watchlist_id = ? ORDER BY created_at ASC`
	rows, err := db.Query(query, watchlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.WatchlistItem
	for rows.Next() {
		item := &models.WatchlistItem{}
		var notes sql.NullString
		if err := rows.Scan(&item.ID, &item.WatchlistID, &item.ArtistID, &item.Source, &notes, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Notes = notes.String
		items = append(items, item)
	}
	return items, rows.Err()
}
