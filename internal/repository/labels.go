package repository

import (
	"database/sql"
	"time"

	json "github.com/goccy/go-json"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

func (db *DB) CreateLabel(label *models.Label) error {
	query := `INSERT INTO labels (id, name, description, genre_tags, label_dna, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	var dna any
	if label.DNA != nil {
		dna = marshalJSON(label.DNA)
	}
	_, err := db.Exec(query, label.ID, label.Name, label.Description,
		marshalJSON(label.GenreTags), dna, label.CreatedAt, label.UpdatedAt)
	return err
}

func (db *DB) GetLabel(id string) (*models.Label, error) {
	query := `SELECT id, name, description, genre_tags, label_dna, created_at, updated_at FROM labels WHERE id = ?`
	label, err := scanLabel(db.QueryRow(query, id))
	if err != nil {
		return nil, noRows(err)
	}
	return label, nil
}

func (db *DB) ListLabels() ([]*models.Label, error) {
	query := `SELECT id, name, description, genre_tags, label_dna, created_at, updated_at FROM labels ORDER BY created_at ASC`
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []*models.Label
	for rows.Next() {
		label, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

func (db *DB) UpdateLabelDNA(labelID string, dna *models.LabelDNA) error {
	query := `UPDATE labels SET label_dna = ?, updated_at = ? WHERE id = ?`
	_, err := db.Exec(query, marshalJSON(dna), time.Now().UTC(), labelID)
	return err
}

// AddRosterMember attaches an artist to a label's roster. Re-adding is a no-op.
func (db *DB) AddRosterMember(labelID, artistID string) error {
	query := `INSERT INTO roster_memberships (label_id, artist_id) VALUES (?, ?)
		ON CONFLICT (label_id, artist_id) DO NOTHING`
	_, err := db.Exec(query, labelID, artistID)
	return err
}

func (db *DB) ListRosterArtistIDs(labelID string) ([]string, error) {
	var ids []string
	err := db.Select(&ids, `SELECT artist_id FROM roster_memberships WHERE label_id = ? ORDER BY artist_id`, labelID)
	return ids, err
}

func (db *DB) ListRosterArtists(labelID string) ([]*models.Artist, error) {
	query := `SELECT a.id, a.name, a.bio, a.image_url, a.genre_tags, a.is_candidate, a.provenance, a.created_at, a.updated_at
		FROM artists a
		JOIN roster_memberships rm ON rm.artist_id = a.id
		WHERE rm.label_id = ?
		ORDER BY a.name ASC`
	rows, err := db.Query(query, labelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectArtists(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLabel(row rowScanner) (*models.Label, error) {
	label := &models.Label{}
	var desc, dna sql.NullString
	var tags string
	if err := row.Scan(&label.ID, &label.Name, &desc, &tags, &dna, &label.CreatedAt, &label.UpdatedAt); err != nil {
		return nil, err
	}
	label.Description = desc.String
	label.GenreTags = unmarshalStrings(tags)
	if dna.Valid && dna.String != "" {
		parsed := &models.LabelDNA{}
		if err := json.Unmarshal([]byte(dna.String), parsed); err == nil {
			label.DNA = parsed
		}
	}
	return label, nil
}
