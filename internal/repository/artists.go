package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

func (db *DB) CreateArtist(artist *models.Artist) error {
	query := `INSERT INTO artists (id, name, bio, image_url, genre_tags, is_candidate, provenance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(query, artist.ID, artist.Name, artist.Bio, artist.ImageURL,
		marshalJSON(artist.GenreTags), artist.IsCandidate, artist.Provenance,
		artist.CreatedAt, artist.UpdatedAt)
	return err
}

func (db *DB) GetArtist(id string) (*models.Artist, error) {
	query := `SELECT id, name, bio, image_url, genre_tags, is_candidate, provenance, created_at, updated_at
		FROM artists WHERE id = ?`
	artist, err := scanArtist(db.QueryRow(query, id))
	if err != nil {
		return nil, noRows(err)
	}
	return artist, nil
}

// GetArtistByPlatformIdentity resolves an artist by its (platform, platform_id)
// pair. Returns nil, nil when no account matches.
func (db *DB) GetArtistByPlatformIdentity(platform, platformID string) (*models.Artist, error) {
	query := `SELECT a.id, a.name, a.bio, a.image_url, a.genre_tags, a.is_candidate, a.provenance, a.created_at, a.updated_at
		FROM artists a
		JOIN platform_accounts pa ON pa.artist_id = a.id
		WHERE pa.platform = ? AND pa.platform_id = ?`
	artist, err := scanArtist(db.QueryRow(query, platform, platformID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return artist, nil
}

// AddPlatformAccount attaches a platform identity to an artist. Inserting an
// identity that already exists is a no-op; the bool reports whether a row was
// created.
func (db *DB) AddPlatformAccount(account *models.PlatformAccount) (bool, error) {
	query := `INSERT INTO platform_accounts (id, artist_id, platform, platform_id, url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (platform, platform_id) DO NOTHING`
	res, err := db.Exec(query, account.ID, account.ArtistID, account.Platform,
		account.PlatformID, account.URL, account.CreatedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (db *DB) ListPlatformAccounts(artistID string) ([]*models.PlatformAccount, error) {
	query := `SELECT id, artist_id, platform, platform_id, url, created_at
		FROM platform_accounts WHERE artist_id = ? ORDER BY platform ASC`
	rows, err := db.Query(query, artistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.PlatformAccount
	for rows.Next() {
		account := &models.PlatformAccount{}
		var url sql.NullString
		if err := rows.Scan(&account.ID, &account.ArtistID, &account.Platform,
			&account.PlatformID, &url, &account.CreatedAt); err != nil {
			return nil, err
		}
		account.URL = url.String
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (db *DB) ListAccountsByPlatform(platform string) ([]*models.PlatformAccount, error) {
	query := `SELECT id, artist_id, platform, platform_id, url, created_at
		FROM platform_accounts WHERE platform = ? ORDER BY created_at ASC`
	rows, err := db.Query(query, platform)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.PlatformAccount
	for rows.Next() {
		account := &models.PlatformAccount{}
		var url sql.NullString
		if err := rows.Scan(&account.ID, &account.ArtistID, &account.Platform,
			&account.PlatformID, &url, &account.CreatedAt); err != nil {
			return nil, err
		}
		account.URL = url.String
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (db *DB) ListCandidates() ([]*models.Artist, error) {
	query := `SELECT id, name, bio, image_url, genre_tags, is_candidate, provenance, created_at, updated_at
		FROM artists WHERE is_candidate = 1 ORDER BY created_at ASC`
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectArtists(rows)
}

func (db *DB) ListArtistsByIDs(ids []string) ([]*models.Artist, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf(`SELECT id, name, bio, image_url, genre_tags, is_candidate, provenance, created_at, updated_at
		FROM artists WHERE id IN (%s)`, placeholders)
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectArtists(rows)
}

// ArtistName pairs an artist id with its display name for dedup scans.
type ArtistName struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

func (db *DB) ListArtistNames() ([]ArtistName, error) {
	var names []ArtistName
	err := db.Select(&names, `SELECT id, name FROM artists ORDER BY id ASC`)
	return names, err
}

func (db *DB) CountArtistsByName(name string) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM artists WHERE name = ?`, name).Scan(&count)
	return count, err
}

// DeleteArtist removes an artist row. Only used to back out a freshly
// created candidate that lost a platform-identity race.
func (db *DB) DeleteArtist(id string) error {
	_, err := db.Exec(`DELETE FROM artists WHERE id = ?`, id)
	return err
}

func (db *DB) TouchArtist(id string) error {
	_, err := db.Exec(`UPDATE artists SET updated_at = ? WHERE id = ?`, time.Now().UTC(), id)
	return err
}

func scanArtist(row rowScanner) (*models.Artist, error) {
	artist := &models.Artist{}
	var bio, imageURL, provenance sql.NullString
	var tags string
	if err := row.Scan(&artist.ID, &artist.Name, &bio, &imageURL, &tags,
		&artist.IsCandidate, &provenance, &artist.CreatedAt, &artist.UpdatedAt); err != nil {
		return nil, err
	}
	artist.Bio = bio.String
	artist.ImageURL = imageURL.String
	artist.Provenance = provenance.String
	artist.GenreTags = unmarshalStrings(tags)
	return artist, nil
}

func collectArtists(rows *sql.Rows) ([]*models.Artist, error) {
	var artists []*models.Artist
	for rows.Next() {
		artist, err := scanArtist(rows)
		if err != nil {
			return nil, err
		}
		artists = append(artists, artist)
	}
	return artists, rows.Err()
}
