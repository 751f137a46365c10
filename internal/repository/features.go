package repository

import (
	"database/sql"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

func (db *DB) InsertFeatures(f *models.ArtistFeatures) error {
	query := `INSERT INTO artist_features (id, artist_id, computed_at, growth_7d, growth_30d, acceleration, engagement_rate, momentum_score, risk_score, risk_flags, fallback)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(query, f.ID, f.ArtistID, f.ComputedAt.UTC(), f.Growth7d, f.Growth30d,
		f.Acceleration, f.EngagementRate, f.MomentumScore, f.RiskScore,
		marshalJSON(f.RiskFlags), f.Fallback)
	return err
}

// LatestFeatures returns the most recent feature record for an artist, or
// nil, nil when none has been computed.
func (db *DB) LatestFeatures(artistID string) (*models.ArtistFeatures, error) {
	query := `SELECT id, artist_id, computed_at, growth_7d, growth_30d, acceleration, engagement_rate, momentum_score, risk_score, risk_flags, fallback
		FROM artist_features WHERE artist_id = ?
		ORDER BY computed_at DESC LIMIT 1`
	f, err := scanFeatures(db.QueryRow(query, artistID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// LatestFeaturesFor returns the latest feature record per artist id.
func (db *DB) LatestFeaturesFor(artistIDs []string) (map[string]*models.ArtistFeatures, error) {
	out := make(map[string]*models.ArtistFeatures, len(artistIDs))
	for _, id := range artistIDs {
		f, err := db.LatestFeatures(id)
		if err != nil {
			return nil, err
		}
		if f != nil {
			out[id] = f
		}
	}
	return out, nil
}

func scanFeatures(row rowScanner) (*models.ArtistFeatures, error) {
	f := &models.ArtistFeatures{}
	var g7, g30 sql.NullFloat64
	var flags string
	if err := row.Scan(&f.ID, &f.ArtistID, &f.ComputedAt, &g7, &g30,
		&f.Acceleration, &f.EngagementRate, &f.MomentumScore, &f.RiskScore,
		&flags, &f.Fallback); err != nil {
		return nil, err
	}
	if g7.Valid {
		f.Growth7d = &g7.Float64
	}
	if g30.Valid {
		f.Growth30d = &g30.Float64
	}
	f.RiskFlags = unmarshalStrings(flags)
	return f, nil
}
