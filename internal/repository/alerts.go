package repository

import (
	"database/sql"
	"time"

	json "github.com/goccy/go-json"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

func (db *DB) InsertAlertRule(rule *models.AlertRule) error {
	query := `INSERT INTO alert_rules (id, label_id, name, severity, active, criteria)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(query, rule.ID, rule.LabelID, rule.Name, rule.Severity,
		rule.Active, marshalJSON(rule.Criteria))
	return err
}

func (db *DB) ListAlertRules(labelID string) ([]*models.AlertRule, error) {
	query := `SELECT id, label_id, name, severity, active, criteria
		FROM alert_rules WHERE label_id = ? ORDER BY name ASC`
	rows, err := db.Query(query, labelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*models.AlertRule
	for rows.Next() {
		rule := &models.AlertRule{}
		var criteria string
		if err := rows.Scan(&rule.ID, &rule.LabelID, &rule.Name, &rule.Severity,
			&rule.Active, &criteria); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(criteria), &rule.Criteria); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (db *DB) InsertAlert(a *models.Alert) error {
	query := `INSERT INTO alerts (id, label_id, artist_id, rule_id, severity, status, title, description, context, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(query, a.ID, a.LabelID, a.ArtistID, a.RuleID, a.Severity,
		string(a.Status), a.Title, a.Description, marshalJSON(a.Context), a.CreatedAt.UTC())
	return err
}

// HasRecentAlert reports whether an alert for the same (label, artist, rule)
// was created at or after the cutoff. This is the cooldown dedupe check.
func (db *DB) HasRecentAlert(labelID, artistID, ruleID string, since time.Time) (bool, error) {
	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM alerts WHERE label_id = ? AND artist_id = ? AND rule_id = ? AND created_at >= ?`,
		labelID, artistID, ruleID, since.UTC(),
	).Scan(&count)
	return count > 0, err
}

// ListAlerts returns a label's alerts, optionally filtered by status.
func (db *DB) ListAlerts(labelID string, status models.AlertStatus) ([]*models.Alert, error) {
	query := `SELECT id, label_id, artist_id, rule_id, severity, status, title, description, context, created_at
		FROM alerts WHERE label_id = ?`
	args := []any{labelID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		a := &models.Alert{}
		var st, context string
		var desc sql.NullString
		if err := rows.Scan(&a.ID, &a.LabelID, &a.ArtistID, &a.RuleID, &a.Severity,
			&st, &a.Title, &desc, &context, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Status = models.AlertStatus(st)
		a.Description = desc.String
		if context != "" {
			_ = json.Unmarshal([]byte(context), &a.Context)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// UpdateAlertStatus moves an alert to seen or dismissed. Alerts only leave
// the new state through this call.
func (db *DB) UpdateAlertStatus(alertID string, status models.AlertStatus) error {
	res, err := db.Exec(`UPDATE alerts SET status = ? WHERE id = ?`, string(status), alertID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
