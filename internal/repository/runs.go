package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

// The pipeline_runs row is the single point of mutual exclusion per label.
// Every transition below is a compare-and-swap on the state column; two
// concurrent callers cannot both win the same transition.

// GetRun returns the label's run record. A label with no row yet reads as an
// idle run; the row itself is only created by EnqueueRun, so status reads
// never take a write lock.
func (db *DB) GetRun(labelID string) (*models.PipelineRun, error) {
	run := &models.PipelineRun{}
	var state string
	var started, completed sql.NullTime
	var errMsg sql.NullString
	err := db.QueryRow(
		`SELECT label_id, state, started_at, completed_at, error, updated_at FROM pipeline_runs WHERE label_id = ?`,
		labelID,
	).Scan(&run.LabelID, &state, &started, &completed, &errMsg, &run.UpdatedAt)
	if err == sql.ErrNoRows {
		return &models.PipelineRun{
			LabelID:   labelID,
			State:     models.RunStateIdle,
			UpdatedAt: time.Now().UTC(),
		}, nil
	}
	if err != nil {
		return nil, err
	}
	run.State = models.RunState(state)
	if started.Valid {
		run.StartedAt = &started.Time
	}
	if completed.Valid {
		run.CompletedAt = &completed.Time
	}
	run.Error = errMsg.String
	return run, nil
}

// EnqueueRun moves a label's run to queued. Fails with ErrAlreadyInFlight
// when a run is already queued or running; at most one run per label is ever
// in flight.
func (db *DB) EnqueueRun(labelID string) error {
	if _, err := db.Exec(
		`INSERT INTO pipeline_runs (label_id, state, updated_at) VALUES (?, ?, ?) ON CONFLICT (label_id) DO NOTHING`,
		labelID, string(models.RunStateIdle), time.Now().UTC(),
	); err != nil {
		return err
	}

	swapped, err := db.casRun(labelID,
		[]models.RunState{models.RunStateIdle, models.RunStateComplete, models.RunStateError, models.RunStateCanceled},
		models.RunStateQueued,
		`started_at = NULL, completed_at = NULL, error = NULL`)
	if err != nil {
		return err
	}
	if !swapped {
		return ErrAlreadyInFlight
	}
	return nil
}

// StartRun moves a queued run to running.
func (db *DB) StartRun(labelID string) error {
	swapped, err := db.casRun(labelID,
		[]models.RunState{models.RunStateQueued},
		models.RunStateRunning,
		`started_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return err
	}
	if !swapped {
		return ErrInvalidTransition
	}
	return nil
}

// CompleteRun moves a running run to complete.
func (db *DB) CompleteRun(labelID string) error {
	swapped, err := db.casRun(labelID,
		[]models.RunState{models.RunStateRunning},
		models.RunStateComplete,
		`completed_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return err
	}
	if !swapped {
		return ErrInvalidTransition
	}
	return nil
}

// FailRun moves a running run to error, recording the failure summary.
// Previously committed batches and taste maps are left untouched.
func (db *DB) FailRun(labelID, message string) error {
	res, err := db.Exec(
		`UPDATE pipeline_runs SET state = ?, error = ?, completed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE label_id = ? AND state = ?`,
		string(models.RunStateError), message, labelID, string(models.RunStateRunning),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// FailQueuedRun moves a queued run to error. Used when a run fails before it
// ever starts, so the label is not wedged in queued with no worker owning it.
func (db *DB) FailQueuedRun(labelID, message string) error {
	res, err := db.Exec(
		`UPDATE pipeline_runs SET state = ?, error = ?, completed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE label_id = ? AND state = ?`,
		string(models.RunStateError), message, labelID, string(models.RunStateQueued),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// CancelRun moves a queued or running run to canceled. Cancellation of a
// running run is cooperative; this records the final state once the
// in-progress unit of work has stopped.
func (db *DB) CancelRun(labelID string) error {
	swapped, err := db.casRun(labelID,
		[]models.RunState{models.RunStateQueued, models.RunStateRunning},
		models.RunStateCanceled,
		`completed_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return err
	}
	if !swapped {
		return ErrInvalidTransition
	}
	return nil
}

// casRun performs the compare-and-swap: the UPDATE only wins when the current
// state is in the expected set. extra is a trusted SQL fragment setting
// timestamp columns for the target state.
func (db *DB) casRun(labelID string, from []models.RunState, to models.RunState, extra string) (bool, error) {
	placeholders := strings.TrimRight(strings.Repeat("?,", len(from)), ",")
	query := fmt.Sprintf(
		`UPDATE pipeline_runs SET state = ?, updated_at = CURRENT_TIMESTAMP, %s WHERE label_id = ? AND state IN (%s)`,
		extra, placeholders,
	)
	args := []any{string(to), labelID}
	for _, s := range from {
		args = append(args, string(s))
	}
	res, err := db.Exec(query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
