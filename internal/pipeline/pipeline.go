// Package pipeline orchestrates the per-label run: ingest, discover, taste
// map, features, scoring, enrichment, alerts. One run per label is ever in
// flight; runs for different labels share a bounded worker pool.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cesargomez89/scoutfeed/internal/logger"
	"github.com/cesargomez89/scoutfeed/internal/metrics"
	"github.com/cesargomez89/scoutfeed/internal/models"
	"github.com/cesargomez89/scoutfeed/internal/repository"
)

// StageFunc is one unit of the run sequence. A returned error fails the run;
// previously committed batches and taste maps stay visible.
type StageFunc func(ctx context.Context, labelID string) error

type stage struct {
	name string
	run  StageFunc
}

// runHandle ties a worker to the cancel function for its own run. The map
// below is keyed by label, but a worker only ever tears down its own handle;
// a re-enqueued run's fresh handle is left alone.
type runHandle struct {
	cancel context.CancelFunc
}

type Manager struct {
	db     *repository.DB
	stages []stage
	sem    chan struct{}
	log    *logger.Logger

	mu   sync.Mutex
	runs map[string]*runHandle
	wg   sync.WaitGroup
}

func newManager(db *repository.DB, stages []stage, workers int, log *logger.Logger) *Manager {
	if workers < 1 {
		workers = 1
	}
	return &Manager{
		db:     db,
		stages: stages,
		sem:    make(chan struct{}, workers),
		log:    log.WithComponent("pipeline"),
		runs:   map[string]*runHandle{},
	}
}

// Enqueue transitions the label's run to queued and schedules it on the
// worker pool. Returns repository.ErrAlreadyInFlight when a run is already
// queued or running.
func (m *Manager) Enqueue(labelID string) error {
	if err := m.db.EnqueueRun(labelID); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	handle := &runHandle{cancel: cancel}
	m.mu.Lock()
	m.runs[labelID] = handle
	m.mu.Unlock()

	m.wg.Add(1)
	go m.execute(ctx, labelID, handle)
	return nil
}

// Cancel stops the label's run. A queued run is canceled immediately; a
// running run stops cooperatively at the next stage or per-artist boundary.
func (m *Manager) Cancel(labelID string) error {
	run, err := m.db.GetRun(labelID)
	if err != nil {
		return err
	}
	if run.State.Terminal() {
		return repository.ErrInvalidTransition
	}

	m.mu.Lock()
	handle, ok := m.runs[labelID]
	m.mu.Unlock()
	if ok {
		handle.cancel()
		return nil
	}
	// No live worker for this run (e.g. queued before a restart).
	return m.db.CancelRun(labelID)
}

// Status returns the label's run record.
func (m *Manager) Status(labelID string) (*models.PipelineRun, error) {
	return m.db.GetRun(labelID)
}

// Shutdown cancels every in-flight run and waits for the workers to record
// their final states, or until ctx expires.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	for _, handle := range m.runs {
		handle.cancel()
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) execute(ctx context.Context, labelID string, handle *runHandle) {
	defer m.wg.Done()
	defer func() {
		handle.cancel()
		m.mu.Lock()
		// Only remove our own entry; the label may already hold a fresh
		// handle for a re-enqueued run.
		if m.runs[labelID] == handle {
			delete(m.runs, labelID)
		}
		m.mu.Unlock()
	}()

	select {
	case m.sem <- struct{}{}:
	case <-ctx.Done():
		m.recordCanceled(labelID)
		return
	}
	defer func() { <-m.sem }()

	if err := m.db.StartRun(labelID); err != nil {
		if ctx.Err() != nil {
			m.recordCanceled(labelID)
			return
		}
		if errors.Is(err, repository.ErrInvalidTransition) {
			// The run left queued without us, e.g. canceled through the store.
			return
		}
		m.log.Error("cannot start queued run", "label_id", labelID, "error", err)
		if err := m.db.FailQueuedRun(labelID, fmt.Sprintf("start: %v", err)); err != nil {
			m.log.Error("cannot record failed run", "label_id", labelID, "error", err)
		}
		metrics.PipelineRuns.WithLabelValues(string(models.RunStateError)).Inc()
		return
	}
	m.log.Info("run started", "label_id", labelID)

	for _, st := range m.stages {
		if ctx.Err() != nil {
			m.recordCanceled(labelID)
			return
		}
		start := time.Now()
		err := st.run(ctx, labelID)
		metrics.StageDuration.WithLabelValues(st.name).Observe(time.Since(start).Seconds())
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				m.recordCanceled(labelID)
				return
			}
			m.log.Error("stage failed", "label_id", labelID, "stage", st.name, "error", err)
			if err := m.db.FailRun(labelID, fmt.Sprintf("%s: %v", st.name, err)); err != nil {
				m.log.Error("cannot record failed run", "label_id", labelID, "error", err)
			}
			metrics.PipelineRuns.WithLabelValues(string(models.RunStateError)).Inc()
			return
		}
		m.log.Info("stage complete", "label_id", labelID, "stage", st.name,
			"duration", time.Since(start).Round(time.Millisecond))
	}

	if err := m.db.CompleteRun(labelID); err != nil {
		m.log.Error("cannot record completed run", "label_id", labelID, "error", err)
		return
	}
	metrics.PipelineRuns.WithLabelValues(string(models.RunStateComplete)).Inc()
	m.log.Info("run complete", "label_id", labelID)
}

func (m *Manager) recordCanceled(labelID string) {
	err := m.db.CancelRun(labelID)
	switch {
	case err == nil:
		metrics.PipelineRuns.WithLabelValues(string(models.RunStateCanceled)).Inc()
		m.log.Info("run canceled", "label_id", labelID)
	case errors.Is(err, repository.ErrInvalidTransition):
		// Already recorded by the queued-cancel path.
	default:
		m.log.Error("cannot record canceled run", "label_id", labelID, "error", err)
	}
}
