// Package connectors defines the platform connector capability consumed by
// ingestion and discovery. Connectors are external collaborators; every
// method can report ErrUnavailable (transient) or ErrNotFound (permanent).
package connectors

import (
	"context"
	"errors"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

var (
	// ErrUnavailable means the platform could not be reached or is refusing
	// service. Callers skip the unit of work; the pipeline never fails on it
	// alone.
	ErrUnavailable = errors.New("platform connector unavailable")

	// ErrNotFound means the platform identity does not exist. Not retried.
	ErrNotFound = errors.New("platform identity not found")
)

type Connector interface {
	FetchSnapshot(ctx context.Context, platformID string) (*models.Snapshot, error)
	FetchRelated(ctx context.Context, platformID string) ([]models.CandidateStub, error)
	Search(ctx context.Context, query string) ([]models.CandidateStub, error)
}
