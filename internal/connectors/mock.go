package connectors

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

// MockConnector is an in-memory connector for tests and local development.
type MockConnector struct {
	mu        sync.RWMutex
	Platform  string
	Snapshots map[string]*models.Snapshot       // platform_id -> snapshot
	Related   map[string][]models.CandidateStub // platform_id -> related stubs
	Results   map[string][]models.CandidateStub // query -> search results
	Down      bool
	Calls     int
}

func NewMockConnector(platform string) *MockConnector {
	return &MockConnector{
		Platform:  platform,
		Snapshots: make(map[string]*models.Snapshot),
		Related:   make(map[string][]models.CandidateStub),
		Results:   make(map[string][]models.CandidateStub),
	}
}

func (m *MockConnector) FetchSnapshot(ctx context.Context, platformID string) (*models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Down {
		return nil, ErrUnavailable
	}
	snap, ok := m.Snapshots[platformID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *snap
	out.Platform = m.Platform
	if out.CapturedAt.IsZero() {
		out.CapturedAt = time.Now().UTC()
	}
	return &out, nil
}

func (m *MockConnector) FetchRelated(ctx context.Context, platformID string) ([]models.CandidateStub, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Down {
		return nil, ErrUnavailable
	}
	stubs, ok := m.Related[platformID]
	if !ok {
		return nil, nil
	}
	return m.tag(stubs), nil
}

func (m *MockConnector) Search(ctx context.Context, query string) ([]models.CandidateStub, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Down {
		return nil, ErrUnavailable
	}
	return m.tag(m.Results[strings.ToLower(query)]), nil
}

func (m *MockConnector) tag(stubs []models.CandidateStub) []models.CandidateStub {
	out := make([]models.CandidateStub, len(stubs))
	copy(out, stubs)
	for i := range out {
		out[i].Platform = m.Platform
	}
	return out
}
