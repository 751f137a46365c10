package llm

import (
	"context"

	"github.com/cesargomez89/scoutfeed/internal/models"
)

// Mock is an in-memory Service for tests.
type Mock struct {
	DNA     *models.LabelDNA
	Queries []string
	Brief   *BriefOutput
	Err     error

	DNACalls   int
	QueryCalls int
	BriefCalls int
}

func (m *Mock) GenerateLabelDNA(_ context.Context, _ DNAInput) (*models.LabelDNA, error) {
	m.DNACalls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.DNA, nil
}

func (m *Mock) ExpandQueries(_ context.Context, _ *models.LabelDNA, _ string) ([]string, error) {
	m.QueryCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Queries, nil
}

func (m *Mock) GenerateBrief(_ context.Context, _ BriefInput) (*BriefOutput, error) {
	m.BriefCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Brief, nil
}
