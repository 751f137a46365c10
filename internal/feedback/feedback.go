// Package feedback turns a label's recorded scouting actions into a bounded
// bias on future fit scores. Positive actions pull similar candidates up,
// negative ones push them down, and older actions decay away.
package feedback

import (
	"fmt"
	"math"
	"time"

	"github.com/cesargomez89/scoutfeed/internal/constants"
	"github.com/cesargomez89/scoutfeed/internal/embedding"
	"github.com/cesargomez89/scoutfeed/internal/models"
	"github.com/cesargomez89/scoutfeed/internal/repository"
)

// Weight maps an action to its bias contribution. Unknown actions weigh 0.
func Weight(action models.FeedbackAction) float64 {
	switch action {
	case models.FeedbackShortlist:
		return 1.0
	case models.FeedbackSign:
		return 2.0
	case models.FeedbackPass:
		return -1.0
	case models.FeedbackArchive:
		return -0.5
	}
	return 0
}

// Biaser holds a label's feedback history with the embeddings of the artists
// it refers to, loaded once per scoring run.
type Biaser struct {
	entries []entry
	now     time.Time
}

type entry struct {
	weight    float64
	vector    []float64
	createdAt time.Time
}

// NewBiaser loads the label's feedback and the referenced artist embeddings.
// Feedback on artists with no embedding contributes nothing.
func NewBiaser(db *repository.DB, labelID string, now time.Time) (*Biaser, error) {
	history, err := db.ListFeedback(labelID)
	if err != nil {
		return nil, fmt.Errorf("loading feedback: %w", err)
	}
	ids := make([]string, 0, len(history))
	for _, f := range history {
		ids = append(ids, f.ArtistID)
	}
	vectors, err := db.GetEmbeddings(ids)
	if err != nil {
		return nil, fmt.Errorf("loading feedback embeddings: %w", err)
	}

	b := &Biaser{now: now}
	for _, f := range history {
		emb, ok := vectors[f.ArtistID]
		if !ok {
			continue
		}
		b.entries = append(b.entries, entry{
			weight:    Weight(f.Action),
			vector:    emb.Vector,
			createdAt: f.CreatedAt,
		})
	}
	return b, nil
}

// Bias returns the fit adjustment for a candidate vector, clamped to the
// configured cap so feedback can nudge a score but never dominate it.
func (b *Biaser) Bias(candidate []float64) float64 {
	if b == nil || len(b.entries) == 0 {
		return 0
	}
	var sum float64
	for _, e := range b.entries {
		age := b.now.Sub(e.createdAt)
		if age < 0 {
			age = 0
		}
		decay := math.Exp(-age.Seconds() / constants.FeedbackDecay.Seconds())
		sum += e.weight * embedding.Cosine(candidate, e.vector) * decay
	}
	return math.Max(-constants.FeedbackBiasCap, math.Min(constants.FeedbackBiasCap, sum))
}
