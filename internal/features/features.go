// Package features derives growth, engagement, momentum and risk signals from
// an artist's snapshot history.
package features

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/scoutfeed/internal/constants"
	"github.com/cesargomez89/scoutfeed/internal/models"
)

// Risk flag identifiers stored with computed features and surfaced on feed items.
const (
	FlagExtremeGrowth = "extreme_growth_7d"
	FlagLowEngagement = "low_engagement_high_followers"
	FlagInconsistent  = "inconsistent_growth"
)

// Compute builds a feature record from snapshots ordered oldest first. Returns
// nil when there are no snapshots to work from. Growth windows without a prior
// observation stay nil rather than reading as zero growth.
func Compute(artistID string, snapshots []*models.Snapshot, now time.Time) *models.ArtistFeatures {
	if len(snapshots) == 0 {
		return nil
	}
	latest := snapshots[len(snapshots)-1]

	growth7 := calcGrowth(snapshots, now, constants.ShortWindowDays, followers)
	growth30 := calcGrowth(snapshots, now, constants.LongWindowDays, followers)

	// Acceleration compares the recent weekly view growth rate against the
	// monthly average weekly rate.
	g7v := calcGrowth(snapshots, now, constants.ShortWindowDays, views)
	g30v := calcGrowth(snapshots, now, constants.LongWindowDays, views)
	var weeklyRate float64
	if g30v != nil {
		weeklyRate = *g30v / 4.0
	}
	var acceleration float64
	if g7v != nil {
		acceleration = *g7v - weeklyRate
	} else {
		acceleration = -weeklyRate
	}

	engagement := latest.EngagementRate
	if engagement == 0 && latest.Views > 0 {
		engagement = float64(latest.Likes+latest.Comments) / float64(latest.Views)
	}

	var flags []string
	var risk float64
	if growth7 != nil && *growth7 > constants.ExtremeGrowth7d {
		flags = append(flags, FlagExtremeGrowth)
		risk += constants.RiskExtremeGrowth
	}
	if engagement < constants.LowEngagementRate && latest.Followers > constants.HighFollowerFloor {
		flags = append(flags, FlagLowEngagement)
		risk += constants.RiskLowEngagement
	}
	if growth7 != nil && growth30 != nil && *growth7 > 0 && *growth30 < 0 {
		flags = append(flags, FlagInconsistent)
		risk += constants.RiskInconsistentGrowth
	}
	risk = math.Min(risk, 1.0)

	momentum := 0.3*math.Min(deref(growth7), 2.0)/2.0 +
		0.3*math.Min(deref(growth30), 5.0)/5.0 +
		0.2*math.Min(math.Max(acceleration, 0), 1.0) +
		0.2*math.Min(engagement*100, 1.0)
	momentum = clamp01(momentum)

	// Stale history scores with neutral momentum so the artist neither rises
	// nor sinks on signals we no longer have.
	fallback := latest.CapturedAt.Before(now.AddDate(0, 0, -constants.LongWindowDays))
	if fallback {
		momentum = constants.NeutralMomentum
	}

	return &models.ArtistFeatures{
		ID:             uuid.NewString(),
		ArtistID:       artistID,
		Growth7d:       growth7,
		Growth30d:      growth30,
		Acceleration:   acceleration,
		EngagementRate: engagement,
		MomentumScore:  momentum,
		RiskScore:      risk,
		RiskFlags:      flags,
		Fallback:       fallback,
		ComputedAt:     now,
	}
}

type metric func(*models.Snapshot) int64

func followers(s *models.Snapshot) int64 { return s.Followers }
func views(s *models.Snapshot) int64     { return s.Views }

// calcGrowth returns fractional growth of a metric over the window, or nil
// when no snapshot predates the window or the prior value is zero.
func calcGrowth(snapshots []*models.Snapshot, now time.Time, days int, m metric) *float64 {
	cutoff := now.AddDate(0, 0, -days)
	var prior *models.Snapshot
	for _, s := range snapshots {
		if !s.CapturedAt.After(cutoff) {
			prior = s
		}
	}
	if prior == nil {
		return nil
	}
	oldVal := m(prior)
	if oldVal == 0 {
		return nil
	}
	latest := snapshots[len(snapshots)-1]
	g := float64(m(latest)-oldVal) / float64(oldVal)
	return &g
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
