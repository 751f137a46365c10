// Package alerts evaluates threshold rules over freshly scored feed items
// and emits deduplicated alerts.
package alerts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/scoutfeed/internal/constants"
	"github.com/cesargomez89/scoutfeed/internal/logger"
	"github.com/cesargomez89/scoutfeed/internal/models"
	"github.com/cesargomez89/scoutfeed/internal/repository"
)

func ptr(v float64) *float64 { return &v }

// defaultRules are installed the first time a label is scanned.
func defaultRules(labelID string) []*models.AlertRule {
	return []*models.AlertRule{
		{
			ID: uuid.NewString(), LabelID: labelID,
			Name: "Momentum Surge", Severity: "high", Active: true,
			Criteria: models.AlertCriteria{MomentumMin: ptr(0.7), Growth7dMin: ptr(0.2)},
		},
		{
			ID: uuid.NewString(), LabelID: labelID,
			Name: "Sustained Growth", Severity: "medium", Active: true,
			Criteria: models.AlertCriteria{Growth30dMin: ptr(0.3)},
		},
		{
			ID: uuid.NewString(), LabelID: labelID,
			Name: "Risk Spike", Severity: "high", Active: true,
			Criteria: models.AlertCriteria{RiskMin: ptr(0.6)},
		},
	}
}

// Engine scans scored batches against a label's alert rules.
type Engine struct {
	db       *repository.DB
	cooldown time.Duration
	scanTop  int
	log      *logger.Logger
}

func NewEngine(db *repository.DB, log *logger.Logger) *Engine {
	return &Engine{
		db:       db,
		cooldown: constants.DefaultAlertCooldown,
		scanTop:  constants.DefaultAlertScanTop,
		log:      log.WithComponent("alerts"),
	}
}

// EnsureRules installs the default rule set for labels that have none yet.
func (e *Engine) EnsureRules(labelID string) ([]*models.AlertRule, error) {
	rules, err := e.db.ListAlertRules(labelID)
	if err != nil {
		return nil, fmt.Errorf("loading alert rules: %w", err)
	}
	if len(rules) > 0 {
		return rules, nil
	}
	for _, rule := range defaultRules(labelID) {
		if err := e.db.InsertAlertRule(rule); err != nil {
			return nil, fmt.Errorf("installing default rule %s: %w", rule.Name, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Scan evaluates the label's active rules over the top of its latest feed
// batch. An alert already emitted for the same (artist, rule) inside the
// cooldown window is not emitted again.
func (e *Engine) Scan(ctx context.Context, labelID string) (int, error) {
	rules, err := e.EnsureRules(labelID)
	if err != nil {
		return 0, err
	}

	batch, err := e.db.GetLatestBatch(labelID)
	if err != nil {
		return 0, fmt.Errorf("loading latest batch: %w", err)
	}
	if batch == nil {
		return 0, nil
	}
	items, err := e.db.ListFeedItems(batch.ID, e.scanTop, 0)
	if err != nil {
		return 0, fmt.Errorf("loading feed items: %w", err)
	}

	artistIDs := make([]string, len(items))
	for i, item := range items {
		artistIDs[i] = item.ArtistID
	}
	featureMap, err := e.db.LatestFeaturesFor(artistIDs)
	if err != nil {
		return 0, fmt.Errorf("loading features: %w", err)
	}

	now := time.Now().UTC()
	cutoff := now.Add(-e.cooldown)
	created := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		feat := featureMap[item.ArtistID]
		for _, rule := range rules {
			if !rule.Active || !matches(rule.Criteria, item, feat) {
				continue
			}
			recent, err := e.db.HasRecentAlert(labelID, item.ArtistID, rule.ID, cutoff)
			if err != nil {
				return created, fmt.Errorf("checking cooldown: %w", err)
			}
			if recent {
				continue
			}
			alert := buildAlert(labelID, rule, item, feat, now)
			if err := e.db.InsertAlert(alert); err != nil {
				return created, fmt.Errorf("inserting alert: %w", err)
			}
			created++
		}
	}
	if created > 0 {
		e.log.Info("alerts emitted", "label_id", labelID, "count", created)
	}
	return created, nil
}

// matches applies every threshold a rule sets; unset thresholds pass. A
// growth threshold with no growth data fails closed.
func matches(c models.AlertCriteria, item *models.ScoutFeedItem, feat *models.ArtistFeatures) bool {
	if c.MomentumMin != nil && item.MomentumScore < *c.MomentumMin {
		return false
	}
	if c.RiskMin != nil && item.RiskScore < *c.RiskMin {
		return false
	}
	if c.Growth7dMin != nil && (feat == nil || feat.Growth7d == nil || *feat.Growth7d < *c.Growth7dMin) {
		return false
	}
	if c.Growth30dMin != nil && (feat == nil || feat.Growth30d == nil || *feat.Growth30d < *c.Growth30dMin) {
		return false
	}
	return true
}

func buildAlert(labelID string, rule *models.AlertRule, item *models.ScoutFeedItem, feat *models.ArtistFeatures, now time.Time) *models.Alert {
	var parts []string
	context := map[string]float64{
		"fit":      item.FitScore,
		"momentum": item.MomentumScore,
		"risk":     item.RiskScore,
	}
	if feat != nil {
		if feat.Growth7d != nil {
			parts = append(parts, fmt.Sprintf("7d growth %+.0f%%", *feat.Growth7d*100))
			context["growth_7d"] = *feat.Growth7d
		}
		if feat.Growth30d != nil {
			parts = append(parts, fmt.Sprintf("30d growth %+.0f%%", *feat.Growth30d*100))
			context["growth_30d"] = *feat.Growth30d
		}
		parts = append(parts, fmt.Sprintf("momentum %.2f", feat.MomentumScore))
	}
	parts = append(parts, fmt.Sprintf("fit %.2f", item.FitScore))

	return &models.Alert{
		ID:          uuid.NewString(),
		LabelID:     labelID,
		ArtistID:    item.ArtistID,
		RuleID:      rule.ID,
		Severity:    rule.Severity,
		Status:      models.AlertStatusNew,
		Title:       rule.Name,
		Description: strings.Join(parts, ", "),
		Context:     context,
		CreatedAt:   now,
	}
}
