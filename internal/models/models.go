package models

import (
	"time"
)

// Platform names are free-form strings on the wire but the known set is
// enumerated here for connectors and tests.
const (
	PlatformSpotify    = "spotify"
	PlatformYouTube    = "youtube"
	PlatformSoundCloud = "soundcloud"
	PlatformTikTok     = "tiktok"
)

type RunState string

const (
	RunStateIdle     RunState = "idle"
	RunStateQueued   RunState = "queued"
	RunStateRunning  RunState = "running"
	RunStateComplete RunState = "complete"
	RunStateError    RunState = "error"
	RunStateCanceled RunState = "canceled"
)

// Terminal reports whether a run in this state can be re-enqueued.
func (s RunState) Terminal() bool {
	switch s {
	case RunStateIdle, RunStateComplete, RunStateError, RunStateCanceled:
		return true
	}
	return false
}

// PipelineRun is the per-label run record. Its state field is the single
// point of mutual exclusion for a label's pipeline.
type PipelineRun struct {
	LabelID     string     `json:"label_id"`
	State       RunState   `json:"state"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// LabelDNA is the structured output of the optional LLM label analysis.
type LabelDNA struct {
	ClusterNames  []string `json:"cluster_names"`
	ThesisBullets []string `json:"label_thesis_bullets"`
	SeedQueries   []string `json:"search_seed_queries"`
	InputHash     string   `json:"input_hash,omitempty"`
}

type Label struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	GenreTags   []string  `json:"genre_tags,omitempty"`
	DNA         *LabelDNA `json:"label_dna,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Artist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Bio         string    `json:"bio,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	GenreTags   []string  `json:"genre_tags,omitempty"`
	IsCandidate bool      `json:"is_candidate"`
	Provenance  string    `json:"provenance,omitempty"` // discovery source tag for candidates
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PlatformAccount ties an artist to a platform identity.
// (platform, platform_id) is globally unique.
type PlatformAccount struct {
	ID         string    `json:"id"`
	ArtistID   string    `json:"artist_id"`
	Platform   string    `json:"platform"`
	PlatformID string    `json:"platform_id"`
	URL        string    `json:"url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Snapshot is an append-only metrics sample. At most one row exists per
// (artist, platform, calendar day).
type Snapshot struct {
	ID             string    `json:"id"`
	ArtistID       string    `json:"artist_id"`
	Platform       string    `json:"platform"`
	CapturedAt     time.Time `json:"captured_at"`
	Followers      int64     `json:"followers"`
	Views          int64     `json:"views"`
	Likes          int64     `json:"likes"`
	Comments       int64     `json:"comments"`
	EngagementRate float64   `json:"engagement_rate"`
}

// Embedding providers, in order of preference.
const (
	EmbeddingProviderMetric   = "metric"
	EmbeddingProviderFallback = "fallback"
)

type Embedding struct {
	ArtistID  string    `json:"artist_id"`
	Provider  string    `json:"provider"`
	Vector    []float64 `json:"vector"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ArtistFeatures holds momentum and risk features computed from snapshot
// history. Growth fields are nil when no prior value exists in the window.
type ArtistFeatures struct {
	ID             string    `json:"id"`
	ArtistID       string    `json:"artist_id"`
	ComputedAt     time.Time `json:"computed_at"`
	Growth7d       *float64  `json:"growth_7d,omitempty"`
	Growth30d      *float64  `json:"growth_30d,omitempty"`
	Acceleration   float64   `json:"acceleration"`
	EngagementRate float64   `json:"engagement_rate"`
	MomentumScore  float64   `json:"momentum_score"`
	RiskScore      float64   `json:"risk_score"`
	RiskFlags      []string  `json:"risk_flags,omitempty"`
	Fallback       bool      `json:"fallback"`
}

type Cluster struct {
	ID        string    `json:"id"`
	Index     int       `json:"index"`
	Name      string    `json:"name"`
	Centroid  []float64 `json:"centroid"`
	ArtistIDs []string  `json:"artist_ids"`
}

// TasteMap is a versioned clustering of a label's roster. A new version
// replaces the visible one atomically; clusters partition the roster.
type TasteMap struct {
	ID        string    `json:"id"`
	LabelID   string    `json:"label_id"`
	Version   int       `json:"version"`
	Clusters  []Cluster `json:"clusters"`
	CreatedAt time.Time `json:"created_at"`
}

type FeedBatch struct {
	ID        string    `json:"id"`
	LabelID   string    `json:"label_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoutFeedItem is one ranked candidate in a batch.
type ScoutFeedItem struct {
	ID                  string    `json:"id"`
	BatchID             string    `json:"batch_id"`
	LabelID             string    `json:"label_id"`
	ArtistID            string    `json:"artist_id"`
	ArtistName          string    `json:"artist_name,omitempty"`
	FitScore            float64   `json:"fit_score"`
	MomentumScore       float64   `json:"momentum_score"`
	RiskScore           float64   `json:"risk_score"`
	FinalScore          float64   `json:"final_score"`
	Reasons             []string  `json:"reasons"`
	NearestClusterID    string    `json:"nearest_cluster_id,omitempty"`
	NearestClusterName  string    `json:"nearest_cluster_name,omitempty"`
	NearestRosterArtist string    `json:"nearest_roster_artist_id,omitempty"`
	FallbackScoring     bool      `json:"fallback_scoring"`
	CreatedAt           time.Time `json:"created_at"`
}

type FeedbackAction string

const (
	FeedbackShortlist FeedbackAction = "shortlist"
	FeedbackSign      FeedbackAction = "sign"
	FeedbackPass      FeedbackAction = "pass"
	FeedbackArchive   FeedbackAction = "archive"
)

// Valid reports whether the action is one of the known feedback actions.
func (a FeedbackAction) Valid() bool {
	switch a {
	case FeedbackShortlist, FeedbackSign, FeedbackPass, FeedbackArchive:
		return true
	}
	return false
}

type Feedback struct {
	ID        string         `json:"id"`
	LabelID   string         `json:"label_id"`
	ArtistID  string         `json:"artist_id"`
	Action    FeedbackAction `json:"action"`
	Notes     string         `json:"notes,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type AlertStatus string

const (
	AlertStatusNew       AlertStatus = "new"
	AlertStatusSeen      AlertStatus = "seen"
	AlertStatusDismissed AlertStatus = "dismissed"
)

// AlertCriteria are the threshold fields a rule may set; nil means unused.
type AlertCriteria struct {
	MomentumMin  *float64 `json:"momentum_min,omitempty"`
	Growth7dMin  *float64 `json:"growth_7d_min,omitempty"`
	Growth30dMin *float64 `json:"growth_30d_min,omitempty"`
	RiskMin      *float64 `json:"risk_min,omitempty"`
}

type AlertRule struct {
	ID       string        `json:"id"`
	LabelID  string        `json:"label_id"`
	Name     string        `json:"name"`
	Severity string        `json:"severity"`
	Active   bool          `json:"active"`
	Criteria AlertCriteria `json:"criteria"`
}

type Alert struct {
	ID          string             `json:"id"`
	LabelID     string             `json:"label_id"`
	ArtistID    string             `json:"artist_id"`
	RuleID      string             `json:"rule_id"`
	Severity    string             `json:"severity"`
	Status      AlertStatus        `json:"status"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Context     map[string]float64 `json:"context,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

type Watchlist struct {
	ID          string    `json:"id"`
	LabelID     string    `json:"label_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

type WatchlistItem struct {
	ID          string    `json:"id"`
	WatchlistID string    `json:"watchlist_id"`
	ArtistID    string    `json:"artist_id"`
	Source      string    `json:"source"` // manual, feed
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CandidateStub is the normalized discovery result shared by all strategies.
type CandidateStub struct {
	Name       string   `json:"name"`
	Platform   string   `json:"platform"`
	PlatformID string   `json:"platform_id"`
	URL        string   `json:"url,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	Followers  int64    `json:"followers"`
	TrackCount int64    `json:"track_count"`
	Source     string   `json:"source,omitempty"` // strategy provenance tag
}

// ArtistBrief is the cached structured output of the optional LLM brief.
type ArtistBrief struct {
	ArtistID   string    `json:"artist_id"`
	LabelID    string    `json:"label_id"`
	InputHash  string    `json:"input_hash"`
	Summary    string    `json:"summary"`
	Highlights []string  `json:"highlights,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
