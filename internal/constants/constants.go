// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort     = "8080"
	DefaultDBPath   = "scoutfeed.db"
	DefaultLLMURL   = "https://api.openai.com/v1"
	DefaultLLMModel = "gpt-4o-mini"
)

// Platform connector call policy
const (
	DefaultRetryCount       = 3
	DefaultRetryBase        = 500 * time.Millisecond
	DefaultConnectorTimeout = 10 * time.Second
	DefaultConnectorRate    = 5.0 // requests per second per platform
	DefaultConnectorBurst   = 5
	DefaultLLMTimeout       = 30 * time.Second
)

// Pipeline scheduling
const (
	DefaultPipelineWorkers = 2 // concurrent label runs
	DefaultArtistWorkers   = 4 // per-artist parallelism within a stage
)

// DefaultStageFailureRate is the fraction of per-artist hard failures that
// turns a stage from skip-and-continue into a hard stage error.
const DefaultStageFailureRate = 0.5

// Discovery
const (
	DefaultGraphMaxDepth      = 2
	DefaultMaxCandidates      = 60
	DefaultSearchPerQuery     = 5
	DefaultSeedQueryLimit     = 5
	DefaultNameMatchThreshold = 0.9
	MinCandidateFollowers     = 100
	MinCandidateTracks        = 3
)

// Taste map
const (
	EmbeddingDim        = 128
	DefaultClusterCount = 3
	KMeansSeed          = 42
	KMeansMaxIterations = 100
)

// Feature windows and risk rules
const (
	ShortWindowDays        = 7
	LongWindowDays         = 30
	ExtremeGrowth7d        = 5.0
	LowEngagementRate      = 0.001
	HighFollowerFloor      = 10000
	NeutralMomentum        = 0.5
	RiskExtremeGrowth      = 0.4
	RiskLowEngagement      = 0.3
	RiskInconsistentGrowth = 0.2
)

// Scoring reason thresholds
const (
	HighMomentumThreshold = 0.7
	StrongFitThreshold    = 0.75
	AcceleratingThreshold = 0.1
)

// Feedback bias
const (
	FeedbackDecay   = 30 * 24 * time.Hour
	FeedbackBiasCap = 0.15
)

// Alerts
const (
	DefaultAlertCooldown = 7 * 24 * time.Hour
	DefaultAlertScanTop  = 50
)

// HTTP API
const (
	DefaultFeedLimit = 50
	MaxFeedLimit     = 200
	BriefTopN        = 20
)
