package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/cesargomez89/scoutfeed/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port   string
	DBPath string

	// Connector gateway base URLs keyed by platform name. Empty map means
	// no live connectors; ingestion and discovery skip unconfigured platforms.
	ConnectorURLs map[string]string

	// LLM enrichment is optional; an empty API key disables it.
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	PipelineWorkers int
	ArtistWorkers   int
	ClusterCount    int

	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", constants.DefaultPort),
		DBPath:          getEnv("DB_PATH", constants.DefaultDBPath),
		ConnectorURLs:   parseConnectorURLs(getEnv("CONNECTOR_URLS", "")),
		LLMBaseURL:      getEnv("LLM_BASE_URL", constants.DefaultLLMURL),
		LLMAPIKey:       getEnv("LLM_API_KEY", ""),
		LLMModel:        getEnv("LLM_MODEL", constants.DefaultLLMModel),
		PipelineWorkers: getEnvInt("PIPELINE_WORKERS", constants.DefaultPipelineWorkers),
		ArtistWorkers:   getEnvInt("ARTIST_WORKERS", constants.DefaultArtistWorkers),
		ClusterCount:    getEnvInt("CLUSTER_COUNT", constants.DefaultClusterCount),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	for platform, base := range c.ConnectorURLs {
		if _, err := url.ParseRequestURI(base); err != nil {
			errors = append(errors, fmt.Sprintf("CONNECTOR_URLS entry for %s is not a valid URL: %s", platform, base))
		}
	}

	if c.LLMAPIKey != "" {
		if _, err := url.ParseRequestURI(c.LLMBaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("LLM_BASE_URL is not a valid URL: %s", c.LLMBaseURL))
		}
	}

	if c.PipelineWorkers < 1 {
		errors = append(errors, fmt.Sprintf("PIPELINE_WORKERS must be at least 1, got: %d", c.PipelineWorkers))
	}
	if c.ArtistWorkers < 1 {
		errors = append(errors, fmt.Sprintf("ARTIST_WORKERS must be at least 1, got: %d", c.ArtistWorkers))
	}
	if c.ClusterCount < 1 {
		errors = append(errors, fmt.Sprintf("CLUSTER_COUNT must be at least 1, got: %d", c.ClusterCount))
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// parseConnectorURLs parses "platform=url,platform=url" pairs.
func parseConnectorURLs(raw string) map[string]string {
	out := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		platform := strings.ToLower(strings.TrimSpace(parts[0]))
		base := strings.TrimSpace(parts[1])
		if platform != "" && base != "" {
			out[platform] = base
		}
	}
	return out
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
