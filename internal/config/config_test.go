package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Port:            "8080",
		DBPath:          "test.db",
		ConnectorURLs:   map[string]string{"spotify": "http://localhost:9000"},
		LLMBaseURL:      "https://api.openai.com/v1",
		PipelineWorkers: 2,
		ArtistWorkers:   4,
		ClusterCount:    3,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Expected valid config, got: %v", err)
	}

	t.Run("bad_port", func(t *testing.T) {
		cfg := validConfig()
		cfg.Port = "notaport"
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "PORT") {
			t.Errorf("Expected PORT error, got: %v", err)
		}
	})

	t.Run("port_out_of_range", func(t *testing.T) {
		cfg := validConfig()
		cfg.Port = "70000"
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for out-of-range port")
		}
	})

	t.Run("empty_db_path", func(t *testing.T) {
		cfg := validConfig()
		cfg.DBPath = ""
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "DB_PATH") {
			t.Errorf("Expected DB_PATH error, got: %v", err)
		}
	})

	t.Run("bad_connector_url", func(t *testing.T) {
		cfg := validConfig()
		cfg.ConnectorURLs = map[string]string{"youtube": "not a url"}
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for invalid connector URL")
		}
	})

	t.Run("llm_url_only_checked_when_enabled", func(t *testing.T) {
		cfg := validConfig()
		cfg.LLMBaseURL = "::bad::"
		if err := cfg.Validate(); err != nil {
			t.Errorf("LLM disabled, URL should not be validated: %v", err)
		}
		cfg.LLMAPIKey = "sk-test"
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for invalid LLM URL when enabled")
		}
	})

	t.Run("bad_log_level", func(t *testing.T) {
		cfg := validConfig()
		cfg.LogLevel = "verbose"
		if err := cfg.Validate(); err == nil {
			t.Error("Expected error for invalid log level")
		}
	})
}

func TestParseConnectorURLs(t *testing.T) {
	urls := parseConnectorURLs("spotify=http://a:1, youtube=http://b:2 ,bad,=x")
	if len(urls) != 2 {
		t.Fatalf("Expected 2 entries, got %d: %v", len(urls), urls)
	}
	if urls["spotify"] != "http://a:1" {
		t.Errorf("Expected spotify url http://a:1, got %s", urls["spotify"])
	}
	if urls["youtube"] != "http://b:2" {
		t.Errorf("Expected youtube url http://b:2, got %s", urls["youtube"])
	}
}
