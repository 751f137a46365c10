package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/cesargomez89/scoutfeed/internal/constants"
	"github.com/cesargomez89/scoutfeed/internal/httpclient"
	"github.com/cesargomez89/scoutfeed/internal/logger"
)

const (
	dnaSystemPrompt = "You are an A&R intelligence analyst. Given a record label's roster and cluster data, " +
		"produce a structured analysis of the label's musical DNA and taste profile. " +
		"Respond with ONLY valid JSON matching the requested schema."
	querySystemPrompt = "You are a music discovery specialist. Given a label's DNA profile, " +
		"generate search queries for discovering emerging artists across platforms. " +
		"Respond with ONLY valid JSON matching the requested schema."
	briefSystemPrompt = "You are an A&R scouting analyst. Given an emerging artist's data, " +
		"produce a structured scouting brief for A&R decision makers. " +
		"Be specific, concise, and actionable. Respond with ONLY valid JSON."
)

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *httpclient.Client
	log     *logger.Logger
}

func NewOpenAIClient(baseURL, apiKey, model string, log *logger.Logger) *OpenAIClient {
	hc := &http.Client{Timeout: constants.DefaultLLMTimeout}
	return &OpenAIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  httpclient.NewClient(hc, constants.DefaultConnectorRate, constants.DefaultConnectorBurst),
		log:     log.WithComponent("llm"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// generate runs one structured-output completion and decodes the JSON body
// of the reply into out.
func (c *OpenAIClient) generate(ctx context.Context, system, user string, out any) error {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.3,
	}
	body.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		c.log.Warn("completion request failed", "error", err)
		return ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("completion request rejected", "status", resp.StatusCode)
		return ErrUnavailable
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrUnavailable
	}
	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil || len(parsed.Choices) == 0 {
		return ErrUnavailable
	}
	content := stripFences(parsed.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		c.log.Warn("unparseable completion", "error", err)
		return ErrUnavailable
	}
	return nil
}

// stripFences removes a markdown code fence wrapper some models insist on.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 3 {
		return s
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}
