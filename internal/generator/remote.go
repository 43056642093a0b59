package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/matchcast/internal/config"
)

// RemoteClient calls an OpenAI-compatible chat-completions endpoint.
type RemoteClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	logger  *logrus.Logger
}

// NewRemoteClient creates a client for the remote generator
func NewRemoteClient(cfg *config.RemoteGeneratorConfig, timeout time.Duration, logger *logrus.Logger) *RemoteClient {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &RemoteClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		model:   model,
		logger:  logger,
	}
}

// Name returns the tier name of this generator
func (c *RemoteClient) Name() string {
	return "remote"
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generate sends the prompt and returns the decoded response body. The body
// is handed to the normalizer as-is; no shape is assumed here beyond it being
// JSON.
func (c *RemoteClient) Generate(ctx context.Context, prompt string) (any, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.4,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneratorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: status %d: %s", ErrGeneratorUnavailable, resp.StatusCode, string(body))
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if payload == nil {
		return nil, ErrEmptyResponse
	}

	c.logger.WithField("model", c.model).Debug("Remote generation completed")
	return payload, nil
}
