package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/matchcast/internal/config"
)

// LocalClient calls an Ollama-style local generation service.
type LocalClient struct {
	client  *http.Client
	baseURL string
	model   string
	logger  *logrus.Logger
}

// NewLocalClient creates a client for the local generation service
func NewLocalClient(cfg *config.LocalGeneratorConfig, timeout time.Duration, logger *logrus.Logger) *LocalClient {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &LocalClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		model:   cfg.Model,
		logger:  logger,
	}
}

// Name returns the tier name of this generator
func (c *LocalClient) Name() string {
	return "local"
}

type localRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// Generate sends the prompt to the local service and returns the decoded
// response body. A missing model surfaces as ErrModelNotFound so the caller
// can log it distinctly from transport failures.
func (c *LocalClient) Generate(ctx context.Context, prompt string) (any, error) {
	reqBody := localRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneratorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if resp.StatusCode == http.StatusNotFound && strings.Contains(string(body), "not found") {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, c.model)
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrGeneratorUnavailable, resp.StatusCode, string(body))
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if payload == nil {
		return nil, ErrEmptyResponse
	}

	c.logger.WithField("model", c.model).Debug("Local generation completed")
	return payload, nil
}
