package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/tidwall/gjson"

	"codebase-docgen/internal/config"
	"codebase-docgen/internal/errs"
	"codebase-docgen/internal/metrics"
	"codebase-docgen/internal/utils"
	"codebase-docgen/pkg/logger"
)

const serviceName = "chat completion"

// ChatCompletionRequest is the OpenAI-compatible request body.
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// LLMClient generates text for a prompt.
type LLMClient interface {
	GenerateContent(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// OpenAIClient talks to any endpoint implementing POST {baseURL}/chat/completions.
type OpenAIClient struct {
	cfg        config.SummarizerConfig
	httpClient *http.Client
	logger     logger.Logger
	metrics    *metrics.PublishMetrics
}

// NewLLMClient validates cfg and builds a client. A nil httpClient gets one with cfg.Timeout.
func NewLLMClient(cfg config.SummarizerConfig, httpClient *http.Client, logger logger.Logger, m *metrics.PublishMetrics) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api_key cannot be empty")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base_url cannot be empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model cannot be empty")
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 1
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if m == nil {
		m = metrics.NewNopPublishMetrics()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &OpenAIClient{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
		metrics:    m,
	}, nil
}

// isRetryable is true for throttling (429) and a model still loading (503).
func isRetryable(err error) bool {
	switch errs.StatusCode(err) {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	}
	return false
}

// GenerateContent calls the API, retrying 429/503 with exponential backoff up to MaxAttempts.
func (c *OpenAIClient) GenerateContent(ctx context.Context, systemPrompt, prompt string) (string, error) {
	start := time.Now()
	opts := append(
		utils.BackoffOptions(ctx, c.cfg.MaxAttempts, c.cfg.RetryDelay, c.cfg.MaxDelay, isRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("LLM request attempt %d/%d failed: %v", n+1, c.cfg.MaxAttempts, err)
		}),
	)
	content, err := retry.DoWithData(func() (string, error) {
		return c.doGenerateContent(ctx, systemPrompt, prompt)
	}, opts...)
	if err != nil {
		return "", err
	}
	c.logger.Debug("LLM request succeeded, total duration: %v", time.Since(start))
	return content, nil
}

func (c *OpenAIClient) doGenerateContent(ctx context.Context, systemPrompt, prompt string) (string, error) {
	c.metrics.SummaryAttempts.Inc()
	startTime := time.Now()

	req := &ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}
	requestBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.cfg.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.cfg.APIKey))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errs.NewStatusError(serviceName, resp.StatusCode, body)
	}

	content, err := extractContent(body)
	if err != nil {
		return "", err
	}
	c.logger.Debug("LLM request completed - ID: %s, Tokens: %d, Duration: %v",
		gjson.GetBytes(body, "id").String(), gjson.GetBytes(body, "usage.total_tokens").Int(), time.Since(startTime))
	return content, nil
}

// extractContent checks the completion shape before reading the first choice.
func extractContent(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: response is not valid JSON", errs.ErrMalformedResponse)
	}
	choices := gjson.GetBytes(body, "choices")
	if !choices.IsArray() || len(choices.Array()) == 0 {
		return "", fmt.Errorf("%w: no choices in response", errs.ErrMalformedResponse)
	}
	content := choices.Get("0.message.content")
	if content.Type != gjson.String {
		return "", fmt.Errorf("%w: choices[0].message.content is missing or not a string", errs.ErrMalformedResponse)
	}
	text := strings.TrimSpace(content.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", errs.ErrMalformedResponse)
	}
	return text, nil
}
