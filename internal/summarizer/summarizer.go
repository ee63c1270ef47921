package summarizer

import (
	"context"
	"fmt"
	"strings"

	"codebase-docgen/internal/metrics"
	"codebase-docgen/pkg/logger"
)

const errorMarkerHeading = "h2. Error Generating Documentation"

// Summarizer turns file content into page text. It never fails: errors become marker text.
type Summarizer interface {
	Summarize(ctx context.Context, content, label string) string
}

type summarizer struct {
	llm     LLMClient
	logger  logger.Logger
	metrics *metrics.PublishMetrics
}

// New wraps an LLM client with the prompt and the error-marker fallback.
func New(llm LLMClient, logger logger.Logger, m *metrics.PublishMetrics) Summarizer {
	if m == nil {
		m = metrics.NewNopPublishMetrics()
	}
	return &summarizer{llm: llm, logger: logger, metrics: m}
}

func (s *summarizer) Summarize(ctx context.Context, content, label string) string {
	text, err := s.llm.GenerateContent(ctx, systemPrompt, BuildPrompt(content, label))
	if err == nil {
		s.metrics.Summaries.WithLabelValues(metrics.SummaryOK).Inc()
		return text
	}
	s.metrics.Summaries.WithLabelValues(metrics.SummaryFailed).Inc()

	if isRetryable(err) {
		s.logger.Error("failed to get documentation for %s after retries: %v", label, err)
		return ExhaustedMarker(label)
	}
	s.logger.Error("error calling summarization service for %s: %v", label, err)
	return FailureMarker(label, err)
}

// FailureMarker is the page body used when the request failed outright.
func FailureMarker(label string, err error) string {
	return fmt.Sprintf("%s\n\nAn error occurred while generating AI documentation for %s:\n{noformat}\n%v\n{noformat}",
		errorMarkerHeading, label, err)
}

// ExhaustedMarker is the page body used when every retry was throttled.
func ExhaustedMarker(label string) string {
	return fmt.Sprintf("%s\n\nFailed to retrieve documentation from the summarization service for %s after multiple retries due to rate limiting or other API issues.",
		errorMarkerHeading, label)
}

// IsErrorMarker reports whether text came from FailureMarker or ExhaustedMarker.
func IsErrorMarker(text string) bool {
	return strings.HasPrefix(text, errorMarkerHeading)
}
