package summarizer

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"codebase-docgen/internal/errs"
	"codebase-docgen/internal/metrics"
	"codebase-docgen/test/mocks"
)

func TestSummarize(t *testing.T) {
	t.Run("returns generated text", func(t *testing.T) {
		llm := &mocks.MockLLMClient{}
		llm.On("GenerateContent", mock.Anything, systemPrompt, mock.MatchedBy(func(p string) bool {
			return strings.Contains(p, "print('hi')") && strings.Contains(p, "app/main.py")
		})).Return("h1. main.py", nil)
		m := metrics.NewNopPublishMetrics()

		got := New(llm, &mocks.MockLogger{}, m).Summarize(context.Background(), "print('hi')", "app/main.py")

		assert.Equal(t, "h1. main.py", got)
		assert.False(t, IsErrorMarker(got))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Summaries.WithLabelValues(metrics.SummaryOK)))
		llm.AssertExpectations(t)
	})

	t.Run("throttling exhausted becomes exhausted marker", func(t *testing.T) {
		llm := &mocks.MockLLMClient{}
		llm.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).
			Return("", errs.NewStatusError(serviceName, http.StatusTooManyRequests, nil))
		m := metrics.NewNopPublishMetrics()

		got := New(llm, &mocks.MockLogger{}, m).Summarize(context.Background(), "x = 1", "app/a.py")

		assert.Equal(t, ExhaustedMarker("app/a.py"), got)
		assert.True(t, IsErrorMarker(got))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Summaries.WithLabelValues(metrics.SummaryFailed)))
	})

	t.Run("other failure becomes failure marker", func(t *testing.T) {
		llm := &mocks.MockLLMClient{}
		cause := errors.New("connection refused")
		llm.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return("", cause)

		got := New(llm, &mocks.MockLogger{}, nil).Summarize(context.Background(), "x = 1", "app/a.py")

		assert.Equal(t, FailureMarker("app/a.py", cause), got)
		assert.Contains(t, got, "connection refused")
		assert.True(t, IsErrorMarker(got))
	})
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("def f(): pass", "pkg/mod.py")
	assert.Contains(t, p, "Python code from the file 'pkg/mod.py'")
	assert.Contains(t, p, "{code:python}")
	assert.Contains(t, p, "def f(): pass")

	p = BuildPrompt("???", "notes.xyz")
	assert.Contains(t, p, "source code from the file 'notes.xyz'")
	assert.Contains(t, p, "{code:none}")
}

func TestIsErrorMarker(t *testing.T) {
	assert.True(t, IsErrorMarker(ExhaustedMarker("a.py")))
	assert.True(t, IsErrorMarker(FailureMarker("a.py", errors.New("boom"))))
	assert.False(t, IsErrorMarker("h1. a.py"))
	assert.False(t, IsErrorMarker(""))
}
