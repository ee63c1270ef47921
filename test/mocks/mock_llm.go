package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockLLMClient is a testify mock of summarizer.LLMClient.
type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, systemPrompt, prompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, prompt)
	return args.String(0), args.Error(1)
}
