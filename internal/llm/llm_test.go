package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// MockProvider is a test provider that records calls and returns canned responses.
type MockProvider struct {
	mu       sync.Mutex
	Calls    []CompletionRequest
	Response *CompletionResponse
	Err      error
	ProvName string
}

func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		ProvName: name,
		Response: &CompletionResponse{
			Content:      "mock response",
			InputTokens:  10,
			OutputTokens: 20,
			TotalTokens:  30,
			Model:        "mock-model",
			FinishReason: "stop",
		},
	}
}

func (m *MockProvider) Name() string {
	return m.ProvName
}

func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// --- Tests ---

func TestMockProviderRecordsCalls(t *testing.T) {
	mock := NewMockProvider("test")
	ctx := context.Background()

	req := CompletionRequest{
		Model:    "test-model",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}

	resp, err := mock.Complete(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Content != "mock response" {
		t.Errorf("expected 'mock response', got %q", resp.Content)
	}

	if mock.CallCount() != 1 {
		t.Errorf("expected 1 call, got %d", mock.CallCount())
	}

	if mock.Calls[0].Model != "test-model" {
		t.Errorf("expected model 'test-model', got %q", mock.Calls[0].Model)
	}
}

func TestFactoryReturnsErrorForMissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	providers := []string{"openai", "openrouter"}
	for _, p := range providers {
		_, err := NewProvider(p, "some-model")
		if err == nil {
			t.Errorf("expected error for provider %q with missing API key", p)
		}
	}
}

func TestFactoryReturnsErrorForUnknownProvider(t *testing.T) {
	_, err := NewProvider("unknown", "some-model")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestClassifyErrorAPICode(t *testing.T) {
	apiErr := &openai.APIError{
		Code:    "context_length_exceeded",
		Message: "This model's maximum context length is 128000 tokens.",
	}

	err := classifyError(apiErr)
	if !errors.Is(err, ErrContextLength) {
		t.Errorf("expected ErrContextLength, got %v", err)
	}
}

func TestClassifyErrorMessageText(t *testing.T) {
	err := classifyError(errors.New("request failed: maximum context length exceeded for model"))
	if !errors.Is(err, ErrContextLength) {
		t.Errorf("expected ErrContextLength, got %v", err)
	}
}

func TestClassifyErrorPassthrough(t *testing.T) {
	orig := errors.New("rate limit exceeded")
	err := classifyError(orig)
	if errors.Is(err, ErrContextLength) {
		t.Error("unrelated error should not be classified as ErrContextLength")
	}
	if err.Error() != orig.Error() {
		t.Errorf("unrelated error should pass through unchanged, got %v", err)
	}
}

func TestClassifyErrorNil(t *testing.T) {
	if err := classifyError(nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestRateLimitedProviderDelegates(t *testing.T) {
	mock := NewMockProvider("test")
	limited := NewRateLimitedProvider(mock, 600)

	if limited.Name() != "test" {
		t.Errorf("expected name 'test', got %q", limited.Name())
	}

	resp, err := limited.Complete(context.Background(), CompletionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "mock response" {
		t.Errorf("expected 'mock response', got %q", resp.Content)
	}
	if mock.CallCount() != 1 {
		t.Errorf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRateLimitedProviderRespectsContext(t *testing.T) {
	mock := NewMockProvider("test")
	limited := NewRateLimitedProvider(mock, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// First call consumes the burst; second must wait ~1 minute and
	// should abort on the context deadline instead.
	if _, err := limited.Complete(ctx, CompletionRequest{}); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if _, err := limited.Complete(ctx, CompletionRequest{}); err == nil {
		t.Error("expected context deadline error on rate-limited call")
	}
}
