package llm

import (
	"context"
	"errors"
	"sync"
)

// MockCall records one request made against a MockClient.
type MockCall struct {
	Method string
	Prompt string
	Image  *Image
	Tools  []ToolDeclaration
}

// MockClient is a deterministic Client for tests. Each method delegates to
// the matching func field; an unset field yields an error.
type MockClient struct {
	TextFunc  func(prompt string) (string, error)
	ImageFunc func(prompt string, img Image) (string, error)
	JSONFunc  func(prompt string, img *Image) (string, error)
	ToolsFunc func(req ToolRequest) (*ToolResponse, error)

	mu    sync.Mutex
	calls []MockCall
}

var errNoMockResponse = errors.New("mock: no response configured")

func (m *MockClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.record(MockCall{Method: "text", Prompt: prompt})
	if m.TextFunc == nil {
		return "", errNoMockResponse
	}
	return m.TextFunc(prompt)
}

func (m *MockClient) GenerateWithImage(ctx context.Context, prompt string, img Image) (string, error) {
	m.record(MockCall{Method: "image", Prompt: prompt, Image: &img})
	if m.ImageFunc == nil {
		return "", errNoMockResponse
	}
	return m.ImageFunc(prompt, img)
}

func (m *MockClient) GenerateJSON(ctx context.Context, prompt string, img *Image) (string, error) {
	m.record(MockCall{Method: "json", Prompt: prompt, Image: img})
	if m.JSONFunc == nil {
		return "", errNoMockResponse
	}
	return m.JSONFunc(prompt, img)
}

func (m *MockClient) GenerateWithTools(ctx context.Context, req ToolRequest) (*ToolResponse, error) {
	m.record(MockCall{Method: "tools", Prompt: req.Prompt, Tools: req.Tools})
	if m.ToolsFunc == nil {
		return nil, errNoMockResponse
	}
	return m.ToolsFunc(req)
}

func (m *MockClient) record(c MockCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

// Calls returns a copy of the recorded calls.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of calls made to any method.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Queue returns a func that replays responses in order and then fails.
func Queue(responses ...string) func(string) (string, error) {
	var mu sync.Mutex
	return func(string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(responses) == 0 {
			return "", errNoMockResponse
		}
		r := responses[0]
		responses = responses[1:]
		return r, nil
	}
}
