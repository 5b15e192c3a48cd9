// Package tt provides test helpers shared by the recap test
// suites: a scriptable mock model, history builders, and diff
// output for history comparison failures.
package tt

import (
	"context"
	"fmt"
	"sync"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rickchristie/recap"
	"github.com/tmc/langchaingo/llms"
)

// MockProvider implements recap.Provider with scripted
// responses. Each GenerateContent call consumes the next
// scripted step; calls past the script return the last step
// again. All calls and their options are recorded.
type MockProvider struct {
	mu     sync.Mutex
	steps  []mockStep
	calls  int
	Limits map[string]recap.ModelLimit

	// Requests records the message sets passed to each call.
	Requests [][]llms.MessageContent

	// Options records the resolved call options of each call,
	// so tests can assert on temperature and model overrides.
	Options []llms.CallOptions
}

type mockStep struct {
	response string
	err      error
}

// NewMockProvider creates a MockProvider with no script; calls
// fail until Respond or Fail is used.
func NewMockProvider() *MockProvider {
	return &MockProvider{Limits: make(map[string]recap.ModelLimit)}
}

// Respond appends a successful response step.
func (m *MockProvider) Respond(text string) *MockProvider {
	m.steps = append(m.steps, mockStep{response: text})
	return m
}

// Fail appends a failing step.
func (m *MockProvider) Fail(err error) *MockProvider {
	m.steps = append(m.steps, mockStep{err: err})
	return m
}

// WithLimit advertises a model limit.
func (m *MockProvider) WithLimit(model string, limit recap.ModelLimit) *MockProvider {
	m.Limits[model] = limit
	return m
}

// Calls returns how many times GenerateContent ran.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// ModelLimit implements recap.Provider.
func (m *MockProvider) ModelLimit(model string) (recap.ModelLimit, bool) {
	limit, ok := m.Limits[model]
	return limit, ok
}

// GenerateContent implements recap.Provider.
func (m *MockProvider) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts llms.CallOptions
	for _, opt := range options {
		opt(&opts)
	}
	m.Requests = append(m.Requests, messages)
	m.Options = append(m.Options, opts)

	if len(m.steps) == 0 {
		m.calls++
		return nil, fmt.Errorf("mock provider has no script")
	}
	idx := m.calls
	if idx >= len(m.steps) {
		idx = len(m.steps) - 1
	}
	m.calls++

	step := m.steps[idx]
	if step.err != nil {
		return nil, step.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: step.response}},
	}, nil
}

// Compile-time check.
var _ recap.Provider = (*MockProvider)(nil)

// History builds a message history from alternating user and
// assistant turns, optionally preceded by a system prompt.
func History(system string, turns ...string) []recap.Message {
	var history []recap.Message
	if system != "" {
		history = append(history, recap.System(system))
	}
	for i, turn := range turns {
		if i%2 == 0 {
			history = append(history, recap.User(turn))
		} else {
			history = append(history, recap.Assistant(turn))
		}
	}
	return history
}

// RenderHistory prints a history one message per line for diff
// comparison.
func RenderHistory(history []recap.Message) string {
	out := ""
	for _, msg := range history {
		out += fmt.Sprintf("%s: %s\n", msg.Role, msg.Content)
	}
	return out
}

// DiffHistories returns a unified diff between two histories,
// or "" when they are equal. Use in assertion messages so
// failures show exactly which message diverged.
func DiffHistories(want, got []recap.Message) string {
	a := RenderHistory(want)
	b := RenderHistory(got)
	if a == b {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return fmt.Sprintf("diff error: %v", err)
	}
	return diff
}
