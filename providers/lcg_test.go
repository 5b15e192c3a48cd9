package providers

import (
	"context"
	"testing"

	"github.com/rickchristie/recap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel records resolved call options so tests can assert
// on the effective model selection.
type fakeModel struct {
	lastOptions llms.CallOptions
}

func (f *fakeModel) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	var opts llms.CallOptions
	for _, opt := range options {
		opt(&opts)
	}
	f.lastOptions = opts
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: "ok"}},
	}, nil
}

func (f *fakeModel) Call(
	ctx context.Context,
	prompt string,
	options ...llms.CallOption,
) (string, error) {
	return "ok", nil
}

var _ llms.Model = (*fakeModel)(nil)

func TestLCG_ModelLimit(t *testing.T) {
	provider := NewLCG(&fakeModel{}).
		WithLimit("gpt-4o", recap.ModelLimit{
			ContextTokens: 128000,
			OutputTokens:  16384,
		})

	limit, ok := provider.ModelLimit("gpt-4o")
	require.True(t, ok)
	assert.Equal(t, 128000, limit.ContextTokens)
	assert.Equal(t, 16384, limit.OutputTokens)

	_, ok = provider.ModelLimit("unknown-model")
	assert.False(t, ok)
}

func TestLCG_DefaultModelApplied(t *testing.T) {
	model := &fakeModel{}
	provider := NewLCG(model).WithDefaultModel("gpt-4o-mini")

	_, err := provider.GenerateContent(
		context.Background(),
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "hi")},
	)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", model.lastOptions.Model)
}

func TestLCG_PerCallModelWins(t *testing.T) {
	model := &fakeModel{}
	provider := NewLCG(model).WithDefaultModel("gpt-4o-mini")

	_, err := provider.GenerateContent(
		context.Background(),
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "hi")},
		llms.WithModel("gpt-4o"),
	)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", model.lastOptions.Model)
}

func TestLCG_NoDefaultModelLeavesOptionsAlone(t *testing.T) {
	model := &fakeModel{}
	provider := NewLCG(model)

	_, err := provider.GenerateContent(
		context.Background(),
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "hi")},
	)
	require.NoError(t, err)
	assert.Empty(t, model.lastOptions.Model)
}

func TestLCG_Unwrap(t *testing.T) {
	model := &fakeModel{}
	provider := NewLCG(model)
	assert.Same(t, model, provider.Unwrap().(*fakeModel))
}
