// Package providers contains Provider implementations for the
// recap engine.
package providers

import (
	"context"

	"github.com/rickchristie/recap"
	"github.com/tmc/langchaingo/llms"
)

// LCG adapts any LangChainGo llms.Model into a recap.Provider.
// Model limits come from a static table populated with
// WithLimit, since LangChainGo does not expose model metadata;
// models missing from the table take the resolver's estimation
// fallback.
//
// Example:
//
//	llm, _ := openai.New(openai.WithToken(apiKey))
//	provider := providers.NewLCG(llm).
//	    WithDefaultModel("gpt-4o-mini").
//	    WithLimit("gpt-4o-mini", recap.ModelLimit{
//	        ContextTokens: 128000,
//	        OutputTokens:  16384,
//	    })
//	registry.Register("openai", provider)
type LCG struct {
	model        llms.Model
	limits       map[string]recap.ModelLimit
	defaultModel string
}

// NewLCG creates an LCG provider wrapping the given model.
func NewLCG(model llms.Model) *LCG {
	return &LCG{
		model:  model,
		limits: make(map[string]recap.ModelLimit),
	}
}

// WithLimit advertises a model's token budget. Returns the
// provider for chaining.
func (p *LCG) WithLimit(model string, limit recap.ModelLimit) *LCG {
	p.limits[model] = limit
	return p
}

// WithDefaultModel sets the model used when a call carries no
// model override. Returns the provider for chaining.
func (p *LCG) WithDefaultModel(name string) *LCG {
	p.defaultModel = name
	return p
}

// Unwrap returns the underlying llms.Model.
func (p *LCG) Unwrap() llms.Model {
	return p.model
}

// ModelLimit implements recap.Provider.
func (p *LCG) ModelLimit(model string) (recap.ModelLimit, bool) {
	limit, ok := p.limits[model]
	return limit, ok
}

// GenerateContent implements recap.Provider. The default model,
// when set, is applied first so per-call llms.WithModel options
// still win.
func (p *LCG) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	if p.defaultModel != "" {
		options = append(
			[]llms.CallOption{llms.WithModel(p.defaultModel)},
			options...,
		)
	}
	return p.model.GenerateContent(ctx, messages, options...)
}

// Compile-time check.
var _ recap.Provider = (*LCG)(nil)
