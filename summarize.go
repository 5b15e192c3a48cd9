package recap

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// summaryTemperature is the fixed sampling temperature for
// summarization calls. Low, because summaries need consistency,
// not creativity.
const summaryTemperature = 0.3

// SummarizationError is returned when the summarization call
// could not produce usable text: the provider was unreachable,
// the call failed, or the completion was empty. Compaction is
// aborted and the original history is left untouched; the
// conversation stays flagged so the next request retries.
type SummarizationError struct {
	Provider string
	Model    string
	Err      error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf(
		"summarization failed (provider=%q model=%q): %v",
		e.Provider, e.Model, e.Err,
	)
}

func (e *SummarizationError) Unwrap() error {
	return e.Err
}

// Summarizer compresses a conversation history into a single
// block of text with one model call.
//
// The summarizer itself never retries — one invocation means
// exactly one outbound call. Retry, if any, happens naturally
// on the next request because a failed compaction leaves the
// conversation flagged.
type Summarizer struct {
	registry *Registry
}

// NewSummarizer creates a Summarizer that selects providers
// from the given registry.
func NewSummarizer(registry *Registry) *Summarizer {
	return &Summarizer{registry: registry}
}

// Summarize issues one generation call and returns the summary
// text. The prompt template and target provider/model come from
// cfg, falling back to the conversation's current provider and
// model when cfg leaves them unset.
//
// All failure modes map to *SummarizationError.
func (s *Summarizer) Summarize(
	ctx context.Context,
	history []Message,
	cfg Config,
	reqProvider string,
	reqModel string,
) (string, error) {
	providerName := cfg.Provider
	if providerName == "" {
		providerName = reqProvider
	}
	model := cfg.Model
	if model == "" {
		model = reqModel
	}

	provider, ok := s.registry.Lookup(providerName)
	if !ok {
		return "", &SummarizationError{
			Provider: providerName,
			Model:    model,
			Err:      fmt.Errorf("provider not registered"),
		}
	}

	prompt := cfg.SummaryPrompt
	if cfg.UseSimplePrompt {
		prompt = cfg.SimplePrompt
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
		llms.TextParts(
			llms.ChatMessageTypeHuman,
			"Conversation to summarize:\n\n"+FormatHistory(history),
		),
	}

	opts := []llms.CallOption{llms.WithTemperature(summaryTemperature)}
	if model != "" {
		opts = append(opts, llms.WithModel(model))
	}

	response, err := provider.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", &SummarizationError{
			Provider: providerName, Model: model, Err: err,
		}
	}
	if response == nil || len(response.Choices) == 0 {
		return "", &SummarizationError{
			Provider: providerName,
			Model:    model,
			Err:      fmt.Errorf("model returned no choices"),
		}
	}

	summary := response.Choices[0].Content
	if strings.TrimSpace(summary) == "" {
		return "", &SummarizationError{
			Provider: providerName,
			Model:    model,
			Err:      fmt.Errorf("model returned empty summary"),
		}
	}
	return summary, nil
}

// FormatHistory renders a history for the summarization prompt:
// one numbered, role-prefixed block per message, in original
// order, separated by blank lines.
func FormatHistory(history []Message) string {
	var sb strings.Builder
	for i, msg := range history {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(
			&sb, "[%d] %s: %s",
			i+1, strings.ToUpper(string(msg.Role)), msg.Content,
		)
	}
	return sb.String()
}
