package recap

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// DefaultSummaryPrompt is the full summarization prompt used
// when Config.UseSimplePrompt is false. It asks for a thorough
// summary that preserves decisions, constraints, and technical
// detail, because the output replaces the conversation history
// outright.
const DefaultSummaryPrompt = `Please provide a comprehensive summary of the conversation so far. Preserve:
- All critical context and decisions
- User preferences and constraints
- Technical details and requirements
- Code snippets and configurations
- Conversation flow and key topics

Be thorough but concise. This summary will replace the conversation history.`

// DefaultSimplePrompt is the abbreviated prompt used when
// Config.UseSimplePrompt is true. Intended for faster or
// smaller summarization models.
const DefaultSimplePrompt = `Summarize this conversation concisely. Include: key decisions, requirements, code context, and current task. Be brief.`

// Config is the process-wide compaction configuration. It is a
// plain value: updates produce a new Config that replaces the
// old one atomically (copy-on-write), so readers never observe
// a partially-updated record.
type Config struct {
	// Enabled turns the whole engine on or off. When false no
	// conversation is ever flagged or compacted.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Threshold is the usage ratio in [0,1] at or above which
	// a conversation is flagged for compaction.
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// Provider optionally overrides which provider performs
	// summarization. Empty means use the conversation's own
	// provider.
	Provider string `json:"provider" yaml:"provider"`

	// Model optionally overrides which model performs
	// summarization. Empty means use the conversation's own
	// model.
	Model string `json:"model" yaml:"model"`

	// NotifyUser appends a visible note to the summary message
	// telling the user the history was compacted.
	NotifyUser bool `json:"notify_user" yaml:"notify_user"`

	// UseSimplePrompt selects SimplePrompt over SummaryPrompt.
	UseSimplePrompt bool `json:"use_simple_prompt" yaml:"use_simple_prompt"`

	// SummaryPrompt is the full summarization prompt.
	SummaryPrompt string `json:"summary_prompt" yaml:"summary_prompt"`

	// SimplePrompt is the abbreviated summarization prompt.
	SimplePrompt string `json:"simple_prompt" yaml:"simple_prompt"`

	// RetainRecentCount is the number of most-recent non-system
	// messages preserved verbatim across a compaction.
	RetainRecentCount int `json:"retain_recent_count" yaml:"retain_recent_count"`
}

// DefaultConfig returns the configuration used when no config
// file exists and no update has been applied.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		Threshold:         0.8,
		NotifyUser:        true,
		UseSimplePrompt:   false,
		SummaryPrompt:     DefaultSummaryPrompt,
		SimplePrompt:      DefaultSimplePrompt,
		RetainRecentCount: 2,
	}
}

// ConfigValidationError is returned when a config value or a
// partial update is rejected. The original config is unchanged.
type ConfigValidationError struct {
	Err error
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigValidationError) Unwrap() error {
	return e.Err
}

// Validate checks the config's value constraints. Returns a
// *ConfigValidationError describing the first violation, or
// nil.
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return &ConfigValidationError{Err: fmt.Errorf(
			"threshold must be in [0,1], got %v", c.Threshold)}
	}
	if c.RetainRecentCount < 0 {
		return &ConfigValidationError{Err: fmt.Errorf(
			"retain_recent_count must be >= 0, got %d", c.RetainRecentCount)}
	}
	if c.SummaryPrompt == "" {
		return &ConfigValidationError{Err: fmt.Errorf(
			"summary_prompt must not be empty")}
	}
	if c.SimplePrompt == "" {
		return &ConfigValidationError{Err: fmt.Errorf(
			"simple_prompt must not be empty")}
	}
	return nil
}

// updateSchema validates partial config updates before any field
// is applied. Unknown fields are rejected rather than ignored so
// a typo in a field name surfaces as an error instead of a
// silent no-op.
var updateSchema = mustCompileSchema(map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"enabled":             map[string]any{"type": "boolean"},
		"threshold":           map[string]any{"type": "number", "minimum": 0, "maximum": 1},
		"provider":            map[string]any{"type": "string"},
		"model":               map[string]any{"type": "string"},
		"notify_user":         map[string]any{"type": "boolean"},
		"use_simple_prompt":   map[string]any{"type": "boolean"},
		"summary_prompt":      map[string]any{"type": "string", "minLength": 1},
		"simple_prompt":       map[string]any{"type": "string", "minLength": 1},
		"retain_recent_count": map[string]any{"type": "integer", "minimum": 0},
	},
})

// mustCompileSchema compiles a raw schema map, panicking on
// error. Only used for schemas defined at init time.
func mustCompileSchema(raw map[string]any) *jsonschema.Schema {
	rawJSON, err := json.Marshal(raw)
	if err != nil {
		panic(fmt.Errorf("failed to marshal schema: %w", err))
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(rawJSON))
	if err != nil {
		panic(fmt.Errorf("failed to parse schema: %w", err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("config_update.json", doc); err != nil {
		panic(fmt.Errorf("failed to add schema resource: %w", err))
	}
	compiled, err := c.Compile("config_update.json")
	if err != nil {
		panic(fmt.Errorf("failed to compile schema: %w", err))
	}
	return compiled
}

// configUpdate mirrors Config with pointer fields so a partial
// JSON document only touches the fields it names.
type configUpdate struct {
	Enabled           *bool    `json:"enabled"`
	Threshold         *float64 `json:"threshold"`
	Provider          *string  `json:"provider"`
	Model             *string  `json:"model"`
	NotifyUser        *bool    `json:"notify_user"`
	UseSimplePrompt   *bool    `json:"use_simple_prompt"`
	SummaryPrompt     *string  `json:"summary_prompt"`
	SimplePrompt      *string  `json:"simple_prompt"`
	RetainRecentCount *int     `json:"retain_recent_count"`
}

// ApplyUpdate validates a partial JSON update against the
// update schema and returns a new Config with the named fields
// replaced. The receiver is never mutated. On any validation
// failure the returned error is a *ConfigValidationError and
// the caller should keep using the original config.
func (c Config) ApplyUpdate(partial []byte) (Config, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(partial))
	if err != nil {
		return c, &ConfigValidationError{Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := updateSchema.Validate(doc); err != nil {
		return c, &ConfigValidationError{Err: err}
	}

	var update configUpdate
	if err := json.Unmarshal(partial, &update); err != nil {
		return c, &ConfigValidationError{Err: err}
	}

	next := c
	if update.Enabled != nil {
		next.Enabled = *update.Enabled
	}
	if update.Threshold != nil {
		next.Threshold = *update.Threshold
	}
	if update.Provider != nil {
		next.Provider = *update.Provider
	}
	if update.Model != nil {
		next.Model = *update.Model
	}
	if update.NotifyUser != nil {
		next.NotifyUser = *update.NotifyUser
	}
	if update.UseSimplePrompt != nil {
		next.UseSimplePrompt = *update.UseSimplePrompt
	}
	if update.SummaryPrompt != nil {
		next.SummaryPrompt = *update.SummaryPrompt
	}
	if update.SimplePrompt != nil {
		next.SimplePrompt = *update.SimplePrompt
	}
	if update.RetainRecentCount != nil {
		next.RetainRecentCount = *update.RetainRecentCount
	}

	if err := next.Validate(); err != nil {
		return c, err
	}
	return next, nil
}
