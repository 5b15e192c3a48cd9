package recap

// Event payloads delivered to hooks. See the hooks package for
// the registry that dispatches them.

// ThresholdCrossedEvent is fired when a usage observation
// flags a conversation for compaction. It fires on every
// crossing observation, including repeats while the flag is
// already set.
type ThresholdCrossedEvent struct {
	ConversationID string
	UsageRatio     float64
	Threshold      float64
}

// CompactionStartEvent is fired when a request claims a flagged
// conversation and begins compacting it.
type CompactionStartEvent struct {
	ConversationID string

	// Manual is true when the compaction was requested through
	// the control API rather than by the automatic trigger.
	Manual bool

	// MessageCount is the history length entering compaction.
	MessageCount int
}

// CompactionEndEvent is fired when a compaction attempt
// finishes, whatever the outcome.
type CompactionEndEvent struct {
	ConversationID string
	Outcome        Outcome

	// MessagesBefore and MessagesAfter describe the rewrite.
	// After equals Before unless Outcome is OutcomeSuccess.
	MessagesBefore int
	MessagesAfter  int

	// Err is set when Outcome is OutcomeFailure.
	Err error
}

// ConfigUpdatedEvent is fired after a validated config update
// has been applied.
type ConfigUpdatedEvent struct {
	Previous Config
	Current  Config
}

// FallbackResolutionEvent is fired when a context-limit lookup
// missed provider metadata and fell back to estimation. Not an
// error — accuracy is degraded, not lost.
type FallbackResolutionEvent struct {
	Provider string
	Model    string
	Resolved Resolution
}
