package recap

// ShouldFlag reports whether a conversation's usage crossed the
// compaction threshold. Equality counts as crossed: triggering
// exactly at the configured boundary avoids under-triggering
// when usage lands precisely on it.
//
// Pure function — the caller snapshots enabled and threshold
// from the current config so a concurrent config update cannot
// split the decision.
func ShouldFlag(enabled bool, ratio, threshold float64) bool {
	return enabled && ratio >= threshold
}

// ShouldAttempt reports whether a request should try to compact
// the conversation now: the conversation is flagged and no other
// request is already compacting it.
func ShouldAttempt(state ConversationState) bool {
	return state.NeedsCompaction && !state.CompactionInFlight
}
