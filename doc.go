// Package recap keeps growing conversational message histories
// within a model's context-window budget.
//
// The engine watches the usage each response reports, flags a
// conversation once usage reaches a configurable threshold, and
// on a later request replaces older history with a generated
// summary — system messages and the most recent exchanges are
// preserved verbatim.
//
// # Architecture
//
// The root package holds the engine's parts, leaves first:
//
//   - Resolver: maps (provider, model) to a context token
//     budget, with a deterministic estimation fallback.
//   - Store: per-conversation state with per-shard locking and
//     an in-flight marker enforcing at most one compaction per
//     conversation at a time.
//   - ShouldFlag / ShouldAttempt: the pure threshold logic.
//   - Summarizer: one model call that compresses history into a
//     summary, via LangChainGo.
//   - Rewrite: the pure history-rewrite producing
//     [system..., summary, recent...].
//
// The controller package composes them into the request and
// response lifecycle; the httpapi package exposes the control
// surface (config, status, manual compaction) over HTTP; the
// hooks package delivers lifecycle events to observers.
//
// # Failure Policy
//
// No failure inside the compaction path ever fails the
// enclosing conversational request. Summarization failures
// leave the history untouched and the conversation flagged, so
// the next request retries. Config validation errors are the
// only caller-visible rejection.
package recap
