// Package controller composes the compaction engine into the
// request/response lifecycle: it observes reported usage on
// responses, flags conversations that cross the threshold, and
// rewrites flagged histories on a later request.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rickchristie/recap"
	"github.com/rickchristie/recap/hooks"
)

// configHolder stores the active config behind an atomic
// pointer. Updates replace the whole value, so concurrent
// readers always see a complete config, never a partially
// updated one.
type configHolder struct {
	p atomic.Pointer[recap.Config]
}

func (h *configHolder) store(cfg recap.Config) {
	h.p.Store(&cfg)
}

func (h *configHolder) load() recap.Config {
	return *h.p.Load()
}

// DefaultSummarizeTimeout bounds the summarization call so a
// hung provider cannot pin a conversation's in-flight marker
// forever.
const DefaultSummarizeTimeout = 60 * time.Second

// Request is an inbound conversational request as seen by the
// engine: the ordered history plus the provider/model the
// caller selected.
type Request struct {
	// ConversationID groups requests into one logical chat
	// session. When empty, a stable id is derived from the
	// first message.
	ConversationID string

	// Provider and Model identify the backend serving this
	// request. Also used as the summarization fallback when
	// the config leaves its own provider/model unset.
	Provider string
	Model    string

	// Messages is the conversation history, oldest first.
	Messages []recap.Message
}

func (r *Request) id() string {
	if r.ConversationID != "" {
		return r.ConversationID
	}
	return recap.DeriveConversationID(r.Messages)
}

// Usage is the token usage reported with a response. Either
// Ratio is set directly, or PromptTokens is set and the ratio
// is computed against the resolved context limit.
type Usage struct {
	PromptTokens int
	TotalTokens  int

	// Ratio, when > 0, is used as-is and no limit resolution
	// happens.
	Ratio float64
}

// ResultKind classifies what FilterRequest and
// TriggerCompaction did to a request.
type ResultKind int

const (
	// ResultNone: the conversation was not flagged (or the
	// engine is disabled); the history passed through
	// untouched.
	ResultNone ResultKind = iota

	// ResultCompacted: the history was replaced.
	ResultCompacted

	// ResultFailed: summarization failed; the history is
	// untouched and the conversation stays flagged.
	ResultFailed

	// ResultSkipped: nothing preceded the retained window;
	// the history is untouched and the flag was cleared.
	ResultSkipped

	// ResultBusy: another request is already compacting this
	// conversation.
	ResultBusy
)

// Result describes the outcome of a compaction opportunity.
type Result struct {
	Kind ResultKind

	// Messages is the post-compaction history when Kind is
	// ResultCompacted, nil otherwise.
	Messages []recap.Message

	// Err is set when Kind is ResultFailed. Errors never
	// propagate to the conversational request itself.
	Err error
}

// Controller owns the engine's moving parts. Create it with
// New, then wire optional collaborators with the With* methods
// before serving requests.
type Controller struct {
	registry   *recap.Registry
	resolver   *recap.Resolver
	summarizer *recap.Summarizer
	store      *recap.Store
	stats      *recap.Stats
	hooks      *hooks.Registry

	cfg        configHolder
	configPath string
	timeout    time.Duration
}

// New creates a Controller over the given provider registry,
// starting from cfg. The config must already be valid — load it
// with recap.LoadConfigFile or start from recap.DefaultConfig.
func New(registry *recap.Registry, cfg recap.Config) *Controller {
	c := &Controller{
		registry:   registry,
		resolver:   recap.NewResolver(registry),
		summarizer: recap.NewSummarizer(registry),
		store:      recap.NewStore(),
		stats:      recap.NewStats(),
		hooks:      hooks.NewRegistry(),
		timeout:    DefaultSummarizeTimeout,
	}
	c.cfg.store(cfg)
	return c
}

// WithHooks replaces the hook registry. Returns the controller
// for chaining.
func (c *Controller) WithHooks(r *hooks.Registry) *Controller {
	c.hooks = r
	return c
}

// WithStore replaces the conversation state store. Use this to
// bound tracked conversations via
// recap.NewStore().WithMaxConversations(n).
func (c *Controller) WithStore(s *recap.Store) *Controller {
	c.store = s
	return c
}

// WithConfigPath enables config persistence: after every
// successful UpdateConfig the effective config is written to
// this path.
func (c *Controller) WithConfigPath(path string) *Controller {
	c.configPath = path
	return c
}

// WithSummarizeTimeout bounds each summarization call. Zero
// disables the bound.
func (c *Controller) WithSummarizeTimeout(d time.Duration) *Controller {
	c.timeout = d
	return c
}

// Config returns a snapshot of the current configuration.
func (c *Controller) Config() recap.Config {
	return c.cfg.load()
}

// Stats returns the controller's stats instance.
func (c *Controller) Stats() *recap.Stats {
	return c.stats
}

// Status returns a snapshot of every tracked conversation's
// state, keyed by conversation id.
func (c *Controller) Status() map[string]recap.ConversationState {
	return c.store.Snapshot()
}

// UpdateConfig validates a partial JSON update, applies it
// atomically, and persists the result when a config path is
// set. On validation failure the original config is unchanged
// and the returned error is a *recap.ConfigValidationError.
//
// A persistence failure does not roll back the in-memory
// update; the applied config is returned along with the error.
func (c *Controller) UpdateConfig(partial []byte) (recap.Config, error) {
	previous := c.cfg.load()
	next, err := previous.ApplyUpdate(partial)
	if err != nil {
		return previous, err
	}
	c.cfg.store(next)
	c.hooks.FireConfigUpdated(recap.ConfigUpdatedEvent{
		Previous: previous,
		Current:  next,
	})
	if c.configPath != "" {
		if err := recap.SaveConfigFile(c.configPath, next); err != nil {
			return next, fmt.Errorf("config applied but not persisted: %w", err)
		}
	}
	return next, nil
}

// ObserveResponse records the usage reported with a response
// and flags the conversation when it crosses the threshold.
// Call this for every completed conversational response.
func (c *Controller) ObserveResponse(req *Request, usage Usage) {
	cfg := c.cfg.load()
	if !cfg.Enabled {
		return
	}

	ratio := usage.Ratio
	if ratio == 0 && usage.PromptTokens > 0 {
		res := c.resolver.Resolve(req.Provider, req.Model)
		if res.Fallback() {
			c.stats.IncrCounter(recap.KeyFallbackResolutions, 1)
			c.hooks.FireFallbackResolution(recap.FallbackResolutionEvent{
				Provider: req.Provider,
				Model:    req.Model,
				Resolved: res,
			})
		}
		ratio = float64(usage.PromptTokens) / float64(res.Tokens)
	}
	if ratio > 1 {
		ratio = 1
	}

	id := req.id()
	crossed := recap.ShouldFlag(cfg.Enabled, ratio, cfg.Threshold)
	c.store.RecordUsage(id, ratio, len(req.Messages), crossed)
	if crossed {
		c.hooks.FireThresholdCrossed(recap.ThresholdCrossedEvent{
			ConversationID: id,
			UsageRatio:     ratio,
			Threshold:      cfg.Threshold,
		})
	}
	c.stats.SetGauge(recap.KeyConversations, float64(c.store.Len()))
}

// FilterRequest gives the engine a chance to compact the
// request's history before it is sent to the model. When the
// conversation is flagged and no other request is already
// compacting it, the history is summarized and rewritten in
// place (req.Messages is replaced).
//
// FilterRequest never fails the request: every failure degrades
// to "proceed with unmodified history" and is reported through
// the Result for observability only.
func (c *Controller) FilterRequest(ctx context.Context, req *Request) Result {
	cfg := c.cfg.load()
	if !cfg.Enabled {
		return Result{Kind: ResultNone}
	}

	id := req.id()
	state := c.store.GetOrCreate(id)
	if !recap.ShouldAttempt(state) {
		if state.NeedsCompaction && state.CompactionInFlight {
			return Result{Kind: ResultBusy}
		}
		return Result{Kind: ResultNone}
	}

	if !c.store.BeginCompaction(id) {
		// Lost the race to a concurrent request.
		c.stats.IncrCounter(recap.KeyCompactionContended, 1)
		return Result{Kind: ResultBusy}
	}

	result := c.compact(ctx, id, req, cfg, false)
	if result.Kind == ResultCompacted {
		req.Messages = result.Messages
	}
	return result
}

// TriggerCompaction runs the same compacting path as the
// automatic trigger, regardless of whether the conversation is
// flagged. The caller supplies the history to compact; on
// success the replacement history is in Result.Messages.
func (c *Controller) TriggerCompaction(
	ctx context.Context,
	conversationID string,
	messages []recap.Message,
	provider string,
	model string,
) Result {
	cfg := c.cfg.load()
	req := &Request{
		ConversationID: conversationID,
		Provider:       provider,
		Model:          model,
		Messages:       messages,
	}
	id := req.id()

	if !c.store.BeginCompaction(id) {
		c.stats.IncrCounter(recap.KeyCompactionContended, 1)
		return Result{Kind: ResultBusy}
	}
	return c.compact(ctx, id, req, cfg, true)
}

// compact runs one compaction attempt. The caller must have
// acquired the in-flight claim via BeginCompaction; compact
// always releases it through CompleteCompaction with the
// attempt's outcome.
func (c *Controller) compact(
	ctx context.Context,
	id string,
	req *Request,
	cfg recap.Config,
	manual bool,
) Result {
	before := len(req.Messages)
	c.hooks.FireCompactionStart(recap.CompactionStartEvent{
		ConversationID: id,
		Manual:         manual,
		MessageCount:   before,
	})

	// Structural precheck before paying for a model call.
	if !recap.CanCompact(req.Messages, cfg.RetainRecentCount) {
		return c.finish(id, before, Result{Kind: ResultSkipped})
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	summary, err := c.summarizer.Summarize(
		ctx, req.Messages, cfg, req.Provider, req.Model,
	)
	if err != nil {
		return c.finish(id, before, Result{Kind: ResultFailed, Err: err})
	}

	rewritten, err := recap.Rewrite(
		req.Messages, summary, cfg.RetainRecentCount, cfg.NotifyUser,
	)
	if errors.Is(err, recap.ErrNothingToCompact) {
		return c.finish(id, before, Result{Kind: ResultSkipped})
	}
	if err != nil {
		return c.finish(id, before, Result{Kind: ResultFailed, Err: err})
	}

	return c.finish(id, before, Result{
		Kind:     ResultCompacted,
		Messages: rewritten,
	})
}

// finish applies the attempt's state transition, updates stats,
// and fires the end hook.
func (c *Controller) finish(id string, before int, result Result) Result {
	after := before
	var outcome recap.Outcome
	switch result.Kind {
	case ResultCompacted:
		outcome = recap.OutcomeSuccess
		after = len(result.Messages)
		c.stats.IncrCounter(recap.KeyCompactions, 1)
	case ResultSkipped:
		outcome = recap.OutcomeSkipped
		c.stats.IncrCounter(recap.KeyCompactionSkips, 1)
	default:
		outcome = recap.OutcomeFailure
		c.stats.IncrCounter(recap.KeyCompactionFailures, 1)
	}
	c.store.CompleteCompaction(id, outcome)

	c.hooks.FireCompactionEnd(recap.CompactionEndEvent{
		ConversationID: id,
		Outcome:        outcome,
		MessagesBefore: before,
		MessagesAfter:  after,
		Err:            result.Err,
	})
	return result
}
