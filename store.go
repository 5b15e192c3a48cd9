package recap

import (
	"hash/fnv"
	"sync"
	"time"
)

// ConversationState is the per-conversation record tracked by
// the Store. Snapshots returned to callers are copies; the
// authoritative record is mutated only through the Store's
// synchronized operations.
type ConversationState struct {
	// ID is the stable conversation identifier.
	ID string `json:"id"`

	// UsageRatio is the most recently observed context usage,
	// in [0,1].
	UsageRatio float64 `json:"usage_ratio"`

	// NeedsCompaction is set when a usage observation crosses
	// the threshold. It is cleared only by a completed
	// compaction, never by a later low-usage observation.
	NeedsCompaction bool `json:"needs_compaction"`

	// MessageCount is the history length at the last usage
	// observation.
	MessageCount int `json:"message_count"`

	// CompactionCount is the number of successful compactions
	// performed on this conversation.
	CompactionCount int `json:"compaction_count"`

	// CompactionInFlight marks that a compaction attempt is
	// currently executing. At most one attempt runs per
	// conversation at a time.
	CompactionInFlight bool `json:"compaction_in_flight"`
}

// Outcome classifies how a compaction attempt ended.
type Outcome int

const (
	// OutcomeSuccess: history was replaced. Clears the flag
	// and increments the compaction counter.
	OutcomeSuccess Outcome = iota

	// OutcomeFailure: summarization or rewriting failed. The
	// flag stays set so the next request retries.
	OutcomeFailure

	// OutcomeSkipped: there was nothing to compact (the
	// conversation is shorter than the retained window). The
	// flag is cleared without counting a compaction — retrying
	// on every request would repeat the same no-op, and the
	// flag re-arms on the next threshold-crossing observation.
	OutcomeSkipped
)

// storeShards is the number of lock shards. Conversations hash
// onto shards so operations on unrelated ids do not serialize
// against each other.
const storeShards = 32

type storeEntry struct {
	state   ConversationState
	touched time.Time
}

type storeShard struct {
	mu      sync.Mutex
	entries map[string]*storeEntry
}

// Store holds per-conversation compaction state. It is the only
// shared mutable resource in the engine.
//
// # Locking
//
// Each shard has its own mutex, held only for the brief
// state-transition critical sections. The busy period of a
// running compaction is represented by the CompactionInFlight
// marker, not a held lock, so a slow summarization call never
// stalls usage updates arriving for the same conversation.
//
// # Lifetime
//
// Records are created lazily on first observation and never
// expire by default. WithMaxConversations bounds the store by
// evicting the stalest idle record in an overfull shard; this
// is an extension over the engine's original behavior, off by
// default.
type Store struct {
	shards   [storeShards]storeShard
	perShard int // max entries per shard, 0 = unbounded
}

// NewStore creates an empty Store.
func NewStore() *Store {
	s := &Store{}
	for i := range s.shards {
		s.shards[i].entries = make(map[string]*storeEntry)
	}
	return s
}

// WithMaxConversations bounds the total number of tracked
// conversations to roughly n. When a shard exceeds its share,
// the least recently touched record without an in-flight
// compaction is evicted. n <= 0 leaves the store unbounded.
// Returns the store for chaining.
func (s *Store) WithMaxConversations(n int) *Store {
	if n <= 0 {
		s.perShard = 0
		return s
	}
	perShard := n / storeShards
	if perShard < 1 {
		perShard = 1
	}
	s.perShard = perShard
	return s
}

func (s *Store) shard(id string) *storeShard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s.shards[h.Sum32()%storeShards]
}

// locked get-or-create; caller holds sh.mu.
func (sh *storeShard) getOrCreate(id string, perShard int) *storeEntry {
	e, ok := sh.entries[id]
	if !ok {
		if perShard > 0 && len(sh.entries) >= perShard {
			sh.evictStalest()
		}
		e = &storeEntry{state: ConversationState{ID: id}}
		sh.entries[id] = e
	}
	e.touched = time.Now()
	return e
}

// evictStalest removes the least recently touched entry that is
// not mid-compaction. Caller holds sh.mu.
func (sh *storeShard) evictStalest() {
	var victim string
	var oldest time.Time
	for id, e := range sh.entries {
		if e.state.CompactionInFlight {
			continue
		}
		if victim == "" || e.touched.Before(oldest) {
			victim = id
			oldest = e.touched
		}
	}
	if victim != "" {
		delete(sh.entries, victim)
	}
}

// GetOrCreate returns a snapshot of the conversation's state,
// creating an empty record if the id was not seen before.
func (s *Store) GetOrCreate(id string) ConversationState {
	sh := s.shard(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.getOrCreate(id, s.perShard).state
}

// RecordUsage updates the conversation's observed usage ratio
// and message count. When crossed is true the conversation is
// flagged for compaction. A false value never clears an
// existing flag — only a completed compaction does that.
//
// Returns whether the conversation needs compaction after the
// update.
func (s *Store) RecordUsage(id string, ratio float64, messageCount int, crossed bool) bool {
	sh := s.shard(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e := sh.getOrCreate(id, s.perShard)
	e.state.UsageRatio = ratio
	e.state.MessageCount = messageCount
	if crossed {
		e.state.NeedsCompaction = true
	}
	return e.state.NeedsCompaction
}

// BeginCompaction atomically claims the conversation for a
// compaction attempt. It returns true only if no other attempt
// was in flight; on false it has no side effects. The claim is
// released by CompleteCompaction.
func (s *Store) BeginCompaction(id string) bool {
	sh := s.shard(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e := sh.getOrCreate(id, s.perShard)
	if e.state.CompactionInFlight {
		return false
	}
	e.state.CompactionInFlight = true
	return true
}

// CompleteCompaction releases the in-flight claim and applies
// the outcome's state transition. Must be called exactly once
// per successful BeginCompaction.
func (s *Store) CompleteCompaction(id string, outcome Outcome) {
	sh := s.shard(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e := sh.getOrCreate(id, s.perShard)
	e.state.CompactionInFlight = false
	switch outcome {
	case OutcomeSuccess:
		e.state.NeedsCompaction = false
		e.state.CompactionCount++
	case OutcomeSkipped:
		e.state.NeedsCompaction = false
	case OutcomeFailure:
		// Flag stays set; the next request retries.
	}
}

// Snapshot returns a copy of every tracked conversation's
// state, keyed by conversation id.
func (s *Store) Snapshot() map[string]ConversationState {
	result := make(map[string]ConversationState)
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for id, e := range sh.entries {
			result[id] = e.state
		}
		sh.mu.Unlock()
	}
	return result
}

// Len returns the number of tracked conversations.
func (s *Store) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}
	return n
}
