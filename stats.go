package recap

import "sync"

// Standard key prefix for all recap stat keys. Users embedding
// the engine should use their own prefix for custom metrics to
// avoid collisions.
const KeyPrefix = "recap:"

// Compaction outcome counters.
const (
	// KeyCompactions counts successful compactions across all
	// conversations.
	KeyCompactions = "recap:compactions"

	// KeyCompactionFailures counts compaction attempts that
	// failed during summarization. The affected conversations
	// stay flagged and retry.
	KeyCompactionFailures = "recap:compaction_failures"

	// KeyCompactionSkips counts attempts that found nothing to
	// compact.
	KeyCompactionSkips = "recap:compaction_skips"

	// KeyCompactionContended counts attempts that lost the
	// in-flight race to a concurrent request.
	KeyCompactionContended = "recap:compaction_contended"
)

// Limit resolution counters.
const (
	// KeyFallbackResolutions counts context-limit lookups that
	// missed provider metadata and used the estimation table.
	KeyFallbackResolutions = "recap:fallback_resolutions"
)

// Gauges.
const (
	// KeyConversations is the number of conversations
	// currently tracked by the store.
	KeyConversations = "recap:conversations"
)

// Stats holds process-wide counters and gauges for the engine.
// Counters only go up; gauges can be set freely. All methods
// are safe for concurrent use.
type Stats struct {
	mu       sync.RWMutex
	counters map[string]int64
	gauges   map[string]float64
}

// NewStats creates an empty Stats instance.
func NewStats() *Stats {
	return &Stats{
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
	}
}

// IncrCounter increments a counter by delta.
func (s *Stats) IncrCounter(key string, delta int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key] += delta
}

// GetCounter returns the current value of a counter.
func (s *Stats) GetCounter(key string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters[key]
}

// Counters returns a copy of all counters.
func (s *Stats) Counters() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]int64, len(s.counters))
	for k, v := range s.counters {
		result[k] = v
	}
	return result
}

// SetGauge sets a gauge to the given value.
func (s *Stats) SetGauge(key string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gauges[key] = value
}

// GetGauge returns the current value of a gauge.
func (s *Stats) GetGauge(key string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gauges[key]
}

// Gauges returns a copy of all gauges.
func (s *Stats) Gauges() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]float64, len(s.gauges))
	for k, v := range s.gauges {
		result[k] = v
	}
	return result
}
