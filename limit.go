package recap

import "strings"

// ModelLimit is the advertised token budget of a provider/model
// combination.
type ModelLimit struct {
	// ContextTokens is the maximum context window size.
	ContextTokens int

	// OutputTokens is the maximum output size, zero when the
	// provider does not advertise one.
	OutputTokens int
}

// ResolutionSource tags how a context limit was obtained so
// callers can log degraded accuracy without treating the
// fallback path as an error.
type ResolutionSource string

const (
	// ResolvedFromProvider means the limit came from provider
	// metadata and is authoritative.
	ResolvedFromProvider ResolutionSource = "provider"

	// ResolvedFromPattern means no provider metadata was
	// available and the limit was estimated from the model
	// identifier.
	ResolvedFromPattern ResolutionSource = "pattern"

	// ResolvedFromDefault means neither provider metadata nor
	// a known model pattern matched; the fixed default was
	// returned.
	ResolvedFromDefault ResolutionSource = "default"
)

// Resolution is the result of a context-limit lookup.
type Resolution struct {
	Tokens int
	Source ResolutionSource
}

// Fallback reports whether the limit is an estimate rather than
// provider-advertised metadata.
func (r Resolution) Fallback() bool {
	return r.Source != ResolvedFromProvider
}

// DefaultContextTokens is returned when nothing is known about
// the model. Deliberately conservative.
const DefaultContextTokens = 8192

// limitPattern maps a substring of the model identifier to a
// conservative context size. Patterns are checked in order;
// first match wins, so more specific patterns come first.
type limitPattern struct {
	substr string
	tokens int
}

var limitPatterns = []limitPattern{
	{"gpt-4-turbo", 128000},
	{"gpt-4-1106", 128000},
	{"gpt-4-32k", 32768},
	{"gpt-4", 8192},
	{"gpt-3.5-turbo-16k", 16384},
	{"gpt-3.5-turbo", 4096},
	{"claude-3-opus", 200000},
	{"claude-3-sonnet", 200000},
	{"claude-3-haiku", 200000},
	{"claude-2", 100000},
	{"claude", 100000},
}

// localPatterns cover self-hosted model families. The window
// variant is encoded in the name ("-32k", "-16k") more often
// than advertised by the server, so it is sniffed separately.
var localPatterns = []string{"llama", "mistral", "mixtral"}

// Resolver maps (provider, model) to a context token budget. It
// never fails: when provider metadata is unavailable it falls
// back to pattern estimation, and when that also misses it
// returns DefaultContextTokens. The Resolution's Source field
// distinguishes the three outcomes.
type Resolver struct {
	registry *Registry
}

// NewResolver creates a Resolver backed by the given provider
// registry. A nil registry is allowed; every resolution then
// takes the fallback path.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve returns the context token budget for the given
// provider and model. The result is always strictly positive.
//
// Lookup order:
//  1. The named provider's metadata.
//  2. Every other registered provider's metadata (the model may
//     be served under a different name than the request claims).
//  3. Pattern estimation on the model identifier.
//  4. DefaultContextTokens.
func (r *Resolver) Resolve(provider, model string) Resolution {
	if r.registry != nil {
		if p, ok := r.registry.Lookup(provider); ok {
			if limit, ok := p.ModelLimit(model); ok && limit.ContextTokens > 0 {
				return Resolution{
					Tokens: limit.ContextTokens,
					Source: ResolvedFromProvider,
				}
			}
		}
		for _, name := range r.registry.Names() {
			if name == provider {
				continue
			}
			p, ok := r.registry.Lookup(name)
			if !ok {
				continue
			}
			if limit, ok := p.ModelLimit(model); ok && limit.ContextTokens > 0 {
				return Resolution{
					Tokens: limit.ContextTokens,
					Source: ResolvedFromProvider,
				}
			}
		}
	}
	return estimateLimit(model)
}

// estimateLimit is the deterministic fallback table keyed on
// substrings of the model identifier, case-insensitive.
func estimateLimit(model string) Resolution {
	lower := strings.ToLower(model)

	for _, p := range limitPatterns {
		if strings.Contains(lower, p.substr) {
			return Resolution{Tokens: p.tokens, Source: ResolvedFromPattern}
		}
	}

	for _, family := range localPatterns {
		if !strings.Contains(lower, family) {
			continue
		}
		switch {
		case strings.Contains(lower, "32k"):
			return Resolution{Tokens: 32768, Source: ResolvedFromPattern}
		case strings.Contains(lower, "16k"):
			return Resolution{Tokens: 16384, Source: ResolvedFromPattern}
		default:
			return Resolution{Tokens: 8192, Source: ResolvedFromPattern}
		}
	}

	return Resolution{Tokens: DefaultContextTokens, Source: ResolvedFromDefault}
}
