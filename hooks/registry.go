// Package hooks provides the registry that dispatches engine
// lifecycle events to registered hooks.
package hooks

import "github.com/rickchristie/recap"

// Registry manages a collection of hooks and dispatches events
// to them.
//
// Hooks can implement any combination of the hook interfaces in
// the recap package — they only receive events for the
// interfaces they implement. Hooks are called in registration
// order.
//
//	registry := hooks.NewRegistry()
//	registry.Register(&LoggingHook{})
//	registry.Register(&MetricsHook{})
//
//	controller := recap.NewController(...).WithHooks(registry)
//
// # Thread Safety
//
// Registry is NOT thread-safe for registration. Register all
// hooks before the controller starts serving requests. Fire
// methods are only called by the controller.
type Registry struct {
	hooks []any
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make([]any, 0)}
}

// Register adds a hook to the registry. The hook can implement
// any combination of the recap hook interfaces.
func (r *Registry) Register(hook any) *Registry {
	r.hooks = append(r.hooks, hook)
	return r
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	return len(r.hooks)
}

// FireThresholdCrossed dispatches a ThresholdCrossedEvent to
// all registered ThresholdCrossedHook implementations.
func (r *Registry) FireThresholdCrossed(e recap.ThresholdCrossedEvent) {
	for _, h := range r.hooks {
		if hook, ok := h.(recap.ThresholdCrossedHook); ok {
			hook.OnThresholdCrossed(e)
		}
	}
}

// FireCompactionStart dispatches a CompactionStartEvent to all
// registered CompactionStartHook implementations.
func (r *Registry) FireCompactionStart(e recap.CompactionStartEvent) {
	for _, h := range r.hooks {
		if hook, ok := h.(recap.CompactionStartHook); ok {
			hook.OnCompactionStart(e)
		}
	}
}

// FireCompactionEnd dispatches a CompactionEndEvent to all
// registered CompactionEndHook implementations.
func (r *Registry) FireCompactionEnd(e recap.CompactionEndEvent) {
	for _, h := range r.hooks {
		if hook, ok := h.(recap.CompactionEndHook); ok {
			hook.OnCompactionEnd(e)
		}
	}
}

// FireConfigUpdated dispatches a ConfigUpdatedEvent to all
// registered ConfigUpdatedHook implementations.
func (r *Registry) FireConfigUpdated(e recap.ConfigUpdatedEvent) {
	for _, h := range r.hooks {
		if hook, ok := h.(recap.ConfigUpdatedHook); ok {
			hook.OnConfigUpdated(e)
		}
	}
}

// FireFallbackResolution dispatches a FallbackResolutionEvent
// to all registered FallbackResolutionHook implementations.
func (r *Registry) FireFallbackResolution(e recap.FallbackResolutionEvent) {
	for _, h := range r.hooks {
		if hook, ok := h.(recap.FallbackResolutionHook); ok {
			hook.OnFallbackResolution(e)
		}
	}
}
