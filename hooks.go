package recap

// Hook interfaces. A hook implements any subset of these; the
// hooks.Registry type-asserts each registered hook and only
// delivers the events it handles.
//
// All hooks are informational: they cannot veto or modify the
// engine's behavior, and they run synchronously on the request
// path, so implementations should return quickly.

// ThresholdCrossedHook receives ThresholdCrossedEvent.
type ThresholdCrossedHook interface {
	OnThresholdCrossed(e ThresholdCrossedEvent)
}

// CompactionStartHook receives CompactionStartEvent.
type CompactionStartHook interface {
	OnCompactionStart(e CompactionStartEvent)
}

// CompactionEndHook receives CompactionEndEvent for every
// finished attempt — success, failure, and skip alike.
type CompactionEndHook interface {
	OnCompactionEnd(e CompactionEndEvent)
}

// ConfigUpdatedHook receives ConfigUpdatedEvent.
type ConfigUpdatedHook interface {
	OnConfigUpdated(e ConfigUpdatedEvent)
}

// FallbackResolutionHook receives FallbackResolutionEvent.
// Typical use is logging degraded limit accuracy at reduced
// severity.
type FallbackResolutionHook interface {
	OnFallbackResolution(e FallbackResolutionEvent)
}
