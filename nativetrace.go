// Package nativetrace bridges structured instrumentation - nested spans and
// point-in-time events carrying typed fields - to the OS-native tracing
// backends: ETW on Windows and user_events (EventHeader encoding) on Linux.
//
// An [Emitter] is the single entry point: the instrumentation framework
// invokes its lifecycle callbacks (SpanCreate, SpanEnter, SpanExit,
// SpanClose, EventRecord), and the emitter derives a stable binary schema
// per event shape exactly once, correlates nested spans with 128-bit
// activity IDs, serializes fields into the backend's binary type system,
// and hands the payload to the registered provider session.
//
// Emission is fire-and-forget: when no listener is attached, or the OS
// lacks backend support, every call is a cheap no-op and the process
// behaves identically.
package nativetrace

import "errors"

var (
	// ErrEmitterClosed is returned by calls on a closed [Emitter].
	ErrEmitterClosed = errors.New("nativetrace: emitter closed")
	// ErrSpanClosed is returned for lifecycle calls on a closed span.
	ErrSpanClosed = errors.New("nativetrace: span closed")
	// ErrShapeRejected wraps descriptor-construction failures: a field set
	// the backend cannot represent. The failure is cached per shape and
	// never affects other shapes.
	ErrShapeRejected = errors.New("nativetrace: event shape rejected by backend")
	// ErrUntrackedSpan reports an exit for a span the scope never entered,
	// eg a cross-thread handoff the caller did not carry the span through.
	// The event is still emitted with the record the span itself carries.
	ErrUntrackedSpan = errors.New("nativetrace: span exit without matching enter")
	// ErrOutOfOrderExit reports an exit that was not the innermost open
	// span; the scope recovered by discarding the entries above it.
	ErrOutOfOrderExit = errors.New("nativetrace: out-of-order span exit")
	// ErrEmptyProviderGroupGUID is returned when a zero GUID is supplied
	// as a provider group.
	ErrEmptyProviderGroupGUID = errors.New("nativetrace: provider group GUID must not be zeros")
	// ErrUnknownField is returned by SpanUpdate for a field name the span
	// was not created with. Shapes are fixed at creation.
	ErrUnknownField = errors.New("nativetrace: field not present in span shape")
)
