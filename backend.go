package nativetrace

import (
	"github.com/Microsoft/go-nativetrace/internal/shape"
	"github.com/Microsoft/go-nativetrace/pkg/event"
)

// backend is the per-OS encode/emit capability contract. Both concrete
// variants (ETW, EventHeader) are selected at build time; the noop variant
// stands in everywhere else and whenever the OS subsystem is unavailable.
type backend interface {
	// BuildDescriptor precomputes the backend-native layout for a shape.
	// Called at most once per shape through the schema cache; a returned
	// error is cached as a permanent failure for that shape.
	BuildDescriptor(s shape.Shape) (any, error)
	// Enabled is the cheap pre-encode check, reflecting OS-side listener
	// changes without re-registration.
	Enabled(level event.Level, keyword uint64) bool
	// Emit serializes the values against the descriptor and writes the
	// event. It never blocks on anything but the OS write primitive.
	Emit(desc any, fields []event.Field, md event.Metadata) error
	Close() error
}

// noopBackend is the always-disabled backend: used on OSes without a native
// tracing subsystem and as the fallback when registration fails.
type noopBackend struct{}

func (noopBackend) BuildDescriptor(s shape.Shape) (any, error) { return nil, nil }

func (noopBackend) Enabled(event.Level, uint64) bool { return false }

func (noopBackend) Emit(any, []event.Field, event.Metadata) error { return nil }

func (noopBackend) Close() error { return nil }
