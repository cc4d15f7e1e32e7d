package nativetrace

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Microsoft/go-nativetrace/internal/activity"
	"github.com/Microsoft/go-nativetrace/pkg/event"
)

// Scope is a logical execution context: one goroutine, task, or request.
// It owns the stack of open spans that activity correlation is derived
// from. Scopes are cheap; create one per context rather than sharing.
type Scope struct {
	mu    sync.Mutex
	stack activity.Stack
}

// Span is one unit of work. Its shape (name plus field set) is fixed at
// creation; values may be updated until close. A span may be entered and
// exited on different scopes, carrying its activity identifiers with it.
type Span struct {
	spanID  uint64
	name    string
	level   event.Level
	keyword uint64

	mu      sync.Mutex
	fields  []event.Field
	rec     activity.Record
	tracked bool
	start   time.Time
	refs    int32
}

// ID returns the span's 64-bit identifier.
func (s *Span) ID() uint64 { return s.spanID }

// ActivityID returns the span's 128-bit activity ID, unset until the span
// is first entered.
func (s *Span) ActivityID() event.ActivityID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.ID
}

// Retain adds a reference so the span survives a close by another holder,
// as when instrumentation hands the same span to multiple callbacks.
func (s *Span) Retain() {
	atomic.AddInt32(&s.refs, 1)
}

func (s *Span) release() {
	atomic.AddInt32(&s.refs, -1)
}

// isClosed reports whether every reference has been released.
func (s *Span) isClosed() bool {
	return atomic.LoadInt32(&s.refs) <= 0
}

// startEvent builds the enter-time emission. Callers hold s.mu.
func (s *Span) startEvent() (string, []event.Field, event.Metadata) {
	fields := make([]event.Field, 0, len(s.fields)+1)
	fields = append(fields, event.Uint64Field("start time", uint64(s.start.Unix())))
	fields = append(fields, s.fields...)
	return s.name, fields, event.Metadata{
		Level:             s.level,
		Keyword:           s.keyword,
		Opcode:            event.OpcodeStart,
		ActivityID:        s.rec.ID,
		RelatedActivityID: s.rec.Parent,
	}
}

// stopEvent builds the exit-time emission. Callers hold s.mu.
func (s *Span) stopEvent(e *Emitter, stop time.Time) (string, []event.Field, event.Metadata) {
	md := event.Metadata{
		Level:             s.level,
		Keyword:           s.keyword,
		Opcode:            event.OpcodeStop,
		ActivityID:        s.rec.ID,
		RelatedActivityID: s.rec.Parent,
	}
	if e.cfg.commonSchema {
		name, fields := csSpan(s.name, s.fields, s.spanID, activity.SpanOf(s.rec.Parent), s.start, stop)
		return name, fields, md
	}
	fields := make([]event.Field, 0, len(s.fields)+2)
	fields = append(fields, event.Uint64Field("stop time", uint64(stop.Unix())))
	fields = append(fields, s.fields...)
	if e.cfg.spanTiming {
		fields = append(fields, event.Int64Field("duration", stop.Sub(s.start).Nanoseconds()))
	}
	return s.name, fields, md
}
