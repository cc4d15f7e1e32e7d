package nativetrace

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Microsoft/go-nativetrace/internal/activity"
	"github.com/Microsoft/go-nativetrace/internal/shape"
	"github.com/Microsoft/go-nativetrace/pkg/event"
)

// Emitter is the dispatch engine: the single entry point the
// instrumentation framework drives through lifecycle callbacks. It owns the
// provider session, the schema cache, and the emission pipeline
//
//	enabled check -> schema lookup/build -> activity resolution -> encode -> emit
//
// All methods are safe for concurrent use and never block beyond the OS
// write primitive; nothing here can terminate the host process.
type Emitter struct {
	cfg     config
	backend backend
	shapes  shape.Cache[any]
	closed  atomic.Bool
}

// New opens a provider session for the named provider and returns the
// emitter. Registration is the only blocking OS interaction; when the
// backend is unavailable (no ETW, kernel without user_events) the emitter
// still works, with every emit a cheap no-op.
func New(name string, opts ...Option) (*Emitter, error) {
	cfg := defaultConfig(name)
	for _, o := range opts {
		if err := o(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.errHandler == nil {
		cfg.errHandler = func(err error) {
			logrus.WithError(err).WithField("provider", name).Warn("dropped trace event")
		}
	}

	b := cfg.backend
	if b == nil {
		var err error
		if b, err = newBackend(&cfg); err != nil {
			return nil, err
		}
	}

	return &Emitter{cfg: cfg, backend: b}, nil
}

// Close releases the provider session. Lifecycle calls after Close fail
// with ErrEmitterClosed.
func (e *Emitter) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	return e.backend.Close()
}

// Enabled reports whether any listener would receive an event at the level
// and keywords. Call sites can use it to skip building field values
// entirely.
func (e *Emitter) Enabled(level event.Level, keyword uint64) bool {
	if e.closed.Load() {
		return false
	}
	if keyword == 0 {
		keyword = e.cfg.defaultKeyword
	}
	return e.passesFilter(level, keyword) && e.backend.Enabled(level, keyword)
}

// NewScope starts an empty logical execution context. One scope per thread
// or task; the scope's span stack is owned by that context and reclaimed
// with it.
func (e *Emitter) NewScope() *Scope {
	return &Scope{}
}

var spanIDs atomic.Uint64

// SpanCreate captures the span's name, severity, and field values, and
// assigns its 64-bit span ID. Nothing is emitted until the span is
// entered. The field list fixes the span's shape; SpanUpdate may replace
// values but not add fields.
func (e *Emitter) SpanCreate(name string, level event.Level, keyword uint64, fields []event.Field) (*Span, error) {
	if e.closed.Load() {
		return nil, ErrEmitterClosed
	}
	fs := make([]event.Field, len(fields))
	copy(fs, fields)
	return &Span{
		spanID:  spanIDs.Add(1),
		name:    name,
		level:   level,
		keyword: keyword,
		fields:  fs,
		refs:    1,
	}, nil
}

// SpanEnter pushes the span onto the scope's stack and emits the start
// event. A span that already carries an activity record (re-entrant enter,
// or one handed off from another scope) keeps its identifiers; otherwise a
// fresh activity ID is generated with the scope's current span as parent.
func (e *Emitter) SpanEnter(sc *Scope, s *Span) error {
	if e.closed.Load() {
		return ErrEmitterClosed
	}
	s.mu.Lock()
	if s.isClosed() {
		s.mu.Unlock()
		return ErrSpanClosed
	}
	var pre *activity.Record
	if s.tracked {
		pre = &s.rec
	}
	sc.mu.Lock()
	s.rec = sc.stack.Enter(s.spanID, pre)
	sc.mu.Unlock()
	s.tracked = true
	s.start = time.Now()
	if e.cfg.commonSchema {
		// Common Schema consumers only use the stop event; the span's
		// data is complete there.
		s.mu.Unlock()
		return nil
	}
	name, fields, md := s.startEvent()
	s.mu.Unlock()
	return e.emit(name, fields, md)
}

// SpanExit pops the span from the scope's stack and emits the stop event.
// An out-of-order exit recovers by popping to the matching entry; an exit
// the scope never saw still emits, using the record the span carries, and
// the anomaly is reported. Sibling scopes are never affected.
func (e *Emitter) SpanExit(sc *Scope, s *Span) error {
	if e.closed.Load() {
		return ErrEmitterClosed
	}
	stop := time.Now()

	sc.mu.Lock()
	_, res := sc.stack.Exit(s.spanID)
	sc.mu.Unlock()

	switch res {
	case activity.ExitRecovered:
		e.report(fmt.Errorf("%w: span %q (%d)", ErrOutOfOrderExit, s.name, s.spanID))
	case activity.ExitUntracked:
		e.report(fmt.Errorf("%w: span %q (%d)", ErrUntrackedSpan, s.name, s.spanID))
	}

	s.mu.Lock()
	name, fields, md := s.stopEvent(e, stop)
	s.mu.Unlock()
	return e.emit(name, fields, md)
}

// SpanClose releases one reference to the span; the last release retires
// it. Closing does not emit.
func (e *Emitter) SpanClose(s *Span) {
	s.release()
}

// SpanUpdate replaces the values of fields the span was created with.
// Field names not present in the span's shape are rejected; shapes are
// fixed at creation.
func (e *Emitter) SpanUpdate(s *Span, fields []event.Field) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed() {
		return ErrSpanClosed
	}
	for _, f := range fields {
		found := false
		for i := range s.fields {
			if s.fields[i].Name == f.Name {
				s.fields[i].Value = f.Value
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %q", ErrUnknownField, f.Name)
		}
	}
	return nil
}

// EventRecord emits a point-in-time event. The scope's innermost open span
// provides the activity correlation; the stack is not mutated.
func (e *Emitter) EventRecord(sc *Scope, name string, level event.Level, keyword uint64, fields []event.Field) error {
	if e.closed.Load() {
		return ErrEmitterClosed
	}
	now := time.Now()

	md := event.Metadata{Level: level, Keyword: keyword, Opcode: event.OpcodeInfo}
	var spanID uint64
	sc.mu.Lock()
	if cur, ok := sc.stack.Current(); ok {
		md.ActivityID = cur.ID
		md.RelatedActivityID = cur.Parent
		spanID = cur.SpanID
	}
	sc.mu.Unlock()

	if e.cfg.commonSchema {
		name, fields = csEvent(name, fields, spanID, now)
	} else {
		fields = append([]event.Field{event.Uint64Field("time", uint64(now.Unix()))}, fields...)
	}
	return e.emit(name, fields, md)
}

// SpanRecord emits an already-completed span, as produced by span-exporter
// pipelines that only see finished spans. Activity correlation is derived
// from the supplied 64-bit span and parent IDs; timing fields come from
// the given interval.
func (e *Emitter) SpanRecord(name string, level event.Level, keyword uint64, fields []event.Field,
	spanID, parentID uint64, start, stop time.Time) error {
	if e.closed.Load() {
		return ErrEmitterClosed
	}
	md := event.Metadata{
		Level:             level,
		Keyword:           keyword,
		Opcode:            event.OpcodeStop,
		ActivityID:        activity.IDForSpan(spanID),
		RelatedActivityID: activity.IDForSpan(parentID),
	}

	if e.cfg.commonSchema {
		name, fields = csSpan(name, fields, spanID, parentID, start, stop)
		return e.emit(name, fields, md)
	}

	fs := make([]event.Field, 0, len(fields)+3)
	fs = append(fs,
		event.Uint64Field("start time", uint64(start.Unix())),
		event.Uint64Field("stop time", uint64(stop.Unix())),
	)
	fs = append(fs, fields...)
	if e.cfg.spanTiming {
		fs = append(fs, event.Int64Field("duration", stop.Sub(start).Nanoseconds()))
	}
	return e.emit(name, fs, md)
}

func (e *Emitter) passesFilter(level event.Level, keyword uint64) bool {
	if level > e.cfg.levelFilter {
		return false
	}
	return e.cfg.keywordFilter == 0 || keyword&e.cfg.keywordFilter != 0
}

// emit runs the common tail of the pipeline. The enabled check comes
// before the schema lookup so disabled events cost two atomic loads and no
// allocation.
func (e *Emitter) emit(name string, fields []event.Field, md event.Metadata) error {
	if md.Keyword == 0 {
		md.Keyword = e.cfg.defaultKeyword
	}
	if !e.passesFilter(md.Level, md.Keyword) {
		return nil
	}
	if !e.backend.Enabled(md.Level, md.Keyword) {
		return nil
	}

	desc, err := e.shapes.GetOrBuild(shape.New(name, fields), e.backend.BuildDescriptor)
	if err != nil {
		err = fmt.Errorf("%w: event %q: %v", ErrShapeRejected, name, err)
		e.report(err)
		return err
	}

	if err := e.backend.Emit(desc, fields, md); err != nil {
		err = fmt.Errorf("nativetrace: emitting %q: %w", name, err)
		e.report(err)
		return err
	}
	return nil
}

func (e *Emitter) report(err error) {
	if h := e.cfg.errHandler; h != nil {
		h(err)
	}
}
