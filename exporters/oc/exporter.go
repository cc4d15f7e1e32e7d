// Package oc exports OpenCensus spans to the OS-native tracing backends
// through a [nativetrace.Emitter].
package oc

import (
	"encoding/binary"
	"sort"

	"go.opencensus.io/trace"

	"github.com/Microsoft/go-nativetrace"
	"github.com/Microsoft/go-nativetrace/pkg/event"
)

// Exporter is an OpenCensus [trace.Exporter] that emits completed spans
// through a [nativetrace.Emitter]. OpenCensus delivers spans after they
// end, so each export is a single stop-opcode event with the span's
// attributes and timing.
type Exporter struct {
	Emitter *nativetrace.Emitter

	// Level is the severity nominal spans are emitted at;
	// ErrorLevel is used when the span status code is non-zero.
	Level      event.Level
	ErrorLevel event.Level

	// Keyword tags every exported span; zero uses the emitter's default.
	Keyword uint64
}

var _ = (trace.Exporter)(&Exporter{})

// New returns an exporter with the conventional Info/Error level split.
func New(em *nativetrace.Emitter) *Exporter {
	return &Exporter{
		Emitter:    em,
		Level:      event.LevelInfo,
		ErrorLevel: event.LevelError,
	}
}

// ExportSpan emits s. Annotations are not supported; attributes, the span
// kind, and the identifiers travel as fields, and errors are reported
// through the emitter's error handler rather than returned.
func (e *Exporter) ExportSpan(s *trace.SpanData) {
	lvl := e.Level
	if s.Status.Code != 0 {
		lvl = e.ErrorLevel
	}

	fields := make([]event.Field, 0, len(s.Attributes)+5)
	fields = append(fields, event.StringField("trace_id", s.TraceID.String()))
	if sk := spanKindToString(s.SpanKind); sk != "" {
		fields = append(fields, event.StringField("kind", sk))
	}
	if s.Status.Code != 0 {
		fields = append(fields,
			event.SmartField("oc.status_code", s.Status.Code),
			event.StringField("oc.status_description", s.Status.Message),
		)
	}
	if n := s.DroppedAttributeCount; n > 0 {
		fields = append(fields, event.SmartField("oc.dropped_attributes_count", n))
	}
	// sorted so the same attribute set always yields the same shape
	keys := make([]string, 0, len(s.Attributes))
	for k := range s.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, event.SmartField(k, s.Attributes[k]))
	}

	// error delivery is via the emitter's handler; the OpenCensus
	// exporter interface has nowhere to return one
	_ = e.Emitter.SpanRecord(s.Name, lvl, e.Keyword, fields,
		spanIDToUint64(s.SpanID), spanIDToUint64(s.ParentSpanID),
		s.StartTime, s.EndTime)
}

func spanKindToString(sk int) string {
	switch sk {
	case trace.SpanKindClient:
		return "client"
	case trace.SpanKindServer:
		return "server"
	default:
		return ""
	}
}

func spanIDToUint64(id trace.SpanID) uint64 {
	return binary.BigEndian.Uint64(id[:])
}
