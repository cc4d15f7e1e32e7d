// Package otel exports OpenTelemetry spans to the OS-native tracing
// backends through a [nativetrace.Emitter].
package otel

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/instrumentation"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/Microsoft/go-nativetrace"
	"github.com/Microsoft/go-nativetrace/pkg/event"
)

// not thread-safe
// SpanProcessors (eg, BatchSpanProcessor) should handle synchronization
type exporter struct {
	emitter *nativetrace.Emitter

	closeEmitter bool // if the emitter is owned by the exporter

	level      event.Level
	errorLevel event.Level
	keyword    uint64

	// cache scopes and resources since they should not change
	scopes map[instrumentation.Scope]*event.Field
	rscs   map[attribute.Distinct]*event.Field
}

var _ tracesdk.SpanExporter = (*exporter)(nil)

// New returns a [tracesdk.SpanExporter] that exports through a
// [nativetrace.Emitter].
//
// Span events and links are ignored.
func New(opts ...Option) (tracesdk.SpanExporter, error) {
	e := &exporter{
		level:      event.LevelInfo,
		errorLevel: event.LevelError,
		scopes:     make(map[instrumentation.Scope]*event.Field),
		rscs:       make(map[attribute.Distinct]*event.Field),
	}

	for _, o := range opts {
		if err := o(e); err != nil {
			return nil, err
		}
	}

	if e.emitter == nil {
		return nil, ErrNoEmitter
	}

	if e.level < e.errorLevel {
		return nil, fmt.Errorf("%w: error level (%d) is higher than normal level (%d)",
			ErrLevelMismatch, e.errorLevel, e.level)
	}

	return e, nil
}

func (e *exporter) ExportSpans(ctx context.Context, spans []tracesdk.ReadOnlySpan) error {
	if e.emitter == nil {
		return ErrNoEmitter
	}

	var errs []error
	for _, span := range spans {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := span.Name()
		sc := span.SpanContext()
		if !sc.IsValid() {
			errs = append(errs, fmt.Errorf("invalid span context: %s", name))
			continue
		}

		spanID := sc.SpanID()
		traceID := sc.TraceID()
		pSpanID := span.Parent().SpanID()
		status := span.Status()
		isErrSpan := status.Code == codes.Error

		attributes := span.Attributes()

		lvl := e.level
		if isErrSpan {
			lvl = e.errorLevel
		}

		fields := make([]event.Field, 0, len(attributes)+12)
		fields = append(fields,
			event.StringField(fieldTraceID, traceID.String()),
			// coerce unspecified kinds to internal
			event.StringField(fieldSpanKind, trace.ValidateSpanKind(span.SpanKind()).String()),
		)

		if n := span.DroppedAttributes(); n > 0 {
			fields = append(fields, event.SmartField(fieldDroppedAttributes, n))
		}
		if n := span.DroppedEvents(); n > 0 {
			fields = append(fields, event.SmartField(fieldDroppedEvents, n))
		}
		if n := span.DroppedLinks(); n > 0 {
			fields = append(fields, event.SmartField(fieldDroppedLinks, n))
		}

		// codes.Unset is the default and indicates that the operation was
		// not validated
		if status.Code != codes.Unset {
			fields = append(fields, event.StringField(fieldStatusCode, status.Code.String()))
			if isErrSpan && status.Description != "" {
				fields = append(fields, event.StringField(fieldStatusMessage, status.Description))
			}
		}

		for _, f := range []*event.Field{e.instrumentationScope(span), e.resource(span)} {
			if f != nil {
				fields = append(fields, *f)
			}
		}

		// add attributes after span data, since the first definition wins
		// on a name conflict
		fields = append(fields, attributesToFields(attributes)...)

		err := e.emitter.SpanRecord(name, lvl, e.keyword, fields,
			spanIDToUint64(spanID), spanIDToUint64(pSpanID),
			span.StartTime(), span.EndTime())
		if err != nil {
			errs = append(errs, fmt.Errorf("exporting span %s (%s-%s): %w",
				name, traceID.String(), spanID.String(), err))
		}
	}

	switch n := len(errs); n {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
	}
	ss := make([]string, 0, len(errs))
	for _, err := range errs {
		ss = append(ss, err.Error())
	}
	return fmt.Errorf("multiple export errors: %s", strings.Join(ss, "; "))
}

func (e *exporter) Shutdown(ctx context.Context) (err error) {
	if e.emitter == nil {
		return nil
	}

	if e.closeEmitter {
		err = e.emitter.Close()
	}
	e.emitter = nil

	if err != nil {
		return err
	}
	return ctx.Err()
}

func (e *exporter) instrumentationScope(s tracesdk.ReadOnlySpan) *event.Field {
	is := s.InstrumentationScope()
	if f, ok := e.scopes[is]; ok {
		return f
	}

	fields := make([]event.Field, 0, 2)
	if is.Name != "" {
		fields = append(fields, event.StringField("name", is.Name))
	}
	if is.Version != "" {
		fields = append(fields, event.StringField("version", is.Version))
	}

	var f *event.Field
	if len(fields) > 0 {
		g := event.Group("otel.scope", fields...)
		f = &g
	}

	e.scopes[is] = f
	return f
}

func (e *exporter) resource(s tracesdk.ReadOnlySpan) *event.Field {
	rsc := s.Resource()
	k := rsc.Equivalent()
	if f, ok := e.rscs[k]; ok {
		return f
	}

	var f *event.Field
	if fs := attributesToFields(rsc.Attributes()); len(fs) > 0 {
		g := event.Group("otel.resource", fs...)
		f = &g
	}
	e.rscs[k] = f
	return f
}

func attributesToFields(attrs []attribute.KeyValue) []event.Field {
	fields := make([]event.Field, 0, len(attrs))
	for _, attr := range attrs {
		// AsInterface() converts to OTel's supported value types, and
		// event.SmartField does its own type-matching from there.
		fields = append(fields, event.SmartField(string(attr.Key), attr.Value.AsInterface()))
	}
	return fields
}

// spanIDToUint64 packs the 8 span ID bytes into the 64-bit identifier the
// emitter correlates activities with. An invalid span ID maps to zero, ie
// no parent.
func spanIDToUint64(id trace.SpanID) uint64 {
	if !id.IsValid() {
		return 0
	}
	return binary.BigEndian.Uint64(id[:])
}
