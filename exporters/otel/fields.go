package otel

// names based on OTel specification and OTLP convention
// https://opentelemetry.io/docs/reference/specification/common/mapping-to-non-otlp/

const (
	fieldTraceID  = "trace_id"
	fieldSpanKind = "kind"

	fieldStatusCode    = "otel.status_code"
	fieldStatusMessage = "otel.status_description"

	fieldDroppedAttributes = "otel.dropped_attributes_count"
	fieldDroppedEvents     = "otel.dropped_events_count"
	fieldDroppedLinks      = "otel.dropped_links_count"
)
