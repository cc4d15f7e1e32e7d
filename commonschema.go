package nativetrace

import (
	"fmt"
	"time"

	"github.com/Microsoft/go-nativetrace/pkg/event"
)

// Common Schema 4.0 rendering. Instead of flat field lists, events carry a
// version marker and PartA/PartB/PartC groups so pipeline consumers that
// speak Common Schema can ingest them without a custom manifest.

const csVersion = 0x0400 | 0x01

func csHexID(id uint64) string {
	return fmt.Sprintf("%016x", id)
}

func csTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// csPartC renders the user fields, renaming "message" to "Body" per the
// Common Schema log contract.
func csPartC(fields []event.Field) event.Field {
	fs := make([]event.Field, len(fields))
	copy(fs, fields)
	for i := range fs {
		if fs[i].Name == "message" {
			fs[i].Name = "Body"
		}
	}
	return event.Group("PartC", fs...)
}

// csSpan renders a completed span. The span's whole story, timing
// included, rides on the single stop event.
func csSpan(name string, fields []event.Field, spanID, parentID uint64, start, stop time.Time) (string, []event.Field) {
	partA := []event.Field{
		event.StringField("time", csTime(stop)),
		event.Group("ext_dt",
			event.StringField("traceId", ""),
			event.StringField("spanId", csHexID(spanID)),
		),
	}
	partB := []event.Field{
		event.StringField("_typeName", "Span"),
	}
	if parentID != 0 {
		partB = append(partB, event.StringField("parentId", csHexID(parentID)))
	}
	partB = append(partB,
		event.StringField("name", name),
		event.StringField("startTime", csTime(start)),
	)

	return name, []event.Field{
		event.Uint16Field("__csver__", csVersion),
		event.Group("PartA", partA...),
		event.Group("PartB", partB...),
		csPartC(fields),
	}
}

// csEvent renders a point-in-time event as a Common Schema Log record,
// correlated to the containing span when there is one.
func csEvent(name string, fields []event.Field, spanID uint64, at time.Time) (string, []event.Field) {
	partA := []event.Field{
		event.StringField("time", csTime(at)),
	}
	if spanID != 0 {
		partA = append(partA, event.Group("ext_dt",
			event.StringField("traceId", ""),
			event.StringField("spanId", csHexID(spanID)),
		))
	}
	partB := []event.Field{
		event.StringField("_typeName", "Log"),
		event.StringField("name", name),
		event.StringField("eventTime", csTime(at)),
	}

	return name, []event.Field{
		event.Uint16Field("__csver__", csVersion),
		event.Group("PartA", partA...),
		event.Group("PartB", partB...),
		csPartC(fields),
	}
}
