package etw

import (
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Microsoft/go-nativetrace/internal/shape"
	"github.com/Microsoft/go-nativetrace/pkg/event"
)

// metaField is one decoded field entry from a TraceLogging metadata blob.
type metaField struct {
	Name    string
	In      byte
	Out     byte
	HasOut  bool
	Members int // struct member count, when In is the struct type
}

// decodeMeta picks apart a TraceLogging event metadata blob the way a
// decoder does: total size, tags byte, NUL-terminated event name, then
// field entries.
func decodeMeta(t *testing.T, meta []byte) (string, []metaField) {
	t.Helper()
	if len(meta) < 4 {
		t.Fatalf("metadata too short: % x", meta)
	}
	if sz := binary.LittleEndian.Uint16(meta[:2]); int(sz) != len(meta) {
		t.Fatalf("metadata size field %d, actual %d", sz, len(meta))
	}
	if meta[2] != 0 {
		t.Fatalf("unexpected metadata tags byte %#x", meta[2])
	}

	p := 3
	readName := func() string {
		start := p
		for p < len(meta) && meta[p] != 0 {
			p++
		}
		if p == len(meta) {
			t.Fatal("unterminated name in metadata")
		}
		s := string(meta[start:p])
		p++
		return s
	}

	eventName := readName()
	var fields []metaField
	for p < len(meta) {
		f := metaField{Name: readName()}
		in := meta[p]
		p++
		f.In = in &^ byte(inTypeChain)
		if in&byte(inTypeChain) != 0 {
			f.HasOut = true
			f.Out = meta[p]
			if f.In == byte(inTypeStruct) {
				f.Members = int(meta[p])
			}
			p++
		}
		fields = append(fields, f)
	}
	return eventName, fields
}

func TestDescriptorMetadata(t *testing.T) {
	s := shape.New("HttpRequest", []event.Field{
		event.StringField("url", "http://localhost"),
		event.Uint16Field("status", 200),
		event.BoolField("cached", false),
		event.BytesField("body", nil),
		event.Group("peer",
			event.StringField("host", "localhost"),
			event.Uint16Field("port", 443),
		),
	})
	d, err := NewDescriptor(s)
	if err != nil {
		t.Fatalf("NewDescriptor() failed: %v", err)
	}

	name, fields := decodeMeta(t, d.Metadata())
	if name != "HttpRequest" {
		t.Errorf("event name = %q", name)
	}

	want := []metaField{
		{Name: "url", In: byte(inTypeANSIString), Out: byte(outTypeUTF8), HasOut: true},
		{Name: "status", In: byte(inTypeUint16)},
		{Name: "cached", In: byte(inTypeBool32)},
		{Name: "body", In: byte(inTypeBinary)},
		{Name: "peer", In: byte(inTypeStruct), Out: 2, HasOut: true, Members: 2},
		{Name: "host", In: byte(inTypeANSIString), Out: byte(outTypeUTF8), HasOut: true},
		{Name: "port", In: byte(inTypeUint16)},
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Errorf("field metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestDescriptorRejects(t *testing.T) {
	t.Run("too many fields", func(t *testing.T) {
		fields := make([]event.Field, maxFields+1)
		for i := range fields {
			fields[i] = event.Int32Field(fmt.Sprintf("f%d", i), int32(i))
		}
		if _, err := NewDescriptor(shape.New("E", fields)); !errors.Is(err, ErrTooManyFields) {
			t.Errorf("error = %v, wanted ErrTooManyFields", err)
		}
	})

	t.Run("too deep", func(t *testing.T) {
		f := event.Int32Field("leaf", 0)
		for i := 0; i <= maxDepth; i++ {
			f = event.Group(fmt.Sprintf("g%d", i), f)
		}
		if _, err := NewDescriptor(shape.New("E", []event.Field{f})); !errors.Is(err, ErrTooDeep) {
			t.Errorf("error = %v, wanted ErrTooDeep", err)
		}
	})

	t.Run("NUL in name", func(t *testing.T) {
		if _, err := NewDescriptor(shape.New("bad\x00name", nil)); !errors.Is(err, ErrInvalidName) {
			t.Errorf("event name error = %v, wanted ErrInvalidName", err)
		}
		s := shape.New("E", []event.Field{event.Int32Field("bad\x00field", 0)})
		if _, err := NewDescriptor(s); !errors.Is(err, ErrInvalidName) {
			t.Errorf("field name error = %v, wanted ErrInvalidName", err)
		}
	})

	t.Run("max depth accepted", func(t *testing.T) {
		f := event.Int32Field("leaf", 0)
		for i := 0; i < maxDepth-1; i++ {
			f = event.Group(fmt.Sprintf("g%d", i), f)
		}
		if _, err := NewDescriptor(shape.New("E", []event.Field{f})); err != nil {
			t.Errorf("NewDescriptor() at the depth limit failed: %v", err)
		}
	})
}
