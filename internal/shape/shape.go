// Package shape derives the structural identity of an event (name plus
// ordered field name/type signature) and caches per-shape encoder
// descriptors so each distinct shape is built exactly once.
package shape

import (
	"hash/fnv"
	"strings"

	"github.com/Microsoft/go-nativetrace/pkg/event"
)

// FieldDef is one field of a shape: its name, type tag, and, for group
// fields, the nested definitions.
type FieldDef struct {
	Name  string
	Kind  event.Kind
	Group []FieldDef
}

// Shape is the structural identity of an event. Two shapes constructed
// independently from identical names and field lists compare (and cache)
// as the same shape.
type Shape struct {
	Name   string
	Fields []FieldDef
}

// New derives the shape of an event from its name and field values.
func New(name string, fields []event.Field) Shape {
	return Shape{Name: name, Fields: defsOf(fields)}
}

func defsOf(fields []event.Field) []FieldDef {
	if len(fields) == 0 {
		return nil
	}
	defs := make([]FieldDef, len(fields))
	for i, f := range fields {
		defs[i] = FieldDef{Name: f.Name, Kind: f.Value.Kind()}
		if f.Value.Kind() == event.KindGroup {
			defs[i].Group = defsOf(f.Value.Group())
		}
	}
	return defs
}

// Key returns a stable structural signature usable as a map key.
// Field names cannot contain the separator bytes used here since the
// backends reject non-printable field names before encoding.
func (s Shape) Key() string {
	var b strings.Builder
	b.Grow(len(s.Name) + 8*len(s.Fields))
	b.WriteString(s.Name)
	appendDefs(&b, s.Fields)
	return b.String()
}

func appendDefs(b *strings.Builder, defs []FieldDef) {
	for _, d := range defs {
		b.WriteByte(0x1f)
		b.WriteString(d.Name)
		b.WriteByte(byte(d.Kind))
		if d.Kind == event.KindGroup {
			b.WriteByte(0x02)
			appendDefs(b, d.Group)
			b.WriteByte(0x03)
		}
	}
}

// Hash returns the FNV-1a hash of the structural key.
func (s Shape) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s.Key()))
	return h.Sum64()
}

// FieldCount returns the total number of fields, counting group members and
// the groups themselves. Backends bound this when building descriptors.
func (s Shape) FieldCount() int {
	return countDefs(s.Fields)
}

func countDefs(defs []FieldDef) int {
	n := len(defs)
	for _, d := range defs {
		if d.Kind == event.KindGroup {
			n += countDefs(d.Group)
		}
	}
	return n
}
