package etw

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/Microsoft/go-nativetrace/internal/shape"
	"github.com/Microsoft/go-nativetrace/pkg/event"
)

// Descriptor is the precomputed TraceLogging layout for one event shape:
// the self-describing event metadata blob (event name plus field names and
// in/out types) and the shape definitions used to validate values at encode
// time. Immutable once built; shared read-only across threads.
type Descriptor struct {
	name string
	meta []byte
	defs []shape.FieldDef
}

// NewDescriptor builds the metadata blob for s. It fails (permanently, once
// cached) if the shape cannot be represented: too many fields, nesting
// deeper than ETW allows, or names containing NUL.
func NewDescriptor(s shape.Shape) (*Descriptor, error) {
	if n := s.FieldCount(); n > maxFields {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyFields, n, maxFields)
	}
	if strings.ContainsRune(s.Name, 0) {
		return nil, fmt.Errorf("%w: event %q", ErrInvalidName, s.Name)
	}

	var buf bytes.Buffer
	buf.Write([]byte{0, 0}) // total size, filled below
	buf.WriteByte(0)        // no metadata tags
	buf.WriteString(s.Name)
	buf.WriteByte(0)

	if err := appendFieldMeta(&buf, s.Fields, 1); err != nil {
		return nil, err
	}

	meta := buf.Bytes()
	binary.LittleEndian.PutUint16(meta[:2], uint16(len(meta)))

	return &Descriptor{name: s.Name, meta: meta, defs: s.Fields}, nil
}

// Name returns the event name the descriptor was built for.
func (d *Descriptor) Name() string { return d.name }

// Metadata returns the TraceLogging event metadata blob. Callers must not
// modify it.
func (d *Descriptor) Metadata() []byte { return d.meta }

func appendFieldMeta(buf *bytes.Buffer, defs []shape.FieldDef, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("%w: depth %d", ErrTooDeep, depth)
	}
	for _, def := range defs {
		if strings.ContainsRune(def.Name, 0) {
			return fmt.Errorf("%w: field %q", ErrInvalidName, def.Name)
		}
		buf.WriteString(def.Name)
		buf.WriteByte(0)

		in, out := typesOf(def.Kind)
		if def.Kind == event.KindGroup {
			// struct field count rides in the out-type slot
			if len(def.Group) > maxFields {
				return fmt.Errorf("%w: struct %q has %d members", ErrTooManyFields, def.Name, len(def.Group))
			}
			buf.WriteByte(byte(inTypeStruct | inTypeChain))
			buf.WriteByte(byte(len(def.Group)))
			if err := appendFieldMeta(buf, def.Group, depth+1); err != nil {
				return err
			}
			continue
		}

		if out != outTypeNull {
			buf.WriteByte(byte(in | inTypeChain))
			buf.WriteByte(byte(out))
		} else {
			buf.WriteByte(byte(in))
		}
	}
	return nil
}

func typesOf(k event.Kind) (inType, outType) {
	switch k {
	case event.KindBool:
		return inTypeBool32, outTypeNull
	case event.KindInt8:
		return inTypeInt8, outTypeNull
	case event.KindInt16:
		return inTypeInt16, outTypeNull
	case event.KindInt32:
		return inTypeInt32, outTypeNull
	case event.KindInt64:
		return inTypeInt64, outTypeNull
	case event.KindUint8:
		return inTypeUint8, outTypeNull
	case event.KindUint16:
		return inTypeUint16, outTypeNull
	case event.KindUint32:
		return inTypeUint32, outTypeNull
	case event.KindUint64:
		return inTypeUint64, outTypeNull
	case event.KindFloat32:
		return inTypeFloat, outTypeNull
	case event.KindFloat64:
		return inTypeDouble, outTypeNull
	case event.KindString:
		return inTypeANSIString, outTypeUTF8
	case event.KindBytes:
		return inTypeBinary, outTypeNull
	case event.KindGroup:
		return inTypeStruct, outTypeNull
	}
	return inTypeNull, outTypeNull
}
