package eventheader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Microsoft/go-nativetrace/internal/shape"
	"github.com/Microsoft/go-nativetrace/pkg/event"
)

// Descriptor is the precomputed EventHeader metadata block for one shape:
// the NUL-terminated event name followed by each field's name, encoding,
// and format. Immutable once built; shared read-only across threads.
type Descriptor struct {
	name string
	meta []byte
	defs []shape.FieldDef
}

// NewDescriptor builds the metadata block for s. Failure is permanent for
// the shape and cached by the schema cache.
func NewDescriptor(s shape.Shape) (*Descriptor, error) {
	if n := s.FieldCount(); n > maxFields {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyFields, n, maxFields)
	}
	if strings.ContainsRune(s.Name, 0) {
		return nil, fmt.Errorf("%w: event %q", ErrInvalidName, s.Name)
	}

	var buf bytes.Buffer
	buf.WriteString(s.Name)
	buf.WriteByte(0)
	if err := appendFieldMeta(&buf, s.Fields, 1); err != nil {
		return nil, err
	}
	if buf.Len() > 0xffff {
		return nil, fmt.Errorf("%w: metadata block exceeds 64KiB", ErrTooManyFields)
	}

	return &Descriptor{name: s.Name, meta: buf.Bytes(), defs: s.Fields}, nil
}

// Name returns the event name the descriptor was built for.
func (d *Descriptor) Name() string { return d.name }

// Metadata returns the metadata extension content. Callers must not modify
// it.
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

		if def.Kind == event.KindGroup {
			if len(def.Group) > maxFields {
				return fmt.Errorf("%w: struct %q has %d members", ErrTooManyFields, def.Name, len(def.Group))
			}
			// struct member count rides in the format slot
			buf.WriteByte(byte(encStruct | encChain))
			buf.WriteByte(byte(len(def.Group)))
			if err := appendFieldMeta(buf, def.Group, depth+1); err != nil {
				return err
			}
			continue
		}

		enc, fm := typesOf(def.Kind)
		if fm != fmtDefault {
			buf.WriteByte(byte(enc | encChain))
			buf.WriteByte(byte(fm))
		} else {
			buf.WriteByte(byte(enc))
		}
	}
	return nil
}

func typesOf(k event.Kind) (encoding, format) {
	switch k {
	case event.KindBool:
		return encValue8, fmtBoolean
	case event.KindInt8:
		return encValue8, fmtSignedInt
	case event.KindUint8:
		return encValue8, fmtDefault
	case event.KindInt16:
		return encValue16, fmtSignedInt
	case event.KindUint16:
		return encValue16, fmtDefault
	case event.KindInt32:
		return encValue32, fmtSignedInt
	case event.KindUint32:
		return encValue32, fmtDefault
	case event.KindInt64:
		return encValue64, fmtSignedInt
	case event.KindUint64:
		return encValue64, fmtDefault
	case event.KindFloat32:
		return encValue32, fmtFloat
	case event.KindFloat64:
		return encValue64, fmtFloat
	case event.KindString:
		return encStringLength16Char8, fmtStringUTF
	case event.KindBytes:
		return encBinaryLength16Char8, fmtHexBytes
	}
	return encInvalid, fmtDefault
}
