package etw

import (
	"encoding/binary"
	"fmt"

	"github.com/Microsoft/go-nativetrace/internal/shape"
	"github.com/Microsoft/go-nativetrace/pkg/event"
)

// Encode serializes field values against the descriptor's precomputed
// layout, producing the event's user-data blob. The values must come from
// the same call site that produced the descriptor's shape; any divergence
// in count, order, or kind is reported as ErrFieldMismatch and the event is
// dropped by the caller.
//
// Encoding is pure: no OS calls, no shared state.
func (d *Descriptor) Encode(fields []event.Field) ([]byte, error) {
	// rough guess: fixed-width values dominate
	buf := make([]byte, 0, 16*len(fields)+16)
	return appendValues(buf, d.defs, fields)
}

func appendValues(buf []byte, defs []shape.FieldDef, fields []event.Field) ([]byte, error) {
	if len(fields) != len(defs) {
		return nil, fmt.Errorf("%w: %d values for %d fields", ErrFieldMismatch, len(fields), len(defs))
	}
	for i, f := range fields {
		def := defs[i]
		if f.Name != def.Name || f.Value.Kind() != def.Kind {
			return nil, fmt.Errorf("%w: field %d is %s %s, descriptor has %s %s",
				ErrFieldMismatch, i, f.Name, f.Value.Kind(), def.Name, def.Kind)
		}

		v := f.Value
		switch def.Kind {
		case event.KindBool:
			// TraceLogging BOOL32 is four bytes
			buf = binary.LittleEndian.AppendUint32(buf, uint32(v.Bits()&1))
		case event.KindInt8, event.KindUint8:
			buf = append(buf, byte(v.Bits()))
		case event.KindInt16, event.KindUint16:
			buf = binary.LittleEndian.AppendUint16(buf, uint16(v.Bits()))
		case event.KindInt32, event.KindUint32, event.KindFloat32:
			buf = binary.LittleEndian.AppendUint32(buf, uint32(v.Bits()))
		case event.KindInt64, event.KindUint64, event.KindFloat64:
			buf = binary.LittleEndian.AppendUint64(buf, v.Bits())
		case event.KindString:
			// NUL-terminated; interior NULs would truncate on decode
			buf = append(buf, v.Str()...)
			buf = append(buf, 0)
		case event.KindBytes:
			b := v.Bytes()
			if len(b) > 0xffff {
				return nil, fmt.Errorf("%w: binary field %s is %d bytes", ErrFieldMismatch, f.Name, len(b))
			}
			buf = binary.LittleEndian.AppendUint16(buf, uint16(len(b)))
			buf = append(buf, b...)
		case event.KindGroup:
			var err error
			if buf, err = appendValues(buf, def.Group, v.Group()); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: field %s has invalid kind", ErrFieldMismatch, f.Name)
		}
	}
	return buf, nil
}
