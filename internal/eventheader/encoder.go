package eventheader

import (
	"encoding/binary"
	"fmt"

	"github.com/Microsoft/go-nativetrace/internal/shape"
	"github.com/Microsoft/go-nativetrace/pkg/event"
)

// Encode serializes field values against the descriptor's layout into the
// event's data block. Count, order, and kinds must match the descriptor
// exactly; divergence means the caller broke the shape contract and the
// event is dropped.
func (d *Descriptor) Encode(fields []event.Field) ([]byte, error) {
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
		case event.KindBool, event.KindInt8, event.KindUint8:
			buf = append(buf, byte(v.Bits()))
		case event.KindInt16, event.KindUint16:
			buf = binary.LittleEndian.AppendUint16(buf, uint16(v.Bits()))
		case event.KindInt32, event.KindUint32, event.KindFloat32:
			buf = binary.LittleEndian.AppendUint32(buf, uint32(v.Bits()))
		case event.KindInt64, event.KindUint64, event.KindFloat64:
			buf = binary.LittleEndian.AppendUint64(buf, v.Bits())
		case event.KindString:
			s := v.Str()
			if len(s) > 0xffff {
				return nil, fmt.Errorf("%w: string field %s is %d bytes", ErrFieldMismatch, f.Name, len(s))
			}
			buf = binary.LittleEndian.AppendUint16(buf, uint16(len(s)))
			buf = append(buf, s...)
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

// AppendEvent assembles the full EventHeader blob (everything after the
// kernel write index): header, activity-ID extension when set, metadata
// extension, then field data. Pure function so round-trip tests run on any
// OS.
func AppendEvent(buf []byte, d *Descriptor, data []byte, md event.Metadata) []byte {
	// eventheader: flags, version, id, tag, opcode, level
	buf = append(buf, flagPointer64|flagLittleEndian|flagExtension, 0)
	buf = binary.LittleEndian.AppendUint16(buf, 0) // id: unassigned, name in metadata
	buf = binary.LittleEndian.AppendUint16(buf, 0) // tag
	buf = append(buf, byte(md.Opcode), byte(md.Level))

	if md.ActivityID.IsSet() {
		n := 16
		if md.RelatedActivityID.IsSet() {
			n = 32
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(n))
		buf = binary.LittleEndian.AppendUint16(buf, extKindActivityID|extKindChain)
		buf = append(buf, md.ActivityID[:]...)
		if n == 32 {
			buf = append(buf, md.RelatedActivityID[:]...)
		}
	}

	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(d.meta)))
	buf = binary.LittleEndian.AppendUint16(buf, extKindMetadata) // last extension, no chain
	buf = append(buf, d.meta...)

	return append(buf, data...)
}
