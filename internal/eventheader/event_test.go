package eventheader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Microsoft/go-nativetrace/internal/activity"
	"github.com/Microsoft/go-nativetrace/internal/shape"
	"github.com/Microsoft/go-nativetrace/pkg/event"
)

type metaField struct {
	Name    string
	Enc     byte
	Fmt     byte
	HasFmt  bool
	Members int
}

// decodeMeta walks a metadata extension body: NUL-terminated event name,
// then per-field name, encoding, and optional format byte.
func decodeMeta(t *testing.T, meta []byte) (string, []metaField) {
	t.Helper()
	p := 0
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
		enc := meta[p]
		p++
		f.Enc = enc &^ byte(encChain)
		if enc&byte(encChain) != 0 {
			f.HasFmt = true
			f.Fmt = meta[p]
			if f.Enc == byte(encStruct) {
				f.Members = int(meta[p])
			}
			p++
		}
		fields = append(fields, f)
	}
	return eventName, fields
}

func TestDescriptorMetadata(t *testing.T) {
	s := shape.New("DbQuery", []event.Field{
		event.StringField("statement", "select 1"),
		event.Int64Field("rows", 0),
		event.Uint32Field("latency", 12),
		event.BoolField("ok", true),
		event.Float64Field("cost", 0.5),
		event.BytesField("plan", nil),
		event.Group("conn",
			event.StringField("host", "localhost"),
			event.Uint16Field("port", 5432),
		),
	})
	d, err := NewDescriptor(s)
	if err != nil {
		t.Fatalf("NewDescriptor() failed: %v", err)
	}

	name, fields := decodeMeta(t, d.Metadata())
	if name != "DbQuery" {
		t.Errorf("event name = %q", name)
	}

	want := []metaField{
		{Name: "statement", Enc: byte(encStringLength16Char8), Fmt: byte(fmtStringUTF), HasFmt: true},
		{Name: "rows", Enc: byte(encValue64), Fmt: byte(fmtSignedInt), HasFmt: true},
		{Name: "latency", Enc: byte(encValue32)},
		{Name: "ok", Enc: byte(encValue8), Fmt: byte(fmtBoolean), HasFmt: true},
		{Name: "cost", Enc: byte(encValue64), Fmt: byte(fmtFloat), HasFmt: true},
		{Name: "plan", Enc: byte(encBinaryLength16Char8), Fmt: byte(fmtHexBytes), HasFmt: true},
		{Name: "conn", Enc: byte(encStruct), Fmt: 2, HasFmt: true, Members: 2},
		{Name: "host", Enc: byte(encStringLength16Char8), Fmt: byte(fmtStringUTF), HasFmt: true},
		{Name: "port", Enc: byte(encValue16)},
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Errorf("field metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestDescriptorRejects(t *testing.T) {
	fields := make([]event.Field, maxFields+1)
	for i := range fields {
		fields[i] = event.Int32Field(fmt.Sprintf("f%d", i), int32(i))
	}
	if _, err := NewDescriptor(shape.New("E", fields)); !errors.Is(err, ErrTooManyFields) {
		t.Errorf("error = %v, wanted ErrTooManyFields", err)
	}

	deep := event.Int32Field("leaf", 0)
	for i := 0; i <= maxDepth; i++ {
		deep = event.Group(fmt.Sprintf("g%d", i), deep)
	}
	if _, err := NewDescriptor(shape.New("E", []event.Field{deep})); !errors.Is(err, ErrTooDeep) {
		t.Errorf("error = %v, wanted ErrTooDeep", err)
	}

	if _, err := NewDescriptor(shape.New("bad\x00name", nil)); !errors.Is(err, ErrInvalidName) {
		t.Errorf("error = %v, wanted ErrInvalidName", err)
	}
}

func TestEncodeValues(t *testing.T) {
	fields := []event.Field{
		event.BoolField("flag", true),
		event.Uint8Field("u8", 200),
		event.Int16Field("i16", -2),
		event.StringField("str", "hi"),
		event.BytesField("bin", []byte{9}),
	}
	d, err := NewDescriptor(shape.New("E", fields))
	if err != nil {
		t.Fatalf("NewDescriptor() failed: %v", err)
	}
	data, err := d.Encode(fields)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	// bool and u8 are single bytes, i16 is two bytes LE, strings and
	// binary are length-prefixed without terminators
	want := []byte{
		1,
		200,
		0xfe, 0xff,
		2, 0, 'h', 'i',
		1, 0, 9,
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Errorf("encoded data mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeFieldMismatch(t *testing.T) {
	fields := []event.Field{event.Int32Field("count", 1)}
	d, err := NewDescriptor(shape.New("E", fields))
	if err != nil {
		t.Fatalf("NewDescriptor() failed: %v", err)
	}
	if _, err := d.Encode([]event.Field{event.Int64Field("count", 1)}); !errors.Is(err, ErrFieldMismatch) {
		t.Errorf("error = %v, wanted ErrFieldMismatch", err)
	}
	if _, err := d.Encode(nil); !errors.Is(err, ErrFieldMismatch) {
		t.Errorf("error = %v, wanted ErrFieldMismatch", err)
	}
}

func TestAppendEvent(t *testing.T) {
	fields := []event.Field{event.Uint32Field("n", 7)}
	d, err := NewDescriptor(shape.New("E", fields))
	if err != nil {
		t.Fatalf("NewDescriptor() failed: %v", err)
	}
	data, err := d.Encode(fields)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	md := event.Metadata{
		Level:             event.LevelInfo,
		Keyword:           1,
		Opcode:            event.OpcodeStart,
		ActivityID:        activity.IDForSpan(3),
		RelatedActivityID: activity.IDForSpan(2),
	}
	blob := AppendEvent(nil, d, data, md)

	// fixed 8-byte header
	if blob[0] != flagPointer64|flagLittleEndian|flagExtension {
		t.Errorf("flags = %#x", blob[0])
	}
	if blob[1] != 0 {
		t.Errorf("version = %d", blob[1])
	}
	if id := binary.LittleEndian.Uint16(blob[2:4]); id != 0 {
		t.Errorf("id = %d, wanted 0 (name travels in metadata)", id)
	}
	if blob[6] != byte(event.OpcodeStart) || blob[7] != byte(event.LevelInfo) {
		t.Errorf("opcode/level = %d/%d", blob[6], blob[7])
	}

	// first extension: activity IDs, 32 bytes since related is set
	p := 8
	if sz := binary.LittleEndian.Uint16(blob[p : p+2]); sz != 32 {
		t.Fatalf("activity extension size = %d, wanted 32", sz)
	}
	if kind := binary.LittleEndian.Uint16(blob[p+2 : p+4]); kind != extKindActivityID|extKindChain {
		t.Fatalf("activity extension kind = %#x", kind)
	}
	p += 4
	var act, rel event.ActivityID
	copy(act[:], blob[p:p+16])
	copy(rel[:], blob[p+16:p+32])
	if act != md.ActivityID || rel != md.RelatedActivityID {
		t.Error("activity IDs do not round trip through the extension")
	}
	p += 32

	// final extension: metadata, unchained, followed by the data block
	if sz := binary.LittleEndian.Uint16(blob[p : p+2]); int(sz) != len(d.Metadata()) {
		t.Fatalf("metadata extension size = %d, wanted %d", sz, len(d.Metadata()))
	}
	if kind := binary.LittleEndian.Uint16(blob[p+2 : p+4]); kind != extKindMetadata {
		t.Fatalf("metadata extension kind = %#x, wanted unchained metadata", kind)
	}
	p += 4 + len(d.Metadata())
	if diff := cmp.Diff(data, blob[p:]); diff != "" {
		t.Errorf("data block mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendEventNoActivity(t *testing.T) {
	d, err := NewDescriptor(shape.New("E", nil))
	if err != nil {
		t.Fatalf("NewDescriptor() failed: %v", err)
	}
	blob := AppendEvent(nil, d, nil, event.Metadata{Level: event.LevelVerbose})

	// header straight into the metadata extension
	if kind := binary.LittleEndian.Uint16(blob[10:12]); kind != extKindMetadata {
		t.Errorf("first extension kind = %#x, wanted metadata", kind)
	}
	if len(blob) != 8+4+len(d.Metadata()) {
		t.Errorf("blob length = %d", len(blob))
	}
}
