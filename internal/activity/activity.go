// Package activity generates and tracks the 128-bit activity identifiers
// that correlate nested and concurrent spans in the native tracing tools.
//
// IDs are built from a process-wide random seed with the 64-bit span
// identifier in the upper eight bytes, so a span's activity ID can be
// recovered from its span ID alone. Byte 0 is a validity marker.
package activity

import (
	"encoding/binary"
	"time"

	"github.com/Microsoft/go-nativetrace/pkg/event"
)

// seed is shared by every activity ID the process generates; distinct
// processes get distinct ID spaces even for equal span IDs.
var seed = func() [16]byte {
	var s [16]byte
	binary.LittleEndian.PutUint64(s[:8], uint64(time.Now().UnixNano()))
	s[0] = 0
	return s
}()

// IDForSpan derives the activity ID for a 64-bit span identifier.
// A zero span ID yields an unset (marker-zero) ID.
func IDForSpan(spanID uint64) event.ActivityID {
	var id event.ActivityID
	if spanID == 0 {
		return id
	}
	copy(id[:], seed[:])
	binary.LittleEndian.PutUint64(id[8:], spanID)
	id[0] = 1
	return id
}

// SpanOf recovers the 64-bit span identifier an activity ID was derived
// from, or zero for an unset ID.
func SpanOf(id event.ActivityID) uint64 {
	if !id.IsSet() {
		return 0
	}
	return binary.LittleEndian.Uint64(id[8:])
}

// Record correlates one open span: its activity ID, the parent span's
// activity ID (unset at the root), and the nesting depth at entry.
// Records are plain values; moving a span across goroutines means carrying
// the record, not sharing the stack it came from.
type Record struct {
	SpanID uint64
	ID     event.ActivityID
	Parent event.ActivityID
	Depth  int
}
