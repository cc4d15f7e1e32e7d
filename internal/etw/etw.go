// Package etw implements the Windows ETW backend: TraceLogging
// (self-describing) event encoding, provider registration, and the raw
// write primitive. The encoder is portable and never touches the OS; only
// the provider session is Windows-specific.
package etw

import "errors"

var (
	// ErrTooManyFields is returned when a shape exceeds the TraceLogging
	// field limit and cannot be represented.
	ErrTooManyFields = errors.New("etw: too many fields for one event")
	// ErrTooDeep is returned when struct nesting exceeds the ETW limit.
	ErrTooDeep = errors.New("etw: struct nesting too deep")
	// ErrInvalidName is returned for event or field names containing NUL.
	ErrInvalidName = errors.New("etw: name contains NUL byte")
	// ErrFieldMismatch indicates the field values handed to Encode do not
	// match the descriptor's shape. This is a caller contract violation,
	// not a data error.
	ErrFieldMismatch = errors.New("etw: field values do not match descriptor")
	// ErrNotRegistered is returned when writing through a closed provider.
	ErrNotRegistered = errors.New("etw: provider not registered")
)

const (
	// TraceLogging caps the number of fields in a single event.
	maxFields = 128
	// ETW rejects events with more than eight levels of struct nesting.
	maxDepth = 8
	// Self-describing (TraceLogging) events go to channel 11.
	channelTraceLogging = 11
)

// TraceLogging field in-types (TlgIn_t).
type inType byte

const (
	inTypeNull inType = iota
	inTypeUnicodeString
	inTypeANSIString
	inTypeInt8
	inTypeUint8
	inTypeInt16
	inTypeUint16
	inTypeInt32
	inTypeUint32
	inTypeInt64
	inTypeUint64
	inTypeFloat
	inTypeDouble
	inTypeBool32
	inTypeBinary
	inTypeGUID

	inTypeStruct inType = 24

	// inTypeChain flags that an out-type byte follows the in-type.
	inTypeChain inType = 0x80
)

// TraceLogging field out-types (TlgOut_t).
type outType byte

const (
	outTypeNull outType = iota
	outTypeNoPrint
	outTypeString
	outTypeBoolean
	outTypeHex

	outTypeUTF8 outType = 35

	// outTypeChain flags that a tag follows the out-type; never set here.
	outTypeChain outType = 0x80
)
