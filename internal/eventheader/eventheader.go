// Package eventheader implements the Linux user_events backend using the
// EventHeader binary encoding: a self-describing event blob (header,
// extension blocks with event name and field metadata, field data) written
// through the kernel's user_events tracepoint ABI.
//
// Level and keyword are not part of the payload; they are carried in the
// tracepoint name ("Provider_L<level>K<keyword>"), one registered
// tracepoint per (level, keyword) pair, mirroring how the native decoder
// locates events. The encoder itself is portable and performs no OS calls.
package eventheader

import "errors"

var (
	// ErrTooManyFields is returned for shapes exceeding the field limit.
	ErrTooManyFields = errors.New("eventheader: too many fields for one event")
	// ErrTooDeep is returned when struct nesting exceeds the limit.
	ErrTooDeep = errors.New("eventheader: struct nesting too deep")
	// ErrInvalidName is returned for names containing NUL.
	ErrInvalidName = errors.New("eventheader: name contains NUL byte")
	// ErrFieldMismatch indicates the values handed to Encode do not match
	// the descriptor's shape; a caller contract violation.
	ErrFieldMismatch = errors.New("eventheader: field values do not match descriptor")
	// ErrInvalidProviderName is returned when the provider name is not
	// ASCII alphanumeric (plus underscore).
	ErrInvalidProviderName = errors.New("eventheader: provider name must be ASCII alphanumeric")
	// ErrInvalidProviderGroup is returned when the group name is not lower
	// case ASCII or digits.
	ErrInvalidProviderGroup = errors.New("eventheader: provider group must be lower case ASCII or digits")
	// ErrNameTooLong is returned when provider name plus group exceed the
	// tracepoint name budget.
	ErrNameTooLong = errors.New("eventheader: provider name and group too long")
	// ErrUnavailable is returned when the kernel lacks user_events support
	// (no /sys/kernel/tracing/user_events_data). Detected once at
	// registration; every subsequent emit is a cheap no-op.
	ErrUnavailable = errors.New("eventheader: kernel user_events support unavailable")
	// ErrNotRegistered is returned when writing through a closed provider.
	ErrNotRegistered = errors.New("eventheader: provider not registered")
)

const (
	// Field limit matches the ETW side so a shape accepted by one backend
	// is accepted by the other.
	maxFields = 128
	maxDepth  = 8

	// Combined provider name + group budget inside the tracepoint name.
	maxNameLen = 234
)

// header flag bits.
const (
	flagPointer64    byte = 0x01
	flagLittleEndian byte = 0x02
	flagExtension    byte = 0x04
)

// extension kinds; the high bit of the kind word chains another extension.
const (
	extKindMetadata   uint16 = 1
	extKindActivityID uint16 = 2
	extKindChain      uint16 = 0x8000
)

// field encodings.
type encoding byte

const (
	encInvalid encoding = iota
	encStruct
	encValue8
	encValue16
	encValue32
	encValue64
	encValue128
	encZStringChar8
	encZStringChar16
	encZStringChar32
	encStringLength16Char8
	encStringLength16Char16
	encStringLength16Char32
	encBinaryLength16Char8

	// encChain flags that a format byte follows the encoding.
	encChain encoding = 0x80
)

// field formats.
type format byte

const (
	fmtDefault format = iota
	fmtUnsignedInt
	fmtSignedInt
	fmtHexInt
	fmtErrno
	fmtPid
	fmtTime
	fmtBoolean
	fmtFloat
	fmtHexBytes
	fmtString8
	fmtStringUTF
)
