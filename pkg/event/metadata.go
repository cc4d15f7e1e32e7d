package event

// Level is the severity of an event, following the ETW convention where
// lower values are more severe. user_events levels use the same scale.
type Level uint8

const (
	LevelAlways   Level = 0
	LevelCritical Level = 1
	LevelError    Level = 2
	LevelWarning  Level = 3
	LevelInfo     Level = 4
	LevelVerbose  Level = 5
	// LevelTrace is one past Verbose; used for the finest-grained spans so
	// they can be filtered separately from debug output.
	LevelTrace Level = 6
)

func (l Level) String() string {
	switch l {
	case LevelAlways:
		return "always"
	case LevelCritical:
		return "critical"
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelVerbose:
		return "verbose"
	case LevelTrace:
		return "trace"
	}
	return "unknown"
}

// Opcode marks an event as a span start, a span stop, or a point-in-time
// occurrence. Values match the ETW opcodes; the user_events encoder maps them
// to the equivalent EventHeader opcodes.
type Opcode uint8

const (
	OpcodeInfo  Opcode = 0
	OpcodeStart Opcode = 1
	OpcodeStop  Opcode = 2
)

// ActivityID is a 128-bit activity identifier in the little-endian byte
// layout the native backends consume. Byte 0 is a validity marker: a zero
// first byte means "no activity" and the ID is omitted from the event.
type ActivityID [16]byte

// IsSet reports whether the identifier carries a live activity.
func (a ActivityID) IsSet() bool { return a[0] != 0 }

// Metadata is the event-level header attached to a payload; it is kept
// separate from field data and never interleaved with it.
type Metadata struct {
	Level   Level
	Keyword uint64
	Opcode  Opcode

	ActivityID        ActivityID
	RelatedActivityID ActivityID
}
