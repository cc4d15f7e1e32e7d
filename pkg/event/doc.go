// Package event defines the typed field-value model shared by the ETW and
// user_events encoders, along with the event-level metadata (level, keyword,
// opcode, activity IDs) attached to every emitted event.
//
// Values are immutable once constructed and owned by the encoding call stack
// for the duration of a single emit.
package event
