// Package logrus provides a [logrus.Hook] that mirrors log entries to the
// OS-native tracing backends through a [nativetrace.Emitter], so log lines
// land in the same trace session as spans and events.
package logrus

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/Microsoft/go-nativetrace"
	"github.com/Microsoft/go-nativetrace/pkg/event"
)

// Hook is a [logrus.Hook] that emits every matching entry as a
// point-in-time trace event named "Log". Entries carry the message, the
// level string, and the entry's fields.
type Hook struct {
	emitter *nativetrace.Emitter
	scope   *nativetrace.Scope
	keyword uint64
	levels  []logrus.Level
}

var _ logrus.Hook = (*Hook)(nil)

// New wires an existing emitter into logrus. The hook does not own the
// emitter; close it separately after removing the hook.
func New(em *nativetrace.Emitter, keyword uint64) *Hook {
	return &Hook{
		emitter: em,
		scope:   em.NewScope(),
		keyword: keyword,
		levels:  logrus.AllLevels,
	}
}

func (h *Hook) Levels() []logrus.Level {
	return h.levels
}

func (h *Hook) Fire(e *logrus.Entry) error {
	fields := make([]event.Field, 0, len(e.Data)+2)
	fields = append(fields,
		event.StringField("message", e.Message),
		event.StringField("log_level", e.Level.String()),
	)

	// sorted so the same field set always yields the same shape
	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, event.SmartField(k, e.Data[k]))
	}

	return h.emitter.EventRecord(h.scope, "Log", level(e.Level), h.keyword, fields)
}

// level maps logrus severities onto the trace level scale; logrus has no
// "always" and both Panic and Fatal collapse to critical.
func level(l logrus.Level) event.Level {
	switch l {
	case logrus.PanicLevel, logrus.FatalLevel:
		return event.LevelCritical
	case logrus.ErrorLevel:
		return event.LevelError
	case logrus.WarnLevel:
		return event.LevelWarning
	case logrus.InfoLevel:
		return event.LevelInfo
	case logrus.DebugLevel:
		return event.LevelVerbose
	default:
		return event.LevelTrace
	}
}
