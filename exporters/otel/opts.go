package otel

import (
	"errors"

	"github.com/Microsoft/go-nativetrace"
	"github.com/Microsoft/go-nativetrace/pkg/event"
)

// ErrNoEmitter is returned when no emitter was configured.
var ErrNoEmitter = errors.New("no emitter configured")

// ErrLevelMismatch is returned when the configured level for spans with an
// Error status is higher than the level for nominal spans.
var ErrLevelMismatch = errors.New("error level above nominal level")

type Option func(*exporter) error

// WithNewEmitter opens a new emitter for the named provider. The emitter
// is closed when the exporter is shut down.
func WithNewEmitter(name string, opts ...nativetrace.Option) Option {
	return func(e *exporter) error {
		em, err := nativetrace.New(name, opts...)
		if err != nil {
			return err
		}
		e.emitter = em
		e.closeEmitter = true
		return nil
	}
}

// WithExistingEmitter configures the exporter to use an existing emitter.
// The emitter is not closed when the exporter is shut down.
func WithExistingEmitter(em *nativetrace.Emitter) Option {
	return func(e *exporter) error {
		e.emitter = em
		e.closeEmitter = false
		return nil
	}
}

// WithSpanLevel specifies the [event.Level] to export spans at.
//
// The default is [event.LevelInfo].
func WithSpanLevel(l event.Level) Option {
	return func(e *exporter) error {
		e.level = l
		return nil
	}
}

// WithErrorSpanLevel specifies the [event.Level] to use for spans whose
// status code is [go.opentelemetry.io/otel/codes.Error].
//
// The default is [event.LevelError].
func WithErrorSpanLevel(l event.Level) Option {
	return func(e *exporter) error {
		e.errorLevel = l
		return nil
	}
}

// WithKeyword sets the keyword exported spans are emitted with. Zero uses
// the emitter's default keyword.
func WithKeyword(kw uint64) Option {
	return func(e *exporter) error {
		e.keyword = kw
		return nil
	}
}
