package nativetrace

import (
	"github.com/Microsoft/go-winio/pkg/guid"

	"github.com/Microsoft/go-nativetrace/pkg/event"
)

// Option configures an [Emitter] before the provider session is opened.
type Option func(*config) error

type config struct {
	name string

	providerID    guid.GUID
	hasProviderID bool

	groupID   *guid.GUID // ETW provider group
	groupName string     // user_events provider group

	defaultKeyword uint64
	levelFilter    event.Level
	keywordFilter  uint64

	commonSchema bool
	spanTiming   bool

	errHandler func(error)

	backend backend // test hook; nil selects the OS backend
}

func defaultConfig(name string) config {
	return config{
		name:           name,
		defaultKeyword: 1,
		levelFilter:    event.Level(255),
	}
}

// WithProviderID assigns an explicit provider GUID instead of the one
// hashed from the provider name. Only meaningful on ETW.
func WithProviderID(id guid.GUID) Option {
	return func(c *config) error {
		c.providerID = id
		c.hasProviderID = true
		return nil
	}
}

// WithProviderGroupGUID joins the ETW provider to a provider group.
func WithProviderGroupGUID(id guid.GUID) Option {
	return func(c *config) error {
		if id == (guid.GUID{}) {
			return ErrEmptyProviderGroupGUID
		}
		c.groupID = &id
		return nil
	}
}

// WithProviderGroupName joins the user_events provider to a named group.
// Group names must be lower case ASCII letters or digits.
func WithProviderGroupName(name string) Option {
	return func(c *config) error {
		c.groupName = name
		return nil
	}
}

// WithDefaultKeyword sets the keyword used by events that do not specify
// one. The default is 1; keyword 0 is reserved in ETW and is replaced by
// the default at emit time.
func WithDefaultKeyword(kw uint64) Option {
	return func(c *config) error {
		c.defaultKeyword = kw
		return nil
	}
}

// WithLevelFilter drops events less severe than l (numerically greater)
// before any encoding work.
func WithLevelFilter(l event.Level) Option {
	return func(c *config) error {
		c.levelFilter = l
		return nil
	}
}

// WithKeywordFilter drops events whose keyword does not intersect mask
// before any encoding work. Zero means no filtering.
func WithKeywordFilter(mask uint64) Option {
	return func(c *config) error {
		c.keywordFilter = mask
		return nil
	}
}

// WithCommonSchema emits events in the Common Schema 4.0 mapping
// (PartA/PartB/PartC) instead of call-site-native field names. Only needed
// for compatibility with specialized consumers; plain events are cheaper.
func WithCommonSchema() Option {
	return func(c *config) error {
		c.commonSchema = true
		return nil
	}
}

// WithSpanTiming adds a duration field (nanoseconds) to span stop events.
func WithSpanTiming() Option {
	return func(c *config) error {
		c.spanTiming = true
		return nil
	}
}

// WithErrorHandler replaces the default logrus reporting for dropped
// events and span-tracking anomalies. The handler must be safe for
// concurrent use and must not block.
func WithErrorHandler(f func(error)) Option {
	return func(c *config) error {
		c.errHandler = f
		return nil
	}
}

// withBackend substitutes the OS backend; tests use this to capture
// payloads and count encode work.
func withBackend(b backend) Option {
	return func(c *config) error {
		c.backend = b
		return nil
	}
}
