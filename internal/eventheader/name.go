package eventheader

import (
	"fmt"

	"github.com/Microsoft/go-nativetrace/pkg/event"
)

// ValidateProviderName enforces the user_events naming rules: ASCII
// alphanumerics plus underscore, and a bounded combined length with the
// group suffix (the tracepoint name also has to fit the level/keyword
// suffix).
func ValidateProviderName(name, group string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidProviderName)
	}
	for _, c := range name {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
			return fmt.Errorf("%w: %q", ErrInvalidProviderName, name)
		}
	}
	for _, c := range group {
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9') {
			return fmt.Errorf("%w: %q", ErrInvalidProviderGroup, group)
		}
	}
	if n := len(name) + len(group); n >= maxNameLen {
		return fmt.Errorf("%w: %d characters", ErrNameTooLong, n)
	}
	return nil
}

// TracepointName formats the per-(level, keyword) tracepoint name in the
// EventHeader convention, eg "MyProvider_L4K1" or "MyProvider_L4K1Gmygroup".
func TracepointName(provider string, group string, level event.Level, keyword uint64) string {
	if group == "" {
		return fmt.Sprintf("%s_L%xK%x", provider, uint8(level), keyword)
	}
	return fmt.Sprintf("%s_L%xK%xG%s", provider, uint8(level), keyword, group)
}
