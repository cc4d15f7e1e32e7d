package eventheader

import (
	"errors"
	"strings"
	"testing"

	"github.com/Microsoft/go-nativetrace/pkg/event"
)

func TestTracepointName(t *testing.T) {
	for _, tc := range []struct {
		provider string
		group    string
		level    event.Level
		keyword  uint64
		want     string
	}{
		{"MyProvider", "", event.LevelInfo, 1, "MyProvider_L4K1"},
		{"MyProvider", "", event.LevelVerbose, 0x1f, "MyProvider_L5K1f"},
		{"MyProvider", "mygroup", event.LevelError, 2, "MyProvider_L2K2Gmygroup"},
		{"Contoso_App", "", event.LevelTrace, 1 << 40, "Contoso_App_L6K10000000000"},
	} {
		if got := TracepointName(tc.provider, tc.group, tc.level, tc.keyword); got != tc.want {
			t.Errorf("TracepointName(%q, %q, %d, %#x) = %q, wanted %q",
				tc.provider, tc.group, tc.level, tc.keyword, got, tc.want)
		}
	}
}

func TestValidateProviderName(t *testing.T) {
	for _, tc := range []struct {
		name, group string
		wantErr     error
	}{
		{"MyProvider", "", nil},
		{"Provider123", "grp1", nil},
		{"With_Underscore", "", nil},
		{"", "", ErrInvalidProviderName},
		{"has space", "", ErrInvalidProviderName},
		{"has.dot", "", ErrInvalidProviderName},
		{"ok", "Upper", ErrInvalidProviderGroup},
		{"ok", "has_underscore", ErrInvalidProviderGroup},
		{strings.Repeat("a", 200), strings.Repeat("b", 40), ErrNameTooLong},
	} {
		err := ValidateProviderName(tc.name, tc.group)
		if tc.wantErr == nil {
			if err != nil {
				t.Errorf("ValidateProviderName(%q, %q) failed: %v", tc.name, tc.group, err)
			}
			continue
		}
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("ValidateProviderName(%q, %q) = %v, wanted %v", tc.name, tc.group, err, tc.wantErr)
		}
	}
}
