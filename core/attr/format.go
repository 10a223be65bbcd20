package attr

import (
	"net/netip"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

// FormatValidator reports whether an already-coerced string satisfies a
// named format. Validators constrain shape only; type coercion and the
// multiline check happen before any format runs.
type FormatValidator func(string) bool

// formatValidators is the registry of named formats a StringAttr can
// constrain to via its Format field.
var formatValidators = map[string]FormatValidator{
	"semver": func(s string) bool {
		// semver.IsValid requires a "v" prefix (e.g. "v1.2.3"); accept
		// both with and without.
		if !strings.HasPrefix(s, "v") {
			s = "v" + s
		}
		return semver.IsValid(s)
	},
	"ip": func(s string) bool {
		_, err := netip.ParseAddr(s)
		return err == nil
	},
	"cidr": func(s string) bool {
		_, err := netip.ParsePrefix(s)
		return err == nil
	},
	"duration": func(s string) bool {
		_, err := time.ParseDuration(s)
		return err == nil
	},
}

// LookupFormat returns the named format validator, if registered.
func LookupFormat(name string) (FormatValidator, bool) {
	fn, ok := formatValidators[name]
	return fn, ok
}
