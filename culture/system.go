package culture

import (
	"os"
	"strings"
)

// localeVariables are consulted in POSIX precedence order.
var localeVariables = []string{"LC_ALL", "LC_MESSAGES", "LANG"} //nolint:gochecknoglobals // fixed lookup order

// FromEnvironment derives the process default culture from the POSIX locale
// variables, e.g. "fr_CA.UTF-8" becomes fr-CA. The C and POSIX locales, and
// values that do not parse, are skipped. English is returned when nothing
// usable is set.
func FromEnvironment() Tag {
	return fromLookup(os.Getenv)
}

func fromLookup(lookup func(string) string) Tag {
	for _, name := range localeVariables {
		value := lookup(name)
		if value == "" {
			continue
		}

		value, _, _ = strings.Cut(value, ".")
		value, _, _ = strings.Cut(value, "@")
		if value == "" || value == "C" || value == "POSIX" {
			continue
		}

		tag, err := Parse(value)
		if err == nil && !tag.IsInvariant() {
			return tag
		}
	}

	return English
}
