package culture

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ErrInvalidTag is returned when a culture name cannot be parsed.
var ErrInvalidTag = errors.New("invalid culture tag")

// invariantName is accepted by Parse as an explicit request for the invariant culture.
const invariantName = "und"

// Tag is a canonical culture identifier such as "en" or "fr-CA".
// The zero value is the invariant culture. Tags compare with ==.
type Tag struct {
	name string
}

// Invariant is the culture-neutral tag that terminates every fallback chain.
var Invariant = Tag{}

// English is used when neither configuration nor the environment names a culture.
var English = Tag{name: "en"}

// Parse validates name and returns its canonical tag. Matching is
// case-insensitive and underscores are accepted as subtag separators.
func Parse(name string) (Tag, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Invariant, fmt.Errorf("%w: empty name", ErrInvalidTag)
	}

	normalised := strings.ReplaceAll(trimmed, "_", "-")
	if strings.EqualFold(normalised, invariantName) {
		return Invariant, nil
	}

	lt, err := language.Parse(normalised)
	if err != nil {
		return Invariant, fmt.Errorf("%w: %q: %w", ErrInvalidTag, name, err)
	}

	base, script, region := lt.Raw()
	if base.String() == invariantName {
		return Invariant, fmt.Errorf("%w: %q has no language subtag", ErrInvalidTag, name)
	}

	return compose(base, script, region), nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(name string) Tag {
	t, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return t
}

// FromLanguage converts an x/text tag, dropping variants and extensions.
func FromLanguage(lt language.Tag) Tag {
	base, script, region := lt.Raw()
	if base.String() == invariantName {
		return Invariant
	}
	return compose(base, script, region)
}

func compose(base language.Base, script language.Script, region language.Region) Tag {
	parts := []string{base.String()}
	if script.String() != "Zzzz" {
		parts = append(parts, script.String())
	}
	if region.String() != "ZZ" {
		parts = append(parts, region.String())
	}
	return Tag{name: strings.Join(parts, "-")}
}

// String returns the canonical name; the invariant culture renders as "".
func (t Tag) String() string {
	return t.name
}

// IsInvariant reports whether t is the invariant culture.
func (t Tag) IsInvariant() bool {
	return t.name == ""
}

// Language returns the tag reduced to its primary language subtag.
func (t Tag) Language() Tag {
	if t.IsInvariant() {
		return t
	}
	lang, _, _ := strings.Cut(t.name, "-")
	return Tag{name: lang}
}

// Script returns the script subtag, or "" when the tag carries none.
func (t Tag) Script() string {
	for _, sub := range t.subtags() {
		if len(sub) == 4 { //nolint:mnd // ISO 15924 script codes are four letters
			return sub
		}
	}
	return ""
}

// Region returns the region subtag, or "" when the tag carries none.
func (t Tag) Region() string {
	for _, sub := range t.subtags() {
		if len(sub) != 4 { //nolint:mnd // anything that is not a script is a region
			return sub
		}
	}
	return ""
}

func (t Tag) subtags() []string {
	parts := strings.Split(t.name, "-")
	if len(parts) <= 1 {
		return nil
	}
	return parts[1:]
}

// LanguageTag returns the x/text representation of t.
func (t Tag) LanguageTag() language.Tag {
	if t.IsInvariant() {
		return language.Und
	}
	return language.Make(t.name)
}

// MarshalText implements encoding.TextMarshaler.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler; empty input yields Invariant.
func (t *Tag) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*t = Invariant
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
