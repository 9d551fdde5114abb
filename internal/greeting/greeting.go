// Package greeting renders greeting templates and derives output filenames
// from name entries.
package greeting

import (
	"strings"
	"unicode"

	"github.com/pbxkit/greetgen/internal/core"
)

// Recognized template placeholders.
const (
	PlaceholderFirstName = "{firstname}"
	PlaceholderLastName  = "{lastname}"
)

// DefaultTemplate is the greeting used when no template is supplied.
const DefaultTemplate = "You have reached {firstname} {lastname}. " +
	"Please leave a message after the tone."

const outputExtension = ".wav"

// Render substitutes the recognized placeholders in template with the entry's
// names. It is pure and total: unrecognized tokens are left as literal text,
// and the case of the supplied names is preserved exactly as given.
func Render(template string, entry core.NameEntry) string {
	replacer := strings.NewReplacer(
		PlaceholderFirstName, entry.FirstName,
		PlaceholderLastName, entry.LastName,
	)

	return replacer.Replace(template)
}

// Filename derives the deterministic output filename for an entry:
// Firstname_Lastname.wav with the first letter of each name upper-cased and
// the rest lower-cased. The derivation is idempotent; duplicate entries map
// to the same filename and overwrite each other by design.
func Filename(entry core.NameEntry) string {
	return capitalize(entry.FirstName) + "_" + capitalize(entry.LastName) + outputExtension
}

// capitalize upper-cases the first rune and lower-cases the remainder.
func capitalize(name string) string {
	runes := []rune(strings.ToLower(name))
	if len(runes) == 0 {
		return ""
	}

	runes[0] = unicode.ToUpper(runes[0])

	return string(runes)
}
