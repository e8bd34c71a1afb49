package util

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeForIndex folds a value for diacritic-insensitive search: Unicode
// decomposition, combining marks stripped, lowercased and trimmed. Applying it
// twice yields the same result as applying it once.
func NormalizeForIndex(value string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(folder, value)
	if err != nil {
		folded = value
	}
	return strings.TrimSpace(strings.ToLower(folded))
}

// EncodeForNodeID percent-encodes a record identifier for use inside an entity
// node IRI. Distinct identifiers always encode to distinct strings.
func EncodeForNodeID(identifier string) string {
	return url.PathEscape(identifier)
}

// NormalizeExternalID prepares an ark for use as a lookup key. The stored value
// is never replaced by this form.
func NormalizeExternalID(ark string) string {
	return strings.ToLower(strings.TrimSpace(ark))
}
