package slug

import (
	"regexp"
	"strings"
)

// latinFolding maps accented Latin letters used in French/Maghrebi names to ASCII
var latinFolding = map[rune]string{
	'à': "a", 'â': "a", 'ä': "a", 'á': "a", 'ã': "a",
	'ç': "c",
	'é': "e", 'è': "e", 'ê': "e", 'ë': "e",
	'î': "i", 'ï': "i", 'í': "i",
	'ô': "o", 'ö': "o", 'ó': "o",
	'ù': "u", 'û': "u", 'ü': "u", 'ú': "u",
	'ÿ': "y",
	'œ': "oe", 'æ': "ae",
}

var (
	nonAlnum   = regexp.MustCompile(`[^a-z0-9]+`)
	edgeDashes = regexp.MustCompile(`^-+|-+$`)
)

// Make builds a lowercase, dash separated slug from the given parts.
// Example: Make("Yasmine", "Trabelsi") -> "yasmine-trabelsi"
func Make(parts ...string) string {
	var b strings.Builder
	for i, part := range parts {
		if i > 0 {
			b.WriteRune(' ')
		}
		for _, r := range strings.ToLower(part) {
			if folded, ok := latinFolding[r]; ok {
				b.WriteString(folded)
			} else {
				b.WriteRune(r)
			}
		}
	}

	s := nonAlnum.ReplaceAllString(b.String(), "-")
	return edgeDashes.ReplaceAllString(s, "")
}

// ChildSlug builds the storage prefix for a child's documents: "{first}-{last}-{id prefix}".
// Names without any ASCII-foldable letters fall back to "child".
func ChildSlug(firstName, lastName, childID string) string {
	base := Make(firstName, lastName)
	if base == "" {
		base = "child"
	}

	id := Make(childID)
	if len(id) > 8 {
		id = id[:8]
	}
	if id == "" {
		return base
	}
	return base + "-" + id
}
