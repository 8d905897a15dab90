package normalize

import (
	"regexp"
	"strings"
)

// personSeparators splits multi-person strings: punctuation separators plus
// the standalone words "and" (English) and "en" (Dutch).
var personSeparators = regexp.MustCompile(`(?i)[,;/&]|\s+(?:and|en)\s+`)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// personPlaceholders are scraped values that mean "no usable name". Matched
// case- and punctuation-insensitively.
var personPlaceholders = map[string]struct{}{
	"":              {},
	"unknown":       {},
	"na":            {},
	"various":       {},
	"tba":           {},
	"tbd":           {},
	"onbekend":      {},
	"nognietbekend": {},
	"diverse":       {},
	"divers":        {},
	"nvt":           {},
}

// ExpandPersonNames splits, cleans and deduplicates scraped person-name
// strings. Accents are stripped so that cinema listings and TMDB agree on
// a comparable form. First-seen order is preserved.
func ExpandPersonNames(names []string) []string {
	var out []string
	seen := make(map[string]struct{})

	for _, raw := range names {
		for _, part := range personSeparators.Split(raw, -1) {
			name := strings.TrimSpace(StripAccents(part))
			name = strings.Trim(name, ".-–—")
			name = strings.Join(strings.Fields(name), " ")
			if name == "" {
				continue
			}
			if _, placeholder := personPlaceholders[foldKey(name)]; placeholder {
				continue
			}
			key := strings.ToLower(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, name)
		}
	}

	return out
}

// foldKey lowercases and drops everything but letters and digits.
func foldKey(s string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(s), "")
}
