// Package normalize cleans noisy scraped movie signals (titles, person
// names, language labels) into canonical forms the resolver can match on.
package normalize

import (
	"html"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var quoteDashReplacer = strings.NewReplacer(
	"‘", "'", "’", "'", "‚", "'", "ʼ", "'",
	"“", `"`, "”", `"`, "„", `"`,
	"‐", "-", "‑", "-", "‒", "-",
	" ", " ",
)

// NormalizeTitleQuery cleans a raw scraped title: HTML entities are
// unescaped, smart quotes and hyphen variants are folded to ASCII, and
// whitespace is collapsed. En and em dashes survive because they act as
// subtitle separators for variant generation. Pure, never fails.
func NormalizeTitleQuery(raw string) string {
	s := html.UnescapeString(raw)
	s = quoteDashReplacer.Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// asciiFoldReplacer handles letters that do not decompose to base + mark.
var asciiFoldReplacer = strings.NewReplacer(
	"ø", "o", "Ø", "O",
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
	"ß", "ss",
	"đ", "d", "Đ", "D",
	"ł", "l", "Ł", "L",
)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripAccents removes diacritics, returning a plain-ASCII-leaning form.
// The input is returned unchanged if the transform fails.
func StripAccents(s string) string {
	s = asciiFoldReplacer.Replace(s)
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// subtitle separators, checked in order of occurrence in each variant.
var subtitleSeparators = []string{":", " - ", " – ", " — "}

// TitleVariants produces the ordered search variants for a normalized
// title. The first entry is always the input itself and is treated as the
// primary variant downstream. Deduplication is case-insensitive and
// preserves first-seen order.
func TitleVariants(title string) []string {
	var variants []string
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		for _, existing := range variants {
			if strings.EqualFold(existing, v) {
				return
			}
		}
		variants = append(variants, v)
	}

	add(title)

	if stripped := stripParentheticals(title); stripped != "" {
		add(stripped)
	}

	ascii := StripAccents(title)
	if ascii != title {
		add(ascii)
		// Tone-marked transliterated titles are often written without
		// spaces; a syllable segmentation of the stripped form gives the
		// spaced spelling TMDB indexes.
		if spaced, ok := pinyinSpaced(ascii); ok {
			add(spaced)
		}
	}

	// Subtitle stripping applies to every accumulated variant, including
	// ones added by this loop.
	for i := 0; i < len(variants); i++ {
		for _, sep := range subtitleSeparators {
			idx := strings.Index(variants[i], sep)
			if idx < 0 {
				continue
			}
			tail := strings.TrimSpace(variants[i][idx+len(sep):])
			if len([]rune(tail)) >= 2 {
				add(tail)
			}
		}
	}

	return variants
}

// stripParentheticals drops (...) and [...] groups from a title.
func stripParentheticals(title string) string {
	var b strings.Builder
	depth := 0
	for _, r := range title {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
