package normalize

import "strings"

// Pinyin syllable shapes: an optional initial followed by a final. The
// tables are matched longest-first so "zhang" wins over "zha"+"ng" failing.
var pinyinInitials = []string{
	"zh", "ch", "sh",
	"b", "p", "m", "f", "d", "t", "n", "l",
	"g", "k", "h", "j", "q", "x", "r", "z", "c", "s", "w", "y",
}

var pinyinFinals = []string{
	"iang", "iong", "uang",
	"ang", "eng", "ing", "ong", "ian", "iao", "uai", "uan",
	"ai", "ao", "an", "en", "ei", "er", "ia", "ie", "in", "iu",
	"ou", "ua", "ui", "uo", "un", "ue",
	"a", "e", "i", "o", "u",
}

// pinyinSpaced attempts to rewrite an unspaced transliterated title with
// syllable boundaries ("Zhangyimou" -> "zhang yi mou"). Words shorter than
// six letters pass through unchanged; the variant is only produced when at
// least one word splits into two or more syllables.
func pinyinSpaced(s string) (string, bool) {
	words := strings.Fields(s)
	if len(words) == 0 {
		return "", false
	}

	out := make([]string, 0, len(words))
	split := false
	for _, word := range words {
		if len(word) < 6 || !isAlphaASCII(word) {
			out = append(out, word)
			continue
		}
		syllables, ok := segmentPinyinWord(strings.ToLower(word))
		if !ok || len(syllables) < 2 {
			out = append(out, word)
			continue
		}
		out = append(out, strings.Join(syllables, " "))
		split = true
	}

	if !split {
		return "", false
	}
	return strings.Join(out, " "), true
}

// segmentPinyinWord backtracks over initial+final shapes, requiring full
// coverage of the word.
func segmentPinyinWord(word string) ([]string, bool) {
	if word == "" {
		return nil, false
	}
	return segmentFrom(word, 0)
}

func segmentFrom(word string, pos int) ([]string, bool) {
	if pos == len(word) {
		return nil, true
	}
	for _, syl := range syllablesAt(word, pos) {
		rest, ok := segmentFrom(word, pos+len(syl))
		if ok {
			return append([]string{syl}, rest...), true
		}
	}
	return nil, false
}

// syllablesAt returns candidate syllables starting at pos, longest first.
func syllablesAt(word string, pos int) []string {
	var out []string
	rest := word[pos:]

	tryFinal := func(prefix string) {
		sub := rest[len(prefix):]
		for _, final := range pinyinFinals {
			if strings.HasPrefix(sub, final) {
				out = append(out, prefix+final)
			}
		}
	}

	for _, initial := range pinyinInitials {
		if strings.HasPrefix(rest, initial) {
			tryFinal(initial)
		}
	}
	// bare final (vowel-initial syllables like "ai", "er")
	tryFinal("")

	// longest first
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if len(out[j]) > len(out[i]) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

func isAlphaASCII(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
