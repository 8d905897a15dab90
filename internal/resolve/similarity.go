package resolve

import (
	"regexp"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/filmatch/filmatch/internal/resolve/normalize"
)

// wrapperScoreCap is the ceiling for token-set matches that are not exact
// string matches. A query that merely contains the candidate title ("the
// making of X" vs "X") saturates the token-set ratio at 100; capping below
// the exact threshold keeps wrapper matches out of the exact tier while
// leaving them comfortably above the Good cutoff.
const wrapperScoreCap = 95.0

var matchKeyStrip = regexp.MustCompile(`[^a-z0-9]+`)

// matchKey folds a title for comparison: lowercase, accent-stripped,
// punctuation replaced by spaces, whitespace collapsed.
func matchKey(s string) string {
	s = strings.ToLower(normalize.StripAccents(s))
	s = matchKeyStrip.ReplaceAllString(s, " ")
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

// TitleSimilarity scores how well a query title matches a candidate title
// on a 0-100 scale. Exactly 100.0 is reserved for full-string equality
// after normalization; everything else tops out at wrapperScoreCap.
func TitleSimilarity(query, title string) float64 {
	q, t := matchKey(query), matchKey(title)
	if q == "" || t == "" {
		return 0
	}
	if q == t {
		return 100
	}

	score := float64(fuzzy.TokenSetRatio(q, t))
	if score > wrapperScoreCap {
		score = wrapperScoreCap
	}
	return score
}

// trailing sequel markers: arabic numbers and roman numerals up to 9.
var sequelSuffix = regexp.MustCompile(`\s(\d{1,2}|ii|iii|iv|v|vi|vii|viii|ix)$`)

var romanNumerals = map[string]int{
	"ii": 2, "iii": 3, "iv": 4, "v": 5, "vi": 6, "vii": 7, "viii": 8, "ix": 9,
}

// sequelNumber extracts the trailing installment number of a folded title.
// A title without a marker is installment 1.
func sequelNumber(key string) int {
	m := sequelSuffix.FindStringSubmatch(key)
	if m == nil {
		return 1
	}
	if n, ok := romanNumerals[m[1]]; ok {
		return n
	}
	n := 0
	for _, r := range m[1] {
		n = n*10 + int(r-'0')
	}
	if n == 0 {
		return 1
	}
	return n
}

// SequelMismatch reports a clear installment-number disagreement between a
// query and a candidate title ("iron man" vs "iron man 2"). Titles whose
// stems differ are not considered: the fuzzy score already handles those.
func SequelMismatch(query, title string) bool {
	q, t := matchKey(query), matchKey(title)
	if q == t {
		return false
	}

	qn, tn := sequelNumber(q), sequelNumber(t)
	if qn == tn {
		return false
	}

	qStem := strings.TrimSpace(sequelSuffix.ReplaceAllString(q, ""))
	tStem := strings.TrimSpace(sequelSuffix.ReplaceAllString(t, ""))
	return qStem == tStem
}

// PersonNameMatches reports whether a query person name matches any of the
// fetched credit names with enough fuzzy evidence.
func PersonNameMatches(query string, names []string) bool {
	q := matchKey(query)
	if q == "" {
		return false
	}
	for _, name := range names {
		n := matchKey(name)
		if n == "" {
			continue
		}
		if q == n || fuzzy.TokenSetRatio(q, n) >= personMatchEvidence {
			return true
		}
	}
	return false
}

// personMatchEvidence is the minimum fuzzy score for corroborating a
// director or cast name against the query's person hints.
const personMatchEvidence = 85
