// Package resolve implements the TMDB entity-resolution pipeline: it turns
// noisy scraped movie signals into a confident TMDB ID (or a deliberate
// "no match"), with multi-tier caching and single-flight coordination.
package resolve

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/filmatch/filmatch/internal/resolve/normalize"
)

// PayloadVersion is baked into every canonical payload. Bumping it makes
// old cache entries unreachable without deleting them.
const PayloadVersion = 2

// LookupRequest is a raw, caller-supplied lookup as scraped from a cinema
// listing. Fields may be empty, duplicated, oddly cased or oddly ordered;
// BuildPayload canonicalizes all of that away.
type LookupRequest struct {
	Title           string   `json:"title"`
	Directors       []string `json:"directors,omitempty"`
	Actors          []string `json:"actors,omitempty"`
	Year            int      `json:"year,omitempty"`
	DurationMinutes int      `json:"durationMinutes,omitempty"`
	Languages       []string `json:"languages,omitempty"`
}

// LookupPayload is the canonical, order-independent form of a lookup.
// Two logically equal requests always produce an identical payload and
// therefore an identical hash. Field order is fixed by the struct; person
// and language lists are lowercased and sorted.
type LookupPayload struct {
	Version   int      `json:"v"`
	Title     string   `json:"title"`
	Variants  []string `json:"variants"`
	Directors []string `json:"directors"`
	Actors    []string `json:"actors"`
	Year      int      `json:"year"`
	Duration  int      `json:"duration"`
	Languages []string `json:"languages"`
}

// BuildPayload normalizes a request into its canonical payload.
func BuildPayload(req LookupRequest) LookupPayload {
	title := strings.ToLower(normalize.NormalizeTitleQuery(req.Title))

	variants := normalize.TitleVariants(title)

	directors := lowerSorted(normalize.ExpandPersonNames(req.Directors))
	actors := lowerSorted(normalize.ExpandPersonNames(req.Actors))

	var languages []string
	seen := make(map[string]struct{})
	for _, raw := range req.Languages {
		code := normalize.NormalizeLanguageCode(raw)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		languages = append(languages, code)
	}
	sort.Strings(languages)

	return LookupPayload{
		Version:   PayloadVersion,
		Title:     title,
		Variants:  variants,
		Directors: directors,
		Actors:    actors,
		Year:      req.Year,
		Duration:  req.DurationMinutes,
		Languages: languages,
	}
}

// CanonicalJSON serializes the payload deterministically: fixed field
// order, no whitespace, sorted person/language lists.
func (p LookupPayload) CanonicalJSON() string {
	// Marshal of a struct with canonicalized field values is
	// deterministic; nil slices must render as [] to keep the encoding
	// independent of how the payload was constructed.
	data, err := json.Marshal(struct {
		Version   int      `json:"v"`
		Title     string   `json:"title"`
		Variants  []string `json:"variants"`
		Directors []string `json:"directors"`
		Actors    []string `json:"actors"`
		Year      int      `json:"year"`
		Duration  int      `json:"duration"`
		Languages []string `json:"languages"`
	}{
		Version:   p.Version,
		Title:     p.Title,
		Variants:  emptyIfNil(p.Variants),
		Directors: emptyIfNil(p.Directors),
		Actors:    emptyIfNil(p.Actors),
		Year:      p.Year,
		Duration:  p.Duration,
		Languages: emptyIfNil(p.Languages),
	})
	if err != nil {
		// A struct of strings and ints cannot fail to marshal.
		panic(err)
	}
	return string(data)
}

// Hash returns the stable cache key for this payload.
func (p LookupPayload) Hash() string {
	sum := sha256.Sum256([]byte(p.CanonicalJSON()))
	return hex.EncodeToString(sum[:])
}

// PrimaryVariant is the first (input-order) title variant, used for
// tie-breaking and logging.
func (p LookupPayload) PrimaryVariant() string {
	if len(p.Variants) == 0 {
		return p.Title
	}
	return p.Variants[0]
}

func lowerSorted(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(v))
	}
	sort.Strings(out)
	return out
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
