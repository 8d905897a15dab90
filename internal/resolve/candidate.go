package resolve

import (
	"sort"
	"time"
)

// SourceBucket records the discovery path of a candidate.
type SourceBucket string

const (
	SourceSearched SourceBucket = "searched"
	SourceDirected SourceBucket = "directed"
	SourceActed    SourceBucket = "acted"
)

// MovieCandidate is a single externally-indexed movie discovered during a
// resolution. The same TMDB ID found via multiple paths is merged into one
// candidate whose source buckets are the union of all paths.
type MovieCandidate struct {
	ID               int
	Title            string
	OriginalTitle    string
	Year             int // 0 when unknown
	OriginalLanguage string
	Popularity       float64
	Sources          map[SourceBucket]struct{}
}

// HasSource reports whether the candidate was discovered via the bucket.
func (c *MovieCandidate) HasSource(bucket SourceBucket) bool {
	_, ok := c.Sources[bucket]
	return ok
}

// MovieDetails is the enriched view of a candidate, fetched lazily and
// cached per ID for the process lifetime.
type MovieDetails struct {
	ID               int
	Title            string
	OriginalTitle    string
	Year             int
	Directors        []string
	PosterPath       string
	OriginalLanguage string
	SpokenLanguages  []string
	RuntimeMinutes   int
	Cast             []string // at most 15 names
	GenreIDs         []int
	EnrichedAt       time.Time
}

// candidateArena accumulates candidates keyed by TMDB ID, unioning source
// buckets when the same ID arrives via multiple fetch paths.
type candidateArena struct {
	byID map[int]*MovieCandidate
}

func newCandidateArena() *candidateArena {
	return &candidateArena{byID: make(map[int]*MovieCandidate)}
}

// add merges a discovery into the arena. Entries without a usable ID or
// title were already dropped during parsing.
func (a *candidateArena) add(c MovieCandidate, bucket SourceBucket) {
	existing, ok := a.byID[c.ID]
	if !ok {
		c.Sources = map[SourceBucket]struct{}{bucket: {}}
		a.byID[c.ID] = &c
		return
	}

	existing.Sources[bucket] = struct{}{}
	// Search results carry richer fields than filmography entries; keep
	// the most complete view.
	if existing.OriginalTitle == "" {
		existing.OriginalTitle = c.OriginalTitle
	}
	if existing.Year == 0 {
		existing.Year = c.Year
	}
	if existing.OriginalLanguage == "" {
		existing.OriginalLanguage = c.OriginalLanguage
	}
	if c.Popularity > existing.Popularity {
		existing.Popularity = c.Popularity
	}
}

// list returns the pooled candidates ordered by ID for deterministic
// downstream processing.
func (a *candidateArena) list() []*MovieCandidate {
	out := make([]*MovieCandidate, 0, len(a.byID))
	for _, c := range a.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
