package resolve

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/filmatch/filmatch/internal/resolve/cache"
	"github.com/filmatch/filmatch/internal/tmdb"
)

// MetadataClient is the external movie-index surface the resolver consumes.
// *tmdb.Client satisfies it; tests substitute scripted fakes.
type MetadataClient interface {
	SearchMovies(ctx context.Context, query string) ([]tmdb.MovieResult, error)
	SearchPerson(ctx context.Context, name string) ([]tmdb.PersonResult, error)
	GetPersonCredits(ctx context.Context, personID int) (*tmdb.PersonCredits, error)
	GetMovieDetails(ctx context.Context, id int) (*tmdb.MovieDetails, error)
}

// creditYearWindow is how far a filmography entry's year may drift from
// the year hint before it is excluded from the person-path pools.
const creditYearWindow = 2

// maxCastNames caps how many cast names are kept on enriched details.
const maxCastNames = 15

// fetcher builds the merged candidate pool for a payload. Every sub-query
// is cached, so identical person/title/details lookups within or across
// resolutions never re-hit the network. Sub-query failures degrade to an
// empty contribution.
type fetcher struct {
	client   MetadataClient
	persons  *cache.Cache // normalized name -> []int
	credits  *cache.Cache // person ID -> *tmdb.PersonCredits
	searches *cache.Cache // title variant -> []tmdb.MovieResult
	details  *cache.Cache // movie ID -> *MovieDetails
	logger   zerolog.Logger
}

func newFetcher(client MetadataClient, caches *runtimeCaches, logger zerolog.Logger) *fetcher {
	return &fetcher{
		client:   client,
		persons:  caches.persons,
		credits:  caches.credits,
		searches: caches.searches,
		details:  caches.details,
		logger:   logger.With().Str("component", "fetcher").Logger(),
	}
}

// buildPool merges the director-path, actor-path and search-path candidate
// sets into one deduplicated pool with unioned source buckets.
func (f *fetcher) buildPool(ctx context.Context, payload LookupPayload) []*MovieCandidate {
	arena := newCandidateArena()

	for _, director := range payload.Directors {
		for _, personID := range f.personIDs(ctx, director) {
			for _, credit := range f.directedMovies(ctx, personID, payload.Year) {
				if c, ok := candidateFromMovie(credit); ok {
					arena.add(c, SourceDirected)
				}
			}
		}
	}

	for _, actor := range payload.Actors {
		for _, personID := range f.personIDs(ctx, actor) {
			for _, credit := range f.actedMovies(ctx, personID, payload.Year) {
				if c, ok := candidateFromMovie(credit); ok {
					arena.add(c, SourceActed)
				}
			}
		}
	}

	for _, variant := range payload.Variants {
		for _, movie := range f.searchMovies(ctx, variant) {
			if c, ok := candidateFromMovie(movie); ok {
				arena.add(c, SourceSearched)
			}
		}
	}

	pool := arena.list()
	f.logger.Debug().
		Str("title", payload.Title).
		Int("candidates", len(pool)).
		Msg("candidate pool built")
	return pool
}

// personIDs resolves a person name to all matching index IDs. Ambiguity is
// deliberately preserved; wrong namesakes wash out in quality scoring.
func (f *fetcher) personIDs(ctx context.Context, name string) []int {
	key := "person:" + name
	if cached, ok := f.persons.Get(key); ok {
		return cached.([]int)
	}

	results, err := f.client.SearchPerson(ctx, name)
	if err != nil {
		f.logger.Warn().Err(err).Str("name", name).Msg("person search failed, skipping")
		return nil
	}

	ids := make([]int, 0, len(results))
	for _, p := range results {
		if p.ID != 0 {
			ids = append(ids, p.ID)
		}
	}
	f.persons.Set(key, ids)
	return ids
}

// personCredits fetches (or recalls) a person's full filmography.
func (f *fetcher) personCredits(ctx context.Context, personID int) *tmdb.PersonCredits {
	key := fmt.Sprintf("credits:%d", personID)
	if cached, ok := f.credits.Get(key); ok {
		return cached.(*tmdb.PersonCredits)
	}

	credits, err := f.client.GetPersonCredits(ctx, personID)
	if err != nil {
		f.logger.Warn().Err(err).Int("personId", personID).Msg("credits fetch failed, skipping")
		return nil
	}
	f.credits.Set(key, credits)
	return credits
}

func (f *fetcher) directedMovies(ctx context.Context, personID, yearHint int) []tmdb.MovieResult {
	credits := f.personCredits(ctx, personID)
	if credits == nil {
		return nil
	}

	var out []tmdb.MovieResult
	for _, crew := range credits.Crew {
		if crew.Job != "Director" {
			continue
		}
		if withinYearWindow(yearHint, crew.Year()) {
			out = append(out, crew.MovieResult)
		}
	}
	return out
}

func (f *fetcher) actedMovies(ctx context.Context, personID, yearHint int) []tmdb.MovieResult {
	credits := f.personCredits(ctx, personID)
	if credits == nil {
		return nil
	}

	var out []tmdb.MovieResult
	for _, cast := range credits.Cast {
		if withinYearWindow(yearHint, cast.Year()) {
			out = append(out, cast.MovieResult)
		}
	}
	return out
}

func (f *fetcher) searchMovies(ctx context.Context, query string) []tmdb.MovieResult {
	key := "search:" + query
	if cached, ok := f.searches.Get(key); ok {
		return cached.([]tmdb.MovieResult)
	}

	results, err := f.client.SearchMovies(ctx, query)
	if err != nil {
		f.logger.Warn().Err(err).Str("query", query).Msg("title search failed, skipping")
		return nil
	}
	f.searches.Set(key, results)
	return results
}

// movieDetails fetches (or recalls) the enriched view of a movie. Unlike
// the pool sub-queries, callers need to distinguish failure from absence,
// so errors propagate.
func (f *fetcher) movieDetails(ctx context.Context, id int) (*MovieDetails, error) {
	key := fmt.Sprintf("details:%d", id)
	if cached, ok := f.details.Get(key); ok {
		return cached.(*MovieDetails), nil
	}

	raw, err := f.client.GetMovieDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	details := detailsFromRaw(raw)
	f.details.Set(key, details)
	return details, nil
}

// withinYearWindow keeps entries with no year: unknown is not a
// contradiction, and year quality will rank them down anyway.
func withinYearWindow(hint, year int) bool {
	if hint == 0 || year == 0 {
		return true
	}
	diff := hint - year
	if diff < 0 {
		diff = -diff
	}
	return diff <= creditYearWindow
}

// candidateFromMovie parses a raw index entry, dropping unusable rows.
func candidateFromMovie(m tmdb.MovieResult) (MovieCandidate, bool) {
	if m.ID == 0 {
		return MovieCandidate{}, false
	}
	title := m.Title
	if title == "" {
		title = m.OriginalTitle
	}
	if title == "" {
		return MovieCandidate{}, false
	}

	return MovieCandidate{
		ID:               m.ID,
		Title:            title,
		OriginalTitle:    m.OriginalTitle,
		Year:             m.Year(),
		OriginalLanguage: m.OriginalLanguage,
		Popularity:       m.Popularity,
	}, true
}

func detailsFromRaw(raw *tmdb.MovieDetails) *MovieDetails {
	details := &MovieDetails{
		ID:               raw.ID,
		Title:            raw.Title,
		OriginalTitle:    raw.OriginalTitle,
		Year:             raw.Year(),
		OriginalLanguage: raw.OriginalLanguage,
		RuntimeMinutes:   raw.Runtime,
		EnrichedAt:       time.Now().UTC(),
	}

	if raw.PosterPath != nil {
		details.PosterPath = *raw.PosterPath
	}
	for _, lang := range raw.SpokenLanguages {
		if lang.Iso6391 != "" {
			details.SpokenLanguages = append(details.SpokenLanguages, lang.Iso6391)
		}
	}
	for _, genre := range raw.Genres {
		details.GenreIDs = append(details.GenreIDs, genre.ID)
	}
	if raw.Credits != nil {
		for _, crew := range raw.Credits.Crew {
			if crew.Job == "Director" && crew.Name != "" {
				details.Directors = append(details.Directors, crew.Name)
			}
		}
		for i, cast := range raw.Credits.Cast {
			if i >= maxCastNames {
				break
			}
			if cast.Name != "" {
				details.Cast = append(details.Cast, cast.Name)
			}
		}
	}
	return details
}
