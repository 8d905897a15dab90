package resolve

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Runtime agreement tolerances in minutes.
const (
	runtimeGoodTolerance   = 5
	runtimeDecentTolerance = 12

	// A sub-hour runtime against a feature-length hint is a short film or
	// an extra, not the movie being looked up.
	shortFilmRuntime  = 60
	featureLengthHint = 80
)

// enrichCandidates fetches full details for up to `limit` of the strongest
// ambiguous candidates and recomputes their quality with runtime, spoken
// language and person-corroboration signals added. Distinct IDs are
// fetched concurrently under the semaphore; a failed fetch leaves that
// candidate's pre-enrichment quality untouched.
func (r *Resolver) enrichCandidates(ctx context.Context, payload LookupPayload, quals []CandidateQuality) []CandidateQuality {
	limit := r.cfg.RuntimeEnrichmentLimit
	if limit <= 0 {
		limit = 10
	}

	// Strongest first; only non-discarded candidates are worth a fetch.
	order := make([]int, 0, len(quals))
	for i := range quals {
		if !quals[i].Discard {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		qa, qb := quals[order[a]], quals[order[b]]
		if qa.Combined != qb.Combined {
			return qa.Combined > qb.Combined
		}
		if qa.TitleScore != qb.TitleScore {
			return qa.TitleScore > qb.TitleScore
		}
		return qa.Candidate.ID < qb.Candidate.ID
	})
	if len(order) > limit {
		order = order[:limit]
	}

	concurrency := int64(r.cfg.EnrichmentConcurrency)
	if concurrency <= 0 {
		concurrency = 4
	}
	sem := semaphore.NewWeighted(concurrency)
	var wg sync.WaitGroup

	fetched := make([]*MovieDetails, len(order))
	for slot, idx := range order {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(slot, idx int) {
			defer wg.Done()
			defer sem.Release(1)

			details, err := r.fetcher.movieDetails(ctx, quals[idx].Candidate.ID)
			if err != nil {
				r.logger.Warn().Err(err).
					Int("tmdbId", quals[idx].Candidate.ID).
					Msg("details fetch failed, keeping pre-enrichment quality")
				return
			}
			fetched[slot] = details
		}(slot, idx)
	}
	wg.Wait()

	for slot, idx := range order {
		if fetched[slot] == nil {
			continue
		}
		quals[idx] = reclassifyEnriched(payload, quals[idx], fetched[slot])
	}
	return quals
}

// reclassifyEnriched recomputes a candidate's quality with details signals.
func reclassifyEnriched(payload LookupPayload, q CandidateQuality, details *MovieDetails) CandidateQuality {
	q.Details = details
	q.Enriched = true

	// Details may fill gaps the listing left open.
	if q.Candidate.Year == 0 && details.Year != 0 {
		q.Candidate.Year = details.Year
		q.Year = yearQuality(payload.Year, details.Year)
	}

	// Titles on filmography entries are sometimes localized differently;
	// the details titles can only improve the score.
	title, score := titleQuality(payload.Variants, &MovieCandidate{
		Title:         details.Title,
		OriginalTitle: details.OriginalTitle,
	})
	if score > q.TitleScore {
		q.Title = title
		q.TitleScore = score
	}

	q.Language = languageQuality(payload.Languages, details.OriginalLanguage, details.SpokenLanguages)
	q.Runtime = runtimeQuality(payload.Duration, details.RuntimeMinutes)
	q.Source = corroborateSource(payload, q.Source, details)

	q.Combined = CombineEnrichedQuality(q.Source, q.Title, q.Year, q.Language, q.Runtime)
	q.Discard = q.Combined == QualityContradictory
	return q
}

// runtimeQuality scores agreement between the duration hint and the
// fetched runtime.
func runtimeQuality(hintMinutes, runtimeMinutes int) Quality {
	if hintMinutes == 0 || runtimeMinutes == 0 {
		return QualityNone
	}
	if runtimeMinutes < shortFilmRuntime && hintMinutes >= featureLengthHint {
		return QualityContradictory
	}

	diff := hintMinutes - runtimeMinutes
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= runtimeGoodTolerance:
		return QualityGood
	case diff <= runtimeDecentTolerance:
		return QualityDecent
	default:
		return QualityPoor
	}
}

// corroborateSource upgrades provenance when the fetched director or cast
// lists confirm the query's person hints.
func corroborateSource(payload LookupPayload, source Quality, details *MovieDetails) Quality {
	directorMatch := false
	for _, director := range payload.Directors {
		if PersonNameMatches(director, details.Directors) {
			directorMatch = true
			break
		}
	}
	actorMatch := false
	for _, actor := range payload.Actors {
		if PersonNameMatches(actor, details.Cast) {
			actorMatch = true
			break
		}
	}

	switch {
	case directorMatch && actorMatch:
		return QualityExcellent
	case (directorMatch || actorMatch) && source < QualityGood:
		return QualityGood
	default:
		return source
	}
}
