package resolve

import "sort"

// Reason codes carried on every decision trace.
const (
	ReasonAccepted            = "accepted"
	ReasonNoCandidates        = "no_candidates"
	ReasonAllDiscarded        = "all_candidates_discarded"
	ReasonAmbiguous           = "ambiguous_top_quality"
	ReasonAmbiguousDisambig   = "ambiguous_top_quality_disambiguated"
	ReasonNonMovieEvent       = "non_movie_event"
	DisambiguatedByPopularity = "popularity"
	DisambiguatedBySignals    = "signals"
	DisambiguatedByTitle      = "title"
	DisambiguationNotUnique   = "signals_not_unique"
)

// Decision statuses.
const (
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// DecisionTrace is the structured audit record of one resolution decision.
type DecisionTrace struct {
	Status         string  `json:"status"`
	Reason         string  `json:"reason"`
	GoodOptions    int     `json:"goodOptionCount"`
	TopQuality     string  `json:"topQuality,omitempty"`
	SecondMargin   int     `json:"secondGoodMargin"`
	Disambiguation string  `json:"disambiguation,omitempty"`
	TitleScore     float64 `json:"titleScore,omitempty"`
}

// LookupResult is the outcome of a resolution. A nil TmdbID means "no
// confident match", which is a normal outcome, not an error.
type LookupResult struct {
	TmdbID     *int            `json:"tmdbId"`
	Confidence *float64        `json:"confidence"`
	Trace      DecisionTrace   `json:"trace"`
	Winner     *MovieCandidate `json:"-"`
}

// Confidence base per accepted combined tier. The margin over the
// runner-up tier adds a small bonus on top.
var confidenceBase = map[Quality]float64{
	QualityExcellent: 95,
	QualityGood:      85,
	QualityDecent:    70,
	QualityPoor:      50,
}

const confidenceMarginBonus = 2.0

// decide runs the tie-break state machine over a classified pool and
// produces the terminal result.
func decide(quals []CandidateQuality, popularityRatio, popularityDelta float64) LookupResult {
	if len(quals) == 0 {
		return rejected(ReasonNoCandidates, DecisionTrace{})
	}

	ranked := make([]CandidateQuality, 0, len(quals))
	for _, q := range quals {
		if !q.Discard {
			ranked = append(ranked, q)
		}
	}
	if len(ranked) == 0 {
		return rejected(ReasonAllDiscarded, DecisionTrace{})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Combined != ranked[j].Combined {
			return ranked[i].Combined > ranked[j].Combined
		}
		return ranked[i].Candidate.ID < ranked[j].Candidate.ID
	})

	top := ranked[0].Combined
	tied := ranked[:1]
	for _, q := range ranked[1:] {
		if q.Combined != top {
			break
		}
		tied = append(tied, q)
	}

	margin := int(top) // margin over an empty runner-up tier
	if len(ranked) > len(tied) {
		margin = int(top) - int(ranked[len(tied)].Combined)
	}

	trace := DecisionTrace{
		GoodOptions:  len(tied),
		TopQuality:   top.String(),
		SecondMargin: margin,
	}

	if len(tied) == 1 {
		return accepted(tied[0], margin, ReasonAccepted, "", trace)
	}

	if winner, ok := disambiguateByPopularity(tied, popularityRatio, popularityDelta); ok {
		return accepted(winner, 0, ReasonAmbiguousDisambig, DisambiguatedByPopularity, trace)
	}
	if winner, ok := disambiguateBySignals(tied); ok {
		return accepted(winner, 0, ReasonAmbiguousDisambig, DisambiguatedBySignals, trace)
	}
	if winner, ok := disambiguateByTitle(tied); ok {
		return accepted(winner, 0, ReasonAmbiguousDisambig, DisambiguatedByTitle, trace)
	}

	trace.Disambiguation = DisambiguationNotUnique
	return rejected(ReasonAmbiguous, trace)
}

func accepted(q CandidateQuality, margin int, reason, disambiguation string, trace DecisionTrace) LookupResult {
	confidence := confidenceBase[q.Combined] + confidenceMarginBonus*float64(margin)
	if confidence > 100 {
		confidence = 100
	}

	trace.Status = StatusAccepted
	trace.Reason = reason
	trace.Disambiguation = disambiguation
	trace.TitleScore = q.TitleScore

	id := q.Candidate.ID
	return LookupResult{
		TmdbID:     &id,
		Confidence: &confidence,
		Trace:      trace,
		Winner:     q.Candidate,
	}
}

func rejected(reason string, trace DecisionTrace) LookupResult {
	trace.Status = StatusRejected
	trace.Reason = reason
	return LookupResult{Trace: trace}
}

// disambiguateByPopularity picks the candidate whose popularity leads every
// other tied candidate by both the ratio and the absolute delta.
func disambiguateByPopularity(tied []CandidateQuality, ratio, delta float64) (CandidateQuality, bool) {
	best, second := -1.0, -1.0
	bestIdx := -1
	for i, q := range tied {
		p := q.Candidate.Popularity
		if p > best {
			second = best
			best = p
			bestIdx = i
		} else if p > second {
			second = p
		}
	}
	if bestIdx < 0 || second <= 0 {
		if bestIdx >= 0 && second <= 0 && best >= delta {
			return tied[bestIdx], true
		}
		return CandidateQuality{}, false
	}
	if best >= second*ratio && best >= second+delta {
		return tied[bestIdx], true
	}
	return CandidateQuality{}, false
}

// disambiguateBySignals picks a candidate that is uniquely best on both the
// runtime and language enrichment axes among the tied set. Without any
// enriched candidate there is nothing to compare.
func disambiguateBySignals(tied []CandidateQuality) (CandidateQuality, bool) {
	anyEnriched := false
	for _, q := range tied {
		if q.Enriched {
			anyEnriched = true
			break
		}
	}
	if !anyEnriched {
		return CandidateQuality{}, false
	}

	runtimeWinner := uniqueAxisWinner(tied, func(q CandidateQuality) Quality { return q.Runtime })
	languageWinner := uniqueAxisWinner(tied, func(q CandidateQuality) Quality { return q.Language })
	if runtimeWinner >= 0 && runtimeWinner == languageWinner {
		return tied[runtimeWinner], true
	}
	return CandidateQuality{}, false
}

// disambiguateByTitle picks the candidate with strictly the best title
// quality among the tied set.
func disambiguateByTitle(tied []CandidateQuality) (CandidateQuality, bool) {
	idx := uniqueAxisWinner(tied, func(q CandidateQuality) Quality { return q.Title })
	if idx < 0 {
		return CandidateQuality{}, false
	}
	return tied[idx], true
}

// uniqueAxisWinner returns the index of the sole candidate holding the top
// rank on the axis, or -1 when the top rank is shared.
func uniqueAxisWinner(tied []CandidateQuality, axis func(CandidateQuality) Quality) int {
	best := QualityContradictory
	bestIdx := -1
	unique := false
	for i, q := range tied {
		v := axis(q)
		switch {
		case bestIdx < 0 || v > best:
			best = v
			bestIdx = i
			unique = true
		case v == best:
			unique = false
		}
	}
	if !unique {
		return -1
	}
	return bestIdx
}
