package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPopularityRatio = 1.8
	testPopularityDelta = 10.0
)

func candidateQuality(id int, combined Quality, popularity float64) CandidateQuality {
	return CandidateQuality{
		Candidate: &MovieCandidate{ID: id, Title: "candidate", Popularity: popularity},
		Combined:  combined,
	}
}

func TestDecideEmptyPool(t *testing.T) {
	result := decide(nil, testPopularityRatio, testPopularityDelta)

	assert.Nil(t, result.TmdbID)
	assert.Nil(t, result.Confidence)
	assert.Equal(t, StatusRejected, result.Trace.Status)
	assert.Equal(t, ReasonNoCandidates, result.Trace.Reason)
}

func TestDecideAllDiscarded(t *testing.T) {
	q := candidateQuality(1, QualityContradictory, 50)
	q.Discard = true

	result := decide([]CandidateQuality{q}, testPopularityRatio, testPopularityDelta)

	assert.Nil(t, result.TmdbID)
	assert.Equal(t, ReasonAllDiscarded, result.Trace.Reason)
}

func TestDecideSingleWinner(t *testing.T) {
	quals := []CandidateQuality{
		candidateQuality(10, QualityExcellent, 50),
		candidateQuality(20, QualityDecent, 80),
	}

	result := decide(quals, testPopularityRatio, testPopularityDelta)

	require.NotNil(t, result.TmdbID)
	assert.Equal(t, 10, *result.TmdbID)
	assert.Equal(t, ReasonAccepted, result.Trace.Reason)
	assert.Equal(t, 1, result.Trace.GoodOptions)
	assert.Equal(t, int(QualityExcellent)-int(QualityDecent), result.Trace.SecondMargin)

	require.NotNil(t, result.Confidence)
	assert.InDelta(t, 99, *result.Confidence, 0.001) // 95 base + 2*2 margin
}

func TestDecideConfidenceClamped(t *testing.T) {
	quals := []CandidateQuality{candidateQuality(10, QualityExcellent, 50)}

	result := decide(quals, testPopularityRatio, testPopularityDelta)

	require.NotNil(t, result.Confidence)
	assert.LessOrEqual(t, *result.Confidence, 100.0)
}

func TestDecideAmbiguityRejection(t *testing.T) {
	// Tied tier, popularity lead below both thresholds, no unique axis winner.
	quals := []CandidateQuality{
		candidateQuality(10, QualityGood, 50),
		candidateQuality(20, QualityGood, 55),
	}

	result := decide(quals, testPopularityRatio, testPopularityDelta)

	assert.Nil(t, result.TmdbID)
	assert.Nil(t, result.Confidence)
	assert.Equal(t, ReasonAmbiguous, result.Trace.Reason)
	assert.Equal(t, DisambiguationNotUnique, result.Trace.Disambiguation)
	assert.Equal(t, 2, result.Trace.GoodOptions)
}

func TestDecidePopularityDisambiguation(t *testing.T) {
	quals := []CandidateQuality{
		candidateQuality(10, QualityGood, 90), // 90 >= 1.8*40 and >= 40+10
		candidateQuality(20, QualityGood, 40),
	}

	result := decide(quals, testPopularityRatio, testPopularityDelta)

	require.NotNil(t, result.TmdbID)
	assert.Equal(t, 10, *result.TmdbID)
	assert.Equal(t, ReasonAmbiguousDisambig, result.Trace.Reason)
	assert.Equal(t, DisambiguatedByPopularity, result.Trace.Disambiguation)

	// Disambiguated accepts get the tier base only, no margin bonus.
	require.NotNil(t, result.Confidence)
	assert.InDelta(t, confidenceBase[QualityGood], *result.Confidence, 0.001)
}

func TestDecidePopularityRatioAloneInsufficient(t *testing.T) {
	// 9 vs 4: ratio satisfied (2.25x) but delta only 5.
	quals := []CandidateQuality{
		candidateQuality(10, QualityGood, 9),
		candidateQuality(20, QualityGood, 4),
	}

	result := decide(quals, testPopularityRatio, testPopularityDelta)

	assert.Nil(t, result.TmdbID)
	assert.Equal(t, ReasonAmbiguous, result.Trace.Reason)
}

func TestDecideSignalDisambiguation(t *testing.T) {
	a := candidateQuality(10, QualityGood, 50)
	a.Enriched = true
	a.Runtime = QualityGood
	a.Language = QualityGood

	b := candidateQuality(20, QualityGood, 50)
	b.Enriched = true
	b.Runtime = QualityPoor
	b.Language = QualityNone

	result := decide([]CandidateQuality{a, b}, testPopularityRatio, testPopularityDelta)

	require.NotNil(t, result.TmdbID)
	assert.Equal(t, 10, *result.TmdbID)
	assert.Equal(t, DisambiguatedBySignals, result.Trace.Disambiguation)
}

func TestDecideSignalDisambiguationNotUnique(t *testing.T) {
	// Best runtime and best language split across different candidates.
	a := candidateQuality(10, QualityGood, 50)
	a.Enriched = true
	a.Runtime = QualityGood
	a.Language = QualityNone

	b := candidateQuality(20, QualityGood, 50)
	b.Enriched = true
	b.Runtime = QualityPoor
	b.Language = QualityGood

	result := decide([]CandidateQuality{a, b}, testPopularityRatio, testPopularityDelta)

	assert.Nil(t, result.TmdbID)
	assert.Equal(t, ReasonAmbiguous, result.Trace.Reason)
}

func TestDecideTitleDisambiguation(t *testing.T) {
	a := candidateQuality(10, QualityGood, 50)
	a.Title = QualityExcellent

	b := candidateQuality(20, QualityGood, 50)
	b.Title = QualityGood

	result := decide([]CandidateQuality{a, b}, testPopularityRatio, testPopularityDelta)

	require.NotNil(t, result.TmdbID)
	assert.Equal(t, 10, *result.TmdbID)
	assert.Equal(t, DisambiguatedByTitle, result.Trace.Disambiguation)
}

func TestDecideDiscardNotBlocking(t *testing.T) {
	discarded := candidateQuality(10, QualityContradictory, 90)
	discarded.Discard = true
	poor := candidateQuality(20, QualityPoor, 5)

	result := decide([]CandidateQuality{discarded, poor}, testPopularityRatio, testPopularityDelta)

	require.NotNil(t, result.TmdbID)
	assert.Equal(t, 20, *result.TmdbID, "a discarded candidate must not block a valid poor one")
	assert.Equal(t, ReasonAccepted, result.Trace.Reason)
}

func TestDecideDeterministic(t *testing.T) {
	quals := func() []CandidateQuality {
		return []CandidateQuality{
			candidateQuality(30, QualityGood, 12),
			candidateQuality(10, QualityExcellent, 40),
			candidateQuality(20, QualityDecent, 99),
		}
	}

	first := decide(quals(), testPopularityRatio, testPopularityDelta)
	second := decide(quals(), testPopularityRatio, testPopularityDelta)

	require.NotNil(t, first.TmdbID)
	require.NotNil(t, second.TmdbID)
	assert.Equal(t, *first.TmdbID, *second.TmdbID)
	assert.Equal(t, first.Trace, second.Trace)
}
