package resolve

// Quality is a totally ordered match-quality tier. It is used both as a
// per-axis signal (source, title, year, language, runtime) and as the
// combined rank candidates are sorted by.
type Quality int8

const (
	QualityContradictory Quality = iota
	QualityNone
	QualityPoor
	QualityDecent
	QualityGood
	QualityExcellent
)

func (q Quality) String() string {
	switch q {
	case QualityContradictory:
		return "contradictory"
	case QualityNone:
		return "none"
	case QualityPoor:
		return "poor"
	case QualityDecent:
		return "decent"
	case QualityGood:
		return "good"
	case QualityExcellent:
		return "excellent"
	default:
		return "unknown"
	}
}

// downgrade steps a quality one usable tier down. None is skipped because
// it means "no signal", which is not a rank a penalty should land on.
func (q Quality) downgrade() Quality {
	switch q {
	case QualityExcellent:
		return QualityGood
	case QualityGood:
		return QualityDecent
	case QualityDecent:
		return QualityPoor
	default:
		return QualityContradictory
	}
}

// Point weights per axis for the combination function. Title dominates;
// source corroboration and year/language agreement push a candidate up a
// tier, contradictions pull it down hard.
var (
	titlePoints = map[Quality]int{
		QualityContradictory: -3,
		QualityNone:          0,
		QualityPoor:          1,
		QualityDecent:        2,
		QualityGood:          3,
		QualityExcellent:     4,
	}
	sourcePoints = map[Quality]int{
		QualityPoor:      0,
		QualityDecent:    1,
		QualityGood:      2,
		QualityExcellent: 3,
	}
	yearPoints = map[Quality]int{
		QualityContradictory: -2,
		QualityNone:          0,
		QualityPoor:          -1,
		QualityDecent:        1,
		QualityGood:          2,
	}
	languagePoints = map[Quality]int{
		QualityContradictory: -2,
		QualityNone:          0,
		QualityGood:          1,
	}
	runtimePoints = map[Quality]int{
		QualityContradictory: -2,
		QualityNone:          0,
		QualityPoor:          -1,
		QualityDecent:        1,
		QualityGood:          2,
	}
)

// CombineQuality derives the combined tier from the pre-enrichment axes.
//
// Guarantees, relied on by the decision engine:
//   - a contradictory title or language caps the result at Decent no
//     matter how strong the source corroboration is;
//   - a contradictory title with search-only (Poor) provenance combines to
//     Contradictory, which is the discard tier;
//   - a contradictory title found via a strong person path floors at Poor,
//     so it stays rankable as a last resort.
func CombineQuality(source, title, year, language Quality) Quality {
	pts := titlePoints[title] + sourcePoints[source] + yearPoints[year] + languagePoints[language]
	return applyQualityCaps(pointsToTier(pts), source, title, language)
}

// CombineEnrichedQuality folds the runtime axis in alongside the
// pre-enrichment ones. The same caps apply.
func CombineEnrichedQuality(source, title, year, language, runtime Quality) Quality {
	pts := titlePoints[title] + sourcePoints[source] + yearPoints[year] +
		languagePoints[language] + runtimePoints[runtime]
	return applyQualityCaps(pointsToTier(pts), source, title, language)
}

func pointsToTier(pts int) Quality {
	switch {
	case pts >= 8:
		return QualityExcellent
	case pts >= 6:
		return QualityGood
	case pts >= 4:
		return QualityDecent
	case pts >= 2:
		return QualityPoor
	default:
		return QualityContradictory
	}
}

func applyQualityCaps(combined, source, title, language Quality) Quality {
	if (title == QualityContradictory || language == QualityContradictory) && combined > QualityDecent {
		combined = QualityDecent
	}
	if title == QualityContradictory && source >= QualityGood && combined < QualityPoor {
		combined = QualityPoor
	}
	return combined
}

// CandidateQuality is a candidate plus its per-axis and combined quality.
// Runtime stays QualityNone until enrichment has run for the candidate.
type CandidateQuality struct {
	Candidate *MovieCandidate
	Source    Quality
	Title     Quality
	Year      Quality
	Language  Quality
	Runtime   Quality

	// TitleScore is the best fuzzy similarity (0-100) across all variants,
	// kept for diagnostics and title-based tie-breaking.
	TitleScore float64

	Combined Quality
	Enriched bool
	Details  *MovieDetails

	// Discard marks candidates excluded from ranking but retained for the
	// decision trace.
	Discard bool
}
