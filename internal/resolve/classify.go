package resolve

// Title-quality thresholds over the 0-100 similarity scale. These values
// are load-bearing for the accept/reject behavior and match the documented
// defaults.
const (
	titleExactThreshold  = 99.0
	titleGoodThreshold   = 85.0
	titleDecentThreshold = 70.0
	titlePoorThreshold   = 45.0
)

// classifyCandidate computes the cheap pre-enrichment quality of a pooled
// candidate using only fields present in search and filmography listings.
func classifyCandidate(payload LookupPayload, c *MovieCandidate) CandidateQuality {
	source := sourceQuality(c)
	title, score := titleQuality(payload.Variants, c)
	year := yearQuality(payload.Year, c.Year)
	language := languageQuality(payload.Languages, c.OriginalLanguage, nil)

	combined := CombineQuality(source, title, year, language)

	return CandidateQuality{
		Candidate:  c,
		Source:     source,
		Title:      title,
		Year:       year,
		Language:   language,
		Runtime:    QualityNone,
		TitleScore: score,
		Combined:   combined,
		Discard:    combined == QualityContradictory,
	}
}

// sourceQuality ranks discovery provenance: corroboration across a
// director and an actor path is the strongest signal a scraped listing can
// give; search-only discovery is the weakest.
func sourceQuality(c *MovieCandidate) Quality {
	directed := c.HasSource(SourceDirected)
	acted := c.HasSource(SourceActed)
	searched := c.HasSource(SourceSearched)

	switch {
	case directed && acted:
		return QualityExcellent
	case (directed || acted) && searched:
		return QualityGood
	case directed || acted:
		return QualityDecent
	default:
		return QualityPoor
	}
}

// titleQuality scores the candidate's title and original title against
// every query variant and keeps the best.
func titleQuality(variants []string, c *MovieCandidate) (Quality, float64) {
	best := 0.0
	mismatch := false

	for _, variant := range variants {
		for _, title := range []string{c.Title, c.OriginalTitle} {
			if title == "" {
				continue
			}
			score := TitleSimilarity(variant, title)
			if score > best {
				best = score
				mismatch = SequelMismatch(variant, title)
			}
		}
	}

	var q Quality
	switch {
	case best >= titleExactThreshold:
		q = QualityExcellent
	case best >= titleGoodThreshold:
		q = QualityGood
	case best >= titleDecentThreshold:
		q = QualityDecent
	case best >= titlePoorThreshold:
		q = QualityPoor
	default:
		q = QualityContradictory
	}

	if mismatch {
		q = q.downgrade()
	}
	return q, best
}

// yearQuality scores agreement between the year hint and a candidate year.
func yearQuality(hint, year int) Quality {
	if hint == 0 || year == 0 {
		return QualityNone
	}
	diff := hint - year
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 1:
		return QualityGood
	case diff <= 3:
		return QualityDecent
	default:
		return QualityPoor
	}
}

// languageQuality scores the language hints against what is known of the
// candidate. Before enrichment only the original language is known; spoken
// languages join after a details fetch. A hint set disjoint from all known
// candidate languages is a contradiction.
func languageQuality(hints []string, original string, spoken []string) Quality {
	if len(hints) == 0 {
		return QualityNone
	}

	known := make(map[string]struct{})
	if original != "" {
		known[original] = struct{}{}
	}
	for _, code := range spoken {
		if code != "" {
			known[code] = struct{}{}
		}
	}
	if len(known) == 0 {
		return QualityNone
	}

	for _, hint := range hints {
		if _, ok := known[hint]; ok {
			return QualityGood
		}
	}
	return QualityContradictory
}
