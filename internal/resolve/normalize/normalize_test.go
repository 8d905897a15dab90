package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitleQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain title unchanged", "The Virgin Suicides", "The Virgin Suicides"},
		{"html entities unescaped", "Fast &amp; Furious", "Fast & Furious"},
		{"smart quotes folded", "L’Avventura", "L'Avventura"},
		{"smart double quotes folded", "“Husbands”", `"Husbands"`},
		{"hyphen variants folded", "Spider‐Man", "Spider-Man"},
		{"whitespace collapsed", "  The   Godfather\t Part II ", "The Godfather Part II"},
		{"en dash preserved", "Gomorrah – The Series", "Gomorrah – The Series"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTitleQuery(tt.input))
		})
	}
}

func TestStripAccents(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Amélie", "Amelie"},
		{"Léon", "Leon"},
		{"Smultronstället", "Smultronstallet"},
		{"Der Himmel über Berlin", "Der Himmel uber Berlin"},
		{"Fælles", "Faelles"},
		{"Løvekvinnen", "Lovekvinnen"},
		{"Straße", "Strasse"},
		{"Łukasz", "Lukasz"},
		{"plain ascii", "plain ascii"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StripAccents(tt.input), "input %q", tt.input)
	}
}

func TestTitleVariants(t *testing.T) {
	t.Run("primary variant is the input", func(t *testing.T) {
		variants := TitleVariants("the virgin suicides")
		assert.Equal(t, []string{"the virgin suicides"}, variants)
	})

	t.Run("parentheticals stripped", func(t *testing.T) {
		variants := TitleVariants("oldboy (2003 version)")
		assert.Equal(t, []string{"oldboy (2003 version)", "oldboy"}, variants)
	})

	t.Run("accent variant added when diacritics present", func(t *testing.T) {
		variants := TitleVariants("amélie")
		assert.Equal(t, []string{"amélie", "amelie"}, variants)
	})

	t.Run("subtitle tails added for each separator", func(t *testing.T) {
		variants := TitleVariants("star wars: the last jedi")
		assert.Contains(t, variants, "the last jedi")
		assert.Equal(t, "star wars: the last jedi", variants[0])
	})

	t.Run("dash subtitle tail", func(t *testing.T) {
		variants := TitleVariants("okja - director's cut")
		assert.Contains(t, variants, "director's cut")
	})

	t.Run("subtitle stripping applies to generated variants", func(t *testing.T) {
		variants := TitleVariants("amélie: le destin")
		assert.Equal(t, []string{
			"amélie: le destin",
			"amelie: le destin",
			"le destin",
		}, variants)
	})

	t.Run("short tails skipped", func(t *testing.T) {
		variants := TitleVariants("weird: x")
		assert.Equal(t, []string{"weird: x"}, variants)
	})

	t.Run("case-insensitive dedup preserves first seen", func(t *testing.T) {
		variants := TitleVariants("Heat")
		assert.Equal(t, []string{"Heat"}, variants)
	})

	t.Run("pinyin segmentation of unspaced transliteration", func(t *testing.T) {
		variants := TitleVariants("chángjiāng túhuà")
		assert.Contains(t, variants, "changjiang tuhua")
		assert.Contains(t, variants, "chang jiang tuhua")
	})

	t.Run("no pinyin variant without diacritics", func(t *testing.T) {
		variants := TitleVariants("sunshine")
		assert.Equal(t, []string{"sunshine"}, variants)
	})
}

func TestExpandPersonNames(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			"comma separated",
			[]string{"Joel Coen, Ethan Coen"},
			[]string{"Joel Coen", "Ethan Coen"},
		},
		{
			"and separator",
			[]string{"Joel Coen and Ethan Coen"},
			[]string{"Joel Coen", "Ethan Coen"},
		},
		{
			"dutch en separator",
			[]string{"Joel Coen en Ethan Coen"},
			[]string{"Joel Coen", "Ethan Coen"},
		},
		{
			"ampersand and slash",
			[]string{"A & B / C"},
			[]string{"A", "B", "C"},
		},
		{
			"accents stripped",
			[]string{"Céline Sciamma"},
			[]string{"Celine Sciamma"},
		},
		{
			"placeholders dropped",
			[]string{"Unknown", "n/a", "Various", "onbekend", "Greta Gerwig"},
			[]string{"Greta Gerwig"},
		},
		{
			"dedup preserves first-seen order",
			[]string{"Bong Joon-ho", "bong joon-ho", "Park Chan-wook"},
			[]string{"Bong Joon-ho", "Park Chan-wook"},
		},
		{
			"empty and whitespace dropped",
			[]string{"", "   ", " , "},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPersonNames(tt.input))
		})
	}
}

func TestNormalizeLanguageCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"English", "en"},
		{"engels", "en"},
		{"Nederlands", "nl"},
		{"Français", "fr"},
		{"JAPANS", "ja"},
		{"en", "en"},
		{"en-US", "en"},
		{"pt_BR", "pt"},
		{"fra", "fra"},
		{"x", ""},
		{"not a language", ""},
		{"", ""},
		{"  spaans  ", "es"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeLanguageCode(tt.input), "input %q", tt.input)
	}
}

func TestIsProbablyNonMovieEvent(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		directors []string
		actors    []string
		want      bool
	}{
		{"filmquiz without people", "Grote Filmquiz", nil, nil, true},
		{"festival marathon", "Horror Marathon Night", nil, nil, true},
		{"sing-along", "Frozen Sing-Along", nil, nil, true},
		{"marker but director present", "Quiz Show", []string{"Robert Redford"}, nil, false},
		{"marker but actor present", "Festival", nil, []string{"Someone"}, false},
		{"plain movie", "The Godfather", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsProbablyNonMovieEvent(tt.title, tt.directors, tt.actors))
		})
	}
}
