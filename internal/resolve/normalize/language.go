package normalize

import (
	"regexp"
	"strings"
)

// languageAliases maps free-form language labels (as scraped from cinema
// sites, mostly English and Dutch) to ISO 639-1/2 codes.
var languageAliases = map[string]string{
	"english": "en", "engels": "en",
	"french": "fr", "francais": "fr", "frans": "fr",
	"dutch": "nl", "nederlands": "nl", "flemish": "nl", "vlaams": "nl",
	"german": "de", "deutsch": "de", "duits": "de",
	"spanish": "es", "espanol": "es", "spaans": "es",
	"italian": "it", "italiano": "it", "italiaans": "it",
	"portuguese": "pt", "portugees": "pt",
	"japanese": "ja", "japans": "ja",
	"korean": "ko", "koreaans": "ko",
	"chinese": "zh", "mandarin": "zh", "cantonese": "cn", "chinees": "zh",
	"arabic": "ar", "arabisch": "ar",
	"russian": "ru", "russisch": "ru",
	"hindi":   "hi",
	"turkish": "tr", "turks": "tr",
	"polish": "pl", "pools": "pl",
	"swedish": "sv", "zweeds": "sv",
	"danish": "da", "deens": "da",
	"norwegian": "no", "noors": "no",
	"finnish": "fi", "fins": "fi",
	"greek": "el", "grieks": "el",
	"hebrew": "he", "hebreeuws": "he",
	"czech": "cs", "tsjechisch": "cs",
	"hungarian": "hu", "hongaars": "hu",
	"ukrainian": "uk", "oekraiens": "uk",
	"indonesian": "id", "indonesisch": "id",
	"thai": "th",
}

var nonAlpha = regexp.MustCompile(`[^a-z]+`)

// NormalizeLanguageCode maps a free-form language label to a two- or
// three-letter code. Returns "" when no usable code can be derived.
func NormalizeLanguageCode(value string) string {
	cleaned := strings.ToLower(strings.TrimSpace(StripAccents(value)))
	if cleaned == "" {
		return ""
	}

	if code, ok := languageAliases[nonAlpha.ReplaceAllString(cleaned, "")]; ok {
		return code
	}

	// "en-US" style values: the region suffix is noise.
	if idx := strings.IndexAny(cleaned, "-_"); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	cleaned = nonAlpha.ReplaceAllString(cleaned, "")

	if len(cleaned) >= 2 && len(cleaned) <= 3 {
		return cleaned
	}
	return ""
}
