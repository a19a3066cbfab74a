package relevance

import "strings"

const (
	// keywordSaturation is the distinct-hit count at which the keyword
	// term reaches its maximum.
	keywordSaturation = 5.0
	// lengthSaturation is the character count at which the length term
	// reaches its maximum.
	lengthSaturation = 2000.0

	keywordWeight = 0.6
	lengthWeight  = 0.4
)

// crimeKeywords holds the per-language keyword tables keyed by ISO 639-1 code.
var crimeKeywords = map[string][]string{
	"pt": {
		"homicídio", "assassinato", "roubo", "furto", "tráfico", "agressão",
		"sequestro", "extorsão", "estupro", "latrocínio", "corrupção", "fraude",
		"crime organizado", "milícia", "tiroteio",
	},
	"en": {
		"homicide", "murder", "robbery", "theft", "trafficking", "assault",
		"kidnapping", "extortion", "rape", "felony", "corruption", "fraud",
		"organized crime", "shooting", "arson",
	},
}

// Supported reports whether a keyword table exists for the language.
func Supported(lang string) bool {
	_, ok := crimeKeywords[lang]
	return ok
}

// Languages lists the language codes with keyword tables.
func Languages() []string {
	langs := make([]string, 0, len(crimeKeywords))
	for lang := range crimeKeywords {
		langs = append(langs, lang)
	}
	return langs
}

// Score rates how strongly the text reads as crime reporting, in [0,1].
// The score grows with distinct keyword hits (case-insensitive substring
// match) and with text length, each saturating independently. Callers must
// pass a supported language; unsupported codes score with an empty keyword
// set and can only earn the length term.
func Score(text, lang string) float64 {
	if text == "" {
		return 0
	}

	lowered := strings.ToLower(text)
	hits := 0
	for _, keyword := range crimeKeywords[lang] {
		if strings.Contains(lowered, keyword) {
			hits++
		}
	}

	keywordTerm := min(float64(hits)/keywordSaturation, 1.0)
	lengthTerm := min(float64(len(text))/lengthSaturation, 1.0)
	return keywordTerm*keywordWeight + lengthTerm*lengthWeight
}
