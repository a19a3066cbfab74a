package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// sampleRuneLimit bounds how much text the detector sees per document.
const sampleRuneLimit = 2000

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// supported lists the languages the pipeline carries keyword tables for.
var supported = []lingua.Language{
	lingua.English,
	lingua.Portuguese,
}

// DetectISO6391 returns the ISO 639-1 code of the detected language, or an
// empty string when the sample is too short or ambiguous.
func DetectISO6391(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}
	if runes := []rune(sample); len(runes) > sampleRuneLimit {
		sample = string(runes[:sampleRuneLimit])
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < 6 {
		return ""
	}

	language, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

// DetectOrDefault detects the document language and falls back when the
// detector cannot decide.
func DetectOrDefault(text, fallback string) string {
	if code := DetectISO6391(text); code != "" {
		return code
	}
	return fallback
}

// NormalizeCode reduces a language tag to its lowercase primary subtag, so
// "en-US" and "en_us" both become "en". Returns an empty string for blank or
// malformed tags.
func NormalizeCode(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if tag == "" {
		return ""
	}
	tag = strings.ReplaceAll(tag, "_", "-")
	if dash := strings.IndexByte(tag, '-'); dash >= 0 {
		tag = tag[:dash]
	}
	for _, r := range tag {
		if r < 'a' || r > 'z' {
			return ""
		}
	}
	return tag
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(supported...).
			WithPreloadedLanguageModels().
			Build()
	})
	return detector
}
