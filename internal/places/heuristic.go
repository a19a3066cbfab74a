package places

import (
	"strings"
	"unicode"
)

// heuristicExtractor scans for capitalized word runs anchored by a locative
// preposition ("shots were fired in Porto Alegre").
type heuristicExtractor struct {
	lang       string
	anchors    map[string]struct{}
	connectors map[string]struct{}
}

// NewEnglishExtractor returns the heuristic place extractor for English.
func NewEnglishExtractor() Extractor {
	return &heuristicExtractor{
		lang:       "en",
		anchors:    wordSet("in", "at", "near", "outside", "across"),
		connectors: wordSet("of", "the"),
	}
}

// NewPortugueseExtractor returns the heuristic place extractor for Portuguese.
func NewPortugueseExtractor() Extractor {
	return &heuristicExtractor{
		lang:       "pt",
		anchors:    wordSet("em", "no", "na", "nos", "nas", "perto"),
		connectors: wordSet("de", "do", "da", "dos", "das"),
	}
}

func (e *heuristicExtractor) Language() string { return e.lang }

func (e *heuristicExtractor) Extract(text string) []string {
	tokens := strings.Fields(text)

	candidates := make([]string, 0, MaxCandidates)
	seen := make(map[string]struct{}, MaxCandidates)

	for i := 0; i < len(tokens); i++ {
		if !e.isAnchor(tokens[i]) {
			continue
		}

		run := e.capitalizedRun(tokens, i+1)
		if run == "" {
			continue
		}

		key := strings.ToLower(run)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		candidates = append(candidates, run)
		if len(candidates) >= MaxCandidates {
			break
		}
	}

	return candidates
}

// capitalizedRun collects up to four capitalized words starting at index
// start, allowing connector words only between capitalized ones.
func (e *heuristicExtractor) capitalizedRun(tokens []string, start int) string {
	const maxRunWords = 4

	words := make([]string, 0, maxRunWords)
	pendingConnector := ""
	for i := start; i < len(tokens) && len(words) < maxRunWords; i++ {
		word := trimWordPunct(tokens[i])
		if word == "" {
			break
		}

		if isCapitalized(word) {
			if pendingConnector != "" {
				words = append(words, pendingConnector)
				pendingConnector = ""
			}
			words = append(words, word)
			if endsClause(tokens[i]) {
				break
			}
			continue
		}

		if len(words) > 0 && pendingConnector == "" && e.isConnector(word) {
			pendingConnector = word
			continue
		}
		break
	}

	if len(words) == 0 {
		return ""
	}
	run := strings.Join(words, " ")
	if len([]rune(run)) < 3 {
		return ""
	}
	return run
}

func (e *heuristicExtractor) isAnchor(token string) bool {
	_, ok := e.anchors[strings.ToLower(trimWordPunct(token))]
	return ok
}

func (e *heuristicExtractor) isConnector(word string) bool {
	_, ok := e.connectors[strings.ToLower(word)]
	return ok
}

func isCapitalized(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}

// endsClause reports whether the raw token carried trailing punctuation that
// terminates the run ("in Rio," must not swallow the next sentence).
func endsClause(raw string) bool {
	return strings.ContainsAny(raw, ".,;:!?)\"'")
}

func trimWordPunct(token string) string {
	return strings.TrimFunc(token, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}
