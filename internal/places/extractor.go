package places

// MaxCandidates caps how many location names one document may yield.
const MaxCandidates = 5

// Extractor produces location-like entity names for one language. The
// returned names are deduplicated case-insensitively with order preserved,
// at most MaxCandidates per document.
type Extractor interface {
	Language() string
	Extract(text string) []string
}
