package pipeline

// outcome is the terminal state of one candidate item's transition chain.
type outcome int

const (
	outcomeSaved outcome = iota
	// outcomeLowScore: relevance below the acceptance gate.
	outcomeLowScore
	// outcomeDuplicate: the near-duplicate index already holds a
	// sufficiently similar signature from this run.
	outcomeDuplicate
	// outcomeNoLocation: no candidate place name resolved to a coordinate.
	outcomeNoLocation
	// outcomeFailed: a transient per-item failure (fetch, extraction,
	// store write). The run continues with the next item.
	outcomeFailed
)

func (o outcome) String() string {
	switch o {
	case outcomeSaved:
		return "saved"
	case outcomeLowScore:
		return "low_score"
	case outcomeDuplicate:
		return "duplicate"
	case outcomeNoLocation:
		return "no_location"
	case outcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}
