package dedup

import (
	"encoding/binary"
	"fmt"
	"math"
)

const DefaultThreshold = 0.85

// Index answers whether a sufficiently similar signature has already been
// inserted. Signatures are bucketed by banding their hashed-minimum values;
// only signatures sharing an entire band are compared in full, which bounds
// the comparison cost against brute-force all-pairs.
//
// The index is scoped to one pipeline run and is rebuilt each run. It never
// consults durable storage, so paraphrased republications across runs go
// undetected; only exact-link reruns are caught by the event store's link
// uniqueness.
type Index struct {
	size      int
	threshold float64
	bands     int
	rows      int

	tables     []map[string][]string
	signatures map[string]Signature
}

// NewIndex builds a run-scoped near-duplicate index for signatures of the
// given size, matching at the given estimated-Jaccard threshold.
func NewIndex(threshold float64, size int) (*Index, error) {
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("threshold must be in (0,1), got %f", threshold)
	}
	if size < 4 {
		return nil, fmt.Errorf("signature size must be >= 4, got %d", size)
	}

	bands, rows := optimalBanding(threshold, size)
	tables := make([]map[string][]string, bands)
	for i := range tables {
		tables[i] = make(map[string][]string)
	}

	return &Index{
		size:       size,
		threshold:  threshold,
		bands:      bands,
		rows:       rows,
		tables:     tables,
		signatures: make(map[string]Signature),
	}, nil
}

// Query reports whether an already-inserted signature is estimated to have
// Jaccard similarity >= the index threshold. Empty signatures never match.
func (ix *Index) Query(sig Signature) bool {
	if ix == nil || len(sig) != ix.size || sig.Empty() {
		return false
	}

	seen := make(map[string]struct{})
	for band := 0; band < ix.bands; band++ {
		for _, key := range ix.tables[band][ix.bandKey(sig, band)] {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if EstimateJaccard(sig, ix.signatures[key]) >= ix.threshold {
				return true
			}
		}
	}
	return false
}

// Insert stores the signature under key. Re-inserting a key overwrites its
// signature but leaves stale band entries behind; callers insert each key
// once per run.
func (ix *Index) Insert(key string, sig Signature) {
	if ix == nil || len(sig) != ix.size {
		return
	}

	ix.signatures[key] = sig
	for band := 0; band < ix.bands; band++ {
		bandKey := ix.bandKey(sig, band)
		ix.tables[band][bandKey] = append(ix.tables[band][bandKey], key)
	}
}

// Len returns the number of inserted signatures.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.signatures)
}

func (ix *Index) bandKey(sig Signature, band int) string {
	buf := make([]byte, 8*ix.rows)
	for i, v := range sig[band*ix.rows : (band+1)*ix.rows] {
		binary.LittleEndian.PutUint64(buf[8*i:], v)
	}
	return string(buf)
}

// optimalBanding picks (bands, rows) with bands*rows <= size by minimizing
// the equally weighted sum of false-positive and false-negative probability
// mass around the threshold, integrating the standard S-curve
// 1-(1-s^rows)^bands.
func optimalBanding(threshold float64, size int) (int, int) {
	bestBands, bestRows := 1, size
	bestError := math.Inf(1)

	for rows := 1; rows <= size; rows++ {
		maxBands := size / rows
		for bands := 1; bands <= maxBands; bands++ {
			fp := integrateProbability(0, threshold, bands, rows)
			fn := (1 - threshold) - integrateProbability(threshold, 1, bands, rows)
			err := 0.5*fp + 0.5*fn
			if err < bestError {
				bestError = err
				bestBands, bestRows = bands, rows
			}
		}
	}
	return bestBands, bestRows
}

// integrateProbability integrates 1-(1-s^rows)^bands over [lo, hi].
func integrateProbability(lo, hi float64, bands, rows int) float64 {
	const steps = 100
	width := (hi - lo) / steps
	area := 0.0
	for i := 0; i < steps; i++ {
		s := lo + (float64(i)+0.5)*width
		area += 1 - math.Pow(1-math.Pow(s, float64(rows)), float64(bands))
	}
	return area * width
}
