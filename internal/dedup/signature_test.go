package dedup

import (
	"fmt"
	"strings"
	"testing"
)

func tokenText(ids ...int) string {
	tokens := make([]string, 0, len(ids))
	for _, id := range ids {
		tokens = append(tokens, fmt.Sprintf("token%03d", id))
	}
	return strings.Join(tokens, " ")
}

func rangeIDs(from, to int) []int {
	ids := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		ids = append(ids, i)
	}
	return ids
}

func TestShingles_DistinctLowercaseFivePlus(t *testing.T) {
	t.Parallel()

	got := Shingles("Short the Robbery ROBBERY robbery downtown ab cd")
	want := []string{"robbery", "downtown"}
	if len(got) != len(want) {
		t.Fatalf("unexpected shingles: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected shingle at %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestNewSignature_Deterministic(t *testing.T) {
	t.Parallel()

	text := "police arrested suspects after downtown robbery tuesday evening"
	first := NewSignature(text, DefaultSignatureSize)
	second := NewSignature(text, DefaultSignatureSize)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("identical text must yield identical signatures (slot %d)", i)
		}
	}
}

func TestNewSignature_EmptyTokenSet(t *testing.T) {
	t.Parallel()

	sig := NewSignature("a an to of in", DefaultSignatureSize)
	if !sig.Empty() {
		t.Fatalf("expected empty signature for text with no 5+-char tokens")
	}
}

func TestEstimateJaccard_IdenticalIsOne(t *testing.T) {
	t.Parallel()

	sig := NewSignature(tokenText(rangeIDs(0, 50)...), DefaultSignatureSize)
	if got := EstimateJaccard(sig, sig); got != 1.0 {
		t.Fatalf("expected 1.0 for identical signatures, got %f", got)
	}
}

func TestEstimateJaccard_DisjointIsNearZero(t *testing.T) {
	t.Parallel()

	a := NewSignature(tokenText(rangeIDs(0, 40)...), DefaultSignatureSize)
	b := NewSignature(tokenText(rangeIDs(100, 140)...), DefaultSignatureSize)
	if got := EstimateJaccard(a, b); got > 0.2 {
		t.Fatalf("expected near-zero estimate for disjoint shingle sets, got %f", got)
	}
}

func TestEstimateJaccard_EmptySignaturesNeverMatch(t *testing.T) {
	t.Parallel()

	a := NewSignature("", DefaultSignatureSize)
	b := NewSignature("", DefaultSignatureSize)
	if got := EstimateJaccard(a, b); got != 0 {
		t.Fatalf("two empty signatures must not match, got %f", got)
	}
}

func TestEstimateJaccard_TracksTrueOverlap(t *testing.T) {
	t.Parallel()

	// 60 shared tokens out of a 70-token union: true Jaccard ~0.857.
	a := NewSignature(tokenText(rangeIDs(0, 65)...), DefaultSignatureSize)
	b := NewSignature(tokenText(rangeIDs(5, 70)...), DefaultSignatureSize)
	got := EstimateJaccard(a, b)
	if got < 0.70 || got > 0.99 {
		t.Fatalf("estimate %f too far from true Jaccard 0.857", got)
	}
}
