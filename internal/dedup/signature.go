package dedup

import (
	"hash/fnv"
	"math"
	"math/rand"
	"regexp"
	"strings"
	"sync"
)

const (
	// DefaultSignatureSize is the number of hashed-minimum slots per signature.
	DefaultSignatureSize = 128

	// permutationSeed fixes the hash family so that signatures built in
	// different runs remain comparable.
	permutationSeed = 0x6372696d65 // "crime"
)

// shinglePattern matches word tokens of 5+ characters; each distinct token
// is one shingle of the approximate set.
var shinglePattern = regexp.MustCompile(`\w{5,}`)

// Signature is a fixed-size MinHash sketch of a document's shingle set.
type Signature []uint64

type permutation struct {
	a uint64
	b uint64
}

// permutationsFor returns the deterministic hash family for a signature size.
// Families are cached because every signature in a run shares one family.
var (
	permutationMu    sync.Mutex
	permutationCache = map[int][]permutation{}
)

func permutationsFor(size int) []permutation {
	permutationMu.Lock()
	defer permutationMu.Unlock()

	if perms, ok := permutationCache[size]; ok {
		return perms
	}

	rng := rand.New(rand.NewSource(permutationSeed))
	perms := make([]permutation, size)
	for i := range perms {
		a := rng.Uint64() | 1 // multiplier must be odd
		b := rng.Uint64()
		perms[i] = permutation{a: a, b: b}
	}
	permutationCache[size] = perms
	return perms
}

// Shingles returns the distinct lowercase 5+-character tokens of the text.
func Shingles(text string) []string {
	matched := shinglePattern.FindAllString(strings.ToLower(text), -1)
	seen := make(map[string]struct{}, len(matched))
	shingles := make([]string, 0, len(matched))
	for _, token := range matched {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		shingles = append(shingles, token)
	}
	return shingles
}

// NewSignature builds the MinHash signature of the text's shingle set.
// Identical text always yields an identical signature.
func NewSignature(text string, size int) Signature {
	if size <= 0 {
		size = DefaultSignatureSize
	}

	sig := make(Signature, size)
	for i := range sig {
		sig[i] = math.MaxUint64
	}

	perms := permutationsFor(size)
	for _, shingle := range Shingles(text) {
		base := hashShingle(shingle)
		for i, perm := range perms {
			if h := perm.a*base + perm.b; h < sig[i] {
				sig[i] = h
			}
		}
	}
	return sig
}

// Empty reports whether the signature was built from a text with no shingles.
// Empty signatures are maximally dissimilar to everything, including each other.
func (s Signature) Empty() bool {
	for _, v := range s {
		if v != math.MaxUint64 {
			return false
		}
	}
	return true
}

// EstimateJaccard estimates the Jaccard similarity of the underlying shingle
// sets as the fraction of matching slots.
func EstimateJaccard(a, b Signature) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	if a.Empty() || b.Empty() {
		return 0
	}

	matches := 0
	for i := range a {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(a))
}

func hashShingle(shingle string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(shingle))
	return h.Sum64()
}
