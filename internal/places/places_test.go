package places

import (
	"strings"
	"testing"
)

func TestRegistry_ResolveAndRequire(t *testing.T) {
	t.Parallel()

	registry, err := NewRegistry(NewEnglishExtractor(), NewPortugueseExtractor())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := registry.Require("en", "pt"); err != nil {
		t.Fatalf("expected en and pt to resolve: %v", err)
	}
	if _, err := registry.Resolve("fr"); err == nil {
		t.Fatalf("expected resolution failure for unregistered language")
	}

	extractor, err := registry.Resolve(" EN ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if extractor.Language() != "en" {
		t.Fatalf("unexpected extractor language: %q", extractor.Language())
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	t.Parallel()

	if _, err := NewRegistry(NewEnglishExtractor(), NewEnglishExtractor()); err == nil {
		t.Fatalf("expected error for duplicate language registration")
	}
}

func TestEnglishExtractor_AnchoredPlaces(t *testing.T) {
	t.Parallel()

	extractor := NewEnglishExtractor()
	text := "Two men were arrested in Rio de Janeiro after a shooting near Central Station. " +
		"Police in London opened an investigation."

	got := extractor.Extract(text)
	if len(got) < 2 {
		t.Fatalf("expected at least two candidates, got %v", got)
	}
	if got[0] != "Rio" {
		t.Fatalf("expected first candidate Rio, got %q", got[0])
	}
	if !contains(got, "Central Station") {
		t.Fatalf("expected Central Station in %v", got)
	}
	if !contains(got, "London") {
		t.Fatalf("expected London in %v", got)
	}
}

func TestPortugueseExtractor_ConnectorRuns(t *testing.T) {
	t.Parallel()

	extractor := NewPortugueseExtractor()
	text := "Um assalto foi registrado em São Paulo e outro na Cidade do México ontem."

	got := extractor.Extract(text)
	if !contains(got, "São Paulo") {
		t.Fatalf("expected São Paulo in %v", got)
	}
	if !contains(got, "Cidade do México") {
		t.Fatalf("expected Cidade do México in %v", got)
	}
}

func TestExtract_DedupAndCap(t *testing.T) {
	t.Parallel()

	extractor := NewEnglishExtractor()
	text := strings.Repeat("A robbery in London was reported. ", 3) +
		"Incidents in Paris, in Berlin, in Madrid, in Lisbon, in Vienna and in Warsaw followed."

	got := extractor.Extract(text)
	if len(got) != MaxCandidates {
		t.Fatalf("expected exactly %d candidates, got %v", MaxCandidates, got)
	}
	lowerSeen := make(map[string]struct{})
	for _, name := range got {
		key := strings.ToLower(name)
		if _, dup := lowerSeen[key]; dup {
			t.Fatalf("duplicate candidate %q in %v", name, got)
		}
		lowerSeen[key] = struct{}{}
	}
}

func TestExtract_NoCandidates(t *testing.T) {
	t.Parallel()

	extractor := NewEnglishExtractor()
	if got := extractor.Extract("nothing happened anywhere of note today"); len(got) != 0 {
		t.Fatalf("expected no candidates, got %v", got)
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
