package places

import (
	"fmt"
	"sort"
	"strings"
)

// Registry maps language codes to extractor implementations. The mapping is
// built and validated at startup; resolution failures at run time mean a
// language the pipeline was never configured for.
type Registry struct {
	extractors map[string]Extractor
}

func NewRegistry(extractors ...Extractor) (*Registry, error) {
	registry := &Registry{extractors: make(map[string]Extractor, len(extractors))}
	for _, extractor := range extractors {
		if extractor == nil {
			return nil, fmt.Errorf("extractor is nil")
		}
		lang := normalizeLang(extractor.Language())
		if lang == "" {
			return nil, fmt.Errorf("extractor language is required")
		}
		if _, dup := registry.extractors[lang]; dup {
			return nil, fmt.Errorf("duplicate extractor for language %q", lang)
		}
		registry.extractors[lang] = extractor
	}
	return registry, nil
}

// Resolve returns the extractor for a language code.
func (r *Registry) Resolve(lang string) (Extractor, error) {
	if r == nil || len(r.extractors) == 0 {
		return nil, fmt.Errorf("no place extractors are registered")
	}
	normalized := normalizeLang(lang)
	extractor, ok := r.extractors[normalized]
	if !ok {
		return nil, fmt.Errorf("no place extractor for language %q (available: %s)",
			normalized, strings.Join(r.Languages(), ", "))
	}
	return extractor, nil
}

// Require validates at startup that every listed language has an extractor.
func (r *Registry) Require(langs ...string) error {
	for _, lang := range langs {
		if _, err := r.Resolve(lang); err != nil {
			return err
		}
	}
	return nil
}

// Languages lists the registered language codes.
func (r *Registry) Languages() []string {
	if r == nil {
		return nil
	}
	langs := make([]string, 0, len(r.extractors))
	for lang := range r.extractors {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

func normalizeLang(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
