package feedschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed feed_list.schema.json
var feedListSchemaJSON string

// FeedSource is one entry of an operator-supplied feed list file.
type FeedSource struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ValidateFeedList checks raw against the embedded feed list schema and
// returns the decoded sources. Duplicate URLs are rejected so a run never
// polls the same feed twice.
func ValidateFeedList(raw json.RawMessage) ([]FeedSource, error) {
	value, err := decodeStrictJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("decode feed list JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize feed list JSON: %w", err)
	}

	var sources []FeedSource
	if err := json.Unmarshal(normalized, &sources); err != nil {
		return nil, fmt.Errorf("unmarshal feed list: %w", err)
	}

	if err := validateSemantics(sources); err != nil {
		return nil, err
	}

	return sources, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("feed_list.schema.json", strings.NewReader(feedListSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("feed_list.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("feed list is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("feed list contains trailing content")
	}

	return value, nil
}

func validateSemantics(sources []FeedSource) error {
	seen := make(map[string]struct{}, len(sources))
	for i, source := range sources {
		trimmed := strings.TrimSpace(source.URL)
		if trimmed == "" {
			return fmt.Errorf("sources[%d].url must not be empty", i)
		}
		if _, err := url.ParseRequestURI(trimmed); err != nil {
			return fmt.Errorf("sources[%d].url is not a valid URI: %w", i, err)
		}
		if _, ok := seen[trimmed]; ok {
			return fmt.Errorf("sources[%d].url is a duplicate: %s", i, trimmed)
		}
		seen[trimmed] = struct{}{}
	}
	return nil
}
