package petrifile

import (
	"bytes"
	"encoding/json"
	"fmt"
	neturl "net/url"

	"github.com/jt05610/cpn"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schemas validates token data per color with JSON Schema.
type Schemas struct {
	compiled map[cpn.Color]*jsonschema.Schema
	docs     map[cpn.Color]any
}

func NewSchemas() *Schemas {
	return &Schemas{
		compiled: make(map[cpn.Color]*jsonschema.Schema),
		docs:     make(map[cpn.Color]any),
	}
}

// Add compiles schema, a decoded JSON Schema document, for tokens of color c.
func (s *Schemas) Add(c cpn.Color, schema any) error {
	data, err := json.Marshal(normalizeYAML(schema))
	if err != nil {
		return fmt.Errorf("schema for %s: %w", c, err)
	}
	url := "mem://schemas/" + neturl.PathEscape(c.String()) + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("schema for %s: %w", c, err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return fmt.Errorf("schema for %s: %w", c, err)
	}
	s.compiled[c] = compiled
	s.docs[c] = schema
	return nil
}

// Document returns the schema document added for c.
func (s *Schemas) Document(c cpn.Color) (any, bool) {
	doc, ok := s.docs[c]
	return doc, ok
}

func (s *Schemas) Has(c cpn.Color) bool {
	_, ok := s.compiled[c]
	return ok
}

// Validate checks data against the schema of color c. Colors without a
// schema accept any data.
func (s *Schemas) Validate(c cpn.Color, data map[string]any) error {
	schema, ok := s.compiled[c]
	if !ok {
		return nil
	}
	if data == nil {
		data = map[string]any{}
	}
	// the validator expects values shaped like encoding/json output
	b, err := json.Marshal(normalizeYAML(data))
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidTokenData, c, err)
	}
	return nil
}

// ValidateToken checks a token's data against its color's schema.
func (s *Schemas) ValidateToken(t *cpn.Token) error {
	return s.Validate(t.Color(), t.Data())
}

func (s *Schemas) merge(other *Schemas) {
	for c, schema := range other.compiled {
		if _, ok := s.compiled[c]; !ok {
			s.compiled[c] = schema
			s.docs[c] = other.docs[c]
		}
	}
}

// normalizeYAML converts the map[any]any values some YAML decoders produce
// into map[string]any so they can be marshaled as JSON.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, x := range val {
			m[fmt.Sprint(k)] = normalizeYAML(x)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, x := range val {
			m[k] = normalizeYAML(x)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, x := range val {
			s[i] = normalizeYAML(x)
		}
		return s
	}
	return v
}
