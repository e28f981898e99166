package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a named JSON Schema document. Compiled schemas are cached by Name.
type Schema struct {
	Name       string
	Definition string
}

var schemaCache sync.Map // map[string]*jsonschema.Schema

// StripCodeFence removes an optional markdown code-fence wrapper such as
// ```json ... ``` around a model reply.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")

	// Drop the language tag on the opening fence line, if any.
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], "{[") {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(strings.TrimPrefix(s, "json"), "JSON")
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// DecodeJSON strips any code fence from raw, validates the result against
// schema when one is given, and unmarshals it into v.
func DecodeJSON(raw string, schema *Schema, v any) error {
	cleaned, err := ValidateJSON(raw, schema)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(cleaned, v); err != nil {
		return &ErrInvalidResponse{Content: raw, Parsed: true, Err: err}
	}
	return nil
}

// ValidateJSON strips any code fence from raw, checks it against schema when
// one is given, and returns the JSON value exactly as the model wrote it.
func ValidateJSON(raw string, schema *Schema) (json.RawMessage, error) {
	cleaned := []byte(StripCodeFence(raw))
	if len(cleaned) == 0 {
		return nil, ErrEmptyResponse
	}

	var parsed any
	if err := json.Unmarshal(cleaned, &parsed); err != nil {
		// Fall back to the outermost JSON value embedded in surrounding prose.
		block, ok := extractJSONBlock(cleaned)
		if !ok {
			return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
		}
		if err := json.Unmarshal(block, &parsed); err != nil {
			return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
		}
		cleaned = block
	}

	if schema != nil {
		compiled, err := compiledSchema(schema)
		if err != nil {
			return nil, err
		}
		if err := compiled.Validate(parsed); err != nil {
			return nil, &ErrInvalidResponse{Content: raw, Parsed: true, Err: fmt.Errorf("schema %s: %w", schema.Name, err)}
		}
	}
	return json.RawMessage(cleaned), nil
}

func compiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schema.Definition))
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", schema.Name, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", schema.Name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", schema.Name, err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}

func extractJSONBlock(b []byte) ([]byte, bool) {
	start := bytes.IndexAny(b, "{[")
	if start < 0 {
		return nil, false
	}
	closer := byte('}')
	if b[start] == '[' {
		closer = ']'
	}
	end := bytes.LastIndexByte(b, closer)
	if end <= start {
		return nil, false
	}
	return b[start : end+1], true
}
