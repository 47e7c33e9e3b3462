package action

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator type-checks action params against JSON Schema documents.
type Validator struct {
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema // keyed by action name
}

// NewValidator creates a params validator.
func NewValidator() *Validator {
	return &Validator{cache: make(map[string]*jsonschema.Schema)}
}

// Validate checks params against schema. A nil schema accepts everything.
func (v *Validator) Validate(name string, schema any, params Params) error {
	if schema == nil {
		return nil
	}

	compiled, err := v.compile(name, schema)
	if err != nil {
		return fmt.Errorf("schema compilation error: %w", err)
	}

	// Normalize Go-typed params into the JSON value model the validator expects.
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("unmarshal params: %w", err)
	}
	return compiled.Validate(doc)
}

func (v *Validator) compile(name string, schema any) (*jsonschema.Schema, error) {
	v.mu.RLock()
	if cached, ok := v.cache[name]; ok {
		v.mu.RUnlock()
		return cached, nil
	}
	v.mu.RUnlock()

	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	url := "hookbridge://action/" + name + ".json"

	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	v.mu.Lock()
	v.cache[name] = compiled
	v.mu.Unlock()
	return compiled, nil
}

var (
	idSchema     = map[string]any{"type": []any{"integer", "string"}}
	textSchema   = map[string]any{"type": []any{"string", "number"}}
	stringSchema = map[string]any{"type": "string"}
	metaSchema   = map[string]any{"type": "object"}
)

func objectSchema(props map[string]any) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": props,
	}
}

// schemas holds the built-in params schemas by action name.
var schemas = map[string]any{
	CreatePost: objectSchema(map[string]any{
		"title":      textSchema,
		"content":    textSchema,
		"status":     stringSchema,
		"author_id":  idSchema,
		"post_type":  stringSchema,
		"meta":       metaSchema,
		"categories": map[string]any{"type": "array", "items": idSchema},
		"tags":       map[string]any{"type": "array", "items": textSchema},
	}),
	UpdatePost: objectSchema(map[string]any{
		"post_id":    idSchema,
		"title":      textSchema,
		"content":    textSchema,
		"status":     stringSchema,
		"author_id":  idSchema,
		"meta":       metaSchema,
		"categories": map[string]any{"type": "array", "items": idSchema},
		"tags":       map[string]any{"type": "array", "items": textSchema},
	}),
	DeletePost: objectSchema(map[string]any{
		"post_id":      idSchema,
		"force_delete": map[string]any{"type": []any{"boolean", "integer", "string"}},
	}),
	CreateUser: objectSchema(map[string]any{
		"username":     stringSchema,
		"email":        stringSchema,
		"password":     stringSchema,
		"role":         stringSchema,
		"first_name":   textSchema,
		"last_name":    textSchema,
		"display_name": textSchema,
		"meta":         metaSchema,
	}),
	UpdateUser: objectSchema(map[string]any{
		"user_id":      idSchema,
		"email":        stringSchema,
		"password":     stringSchema,
		"role":         stringSchema,
		"first_name":   textSchema,
		"last_name":    textSchema,
		"display_name": textSchema,
		"meta":         metaSchema,
	}),
	CustomAction: objectSchema(map[string]any{
		"custom_action_type": stringSchema,
	}),
}
