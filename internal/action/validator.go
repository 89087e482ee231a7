// Package action validates structured action payloads against JSON Schemas.
//
// Validation is structural only. It deliberately does not consult the
// capability resolver: callers must already hold an Allow decision scoped to
// EXECUTE_ACTIONS before invoking the validator, and the validator
// independently rejects payloads that never declared that scope. Keeping the
// two gates separate means a bug that skips one is still caught by the other.
package action

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	dErrors "kbgate/pkg/domain-errors"
)

// Validator holds the compiled schema for each supported action kind.
// Construct once at startup; Validate is safe for concurrent use.
type Validator struct {
	schemas map[Kind]*jsonschema.Schema
}

// NewValidator compiles all action schemas. Compilation failure is a
// programming error and fatal at startup.
func NewValidator() (*Validator, error) {
	compiled := make(map[Kind]*jsonschema.Schema, len(rawSchemas))
	for kind, raw := range rawSchemas {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		url := fmt.Sprintf("https://kbgate.schemas.local/actions/%s.schema.json", strings.ToLower(string(kind)))
		if err := c.AddResource(url, strings.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("load schema for %s: %w", kind, err)
		}
		schema, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", kind, err)
		}
		compiled[kind] = schema
	}
	return &Validator{schemas: compiled}, nil
}

// Validate checks payload against the schema for kind and returns the
// normalized payload with defaults applied. Errors carry CodeInvalidInput
// with the offending field in the message.
func (v *Validator) Validate(kind Kind, payload map[string]any) (map[string]any, error) {
	schema, ok := v.schemas[kind]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown action kind: %s", kind)
	}
	if payload == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "action payload is required")
	}

	if err := schema.Validate(payload); err != nil {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s payload: %s", kind, schemaFailure(err))
	}

	normalized := make(map[string]any, len(payload))
	for k, val := range payload {
		normalized[k] = val
	}
	for field, def := range schemaDefaults[kind] {
		if _, set := normalized[field]; !set {
			normalized[field] = def
		}
	}
	return normalized, nil
}

// Kinds lists the supported action kinds.
func (v *Validator) Kinds() []Kind {
	out := make([]Kind, 0, len(v.schemas))
	for kind := range v.schemas {
		out = append(out, kind)
	}
	return out
}

// schemaFailure renders the innermost validation failure with its field
// location so callers see "field X: reason" instead of the full cause tree.
func schemaFailure(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	field := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if field == "" {
		field = "payload"
	}
	return fmt.Sprintf("field %s: %s", field, leaf.Message)
}
