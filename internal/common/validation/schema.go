// internal/common/validation/schema.go

// Package validation checks upstream record JSON against the ingestion
// contract before it reaches the model layer.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// recordSchema is the JSON shape produced by the trademark authority
// feed. Unknown keys are allowed and ignored downstream.
const recordSchema = `{
	"type": "object",
	"required": ["serial", "mark_text"],
	"properties": {
		"serial":            {"type": "string", "minLength": 1},
		"mark_text":         {"type": "string", "minLength": 1},
		"status":            {"type": "string"},
		"classes":           {"type": "array", "items": {"type": "integer", "minimum": 1, "maximum": 45}},
		"owner":             {"type": "string"},
		"filing_date":       {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
		"registration_date": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
		"goods_services":    {"type": "string"}
	},
	"additionalProperties": true
}`

var recordSchemaLoader = gojsonschema.NewStringLoader(recordSchema)

// ValidationResult reports schema conformance with field-level errors.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateRecordJSON validates one upstream record document.
func ValidateRecordJSON(doc []byte) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(recordSchemaLoader, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("record schema validation: %w", err)
	}
	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return out, nil
}
