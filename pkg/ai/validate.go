package ai

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/scoring_response.schema.json
var scoringResponseSchema string

// ResponseValidator checks untrusted oracle output against the scoring contract.
type ResponseValidator struct {
	schema *jsonschema.Schema
}

// NewResponseValidator compiles the embedded scoring response schema.
func NewResponseValidator() (*ResponseValidator, error) {
	schema, err := jsonschema.CompileString("scoring_response.schema.json", scoringResponseSchema)
	if err != nil {
		return nil, fmt.Errorf("compile scoring schema: %w", err)
	}
	return &ResponseValidator{schema: schema}, nil
}

// MustResponseValidator is NewResponseValidator for package-level setup.
func MustResponseValidator() *ResponseValidator {
	validator, err := NewResponseValidator()
	if err != nil {
		panic(err)
	}
	return validator
}

// Valid reports whether raw satisfies the scoring contract.
func (v *ResponseValidator) Valid(raw any) bool {
	return raw != nil && v.schema.Validate(raw) == nil
}

// Validate checks raw before any field is read and only then decodes it.
func (v *ResponseValidator) Validate(raw any) (ScoringResponse, error) {
	if raw == nil {
		return ScoringResponse{}, fmt.Errorf("%w: empty document", ErrInvalidOracleResponse)
	}
	if err := v.schema.Validate(raw); err != nil {
		return ScoringResponse{}, fmt.Errorf("%w: %v", ErrInvalidOracleResponse, err)
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return ScoringResponse{}, fmt.Errorf("%w: %v", ErrInvalidOracleResponse, err)
	}

	var response ScoringResponse
	if err := json.Unmarshal(encoded, &response); err != nil {
		return ScoringResponse{}, fmt.Errorf("%w: %v", ErrInvalidOracleResponse, err)
	}

	return response, nil
}
