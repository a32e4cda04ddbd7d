package rewrite

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed plan_schema.json
var planSchema string

var planSchemaLoader = gojsonschema.NewStringLoader(planSchema)

// ValidationError lists the schema violations of a plan document.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single violation at a field path.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("plan validation failed:")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf(" %d. %s: %s;", i+1, err.Field, err.Message))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// ValidatePlanJSON checks raw JSON against the embedded plan schema.
func ValidatePlanJSON(raw string) error {
	result, err := gojsonschema.Validate(planSchemaLoader, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("plan is not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
