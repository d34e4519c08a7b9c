package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/samply/golang-fhir-models/fhir-models/fhir"

	"fhirroute/internal/resource"
)

// ValidationError represents a single validation error or warning
type ValidationError struct {
	Field    string // FHIR path (e.g., "subject", "performer[0].reference")
	Message  string
	Severity string // "error" or "warning"
}

// Validator validates FHIR resources
type Validator interface {
	Validate(resource any) []ValidationError
}

// CompositeValidator combines multiple validators
type CompositeValidator struct {
	validators []Validator
}

// NewCompositeValidator creates a new composite validator
func NewCompositeValidator(validators ...Validator) *CompositeValidator {
	return &CompositeValidator{
		validators: validators,
	}
}

// NewDefaultValidator returns the validators the router runs
func NewDefaultValidator() *CompositeValidator {
	return NewCompositeValidator(
		NewRequiredFieldsValidator(),
		NewDateTimeValidator(),
		NewReferenceValidator(),
	)
}

// Validate runs all validators and collects errors
func (c *CompositeValidator) Validate(resource any) []ValidationError {
	var errors []ValidationError
	for _, validator := range c.validators {
		errors = append(errors, validator.Validate(resource)...)
	}
	return errors
}

// HasErrors reports whether any entry has error severity
func HasErrors(errors []ValidationError) bool {
	for _, err := range errors {
		if err.Severity == "error" {
			return true
		}
	}
	return false
}

// resourceTypeOf resolves the resource type or returns the failure as a validation error
func resourceTypeOf(v any) (fhir.ResourceType, []ValidationError) {
	rt, err := resource.ResourceTypeOf(v)
	if err != nil {
		return 0, []ValidationError{CreateError("resourceType", err.Error())}
	}
	return rt, nil
}

// getFieldValue gets a field value from a resource using its JSON field name
func getFieldValue(resource any, fieldName string) (reflect.Value, bool) {
	v := reflect.ValueOf(resource)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct || fieldName == "" {
		return reflect.Value{}, false
	}

	field := v.FieldByName(strings.ToUpper(fieldName[:1]) + fieldName[1:])
	return field, field.IsValid()
}

// isFieldEmpty checks if a field is absent. Code-valued enums are ints whose
// zero value is a real code, so they always count as present.
func isFieldEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return v.Len() == 0
	case reflect.Struct:
		return v.IsZero()
	default:
		return false
	}
}

// CreateError creates a validation error
func CreateError(field, message string) ValidationError {
	return ValidationError{
		Field:    field,
		Message:  message,
		Severity: "error",
	}
}

// CreateWarning creates a validation warning
func CreateWarning(field, message string) ValidationError {
	return ValidationError{
		Field:    field,
		Message:  message,
		Severity: "warning",
	}
}

// FormatErrors formats validation errors for display
func FormatErrors(errors []ValidationError, recordNumber int) string {
	if len(errors) == 0 {
		return ""
	}

	var lines []string
	for _, err := range errors {
		lines = append(lines, fmt.Sprintf("Record %d: Validation %s in field '%s': %s",
			recordNumber, err.Severity, err.Field, err.Message))
	}
	return strings.Join(lines, "\n")
}
