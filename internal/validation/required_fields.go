package validation

import "github.com/samply/golang-fhir-models/fhir-models/fhir"

// RequiredFieldsValidator validates that required fields are present for each resource type
type RequiredFieldsValidator struct {
	requiredFields map[fhir.ResourceType][]string
}

// NewRequiredFieldsValidator creates a new required fields validator.
// Required status/intent codes are not listed: the model stores them as
// enums and cannot tell a missing code from the first one.
func NewRequiredFieldsValidator() *RequiredFieldsValidator {
	return &RequiredFieldsValidator{
		requiredFields: map[fhir.ResourceType][]string{
			fhir.ResourceTypeObservation:        {"code"},
			fhir.ResourceTypeCondition:          {"subject"},
			fhir.ResourceTypeMedicationRequest:  {"subject"},
			fhir.ResourceTypeProcedure:          {"subject"},
			fhir.ResourceTypeEncounter:          {"class"},
			fhir.ResourceTypeDiagnosticReport:   {"code"},
			fhir.ResourceTypeImmunization:       {"vaccineCode", "patient"},
			fhir.ResourceTypeAllergyIntolerance: {"patient"},
			fhir.ResourceTypeCoverage:           {"beneficiary", "payor"},
		},
	}
}

// Validate checks if required fields are present
func (v *RequiredFieldsValidator) Validate(resource any) []ValidationError {
	rt, errs := resourceTypeOf(resource)
	if errs != nil {
		return errs
	}

	var errors []ValidationError
	for _, field := range v.requiredFields[rt] {
		value, exists := getFieldValue(resource, field)
		if !exists || isFieldEmpty(value) {
			errors = append(errors, CreateError(field, "Required field is missing or empty"))
		}
	}

	return errors
}
