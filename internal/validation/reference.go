package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/samply/golang-fhir-models/fhir-models/fhir"

	"fhirroute/internal/resource"
)

// relativeRefRegex matches "Type/id" and "Type/id/_history/vid"
var relativeRefRegex = regexp.MustCompile(`^([A-Z][A-Za-z]+)/[A-Za-z0-9\-.]{1,64}(/_history/[A-Za-z0-9\-.]{1,64})?$`)

// ReferenceValidator validates FHIR reference formats
type ReferenceValidator struct {
	referenceFields map[fhir.ResourceType][]string
}

// NewReferenceValidator creates a new reference validator
func NewReferenceValidator() *ReferenceValidator {
	return &ReferenceValidator{
		referenceFields: map[fhir.ResourceType][]string{
			fhir.ResourceTypeObservation:        {"subject", "encounter", "performer", "basedOn"},
			fhir.ResourceTypeCondition:          {"subject", "encounter", "asserter"},
			fhir.ResourceTypeMedicationRequest:  {"subject", "encounter", "requester"},
			fhir.ResourceTypeProcedure:          {"subject", "encounter"},
			fhir.ResourceTypeEncounter:          {"subject"},
			fhir.ResourceTypeDiagnosticReport:   {"subject", "encounter", "performer", "result"},
			fhir.ResourceTypeSpecimen:           {"subject"},
			fhir.ResourceTypeImmunization:       {"patient", "encounter"},
			fhir.ResourceTypeAllergyIntolerance: {"patient", "encounter"},
		},
	}
}

// Validate checks reference fields for valid format. References naming a
// type that is not an R4 resource are reported as warnings.
func (v *ReferenceValidator) Validate(resource any) []ValidationError {
	rt, errs := resourceTypeOf(resource)
	if errs != nil {
		return errs
	}

	var errors []ValidationError
	for _, field := range v.referenceFields[rt] {
		value, exists := getFieldValue(resource, field)
		if !exists || isFieldEmpty(value) {
			continue // Skip empty fields
		}

		for path, ref := range referenceStrings(field, value) {
			if err := checkReference(path, ref); err != nil {
				errors = append(errors, *err)
			}
		}
	}

	return errors
}

// referenceStrings collects Reference.reference values keyed by FHIR path.
// Slices of references are expanded with their index.
func referenceStrings(field string, v reflect.Value) map[string]string {
	refs := make(map[string]string)

	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return refs
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			for path, ref := range referenceStrings(fmt.Sprintf("%s[%d]", field, i), v.Index(i)) {
				refs[path] = ref
			}
		}
	case reflect.Struct:
		ref := v.FieldByName("Reference")
		if ref.IsValid() && ref.Kind() == reflect.Ptr && !ref.IsNil() && ref.Elem().Kind() == reflect.String {
			refs[field+".reference"] = ref.Elem().String()
		}
	}

	return refs
}

// checkReference validates one reference string
func checkReference(path, ref string) *ValidationError {
	if !isValidReference(ref) {
		err := CreateError(path, "Invalid reference format (expected 'ResourceType/id', '#id', or full URL)")
		return &err
	}

	if m := relativeRefRegex.FindStringSubmatch(ref); m != nil {
		if _, ok := resource.Lookup(m[1]); !ok {
			warn := CreateWarning(path, fmt.Sprintf("Reference targets unknown resource type %s", m[1]))
			return &warn
		}
	}
	return nil
}

// isValidReference validates FHIR reference formats
func isValidReference(ref string) bool {
	if ref == "" {
		return false
	}

	// Internal reference (starts with #)
	if strings.HasPrefix(ref, "#") {
		return len(ref) > 1
	}

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "urn:") {
		return true
	}

	return relativeRefRegex.MatchString(ref)
}
