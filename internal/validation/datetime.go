package validation

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/samply/golang-fhir-models/fhir-models/fhir"
)

// dateTimePatterns are the ISO 8601 shapes FHIR accepts:
// YYYY, YYYY-MM, YYYY-MM-DD and full dateTimes with Z or +zz:zz and optional fraction.
var dateTimePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}$`),
	regexp.MustCompile(`^\d{4}-\d{2}$`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}[+-]\d{2}:\d{2}$`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{1,9}Z$`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{1,9}[+-]\d{2}:\d{2}$`),
}

// dateTimeLayouts back the patterns with a calendar check
var dateTimeLayouts = []string{
	"2006",
	"2006-01",
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
}

// DateTimeValidator validates ISO 8601 datetime formats
type DateTimeValidator struct {
	dateTimeFields map[fhir.ResourceType][]string // dotted paths for nested fields, e.g. "period.start"
}

// NewDateTimeValidator creates a new datetime validator
func NewDateTimeValidator() *DateTimeValidator {
	return &DateTimeValidator{
		dateTimeFields: map[fhir.ResourceType][]string{
			fhir.ResourceTypeObservation:        {"effectiveDateTime", "issued"},
			fhir.ResourceTypePatient:            {"birthDate", "deceasedDateTime"},
			fhir.ResourceTypeCondition:          {"onsetDateTime", "abatementDateTime", "recordedDate"},
			fhir.ResourceTypeMedicationRequest:  {"authoredOn"},
			fhir.ResourceTypeProcedure:          {"performedDateTime"},
			fhir.ResourceTypeEncounter:          {"period.start", "period.end"},
			fhir.ResourceTypeDiagnosticReport:   {"effectiveDateTime", "issued"},
			fhir.ResourceTypeSpecimen:           {"receivedTime"},
			fhir.ResourceTypeImmunization:       {"occurrenceDateTime", "recorded"},
			fhir.ResourceTypeAllergyIntolerance: {"onsetDateTime", "recordedDate", "lastOccurrence"},
		},
	}
}

// Validate checks datetime fields for valid ISO 8601 format
func (v *DateTimeValidator) Validate(resource any) []ValidationError {
	rt, errs := resourceTypeOf(resource)
	if errs != nil {
		return errs
	}

	var errors []ValidationError
	for _, path := range v.dateTimeFields[rt] {
		value, exists := getPathValue(resource, path)
		if !exists || isFieldEmpty(value) {
			continue // required field validation handles absence
		}

		s := extractStringValue(value)
		if s == "" {
			continue
		}

		if !isValidDateTime(s) {
			errors = append(errors, CreateError(path, "Invalid ISO 8601 datetime format"))
		}
	}

	return errors
}

// getPathValue follows a dotted path of JSON field names
func getPathValue(resource any, path string) (reflect.Value, bool) {
	var value reflect.Value
	current := resource
	for _, name := range strings.Split(path, ".") {
		v, ok := getFieldValue(current, name)
		if !ok {
			return reflect.Value{}, false
		}
		value = v
		current = v.Interface()
	}
	return value, true
}

// extractStringValue extracts a string from a value, dereferencing pointers
func extractStringValue(v reflect.Value) string {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.String {
		return v.String()
	}
	return ""
}

// isValidDateTime validates ISO 8601 datetime formats accepted by FHIR
func isValidDateTime(value string) bool {
	for _, pattern := range dateTimePatterns {
		if pattern.MatchString(value) {
			return tryParseDateTime(value)
		}
	}
	return false
}

// tryParseDateTime rejects values that match a pattern but not the calendar
func tryParseDateTime(value string) bool {
	for _, layout := range dateTimeLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}
