// Package resource resolves FHIR R4 resource kinds in both directions: from a
// Go model type to its fhir.ResourceType, and from a resource type name to the
// Go model type.
//
// Resolution from a type fails hard with an *InvalidArgumentError. Resolution
// from a name fails soft: the miss is logged and nil is returned.
package resource

import (
	"reflect"
	"regexp"

	"github.com/samply/golang-fhir-models/fhir-models/fhir"

	"fhirroute/internal/logging"
)

// namespaceRegex matches a "{...}" span such as "{http://hl7.org/fhir}".
var namespaceRegex = regexp.MustCompile(`\{[^}]*\}`)

// StripNamespace removes every "{...}" span from name. Some CQL engine
// builds emit "{http://hl7.org/fhir}Patient" instead of "Patient".
func StripNamespace(name string) string {
	return namespaceRegex.ReplaceAllString(name, "")
}

// ResourceTypeOfType returns the resource type declared by the model type t.
// Pointer types are dereferenced.
func ResourceTypeOfType(t reflect.Type) (fhir.ResourceType, error) {
	if t == nil {
		return 0, &InvalidArgumentError{TypeName: "<nil>", Err: ErrNilType}
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	k, ok := byType[t]
	if !ok {
		return 0, &InvalidArgumentError{TypeName: qualifiedName(t), Err: ErrUnregisteredType}
	}
	return k.ResourceType, nil
}

// ResourceTypeFor returns the resource type declared by the model type R.
func ResourceTypeFor[R any]() (fhir.ResourceType, error) {
	return ResourceTypeOfType(reflect.TypeOf((*R)(nil)).Elem())
}

// ResourceTypeOf returns the resource type of a model value such as *fhir.Patient.
func ResourceTypeOf(v any) (fhir.ResourceType, error) {
	if v == nil {
		return 0, &InvalidArgumentError{TypeName: "<nil>", Err: ErrNilType}
	}
	return ResourceTypeOfType(reflect.TypeOf(v))
}

// Lookup finds the kind registered under name without logging.
func Lookup(name string) (Kind, bool) {
	k, ok := byQualifiedName[R4ResourcePrefix+StripNamespace(name)]
	return k, ok
}

// Class returns the model type for a resource type name, or nil when no such
// resource exists. Misses are logged, never returned as errors.
func Class(name string) reflect.Type {
	cleaned := StripNamespace(name)
	k, ok := byQualifiedName[R4ResourcePrefix+cleaned]
	if !ok {
		logging.Default().Warn().
			Str("resource_type", name).
			Str("qualified_name", R4ResourcePrefix+cleaned).
			Msg("Unknown resource type")
		return nil
	}
	return k.Type
}

// ClassOf is Class narrowed to the model type the caller expects. It returns
// nil when name is unknown or names a different type than R.
func ClassOf[R any](name string) reflect.Type {
	t := Class(name)
	if t == nil {
		return nil
	}
	if want := reflect.TypeOf((*R)(nil)).Elem(); t != want {
		logging.Default().Warn().
			Str("resource_type", name).
			Str("resolved", qualifiedName(t)).
			Str("expected", qualifiedName(want)).
			Msg("Resource type does not match expected model")
		return nil
	}
	return t
}

// New returns a blank *fhir.X for a resource type name.
func New(name string) (any, bool) {
	t := Class(name)
	if t == nil {
		return nil, false
	}
	return reflect.New(t).Interface(), true
}
