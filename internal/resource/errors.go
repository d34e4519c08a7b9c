package resource

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is matched by every error from the ResourceTypeOf family.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnregisteredType means the type is not a registered R4 resource.
	ErrUnregisteredType = errors.New("not a registered R4 resource type")

	// ErrNilType means no type (or a nil value) was supplied.
	ErrNilType = errors.New("nil type")

	// ErrMissingResourceType means a JSON record has no resourceType member.
	ErrMissingResourceType = errors.New("missing resourceType")

	// ErrUnknownResourceType means a JSON record names a kind that is not registered.
	ErrUnknownResourceType = errors.New("unknown resourceType")
)

// InvalidArgumentError reports a type whose resource type cannot be resolved.
type InvalidArgumentError struct {
	TypeName string
	Err      error
}

// Error implements the error interface
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("cannot resolve resource type for %s: %v", e.TypeName, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *InvalidArgumentError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}
