package resource

import (
	"encoding/json"
	"fmt"

	"github.com/samply/golang-fhir-models/fhir-models/fhir"
)

// Decode unmarshals a single JSON resource into its model type, chosen by the
// record's resourceType member.
func Decode(raw []byte) (any, fhir.ResourceType, error) {
	var envelope struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, 0, fmt.Errorf("failed to parse resource: %w", err)
	}
	if envelope.ResourceType == "" {
		return nil, 0, ErrMissingResourceType
	}

	t := Class(envelope.ResourceType)
	if t == nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownResourceType, envelope.ResourceType)
	}
	k := byType[t]

	v := k.New()
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, 0, fmt.Errorf("failed to decode %s: %w", k.Name, err)
	}
	return v, k.ResourceType, nil
}
