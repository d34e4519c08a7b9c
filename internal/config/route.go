package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/samply/golang-fhir-models/fhir-models/fhir"
	"gopkg.in/yaml.v3"

	"fhirroute/internal/resource"
)

// Policies for records whose resourceType does not resolve.
const (
	UnknownSkip = "skip"
	UnknownFail = "fail"
)

// Validation levels.
const (
	LevelError = "error"
	LevelWarn  = "warn"
)

// RouteConfig represents the YAML route configuration
type RouteConfig struct {
	Include         []string `yaml:"include"`
	Exclude         []string `yaml:"exclude"`
	Unknown         string   `yaml:"unknown"`
	Format          string   `yaml:"format"`
	MaxResources    int      `yaml:"max_resources"`
	Validate        bool     `yaml:"validate"`
	ValidationLevel string   `yaml:"validation_level"`

	include map[fhir.ResourceType]bool
	exclude map[fhir.ResourceType]bool
}

// DefaultRoute returns the configuration used when no route file is given
func DefaultRoute() *RouteConfig {
	return &RouteConfig{
		Unknown:         UnknownSkip,
		Format:          "ndjson",
		MaxResources:    10000,
		ValidationLevel: LevelError,
	}
}

// LoadRoute loads and parses a YAML route file on top of DefaultRoute
func LoadRoute(path string) (*RouteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route file: %w", err)
	}

	cfg := DefaultRoute()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve checks the policy fields and resolves Include/Exclude names to
// resource types. It must be called again after the fields are changed.
func (c *RouteConfig) Resolve() error {
	switch c.Unknown {
	case "":
		c.Unknown = UnknownSkip
	case UnknownSkip, UnknownFail:
	default:
		return fmt.Errorf("unsupported unknown policy: %s (supported: skip, fail)", c.Unknown)
	}

	switch c.ValidationLevel {
	case "":
		c.ValidationLevel = LevelError
	case LevelError, LevelWarn:
	default:
		return fmt.Errorf("unsupported validation level: %s (supported: error, warn)", c.ValidationLevel)
	}

	if c.MaxResources < 0 {
		return fmt.Errorf("max_resources cannot be negative: %d", c.MaxResources)
	}

	unknown := make(map[string]bool)
	c.include = resolveNames(c.Include, unknown)
	c.exclude = resolveNames(c.Exclude, unknown)

	if len(unknown) > 0 {
		names := make([]string, 0, len(unknown))
		for name := range unknown {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("unknown resource types: %v", names)
	}

	return nil
}

// Allows reports whether records of type rt should be routed
func (c *RouteConfig) Allows(rt fhir.ResourceType) bool {
	if c.exclude[rt] {
		return false
	}
	return len(c.include) == 0 || c.include[rt]
}

// resolveNames maps names to resource types, recording names that do not resolve
func resolveNames(names []string, unknown map[string]bool) map[fhir.ResourceType]bool {
	set := make(map[fhir.ResourceType]bool, len(names))
	for _, name := range names {
		k, ok := resource.Lookup(name)
		if !ok {
			unknown[name] = true
			continue
		}
		set[k.ResourceType] = true
	}
	return set
}
