package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samply/golang-fhir-models/fhir-models/fhir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadRoute tests loading a valid YAML route file
func TestLoadRoute(t *testing.T) {
	content := `include:
  - Patient
  - "{http://hl7.org/fhir}Observation"
exclude: [Binary]
unknown: fail
format: bundle
max_resources: 50
validate: true
validation_level: warn
`
	cfg, err := LoadRoute(createTempYAMLFile(t, content))
	require.NoError(t, err)

	assert.Equal(t, UnknownFail, cfg.Unknown)
	assert.Equal(t, "bundle", cfg.Format)
	assert.Equal(t, 50, cfg.MaxResources)
	assert.True(t, cfg.Validate)
	assert.Equal(t, LevelWarn, cfg.ValidationLevel)

	assert.True(t, cfg.Allows(fhir.ResourceTypePatient))
	assert.True(t, cfg.Allows(fhir.ResourceTypeObservation))
	assert.False(t, cfg.Allows(fhir.ResourceTypeEncounter))
	assert.False(t, cfg.Allows(fhir.ResourceTypeBinary))
}

// TestLoadRoute_Defaults tests that omitted keys keep their defaults
func TestLoadRoute_Defaults(t *testing.T) {
	cfg, err := LoadRoute(createTempYAMLFile(t, "validate: true\n"))
	require.NoError(t, err)

	assert.Equal(t, UnknownSkip, cfg.Unknown)
	assert.Equal(t, "ndjson", cfg.Format)
	assert.Equal(t, 10000, cfg.MaxResources)
	assert.Equal(t, LevelError, cfg.ValidationLevel)
	assert.True(t, cfg.Allows(fhir.ResourceTypeEncounter))
}

// TestLoadRoute_FileNotFound tests error handling for missing files
func TestLoadRoute_FileNotFound(t *testing.T) {
	_, err := LoadRoute("/nonexistent/route.yaml")
	assert.Error(t, err)
}

// TestLoadRoute_InvalidYAML tests error handling for malformed YAML
func TestLoadRoute_InvalidYAML(t *testing.T) {
	content := `include:
  - Patient
 bad indentation: [
`
	_, err := LoadRoute(createTempYAMLFile(t, content))
	assert.Error(t, err)
}

// TestLoadRoute_UnknownTypes tests that every unknown name is reported
func TestLoadRoute_UnknownTypes(t *testing.T) {
	content := `include: [Patient, Spaceship]
exclude: [Teleporter]
`
	_, err := LoadRoute(createTempYAMLFile(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Spaceship")
	assert.Contains(t, err.Error(), "Teleporter")
}

func TestResolve_InvalidPolicies(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RouteConfig)
	}{
		{"unknown policy", func(c *RouteConfig) { c.Unknown = "ignore" }},
		{"validation level", func(c *RouteConfig) { c.ValidationLevel = "fatal" }},
		{"negative max", func(c *RouteConfig) { c.MaxResources = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRoute()
			tt.mutate(cfg)
			assert.Error(t, cfg.Resolve())
		})
	}
}

// TestResolve_EmptyPolicies tests that blank policies fall back to defaults
func TestResolve_EmptyPolicies(t *testing.T) {
	cfg := &RouteConfig{}
	require.NoError(t, cfg.Resolve())
	assert.Equal(t, UnknownSkip, cfg.Unknown)
	assert.Equal(t, LevelError, cfg.ValidationLevel)
}

// TestAllows_ExcludeWins tests that exclusion overrides inclusion
func TestAllows_ExcludeWins(t *testing.T) {
	cfg := DefaultRoute()
	cfg.Include = []string{"Patient", "Observation"}
	cfg.Exclude = []string{"Observation"}
	require.NoError(t, cfg.Resolve())

	assert.True(t, cfg.Allows(fhir.ResourceTypePatient))
	assert.False(t, cfg.Allows(fhir.ResourceTypeObservation))
}

// createTempYAMLFile writes content to a YAML file under t.TempDir()
func createTempYAMLFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "route.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
