package input

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBundle = `{
  "resourceType": "Bundle",
  "type": "collection",
  "entry": [
    {"resource": {"resourceType": "Patient", "id": "p1"}},
    {"request": {"method": "DELETE", "url": "Patient/p9"}},
    {"resource": {"resourceType": "Observation", "id": "o1"}}
  ]
}`

// TestRead_NDJSON tests streaming records and line numbering
func TestRead_NDJSON(t *testing.T) {
	content := `{"resourceType":"Patient","id":"p1"}

{"resourceType":"Observation","id":"o1"}
`
	reader, err := NewReader(strings.NewReader(content), FormatNDJSON)
	require.NoError(t, err)

	first, err := reader.Read()
	require.NoError(t, err)
	assert.Equal(t, 1, first.Number)
	assert.JSONEq(t, `{"resourceType":"Patient","id":"p1"}`, string(first.Raw))

	second, err := reader.Read()
	require.NoError(t, err)
	assert.Equal(t, 3, second.Number)
	assert.JSONEq(t, `{"resourceType":"Observation","id":"o1"}`, string(second.Raw))

	_, err = reader.Read()
	assert.Equal(t, io.EOF, err)
}

// TestRead_NDJSONBufferReuse tests that returned records survive later reads
func TestRead_NDJSONBufferReuse(t *testing.T) {
	content := "{\"id\":\"a\"}\n{\"id\":\"b\"}\n{\"id\":\"c\"}\n"
	reader, err := NewReader(strings.NewReader(content), FormatNDJSON)
	require.NoError(t, err)

	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	for i, want := range []string{"a", "b", "c"} {
		var v struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(records[i].Raw, &v))
		assert.Equal(t, want, v.ID)
	}
}

// TestRead_Bundle tests iterating Bundle entries and skipping request-only entries
func TestRead_Bundle(t *testing.T) {
	reader, err := NewReader(strings.NewReader(sampleBundle), FormatBundle)
	require.NoError(t, err)

	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 1, records[0].Number)
	assert.Contains(t, string(records[0].Raw), `"Patient"`)
	assert.Equal(t, 3, records[1].Number)
	assert.Contains(t, string(records[1].Raw), `"Observation"`)
}

// TestNewReader_NotABundle tests rejecting non-Bundle documents
func TestNewReader_NotABundle(t *testing.T) {
	_, err := NewReader(strings.NewReader(`{"resourceType":"Patient"}`), FormatBundle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a Bundle")

	_, err = NewReader(strings.NewReader(`not json`), FormatBundle)
	assert.Error(t, err)
}

// TestNewReader_NamespacedBundle tests a Bundle whose resourceType carries a namespace
func TestNewReader_NamespacedBundle(t *testing.T) {
	doc := `{"resourceType":"{http://hl7.org/fhir}Bundle","entry":[{"resource":{"resourceType":"Patient"}}]}`
	reader, err := NewReader(strings.NewReader(doc), FormatBundle)
	require.NoError(t, err)

	records, err := reader.ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatAuto, false},
		{"auto", FormatAuto, false},
		{"ndjson", FormatNDJSON, false},
		{"bundle", FormatBundle, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatNDJSON, DetectFormat("export/Patient.ndjson"))
	assert.Equal(t, FormatNDJSON, DetectFormat("records.JSONL"))
	assert.Equal(t, FormatBundle, DetectFormat("bundle.json"))
	assert.Equal(t, FormatBundle, DetectFormat("-"))
}

// TestOpen tests opening files with auto-detected formats
func TestOpen(t *testing.T) {
	dir := t.TempDir()
	ndjsonPath := filepath.Join(dir, "records.ndjson")
	bundlePath := filepath.Join(dir, "bundle.json")
	require.NoError(t, os.WriteFile(ndjsonPath, []byte(`{"resourceType":"Patient"}`+"\n"), 0644))
	require.NoError(t, os.WriteFile(bundlePath, []byte(sampleBundle), 0644))

	reader, err := Open(ndjsonPath, FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, FormatNDJSON, reader.Format())
	records, err := reader.ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.NoError(t, reader.Close())

	reader, err = Open(bundlePath, FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, FormatBundle, reader.Format())
	assert.NoError(t, reader.Close())
}

// TestOpen_FileNotFound tests error handling for missing files
func TestOpen_FileNotFound(t *testing.T) {
	_, err := Open("/nonexistent/records.ndjson", FormatAuto)
	assert.Error(t, err)
}
